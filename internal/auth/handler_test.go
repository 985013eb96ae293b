package auth

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/memberhub/memberhub/internal/logging"
)

func setupLoginApp(t *testing.T) (*fiber.App, *Service) {
	t.Helper()
	repo := NewMemoryRepository()
	svc := NewService(testConfig(), repo)
	seedLogin(t, repo, 42, "hunter2", "member")

	app := fiber.New()
	app.Post("/login", NewHandler(svc, logging.Discard()).Login)
	return app, svc
}

func postLogin(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, payload
}

func TestLoginSuccess(t *testing.T) {
	app, svc := setupLoginApp(t)

	status, payload := postLogin(t, app, `{"user":"42","password":"hunter2"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	token, _ := payload["session_token"].(string)
	if token == "" {
		t.Fatal("response missing session_token")
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != "42" || claims.Role != "member" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app, _ := setupLoginApp(t)

	status, payload := postLogin(t, app, `{"user":"42","password":"nope"}`)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if payload["error"] != "invalid credentials" {
		t.Fatalf("expected 'invalid credentials', got %v", payload["error"])
	}
}

func TestLoginUnknownMember(t *testing.T) {
	app, _ := setupLoginApp(t)

	status, payload := postLogin(t, app, `{"user":"999","password":"whatever"}`)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if payload["error"] != "invalid credentials" {
		t.Fatalf("unknown member must look like a bad password, got %v", payload["error"])
	}
}

func TestLoginMissingFields(t *testing.T) {
	app, _ := setupLoginApp(t)

	for _, body := range []string{`{}`, `{"user":"42"}`, `{"password":"pw"}`, `{"user":"","password":""}`} {
		status, payload := postLogin(t, app, body)
		if status != fiber.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, status)
		}
		if payload["error"] == "" {
			t.Fatalf("expected error message for %s", body)
		}
	}
}

func TestLoginNonNumericUser(t *testing.T) {
	app, _ := setupLoginApp(t)

	status, _ := postLogin(t, app, `{"user":"asha","password":"pw"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}
