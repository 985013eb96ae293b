package member

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/memberhub/memberhub/internal/auth"
	"github.com/memberhub/memberhub/internal/config"
	"github.com/memberhub/memberhub/internal/logging"
	"github.com/memberhub/memberhub/internal/middleware"
)

type handlerFixture struct {
	app     *fiber.App
	members *Service
	auth    *auth.Service
}

func setupHandlerApp(t *testing.T) handlerFixture {
	t.Helper()
	cfg := config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour, DefaultPassword: "changeme123"}

	svc := NewService(NewMemoryRepository(), nil)
	authSvc := auth.NewService(cfg, auth.NewMemoryRepository())
	h := NewHandler(svc, authSvc, cfg.DefaultPassword, logging.Discard())

	app := fiber.New()
	authed := app.Group("", middleware.RequireAuth(cfg))
	authed.Get("/profile/me", h.Me)
	authed.Get("/members/my_group", h.Group)
	admin := authed.Group("/admin", middleware.RequireAdmin())
	admin.Get("/profile/:id", h.AdminGet)
	admin.Put("/members/:id", h.AdminUpdate)
	admin.Post("/members", h.AdminAdd)

	return handlerFixture{app: app, members: svc, auth: authSvc}
}

func (f handlerFixture) seedMember(t *testing.T, name, email string) int {
	t.Helper()
	id, err := f.members.Add(context.Background(), name, email)
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return id
}

func (f handlerFixture) token(t *testing.T, memberID int, role string) string {
	t.Helper()
	token, err := f.auth.IssueToken(auth.Login{MemberID: memberID, Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (f handlerFixture) request(t *testing.T, method, path, token, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := f.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func TestProfileMe(t *testing.T) {
	f := setupHandlerApp(t)
	id := f.seedMember(t, "Asha", "asha@club.example")

	status, raw := f.request(t, fiber.MethodGet, "/profile/me", f.token(t, id, "member"), "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, raw)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec.ID != id || rec.UserName != "Asha" || rec.EmailID != "asha@club.example" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestProfileMeWithoutToken(t *testing.T) {
	f := setupHandlerApp(t)

	status, _ := f.request(t, fiber.MethodGet, "/profile/me", "", "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestGroupListing(t *testing.T) {
	f := setupHandlerApp(t)
	id := f.seedMember(t, "Asha", "asha@club.example")
	f.seedMember(t, "Bakary", "bakary@club.example")

	status, raw := f.request(t, fiber.MethodGet, "/members/my_group", f.token(t, id, "member"), "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 2 || records[0].ID > records[1].ID {
		t.Fatalf("expected 2 records ordered by ID, got %+v", records)
	}
}

func TestAdminRoutesForbiddenForMembers(t *testing.T) {
	f := setupHandlerApp(t)
	id := f.seedMember(t, "Asha", "asha@club.example")
	token := f.token(t, id, "member")

	for _, tc := range []struct{ method, path, body string }{
		{fiber.MethodGet, "/admin/profile/1", ""},
		{fiber.MethodPut, "/admin/members/1", `{"UserName":"X"}`},
		{fiber.MethodPost, "/admin/members", `{"name":"X","email":"x@club.example"}`},
	} {
		status, _ := f.request(t, tc.method, tc.path, token, tc.body)
		if status != fiber.StatusForbidden {
			t.Fatalf("expected 403 for %s %s, got %d", tc.method, tc.path, status)
		}
	}
}

func TestAdminUpdate(t *testing.T) {
	f := setupHandlerApp(t)
	adminID := f.seedMember(t, "Root", "root@club.example")
	targetID := f.seedMember(t, "Asha", "asha@club.example")

	status, raw := f.request(t, fiber.MethodPut,
		"/admin/members/"+itoa(targetID), f.token(t, adminID, "admin"),
		`{"UserName":"Asha N.","DoB":"1991-07-04"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, raw)
	}

	var payload struct {
		Member Record `json:"member"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Member.UserName != "Asha N." || payload.Member.DoB != "1991-07-04" {
		t.Fatalf("unexpected member: %+v", payload.Member)
	}
	if payload.Member.EmailID != "asha@club.example" {
		t.Fatalf("untouched field changed: %+v", payload.Member)
	}
}

func TestAdminUpdateEmptyPatch(t *testing.T) {
	f := setupHandlerApp(t)
	adminID := f.seedMember(t, "Root", "root@club.example")

	status, _ := f.request(t, fiber.MethodPut,
		"/admin/members/"+itoa(adminID), f.token(t, adminID, "admin"), `{}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestAdminAddProvisionsLogin(t *testing.T) {
	f := setupHandlerApp(t)
	adminID := f.seedMember(t, "Root", "root@club.example")

	status, raw := f.request(t, fiber.MethodPost, "/admin/members",
		f.token(t, adminID, "admin"), `{"name":"New Kid","email":"kid@club.example"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, raw)
	}

	var payload struct {
		MemberID int `json:"member_id"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.MemberID == 0 {
		t.Fatalf("missing member_id in %s", raw)
	}

	// The fresh member can log in with the default password.
	login, err := f.auth.Authenticate(context.Background(), payload.MemberID, "changeme123")
	if err != nil {
		t.Fatalf("authenticate new member: %v", err)
	}
	if login.Role != "member" {
		t.Fatalf("expected member role, got %q", login.Role)
	}
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
