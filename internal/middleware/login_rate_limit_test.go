package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func setupRateLimitApp(t *testing.T, cache *redis.Client, maxPerMin int) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, maxPerMin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func attemptLogin(t *testing.T, app *fiber.App, user string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"user":"`+user+`","password":"pw"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp.StatusCode
}

func TestLoginRateLimitBlocksAfterThreshold(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := setupRateLimitApp(t, cache, 3)
	for i := 0; i < 3; i++ {
		if status := attemptLogin(t, app, "42"); status != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, status)
		}
	}
	if status := attemptLogin(t, app, "42"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 past the limit, got %d", status)
	}
}

func TestLoginRateLimitPerSubject(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := setupRateLimitApp(t, cache, 1)
	if status := attemptLogin(t, app, "42"); status != fiber.StatusOK {
		t.Fatalf("first attempt for 42: got %d", status)
	}
	if status := attemptLogin(t, app, "43"); status != fiber.StatusOK {
		t.Fatalf("other subjects must have their own budget, got %d", status)
	}
}

func TestLoginRateLimitWithoutCache(t *testing.T) {
	app := setupRateLimitApp(t, nil, 1)
	for i := 0; i < 5; i++ {
		if status := attemptLogin(t, app, "42"); status != fiber.StatusOK {
			t.Fatalf("no-op limiter must pass everything, got %d", status)
		}
	}
}
