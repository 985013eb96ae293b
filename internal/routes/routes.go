package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/memberhub/memberhub/internal/auth"
	"github.com/memberhub/memberhub/internal/config"
	"github.com/memberhub/memberhub/internal/member"
	"github.com/memberhub/memberhub/internal/middleware"
	"github.com/memberhub/memberhub/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories fall back to in-memory stores in development.
	var memberRepo member.Repository
	if d.DB != nil {
		memberRepo = member.NewPostgresRepository(d.DB)
	} else {
		memberRepo = member.NewMemoryRepository()
	}
	var loginRepo auth.Repository
	if d.DB != nil {
		loginRepo = auth.NewPostgresRepository(d.DB)
	} else {
		loginRepo = auth.NewMemoryRepository()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	memberSvc := member.NewService(memberRepo, notifier)
	authSvc := auth.NewService(d.Cfg, loginRepo)

	authHandler := auth.NewHandler(authSvc, d.Logger)
	memberHandler := member.NewHandler(memberSvc, authSvc, d.Cfg.DefaultPassword, d.Logger)

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(app, authHandler, rateLimiter)

	// Protected routes
	authed := app.Group("", middleware.RequireAuth(d.Cfg))
	RegisterMemberRoutes(authed, memberHandler, d)

	return nil
}
