package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/jainjy/servo-sub017/internal/apiclient"
	"github.com/jainjy/servo-sub017/internal/config"
	"github.com/jainjy/servo-sub017/internal/forms"
	"github.com/jainjy/servo-sub017/internal/http/handlers"
	"github.com/jainjy/servo-sub017/internal/identity"
	applog "github.com/jainjy/servo-sub017/internal/log"
	"github.com/jainjy/servo-sub017/internal/repos"
)

const sessionTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	zl, err := applog.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()
	applog.Set(zl)

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		zl.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	reg, err := forms.LoadFile(cfg.FormsFile, cfg.Forms.AutoCloseDelay)
	if err != nil {
		zl.Fatal("load forms", zap.String("file", cfg.FormsFile), zap.Error(err))
	}

	// Identity storage: redis when configured, process memory otherwise
	var backend identity.Backend = identity.NewMemoryBackend()
	if cfg.Redis.Addr != "" {
		rb := identity.NewRedisBackend(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sessionTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rb.Ping(ctx)
		cancel()
		if err != nil {
			zl.Fatal("redis ping", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer rb.Close()
		backend = rb
		zl.Info("identity store", zap.String("backend", "redis"), zap.String("addr", cfg.Redis.Addr))
	} else {
		zl.Info("identity store", zap.String("backend", "memory"))
	}

	api := apiclient.New(apiclient.Options{
		BaseURL:     cfg.API.BaseURL,
		ProfilePath: cfg.API.ProfilePath,
		CatalogPath: cfg.API.CatalogPath,
		Timeout:     cfg.API.Timeout,
	})

	deps := handlers.NewDeps(db, cfg, api, backend, reg, zl)
	if cfg.API.SyncOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.API.Timeout)
		if err := deps.Catalog.SyncAll(ctx); err != nil {
			zl.Warn("catalog sync incomplete, serving cached collections", zap.Error(err))
		}
		cancel()
	}

	app := fiber.New(fiber.Config{
		Views:        handlers.NewViews(cfg.TemplatesDir, false),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Server().MaxRequestBodySize = 1 << 20

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/healthz" || p == "/metrics"
		},
	}))
	if cfg.CSRFEnabled {
		app.Use(csrf.New(csrf.Config{
			KeyLookup:      "header:X-CSRF-Token",
			CookieName:     "csrf_",
			CookieSameSite: "Lax",
			ContextKey:     "csrf",
			Next: func(c *fiber.Ctx) bool {
				// the login collaborator calls this server to server
				return strings.HasPrefix(c.Path(), "/api/v1/identity")
			},
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				applog.Security(c, "csrf.fail", nil)
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "security check failed, refresh the page"})
			},
		}))
		app.Use(func(c *fiber.Ctx) error {
			if tok, ok := c.Locals("csrf").(string); ok {
				c.Locals("CSRFToken", tok)
			}
			return c.Next()
		})
	}

	handlers.Routes(app, deps)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		zl.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	zl.Info("listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Error("listen", zap.Error(err))
	}
}
