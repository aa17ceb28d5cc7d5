package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applog "github.com/jainjy/servo-sub017/internal/log"
)

// ErrorHandler logs the failure and answers without internal details.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, map[string]any{"code": code})
	msg := "Une erreur est survenue. Veuillez réessayer."
	if code == fiber.StatusNotFound {
		msg = "Page introuvable"
	}
	if c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMEApplicationJSON {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// Routes registers every endpoint on app.
func Routes(app *fiber.App, d *Deps) {
	app.Get("/", d.CatalogHandler.Home)
	app.Get("/catalog/:collection", d.CatalogHandler.Page)

	api := app.Group("/api/v1")
	api.Get("/collections", d.CatalogHandler.Collections)
	api.Get("/catalog/:collection", d.CatalogHandler.List)

	api.Get("/identity", d.IdentityHandler.Get)
	api.Put("/identity", d.IdentityHandler.Put)
	api.Delete("/identity", d.IdentityHandler.Delete)

	submitLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|submit"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.submit.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "trop de tentatives, réessayez dans un instant"})
		},
	})
	modals := api.Group("/modals")
	modals.Post("/", d.ModalHandler.Open)
	modals.Get("/:id", d.ModalHandler.Get)
	modals.Patch("/:id/fields", d.ModalHandler.UpdateFields)
	modals.Post("/:id/submit", submitLimiter, d.ModalHandler.Submit)
	modals.Delete("/:id", d.ModalHandler.Close)

	geoLimiter := limiter.New(limiter.Config{Max: 30, Expiration: time.Minute})
	api.Get("/geocode/search", geoLimiter, d.GeocodeHandler.Search)
	api.Get("/geocode/reverse", geoLimiter, d.GeocodeHandler.Reverse)
	api.Post("/geocode/input", d.GeocodeHandler.Input)
	api.Get("/geocode/suggestion", d.GeocodeHandler.Suggestion)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page introuvable"})
	})
}
