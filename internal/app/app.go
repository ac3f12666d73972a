// Package app assembles the HTTP application from its services.
package app

import (
	"errors"
	"log"
	"time"

	"chemstore/internal/handlers"
	"chemstore/internal/middleware"
	"chemstore/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps are the services and settings the HTTP layer is built from.
type Deps struct {
	Auth     *services.AuthService
	Products *services.ProductService
	Carts    *services.CartService
	Orders   *services.OrderService

	// Ping reports database health; nil skips the check.
	Ping func() error

	BodyLimit     int
	UploadDir     string
	UploadBaseURL string
	CookieSecure  bool
	// Quiet disables the request log.
	Quiet bool
}

// New builds the Fiber app with every route registered under /api/v1.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    d.BodyLimit,
		ErrorHandler: errorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	if !d.Quiet {
		app.Use(logger.New()) // Request logger
	}

	if d.UploadDir != "" && d.UploadBaseURL != "" {
		// Uploads are customer supplied: always download, never sniff.
		app.Static(d.UploadBaseURL, d.UploadDir, fiber.Static{
			Download: true,
			ModifyResponse: func(c *fiber.Ctx) error {
				c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
				return nil
			},
		})
	}

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	authRequired := middleware.AuthRequired(d.Auth)

	handlers.NewAuthHandler(d.Auth, d.Orders, d.CookieSecure).RegisterRoutes(apiV1, authRequired)
	handlers.NewProductHandler(d.Products).RegisterRoutes(apiV1, authRequired)
	handlers.NewCartHandler(d.Carts).RegisterRoutes(apiV1, authRequired)
	handlers.NewOrderHandler(d.Orders).RegisterRoutes(apiV1, authRequired)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status, dbStatus, code := "healthy", "connected", fiber.StatusOK
		if d.Ping != nil {
			if err := d.Ping(); err != nil {
				log.Printf("Health check failed: %v", err)
				status, dbStatus, code = "unhealthy", "unavailable", fiber.StatusServiceUnavailable
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
		})
	})

	return app
}

// errorHandler answers errors that escape the handlers, such as unknown routes
// or oversized bodies, in the same JSON shape as handled errors.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}
