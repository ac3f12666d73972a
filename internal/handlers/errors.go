package handlers

import (
	"errors"
	"log"

	"chemstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps a service error kind to its HTTP status.
func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindUnauthorized:
		return fiber.StatusUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindInvalidInput, services.KindInvalidState:
		return fiber.StatusBadRequest
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as a JSON error response. Unexpected failures are
// logged in full and answered with the service's generic message only.
func respondError(c *fiber.Ctx, err error) error {
	var se *services.Error
	if !errors.As(err, &se) {
		se = &services.Error{Kind: services.KindInternal, Message: "Internal server error", Err: err}
	}
	status := statusFor(se.Kind)
	if status >= fiber.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), se)
	}

	body := fiber.Map{"message": se.Message}
	if len(se.Fields) > 0 {
		body["fields"] = se.Fields
	}
	return c.Status(status).JSON(body)
}

// badBody answers a request whose body could not be parsed.
func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing %s %s request body: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
	})
}
