package middleware

import (
	"log"
	"strings"

	"chemstore/internal/models"
	"chemstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
	LocalEmail  = "email"
)

// AccessTokenCookie is the cookie holding the access token.
const AccessTokenCookie = "accessToken"

// TokenValidator validates access tokens.
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*services.Claims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT access token,
// taken from the Authorization header or, failing that, the access token
// cookie.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(AccessTokenCookie)
		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if !(len(parts) == 2 && parts[0] == "Bearer") {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Authorization header format must be 'Bearer <token>'",
				})
			}
			tokenString = parts[1]
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized access",
			})
		}

		claims, err := validator.ValidateAccessToken(tokenString)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		c.Locals(LocalEmail, claims.Email)

		return c.Next()
	}
}

// AdminRequired rejects callers whose token does not carry the admin role.
// It must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAdmin(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id, or "" if there is none.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// IsAdmin reports whether the authenticated caller holds the admin role.
func IsAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals(LocalRole).(string)
	return role == models.RoleAdmin
}
