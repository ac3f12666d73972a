package handlers

import (
	"time"

	"chemstore/internal/middleware"
	"chemstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RefreshTokenCookie is the cookie holding the refresh token.
const RefreshTokenCookie = "refreshToken"

// AuthHandler handles HTTP requests for authentication and the caller's
// account.
type AuthHandler struct {
	authService  *services.AuthService
	orderService *services.OrderService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, orderService *services.OrderService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		orderService: orderService,
		cookieSecure: cookieSecure,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Post("/register", h.HandleRegister)
	router.Post("/login", h.HandleLogin)
	router.Post("/verify", h.HandleVerify)
	router.Post("/refresh", h.HandleRefresh)
	router.Post("/forgot-password", h.HandleForgotPassword)

	authRoutes := router.Group("/auth")
	authRoutes.Post("/logout", authRequired, h.HandleLogout)
	authRoutes.Get("/profile", authRequired, h.HandleProfile)
	authRoutes.Patch("/changepassword", authRequired, h.HandleChangePassword)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	user, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// HandleLogin checks credentials and emails a verification code.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	if err := h.authService.Login(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Verification code sent to your email",
	})
}

// HandleVerify exchanges the verification code for a session.
func (h *AuthHandler) HandleVerify(c *fiber.Ctx) error {
	var req services.VerifyInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	tokens, err := h.authService.Verify(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	h.setCookie(c, middleware.AccessTokenCookie, tokens.AccessToken, tokens.AccessExpiry)
	h.setCookie(c, RefreshTokenCookie, tokens.RefreshToken, tokens.RefreshExpiry)
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   tokens.AccessToken,
		"user":    tokens.User,
	})
}

// HandleRefresh issues a new access token from the refresh cookie or body.
func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	token := c.Cookies(RefreshTokenCookie)
	if token == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badBody(c, err)
			}
		}
		token = req.RefreshToken
	}

	tokens, err := h.authService.Refresh(c.UserContext(), token)
	if err != nil {
		return respondError(c, err)
	}
	h.setCookie(c, middleware.AccessTokenCookie, tokens.AccessToken, tokens.AccessExpiry)
	return c.JSON(fiber.Map{
		"message": "Token refreshed",
		"token":   tokens.AccessToken,
	})
}

// HandleForgotPassword emails a temporary password.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req services.ForgotPasswordInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	if err := h.authService.ForgotPassword(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "A temporary password has been sent to your email",
	})
}

// HandleLogout revokes the refresh token and clears the session cookies.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}
	c.ClearCookie(middleware.AccessTokenCookie, RefreshTokenCookie)
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// HandleProfile returns the caller's account and order history.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	user, err := h.authService.Profile(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	orders, err := h.orderService.ListUserOrders(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":   user,
		"orders": orders,
	})
}

// HandleChangePassword replaces the caller's password.
func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req services.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	if err := h.authService.ChangePassword(c.UserContext(), middleware.UserID(c), req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
