package handlers

import (
	"chemstore/internal/middleware"
	"chemstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/cart", authRequired, h.HandleGetCart)
	router.Post("/cart/:slug", authRequired, h.HandleAddItem)
	router.Delete("/cart/:slug", authRequired, h.HandleRemoveItem)
}

// HandleGetCart returns the caller's cart lines.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	lines, err := h.service.GetCart(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Cart fetched successfully",
		"data":    lines,
	})
}

// HandleAddItem adds one unit of the product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	if err := h.service.AddItem(c.UserContext(), middleware.UserID(c), c.Params("slug")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product added to cart",
	})
}

// HandleRemoveItem removes the product's line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if err := h.service.RemoveItem(c.UserContext(), middleware.UserID(c), c.Params("slug")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product removed from cart",
	})
}
