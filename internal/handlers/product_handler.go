package handlers

import (
	"chemstore/internal/middleware"
	"chemstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app. Writes are
// admin only.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/products", h.HandleGetProducts)
	router.Get("/products/:slug", h.HandleGetProduct)

	adminOnly := middleware.AdminRequired()
	router.Post("/admin/products", authRequired, adminOnly, h.HandleCreateProduct)
	router.Patch("/admin/products", authRequired, adminOnly, h.HandleUpdateProduct)
	router.Delete("/admin/products", authRequired, adminOnly, h.HandleDeleteProduct)
}

// HandleGetProducts lists the catalog.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Products fetched successfully",
		"data":    products,
	})
}

// HandleGetProduct retrieves a single product by its slug.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"data": product,
	})
}

// HandleCreateProduct adds a product from a multipart form with an image.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req services.CreateProductInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	image, closeImage, err := formDocument(c, "image")
	if err != nil {
		return badBody(c, err)
	}
	defer closeImage()
	req.Image = image

	product, err := h.service.CreateProduct(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"data":    product,
	})
}

// HandleUpdateProduct changes price and stock of the product given by ?id=.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req services.UpdateProductInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Query("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"data":    product,
	})
}

// HandleDeleteProduct deletes the product given by ?id=.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Query("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}
