package handlers

import (
	"fmt"

	"chemstore/internal/middleware"
	"chemstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/order", authRequired, h.HandleGetOrders)
	router.Post("/order", authRequired, h.HandlePlaceOrder)
	router.Patch("/order", authRequired, h.HandleUpdateOrderStatus)

	adminOnly := middleware.AdminRequired()
	router.Get("/admin/orders", authRequired, adminOnly, h.HandleGetAllOrders)
	router.Delete("/admin/order", authRequired, adminOnly, h.HandleDeleteOrder)
}

// HandleGetOrders returns the caller's order history.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListUserOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Orders fetched successfully",
		"data":    orders,
	})
}

// HandlePlaceOrder checks out the caller's cart. The request is a multipart
// form carrying the shipping fields and the permission proof file.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	proof, closeProof, err := formDocument(c, "proofFile", "permissionproof")
	if err != nil {
		return badBody(c, err)
	}
	defer closeProof()

	in := services.PlaceOrderInput{
		FullName: c.FormValue("fullName"),
		Email:    c.FormValue("email"),
		Company:  c.FormValue("company"),
		Address:  c.FormValue("address"),
		City:     c.FormValue("city"),
		State:    c.FormValue("state"),
		Pincode:  c.FormValue("pincode"),
		Proof:    proof,
	}
	placed, err := h.service.PlaceOrder(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Order placed successfully",
		"orderId":     placed.OrderID,
		"totalAmount": placed.TotalAmount,
	})
}

// HandleUpdateOrderStatus changes the status of the order given by ?id=.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var updateData struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return badBody(c, err)
	}

	actor := services.Actor{UserID: middleware.UserID(c), IsAdmin: middleware.IsAdmin(c)}
	order, err := h.service.SetOrderStatus(c.UserContext(), actor, c.Query("id"), updateData.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", order.ID, order.Status),
		"data":    order,
	})
}

// HandleGetAllOrders lists every order for the admin back office.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAllOrders(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "All orders fetched successfully",
		"data":    orders,
	})
}

// HandleDeleteOrder deletes the order given by ?id= with its items and
// checkout record.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.service.DeleteOrder(c.UserContext(), c.Query("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order deleted successfully",
	})
}
