package services

import (
	"context"
	"errors"
	"log"
	"time"

	"chemstore/internal/models"
	"chemstore/internal/notify"
	"chemstore/internal/repositories"
	"chemstore/internal/upload"
)

// OrderService runs the order workflow: placement, status changes, reads and
// admin deletion.
type OrderService struct {
	store    repositories.Store
	uploader upload.Uploader
	mailer   notify.Mailer
}

// NewOrderService creates a new OrderService.
func NewOrderService(store repositories.Store, uploader upload.Uploader, mailer notify.Mailer) *OrderService {
	return &OrderService{
		store:    store,
		uploader: uploader,
		mailer:   mailer,
	}
}

// PlaceOrderInput is the checkout form plus the compliance proof document.
type PlaceOrderInput struct {
	FullName string           `json:"fullName" validate:"required"`
	Email    string           `json:"email" validate:"required,email"`
	Company  string           `json:"company"`
	Address  string           `json:"address" validate:"required"`
	City     string           `json:"city" validate:"required"`
	State    string           `json:"state" validate:"required"`
	Pincode  string           `json:"pincode" validate:"required"`
	Proof    *upload.Document `json:"proofFile" validate:"required"`
}

// PlacedOrder is the result of a successful checkout.
type PlacedOrder struct {
	OrderID     string `json:"orderId"`
	TotalAmount int64  `json:"totalAmount"`
}

// Actor is the caller of a status change.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// OrderLine is an order item joined with the current catalog record. Product
// is nil when the product has been removed since the order was placed.
type OrderLine struct {
	Quantity int             `json:"quantity"`
	Price    int64           `json:"price"`
	Product  *models.Product `json:"product"`
}

// OrderDetail is an order as shown in its owner's history.
type OrderDetail struct {
	ID          string           `json:"id"`
	Status      string           `json:"status"`
	TotalAmount int64            `json:"totalAmount"`
	CreatedAt   time.Time        `json:"createdAt"`
	Items       []OrderLine      `json:"items"`
	Checkout    *models.Checkout `json:"checkout,omitempty"`
}

// Customer is the shipping contact of an order in the admin listing.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Proof   string `json:"proof"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// OrderSummary is one row of the admin order listing.
type OrderSummary struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	TotalAmount int64     `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
	Customer    Customer  `json:"customer"`
	ItemCount   int       `json:"itemCount"`
}

// PlaceOrder turns the user's cart into an order. The proof is uploaded before
// anything is written; the order, its items, its checkout record and the cart
// clear are committed in one transaction. Admins are notified afterwards on a
// best-effort basis.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*PlacedOrder, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, unauthorized("Unauthorized")
		}
		return nil, internal(err, "Failed to place order")
	}

	proofURL, err := s.uploader.Upload(ctx, *in.Proof)
	if err != nil {
		return nil, uploadFailed(err, "proofFile", "Failed to upload permission proof")
	}

	var placed PlacedOrder
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		cart, err := tx.Carts().GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return invalidState("Cart is empty")
			}
			return err
		}
		cartItems, err := tx.Carts().ListItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return invalidState("Cart is empty")
		}
		products, err := tx.Products().GetByIDs(ctx, cartProductIDs(cartItems))
		if err != nil {
			return err
		}

		order := &models.Order{UserID: userID, Status: models.StatusOrdered}
		var items []models.OrderItem
		for _, ci := range cartItems {
			if _, ok := products[ci.ProductID]; !ok {
				continue
			}
			items = append(items, models.OrderItem{
				ProductID: ci.ProductID,
				Quantity:  ci.Quantity,
				Price:     ci.Price,
			})
			order.TotalAmount += ci.Price * int64(ci.Quantity)
		}
		if len(items) == 0 {
			return invalidState("Cart is empty or contains no valid products")
		}

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Orders().CreateItems(ctx, items); err != nil {
			return err
		}
		if err := tx.Orders().CreateCheckout(ctx, &models.Checkout{
			OrderID:         order.ID,
			FullName:        in.FullName,
			Email:           in.Email,
			Company:         in.Company,
			Address:         in.Address,
			City:            in.City,
			State:           in.State,
			Pincode:         in.Pincode,
			PermissionProof: proofURL,
			PaymentMethod:   models.PaymentCOD,
		}); err != nil {
			return err
		}
		if err := tx.Carts().ClearItems(ctx, cart.ID); err != nil {
			return err
		}

		placed = PlacedOrder{OrderID: order.ID, TotalAmount: order.TotalAmount}
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "Failed to place order")
	}

	s.notifyAdmins(ctx, placed.OrderID, func(to []string) (notify.Message, error) {
		return notify.NewOrderEmail(to, placed.OrderID, in.FullName, in.Company, placed.TotalAmount)
	})
	return &placed, nil
}

// SetOrderStatus changes the status of an order. Nothing may follow
// cancellation. Non-admins may only touch their own orders and may only cancel
// them while pending or ordered; anyone else's order reads as not found,
// whatever status was asked for.
func (s *OrderService) SetOrderStatus(ctx context.Context, actor Actor, orderID, status string) (*models.Order, error) {
	if err := checkUserID(actor.UserID); err != nil {
		return nil, err
	}
	if err := requireFields(map[string]string{"id": orderID, "status": status}, "id", "status"); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		if actor.IsAdmin {
			order, err = tx.Orders().GetByID(ctx, orderID)
		} else {
			order, err = tx.Orders().GetByIDForUser(ctx, orderID, actor.UserID)
		}
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return notFound("Order not found")
			}
			return err
		}

		if !models.ValidStatus(status) {
			return &Error{Kind: KindInvalidInput, Message: "Invalid status " + status, Fields: []string{"status"}}
		}
		if order.Status == models.StatusCancelled {
			return invalidState("Order is already cancelled")
		}
		if !actor.IsAdmin && order.Status != models.StatusPending && order.Status != models.StatusOrdered {
			return invalidState("Order can no longer be cancelled")
		}
		if !actor.IsAdmin && status != models.StatusCancelled {
			return invalidState("Orders can only be cancelled")
		}

		if err := tx.Orders().UpdateStatus(ctx, order.ID, status); err != nil {
			return err
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return nil, passThrough(err, "Failed to update order status")
	}

	if status == models.StatusCancelled {
		s.notifyAdmins(ctx, order.ID, func(to []string) (notify.Message, error) {
			return notify.OrderCancelledEmail(to, order.ID, order.TotalAmount)
		})
	}
	s.notifyOwner(ctx, order)
	return order, nil
}

// ListUserOrders returns the user's orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]OrderDetail, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetWithOrders(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, unauthorized("Unauthorized")
		}
		return nil, internal(err, "Failed to fetch orders")
	}
	return s.orderDetails(ctx, user.Orders)
}

func (s *OrderService) orderDetails(ctx context.Context, orders []models.Order) ([]OrderDetail, error) {
	var ids []string
	for _, o := range orders {
		for _, it := range o.Items {
			ids = append(ids, it.ProductID)
		}
	}
	products, err := s.store.Products().GetByIDs(ctx, ids)
	if err != nil {
		return nil, internal(err, "Failed to fetch orders")
	}

	details := make([]OrderDetail, 0, len(orders))
	for _, o := range orders {
		d := OrderDetail{
			ID:          o.ID,
			Status:      o.Status,
			TotalAmount: o.TotalAmount,
			CreatedAt:   o.CreatedAt,
			Checkout:    o.Checkout,
			Items:       make([]OrderLine, 0, len(o.Items)),
		}
		for _, it := range o.Items {
			line := OrderLine{Quantity: it.Quantity, Price: it.Price}
			if p, ok := products[it.ProductID]; ok {
				line.Product = &p
			}
			d.Items = append(d.Items, line)
		}
		details = append(details, d)
	}
	return details, nil
}

// ListAllOrders returns a summary of every order for the admin back office,
// newest first.
func (s *OrderService) ListAllOrders(ctx context.Context) ([]OrderSummary, error) {
	orders, err := s.store.Orders().ListAll(ctx)
	if err != nil {
		return nil, internal(err, "Failed to fetch orders")
	}
	summaries := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		sum := OrderSummary{
			ID:          o.ID,
			Status:      o.Status,
			TotalAmount: o.TotalAmount,
			CreatedAt:   o.CreatedAt,
			ItemCount:   len(o.Items),
		}
		if c := o.Checkout; c != nil {
			sum.Customer = Customer{
				Name:    c.FullName,
				Email:   c.Email,
				Proof:   c.PermissionProof,
				Address: c.Address,
				City:    c.City,
				State:   c.State,
				Pincode: c.Pincode,
			}
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// DeleteOrder removes an order together with its items and checkout record.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	if err := requireFields(map[string]string{"id": orderID}, "id"); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Orders().GetByID(ctx, orderID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return notFound("Order not found")
			}
			return err
		}
		if err := tx.Orders().DeleteCheckout(ctx, orderID); err != nil {
			return err
		}
		if err := tx.Orders().DeleteItems(ctx, orderID); err != nil {
			return err
		}
		return tx.Orders().Delete(ctx, orderID)
	})
	if err != nil {
		return passThrough(err, "Failed to delete order")
	}
	return nil
}

// notifyAdmins mails every admin. Failures are logged and swallowed.
func (s *OrderService) notifyAdmins(ctx context.Context, orderID string, build func(to []string) (notify.Message, error)) {
	admins, err := s.store.Users().ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		log.Printf("Warning: failed to load admins for order %s notification: %v", orderID, err)
		return
	}
	var to []string
	for _, a := range admins {
		if a.Email != "" {
			to = append(to, a.Email)
		}
	}
	if len(to) == 0 {
		return
	}
	msg, err := build(to)
	if err != nil {
		log.Printf("Warning: failed to render admin email for order %s: %v", orderID, err)
		return
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Printf("Warning: failed to notify admins about order %s: %v", orderID, err)
	}
}

// notifyOwner tells the order's owner about its current status. Failures are
// logged and swallowed.
func (s *OrderService) notifyOwner(ctx context.Context, order *models.Order) {
	owner, err := s.store.Users().GetByID(ctx, order.UserID)
	if err != nil {
		log.Printf("Warning: failed to load owner of order %s: %v", order.ID, err)
		return
	}
	msg, err := notify.StatusUpdateEmail(owner.Email, owner.Name, order.ID, order.Status)
	if err != nil {
		log.Printf("Warning: failed to render status email for order %s: %v", order.ID, err)
		return
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Printf("Warning: failed to notify owner of order %s: %v", order.ID, err)
	}
}
