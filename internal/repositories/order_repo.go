package repositories

import (
	"context"

	"chemstore/internal/models"
)

// OrderRepository defines the interface for order data access. Orders, their
// items and their checkout record are written separately so callers can
// compose them inside Store.WithTx.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	CreateCheckout(ctx context.Context, checkout *models.Checkout) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	DeleteCheckout(ctx context.Context, orderID string) error
	DeleteItems(ctx context.Context, orderID string) error
	Delete(ctx context.Context, id string) error
}
