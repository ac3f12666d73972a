package repositories

import (
	"context"

	"chemstore/internal/models"
)

// CartRepository defines the interface for cart and cart item data access.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	FindItem(ctx context.Context, cartID, productID string) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	IncrementItem(ctx context.Context, itemID string, by int) error
	DeleteItem(ctx context.Context, cartID, productID string) error
	ListItems(ctx context.Context, cartID string) ([]models.CartItem, error)
	ClearItems(ctx context.Context, cartID string) error
}
