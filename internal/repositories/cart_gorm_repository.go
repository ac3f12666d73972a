package repositories

import (
	"context"
	"fmt"

	"chemstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetByUserID returns the cart owned by userID.
func (r *GORMCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("cart of user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart of user %s: %w", userID, err)
	}
	return &cart, nil
}

// Create inserts an empty cart.
func (r *GORMCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Items").Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// FindItem returns the line for productID in cartID.
func (r *GORMCartRepository) FindItem(ctx context.Context, cartID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("cart item for product %s: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return &item, nil
}

// CreateItem inserts a new cart line.
func (r *GORMCartRepository) CreateItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

// IncrementItem atomically adds by to the quantity of itemID.
func (r *GORMCartRepository) IncrementItem(ctx context.Context, itemID string, by int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", itemID).
		Update("quantity", gorm.Expr("quantity + ?", by))
	if res.Error != nil {
		return fmt.Errorf("failed to increment cart item %s: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

// DeleteItem removes the line for productID from cartID.
func (r *GORMCartRepository) DeleteItem(ctx context.Context, cartID, productID string) error {
	res := r.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item for product %s: %w", productID, ErrNotFound)
	}
	return nil
}

// ListItems returns the lines of cartID in the order they were added.
func (r *GORMCartRepository) ListItems(ctx context.Context, cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

// ClearItems deletes every line of cartID. The cart itself is kept.
func (r *GORMCartRepository) ClearItems(ctx context.Context, cartID string) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", cartID, err)
	}
	return nil
}
