package repositories

import (
	"context"
	"fmt"

	"chemstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create inserts the order row only; associations are written separately.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// CreateItems inserts the given order items.
func (r *GORMOrderRepository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

// CreateCheckout inserts the checkout record of an order.
func (r *GORMOrderRepository) CreateCheckout(ctx context.Context, checkout *models.Checkout) error {
	if checkout.ID == "" {
		checkout.ID = uuid.New().String()
	}
	if checkout.PaymentMethod == "" {
		checkout.PaymentMethod = models.PaymentCOD
	}
	if err := r.db.WithContext(ctx).Create(checkout).Error; err != nil {
		return fmt.Errorf("failed to create checkout for order %s: %w", checkout.OrderID, err)
	}
	return nil
}

func (r *GORMOrderRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items").Preload("Checkout")
}

// GetByID retrieves an order with its items and checkout record.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.withDetails(ctx).First(&order, "id = ?", id).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// GetByIDForUser retrieves an order only if userID owns it.
func (r *GORMOrderRepository) GetByIDForUser(ctx context.Context, id, userID string) (*models.Order, error) {
	var order models.Order
	if err := r.withDetails(ctx).First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// ListAll returns every order with items and checkout, newest first.
func (r *GORMOrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.withDetails(ctx).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets the status of an order.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s for status update: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteCheckout removes the checkout record of orderID, if any.
func (r *GORMOrderRepository) DeleteCheckout(ctx context.Context, orderID string) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.Checkout{}).Error; err != nil {
		return fmt.Errorf("failed to delete checkout of order %s: %w", orderID, err)
	}
	return nil
}

// DeleteItems removes every item of orderID.
func (r *GORMOrderRepository) DeleteItems(ctx context.Context, orderID string) error {
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete items of order %s: %w", orderID, err)
	}
	return nil
}

// Delete removes the order row.
func (r *GORMOrderRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}
