package models

import "time"

// Order statuses.
const (
	StatusPending   = "pending"
	StatusOrdered   = "ordered"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusOrdered, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is the frozen snapshot of a purchased cart line.
type OrderItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string    `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"index;type:varchar(36)"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"` // Price at the time of order
	CreatedAt time.Time `json:"created_at"`
}

// Order represents a placed customer order.
type Order struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string      `json:"user_id" gorm:"index;type:varchar(36)"`
	Items       []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount int64       `json:"total_amount"`
	Status      string      `json:"status" gorm:"type:varchar(16);index"`
	Checkout    *Checkout   `json:"checkout,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
