package models

import "time"

// Cart is the per-user collection of items awaiting checkout.
type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items     []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is one line in a cart. Price is captured when the product is first
// added and never re-read from the catalog.
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID    string    `json:"cart_id" gorm:"uniqueIndex:idx_cart_product;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"uniqueIndex:idx_cart_product;type:varchar(36)"`
	Quantity  int       `json:"quantity"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
