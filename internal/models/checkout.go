package models

import "time"

// PaymentCOD is the only payment method the store accepts.
const PaymentCOD = "COD"

// Checkout holds the shipping and compliance details of exactly one order.
type Checkout struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID         string    `json:"order_id" gorm:"uniqueIndex;type:varchar(36)"`
	FullName        string    `json:"fullName" gorm:"index;type:varchar(200)"`
	Email           string    `json:"email" gorm:"index;type:varchar(255)"`
	Company         string    `json:"company,omitempty" gorm:"type:varchar(255)"`
	Address         string    `json:"address" gorm:"type:text"`
	City            string    `json:"city" gorm:"type:varchar(100)"`
	State           string    `json:"state" gorm:"type:varchar(100)"`
	Pincode         string    `json:"pincode" gorm:"type:varchar(16)"`
	PermissionProof string    `json:"permissionproof" gorm:"type:text"`
	PaymentMethod   string    `json:"paymentMethod" gorm:"type:varchar(16);default:COD"`
	CreatedAt       time.Time `json:"created_at"`
}

// All returns every model managed by the store, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{}, &Product{}, &Cart{}, &CartItem{}, &Order{}, &OrderItem{}, &Checkout{},
	}
}
