package models

import "time"

// Product represents a chemical in the catalog. CASNumber is the external
// lookup key; InStock and StockLevel are maintained by admins only.
type Product struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name            string    `json:"name" gorm:"index;type:varchar(200)"`
	Formula         string    `json:"formula" gorm:"index;type:varchar(100)"`
	CASNumber       string    `json:"casNumber" gorm:"uniqueIndex;type:varchar(32)"`
	Category        string    `json:"category" gorm:"index;type:varchar(100)"`
	Price           int64     `json:"price"`
	Image           string    `json:"image" gorm:"type:text"`
	Description     string    `json:"description" gorm:"type:text"`
	Purity          string    `json:"purity" gorm:"type:varchar(64)"`
	MolecularWeight float64   `json:"molecularWeight" gorm:"index"`
	Hazards         []string  `json:"hazards" gorm:"type:text;serializer:json"`
	InStock         bool      `json:"inStock"`
	StockLevel      int       `json:"stockLevel"`
	Quantity        string    `json:"quantity" gorm:"type:varchar(64)"` // unit descriptor, e.g. "500 g"
	SellerID        string    `json:"seller,omitempty" gorm:"type:varchar(36)"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Available reports whether the product can be added to a cart.
func (p *Product) Available() bool {
	return p.InStock && p.StockLevel > 0
}
