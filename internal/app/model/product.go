package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductCategory string

const (
	CategoryClothing    ProductCategory = "clothing"
	CategoryElectronics ProductCategory = "electronics"
	CategoryAccessories ProductCategory = "accessories"
	CategoryHome        ProductCategory = "home"
)

// Product belongs to the legacy generic-goods store.
type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    ProductCategory `gorm:"type:varchar(50);index" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	ImageURL    string          `json:"image_url"`
	Bestseller  bool            `gorm:"default:false" json:"bestseller"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
