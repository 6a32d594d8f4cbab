package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID               uint              `gorm:"primarykey" json:"id"`
	SKU              string            `gorm:"column:sku;uniqueIndex;not null" json:"sku"`
	Name             string            `gorm:"not null" json:"name"`
	Description      string            `gorm:"type:text" json:"description"`
	Price            decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"price"`
	Discount         int               `gorm:"default:0" json:"discount"` // percent, 0-100
	Stock            int               `gorm:"not null;default:0" json:"stock"`
	IsAvailable      bool              `gorm:"default:true" json:"is_available"` // stored separately from stock, reconciled by the availability sweep
	CategoryID       uint              `gorm:"not null;index" json:"category_id"`
	ImageURL         string            `json:"image_url"`
	DocumentationURL string            `json:"documentation_url"`
	Specifications   map[string]string `gorm:"serializer:json" json:"specifications"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	DeletedAt        gorm.DeletedAt    `gorm:"index" json:"-"`

	// Relationships
	Category   Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
	Reviews    []Review    `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

var oneHundred = decimal.NewFromInt(100)

// DiscountedPrice returns the effective unit price after the percent
// discount, rounded to 2 decimal places. A zero discount returns the
// list price unchanged.
func (p *Product) DiscountedPrice() decimal.Decimal {
	if p.Discount <= 0 {
		return p.Price
	}
	reduction := p.Price.Mul(decimal.NewFromInt(int64(p.Discount))).Div(oneHundred)
	return p.Price.Sub(reduction).Round(2)
}

// InStock reports whether the requested quantity can be fulfilled.
func (p *Product) InStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}
