package model

import (
	"time"

	"gorm.io/gorm"
)

// WishlistItem is a (user, product) pair; the service layer keeps the
// pair unique among live rows.
type WishlistItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	AddedAt   time.Time      `gorm:"autoCreateTime" json:"added_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Associations (loaded with Preload)
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}
