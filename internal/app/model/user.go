package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser  UserRole = "user"  // regular customer
	RoleAdmin UserRole = "admin" // staff with full access
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	ProfileImage string         `json:"profile_image"`
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"`
	IsActive     bool           `gorm:"default:true" json:"is_active"` // flipped off by the inactivity sweep
	LastLoginAt  *time.Time     `gorm:"index" json:"last_login_at"`    // stamped on every login
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Orders   []Order        `gorm:"foreignKey:UserID" json:"-"`
	Reviews  []Review       `gorm:"foreignKey:UserID" json:"-"`
	Wishlist []WishlistItem `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
