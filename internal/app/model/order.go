package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // active shopping cart
	OrderStatusAssembling OrderStatus = "assembling" // checked out, being prepared
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// ValidOrderStatuses lists every status an admin may set explicitly.
var ValidOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAssembling,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCanceled,
}

// An Order doubles as the shopping cart while its status is pending.
// Shipping fields stay empty until checkout freezes them on the order.
type Order struct {
	ID                 uint            `gorm:"primarykey" json:"id"`
	UserID             uint            `gorm:"not null;index" json:"user_id"`
	Status             OrderStatus     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	TotalPrice         decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"total_price"` // cached, recomputed on item mutation
	OrderNumber        string          `gorm:"type:varchar(30);index" json:"order_number,omitempty"`
	ShippingCity       string          `json:"shipping_city,omitempty"`
	ShippingStreet     string          `json:"shipping_street,omitempty"`
	ShippingHouse      string          `json:"shipping_house,omitempty"`
	ShippingApartment  string          `json:"shipping_apartment,omitempty"`
	ShippingPostalCode string          `json:"shipping_postal_code,omitempty"`
	ShippingComment    string          `gorm:"type:text" json:"shipping_comment,omitempty"`
	CreatedAt          time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`

	User  User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// IsCart reports whether the order is still an active shopping cart.
func (o *Order) IsCart() bool {
	return o.Status == OrderStatusPending
}

// CalculateTotalPrice sums the discounted line prices of the loaded items.
func (o *Order) CalculateTotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LinePrice())
	}
	return total.Round(2)
}

// UpdateStatusByTime applies the elapsed-time transitions: a cart left
// pending beyond pendingCancelAfter is treated as abandoned and canceled,
// and a shipped order untouched beyond shippedDeliverAfter is assumed
// arrived. Returns true when the status changed.
func (o *Order) UpdateStatusByTime(now time.Time, pendingCancelAfter, shippedDeliverAfter time.Duration) bool {
	switch o.Status {
	case OrderStatusPending:
		if now.Sub(o.CreatedAt) > pendingCancelAfter {
			o.Status = OrderStatusCanceled
			return true
		}
	case OrderStatusShipped:
		if now.Sub(o.UpdatedAt) > shippedDeliverAfter {
			o.Status = OrderStatusDelivered
			return true
		}
	}
	return false
}

// ShippingAddress renders the frozen address as a single display line.
func (o *Order) ShippingAddress() string {
	if o.ShippingCity == "" && o.ShippingStreet == "" {
		return ""
	}
	parts := []string{o.ShippingCity, o.ShippingStreet}
	if o.ShippingHouse != "" {
		parts = append(parts, fmt.Sprintf("house %s", o.ShippingHouse))
	}
	if o.ShippingApartment != "" {
		parts = append(parts, fmt.Sprintf("apt. %s", o.ShippingApartment))
	}
	return strings.Join(parts, ", ")
}

type OrderItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// LinePrice is the discounted unit price times quantity. It is always
// computed from the current product, never stored.
func (i *OrderItem) LinePrice() decimal.Decimal {
	return i.Product.DiscountedPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}
