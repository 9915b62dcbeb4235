package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending     OrderStatus = "pending"
	OrderStatusConfirmed   OrderStatus = "confirmed"
	OrderStatusReadyToShip OrderStatus = "ready_to_ship"
	OrderStatusShipped     OrderStatus = "shipped"
	OrderStatusDelivered   OrderStatus = "delivered"
	OrderStatusReturned    OrderStatus = "returned"
	OrderStatusCancelled   OrderStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order freezes the cart's recomputed totals at checkout time. UserID is the
// opaque identity from the bearer token, not a foreign key; orders must be
// creatable before the user has a profile row.
type Order struct {
	ID     uint        `gorm:"primaryKey" json:"id"`
	UserID string      `gorm:"not null;index" json:"user_id"`
	Items  []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	SubTotal       decimal.Decimal `gorm:"type:decimal(20,4)" json:"sub_total"`
	DiscountCode   string          `json:"discount_code"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4)" json:"discount_amount"`
	ShippingFee    decimal.Decimal `gorm:"type:decimal(20,4)" json:"shipping_fee"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4)" json:"total_amount"`
	LoyaltyPoints  int             `json:"loyalty_points"`

	Status        OrderStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	PaymentMethod string        `json:"payment_method"` // e.g. "card", "cod"
	OrderRef      string        `gorm:"uniqueIndex" json:"order_ref"`
	CreatedAt     time.Time     `json:"created_at"`
}

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"index" json:"order_id"`

	PhoneID       uint            `json:"phone_id"`
	PhoneName     string          `json:"phone_name"`
	ImageURL      string          `json:"image_url"`
	Currency      string          `json:"currency"`
	Price         decimal.Decimal `gorm:"type:decimal(20,4)" json:"price"`
	OriginalPrice decimal.Decimal `gorm:"type:decimal(20,4)" json:"original_price"`
	Quantity      int             `json:"quantity"`
	IsGift        bool            `json:"is_gift"`
	CustomOption  string          `json:"custom_option"`
}
