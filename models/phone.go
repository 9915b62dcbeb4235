package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
)

type Phone struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Currency    string          `gorm:"type:VARCHAR(10);default:'VND'" json:"currency"`
	Categories  []Category      `gorm:"many2many:phone_categories" json:"categories,omitempty"`

	Price          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	DiscountID     *uint           `json:"discount_id"`
	Discount       *Discount       `gorm:"foreignKey:DiscountID" json:"discount,omitempty"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(20,4)" json:"discount_value"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4)" json:"discount_amount"`
	FinalPrice     decimal.Decimal `gorm:"type:decimal(20,4)" json:"final_price"`

	// Mirror of the phone's entry in its warehouse inventory. Inventory is
	// the source of truth; these are updated together with it.
	Stock             int    `json:"stock"`
	Quantity          int    `json:"quantity"`
	Reserved          int    `json:"reserved"`
	WarehouseLocation string `gorm:"index" json:"warehouse_location"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// RecomputePricing rederives DiscountValue, DiscountAmount and FinalPrice
// from Price and the given discount. It must run before the phone is
// persisted whenever price or discount changed; a phone row must never be
// written with a stale FinalPrice.
//
// A nil discount resets pricing to the base price. An invalid discount is an
// error and the caller must not persist the phone with the dangling
// reference.
func (p *Phone) RecomputePricing(discount *Discount, now time.Time) error {
	if p.Price.IsNegative() {
		return apperrors.Validationf("phone %q price must not be negative", p.Name)
	}

	if discount == nil {
		p.DiscountID = nil
		p.Discount = nil
		p.DiscountValue = decimal.Zero
		p.DiscountAmount = decimal.Zero
		p.FinalPrice = p.Price
		return nil
	}

	amount, err := discount.Evaluate(p.Price, now)
	if err != nil {
		return err
	}

	p.DiscountID = &discount.ID
	p.Discount = discount
	p.DiscountValue = discount.DiscountValue
	p.DiscountAmount = amount
	p.FinalPrice = p.Price.Sub(amount)
	return nil
}

// EffectivePrice is the unit price a cart snapshots for this phone.
func (p *Phone) EffectivePrice() decimal.Decimal {
	if p.FinalPrice.IsPositive() || p.DiscountID != nil {
		return p.FinalPrice
	}
	return p.Price
}

// SyncInventoryMirror copies the authoritative counters from the phone's
// warehouse entry onto the phone row.
func (p *Phone) SyncInventoryMirror(item *InventoryItem) {
	p.Stock = item.Stock
	p.Quantity = item.Quantity
	p.Reserved = item.Reserved
}
