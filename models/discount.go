package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
)

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage" // amount = basePrice * value / 100
	DiscountTypeFixed      DiscountType = "fixed"      // amount = min(value, basePrice)
)

var oneHundred = decimal.NewFromInt(100)

type Discount struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Code          string          `gorm:"uniqueIndex;not null" json:"code"`
	Description   string          `json:"description"`
	DiscountType  DiscountType    `gorm:"type:VARCHAR(20);not null" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"discount_value"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	UsageLimit    int             `json:"usage_limit"` // 0 = unlimited
	UsedCount     int             `json:"used_count"`
	Phones        []Phone         `gorm:"many2many:discount_phones" json:"phones,omitempty"`
	Categories    []Category      `gorm:"many2many:discount_categories" json:"categories,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Validate checks a discount definition before it is persisted. A percentage
// value over 100 is rejected here, never clamped later.
func (d *Discount) Validate() error {
	if d.Code == "" {
		return apperrors.Validationf("discount code is required")
	}
	switch d.DiscountType {
	case DiscountTypePercentage, DiscountTypeFixed:
	default:
		return apperrors.Validationf("unknown discount type %q", d.DiscountType)
	}
	if d.DiscountValue.IsNegative() {
		return apperrors.Validationf("discount value must not be negative")
	}
	if d.DiscountType == DiscountTypePercentage && d.DiscountValue.GreaterThan(oneHundred) {
		return apperrors.Validationf("percentage discount value must not exceed 100, got %s", d.DiscountValue)
	}
	if !d.EndDate.After(d.StartDate) {
		return apperrors.Validationf("discount end date must be after start date")
	}
	if d.UsageLimit < 0 {
		return apperrors.Validationf("usage limit must not be negative")
	}
	return nil
}

// IsCurrentlyActive reports whether the discount can be applied at the given
// time: active flag set, inside [StartDate, EndDate], usage limit not reached.
func (d *Discount) IsCurrentlyActive(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if now.Before(d.StartDate) || now.After(d.EndDate) {
		return false
	}
	if d.UsageLimit > 0 && d.UsedCount >= d.UsageLimit {
		return false
	}
	return true
}

// Evaluate computes the discount amount for a base price. Pure: no fields are
// mutated and consuming a usage stays with the caller. The amount is always
// within [0, basePrice].
func (d *Discount) Evaluate(basePrice decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if !d.IsCurrentlyActive(now) {
		return decimal.Zero, apperrors.InvalidStatef("discount %q is expired or inactive", d.Code)
	}
	if basePrice.IsNegative() {
		return decimal.Zero, apperrors.Validationf("base price must not be negative")
	}

	var amount decimal.Decimal
	switch d.DiscountType {
	case DiscountTypePercentage:
		amount = basePrice.Mul(d.DiscountValue).Div(oneHundred)
	case DiscountTypeFixed:
		amount = d.DiscountValue
	default:
		return decimal.Zero, apperrors.Validationf("unknown discount type %q", d.DiscountType)
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(basePrice) {
		amount = basePrice
	}
	return amount, nil
}

// AppliesTo reports whether the discount may be used for the given phone.
// Empty applicability lists mean "applies to everything".
func (d *Discount) AppliesTo(phone *Phone) bool {
	if len(d.Phones) == 0 && len(d.Categories) == 0 {
		return true
	}
	for _, p := range d.Phones {
		if p.ID == phone.ID {
			return true
		}
	}
	for _, dc := range d.Categories {
		for _, pc := range phone.Categories {
			if dc.ID == pc.ID {
				return true
			}
		}
	}
	return false
}
