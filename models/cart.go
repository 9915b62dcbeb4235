package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
)

const (
	DeliveryOptionStandard = "standard"
	DeliveryOptionExpress  = "express"

	// Loyalty points earned per unit of cart total.
	loyaltyPointsRate = 2
)

// FlatShippingFee applies whenever free standard shipping does not.
var FlatShippingFee = decimal.NewFromInt(30000)

type Cart struct {
	CartID uint       `gorm:"primaryKey" json:"cart_id"`
	UserID string     `gorm:"uniqueIndex" json:"user_id"` // one cart per user
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`

	SubTotal       decimal.Decimal `gorm:"type:decimal(20,4)" json:"sub_total"`
	TotalCartPrice decimal.Decimal `gorm:"type:decimal(20,4)" json:"total_cart_price"`
	DiscountID     *uint           `json:"discount_id"`
	Discount       *Discount       `gorm:"foreignKey:DiscountID" json:"discount,omitempty"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4)" json:"discount_amount"`
	ShippingFee    decimal.Decimal `gorm:"type:decimal(20,4)" json:"shipping_fee"`
	LoyaltyPoints  int             `json:"loyalty_points"`

	DeliveryOption  string  `gorm:"type:VARCHAR(20);default:'standard'" json:"delivery_option"`
	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CartItem struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	CartID uint `gorm:"index" json:"cart_id"`

	PhoneID   uint   `json:"phone_id"`
	PhoneName string `json:"phone_name"`
	ImageURL  string `json:"image_url"`
	Currency  string `json:"currency"`

	// Price is the unit price charged (the phone's final price at the last
	// recompute); OriginalPrice is the undiscounted unit price. Both are
	// snapshots refreshed from the phone on every recompute.
	Price         decimal.Decimal `gorm:"type:decimal(20,4)" json:"price"`
	OriginalPrice decimal.Decimal `gorm:"type:decimal(20,4)" json:"original_price"`

	Quantity     int    `json:"quantity"`
	IsGift       bool   `json:"is_gift"`
	CustomOption string `json:"custom_option"`

	AddedAt time.Time `json:"added_at"`
}

// CartItemAttrs are the optional per-item fields a client may set.
type CartItemAttrs struct {
	IsGift       *bool   `json:"is_gift"`
	CustomOption *string `json:"custom_option"`
}

// PhoneLookup resolves a phone by id. Controllers pass a DB-backed lookup;
// tests pass a map.
type PhoneLookup func(phoneID uint) (*Phone, error)

// Recompute rederives every derived field of the cart and must run before
// each persist. The server-side phone pricing overwrites whatever prices the
// client sent; carts never own pricing truth.
//
// An expired or inactive attached coupon is cleared instead of failing the
// recompute. A missing phone or an invalid quantity aborts it: a cart must
// never be persisted with bad totals.
func (cart *Cart) Recompute(lookup PhoneLookup, now time.Time) error {
	subTotal := decimal.Zero
	total := decimal.Zero

	for i := range cart.Items {
		item := &cart.Items[i]
		if item.Quantity < 1 {
			return apperrors.Validationf("cart item for phone %d has quantity %d", item.PhoneID, item.Quantity)
		}
		phone, err := lookup(item.PhoneID)
		if err != nil {
			return err
		}
		if phone.Price.IsNegative() {
			return apperrors.Validationf("phone %d has negative price", phone.ID)
		}

		item.Price = phone.EffectivePrice()
		item.OriginalPrice = phone.Price
		item.PhoneName = phone.Name
		item.ImageURL = phone.ImageURL
		item.Currency = phone.Currency

		qty := decimal.NewFromInt(int64(item.Quantity))
		subTotal = subTotal.Add(item.OriginalPrice.Mul(qty))
		total = total.Add(item.Price.Mul(qty))
	}

	cart.SubTotal = subTotal
	cart.TotalCartPrice = total
	cart.DiscountAmount = decimal.Zero

	if cart.Discount != nil {
		base := total
		if cart.Discount.DiscountType == DiscountTypePercentage {
			base = subTotal
		}
		amount, err := cart.Discount.Evaluate(base, now)
		if err != nil {
			// A cart must stay savable when its coupon expires.
			cart.Discount = nil
			cart.DiscountID = nil
		} else {
			if amount.GreaterThan(total) {
				amount = total
			}
			cart.DiscountAmount = amount
			total = total.Sub(amount)
			if total.IsNegative() {
				total = decimal.Zero
			}
			cart.TotalCartPrice = total
		}
	}

	if len(cart.Items) == 0 {
		cart.ShippingFee = decimal.Zero
	} else if cart.ShippingAddress.Street != "" && cart.DeliveryOption == DeliveryOptionStandard {
		cart.ShippingFee = decimal.Zero
	} else {
		cart.ShippingFee = FlatShippingFee
	}

	cart.LoyaltyPoints = int(cart.TotalCartPrice.Mul(decimal.NewFromInt(loyaltyPointsRate)).IntPart())
	return nil
}

// AddOrMergeItem accumulates quantity when the phone is already in the cart;
// existing attrs are kept. A new item snapshots the phone's current pricing.
func (cart *Cart) AddOrMergeItem(phone *Phone, qty int, attrs CartItemAttrs) error {
	if qty < 1 {
		return apperrors.Validationf("quantity must be at least 1, got %d", qty)
	}
	for i := range cart.Items {
		if cart.Items[i].PhoneID == phone.ID {
			cart.Items[i].Quantity += qty
			return nil
		}
	}
	item := CartItem{
		CartID:        cart.CartID,
		PhoneID:       phone.ID,
		PhoneName:     phone.Name,
		ImageURL:      phone.ImageURL,
		Currency:      phone.Currency,
		Price:         phone.EffectivePrice(),
		OriginalPrice: phone.Price,
		Quantity:      qty,
		AddedAt:       time.Now(),
	}
	if attrs.IsGift != nil {
		item.IsGift = *attrs.IsGift
	}
	if attrs.CustomOption != nil {
		item.CustomOption = *attrs.CustomOption
	}
	cart.Items = append(cart.Items, item)
	return nil
}

// UpdateItem sets a new quantity; zero or below removes the item. Returns
// the removed item's row id (0 when nothing was removed) so the caller can
// delete the row.
func (cart *Cart) UpdateItem(phoneID uint, newQty int, attrs CartItemAttrs) (removedID uint, err error) {
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.PhoneID != phoneID {
			continue
		}
		if newQty <= 0 {
			removedID = item.ID
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return removedID, nil
		}
		item.Quantity = newQty
		if attrs.IsGift != nil {
			item.IsGift = *attrs.IsGift
		}
		if attrs.CustomOption != nil {
			item.CustomOption = *attrs.CustomOption
		}
		return 0, nil
	}
	return 0, apperrors.NotFoundf("phone %d is not in the cart", phoneID)
}

// RemoveItem deletes an item and returns its row id.
func (cart *Cart) RemoveItem(phoneID uint) (uint, error) {
	return cart.UpdateItem(phoneID, 0, CartItemAttrs{})
}

// Clear empties the cart and zeroes every derived field.
func (cart *Cart) Clear() {
	cart.Items = nil
	cart.SubTotal = decimal.Zero
	cart.TotalCartPrice = decimal.Zero
	cart.Discount = nil
	cart.DiscountID = nil
	cart.DiscountAmount = decimal.Zero
	cart.ShippingFee = decimal.Zero
	cart.LoyaltyPoints = 0
}
