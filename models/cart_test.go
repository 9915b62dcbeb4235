package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
)

func mapLookup(phones ...*Phone) PhoneLookup {
	byID := make(map[uint]*Phone, len(phones))
	for _, p := range phones {
		byID[p.ID] = p
	}
	return func(id uint) (*Phone, error) {
		p, ok := byID[id]
		if !ok {
			return nil, apperrors.NotFoundf("phone %d", id)
		}
		return p, nil
	}
}

func discountedPhone(t *testing.T, id uint, price, off int64) *Phone {
	t.Helper()
	p := &Phone{ID: id, Name: "phone", Price: decimal.NewFromInt(price)}
	require.NoError(t, p.RecomputePricing(activeDiscount(DiscountTypeFixed, off), time.Now()))
	return p
}

func plainPhone(id uint, price int64) *Phone {
	p := &Phone{ID: id, Name: "phone", Price: decimal.NewFromInt(price)}
	p.FinalPrice = p.Price
	return p
}

func TestAddOrMergeItem(t *testing.T) {
	cart := &Cart{}
	phone := plainPhone(1, 100_000)

	require.NoError(t, cart.AddOrMergeItem(phone, 2, CartItemAttrs{}))
	require.NoError(t, cart.AddOrMergeItem(phone, 3, CartItemAttrs{}))

	require.Len(t, cart.Items, 1, "same phone must merge, not duplicate")
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddOrMergeItemRejectsZeroQuantity(t *testing.T) {
	cart := &Cart{}
	err := cart.AddOrMergeItem(plainPhone(1, 100), 0, CartItemAttrs{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRecomputeTotals(t *testing.T) {
	now := time.Now()
	p1 := discountedPhone(t, 1, 1_000_000, 100_000) // final 900,000
	p2 := plainPhone(2, 300_000)

	cart := &Cart{}
	require.NoError(t, cart.AddOrMergeItem(p1, 1, CartItemAttrs{}))
	require.NoError(t, cart.AddOrMergeItem(p2, 1, CartItemAttrs{}))
	require.NoError(t, cart.Recompute(mapLookup(p1, p2), now))

	assert.True(t, cart.SubTotal.Equal(decimal.NewFromInt(1_300_000)), "got %s", cart.SubTotal)
	assert.True(t, cart.TotalCartPrice.Equal(decimal.NewFromInt(1_200_000)), "got %s", cart.TotalCartPrice)
}

func TestRecomputeIdempotent(t *testing.T) {
	now := time.Now()
	p1 := discountedPhone(t, 1, 1_000_000, 100_000)
	cart := &Cart{}
	require.NoError(t, cart.AddOrMergeItem(p1, 2, CartItemAttrs{}))

	require.NoError(t, cart.Recompute(mapLookup(p1), now))
	first := cart.TotalCartPrice
	require.NoError(t, cart.Recompute(mapLookup(p1), now))
	assert.True(t, cart.TotalCartPrice.Equal(first))
}

func TestRecomputeOverwritesClientPrices(t *testing.T) {
	now := time.Now()
	p1 := plainPhone(1, 500_000)
	cart := &Cart{}
	require.NoError(t, cart.AddOrMergeItem(p1, 1, CartItemAttrs{}))

	// Tampered snapshot must be replaced by the server-side price.
	cart.Items[0].Price = decimal.NewFromInt(1)
	require.NoError(t, cart.Recompute(mapLookup(p1), now))
	assert.True(t, cart.Items[0].Price.Equal(decimal.NewFromInt(500_000)))
	assert.True(t, cart.TotalCartPrice.Equal(decimal.NewFromInt(500_000)))
}

func TestRecomputeCouponPercentageUsesSubTotal(t *testing.T) {
	now := time.Now()
	p1 := discountedPhone(t, 1, 1_000_000, 100_000) // final 900,000
	cart := &Cart{}
	require.NoError(t, cart.AddOrMergeItem(p1, 1, CartItemAttrs{}))

	coupon := activeDiscount(DiscountTypePercentage, 10)
	cart.Discount = coupon
	cart.DiscountID = &coupon.ID

	require.NoError(t, cart.Recompute(mapLookup(p1), now))

	// 10% of the 1,000,000 subtotal, applied to the 900,000 total.
	assert.True(t, cart.DiscountAmount.Equal(decimal.NewFromInt(100_000)), "got %s", cart.DiscountAmount)
	assert.True(t, cart.TotalCartPrice.Equal(decimal.NewFromInt(800_000)), "got %s", cart.TotalCartPrice)
}

func TestRecomputeCouponClampedToTotal(t *testing.T) {
	now := time.Now()
	p1 := plainPhone(1, 50_000)
	cart := &Cart{}
	require.NoError(t, cart.AddOrMergeItem(p1, 1, CartItemAttrs{}))

	coupon := activeDiscount(DiscountTypeFixed, 80_000)
	cart.Discount = coupon
	cart.DiscountID = &coupon.ID

	require.NoError(t, cart.Recompute(mapLookup(p1), now))
	assert.True(t, cart.TotalCartPrice.IsZero(), "total must never go negative, got %s", cart.TotalCartPrice)
	assert.True(t, cart.DiscountAmount.Equal(decimal.NewFromInt(50_000)))
}

func TestRecomputeExpiredCouponCleared(t *testing.T) {
	p1 := plainPhone(1, 100_000)
	cart := &Cart{}
	require.NoError(t, cart.AddOrMergeItem(p1, 1, CartItemAttrs{}))

	coupon := activeDiscount(DiscountTypeFixed, 10_000)
	cart.Discount = coupon
	cart.DiscountID = &coupon.ID

	require.NoError(t, cart.Recompute(mapLookup(p1), coupon.EndDate.Add(time.Hour)))

	assert.Nil(t, cart.Discount, "expired coupon must be cleared, not fail the save")
	assert.Nil(t, cart.DiscountID)
	assert.True(t, cart.DiscountAmount.IsZero())
	assert.True(t, cart.TotalCartPrice.Equal(decimal.NewFromInt(100_000)))
}

func TestRecomputeMissingPhoneAborts(t *testing.T) {
	p1 := plainPhone(1, 100_000)
	cart := &Cart{}
	require.NoError(t, cart.AddOrMergeItem(p1, 1, CartItemAttrs{}))

	err := cart.Recompute(mapLookup( /* no phones */ ), time.Now())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRecomputeShippingFee(t *testing.T) {
	now := time.Now()
	p1 := plainPhone(1, 100_000)

	t.Run("no address pays flat fee", func(t *testing.T) {
		cart := &Cart{DeliveryOption: DeliveryOptionStandard}
		require.NoError(t, cart.AddOrMergeItem(p1, 1, CartItemAttrs{}))
		require.NoError(t, cart.Recompute(mapLookup(p1), now))
		assert.True(t, cart.ShippingFee.Equal(FlatShippingFee))
	})
	t.Run("standard with address is free", func(t *testing.T) {
		cart := &Cart{DeliveryOption: DeliveryOptionStandard}
		cart.ShippingAddress.Street = "12 Hang Bai"
		require.NoError(t, cart.AddOrMergeItem(p1, 1, CartItemAttrs{}))
		require.NoError(t, cart.Recompute(mapLookup(p1), now))
		assert.True(t, cart.ShippingFee.IsZero())
	})
	t.Run("express always pays", func(t *testing.T) {
		cart := &Cart{DeliveryOption: DeliveryOptionExpress}
		cart.ShippingAddress.Street = "12 Hang Bai"
		require.NoError(t, cart.AddOrMergeItem(p1, 1, CartItemAttrs{}))
		require.NoError(t, cart.Recompute(mapLookup(p1), now))
		assert.True(t, cart.ShippingFee.Equal(FlatShippingFee))
	})
	t.Run("empty cart ships nothing", func(t *testing.T) {
		cart := &Cart{DeliveryOption: DeliveryOptionExpress}
		require.NoError(t, cart.Recompute(mapLookup(), now))
		assert.True(t, cart.ShippingFee.IsZero())
	})
}

func TestRecomputeLoyaltyPoints(t *testing.T) {
	now := time.Now()
	p1 := plainPhone(1, 250)
	cart := &Cart{}
	require.NoError(t, cart.AddOrMergeItem(p1, 2, CartItemAttrs{}))
	require.NoError(t, cart.Recompute(mapLookup(p1), now))
	assert.Equal(t, 1000, cart.LoyaltyPoints)
}

func TestUpdateItem(t *testing.T) {
	cart := &Cart{}
	require.NoError(t, cart.AddOrMergeItem(plainPhone(1, 100), 2, CartItemAttrs{}))
	cart.Items[0].ID = 42

	t.Run("set quantity", func(t *testing.T) {
		removed, err := cart.UpdateItem(1, 5, CartItemAttrs{})
		require.NoError(t, err)
		assert.Zero(t, removed)
		assert.Equal(t, 5, cart.Items[0].Quantity)
	})
	t.Run("zero removes", func(t *testing.T) {
		removed, err := cart.UpdateItem(1, 0, CartItemAttrs{})
		require.NoError(t, err)
		assert.Equal(t, uint(42), removed)
		assert.Empty(t, cart.Items)
	})
	t.Run("unknown phone", func(t *testing.T) {
		_, err := cart.UpdateItem(99, 1, CartItemAttrs{})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestClear(t *testing.T) {
	now := time.Now()
	p1 := plainPhone(1, 100_000)
	cart := &Cart{}
	require.NoError(t, cart.AddOrMergeItem(p1, 1, CartItemAttrs{}))
	require.NoError(t, cart.Recompute(mapLookup(p1), now))
	require.False(t, cart.TotalCartPrice.IsZero())

	cart.Clear()

	assert.Empty(t, cart.Items)
	assert.True(t, cart.SubTotal.IsZero())
	assert.True(t, cart.TotalCartPrice.IsZero())
	assert.Nil(t, cart.DiscountID)
	assert.True(t, cart.ShippingFee.IsZero())
	assert.Zero(t, cart.LoyaltyPoints)
}
