package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputePricingFixedDiscount(t *testing.T) {
	now := time.Now()
	phone := &Phone{ID: 1, Name: "Galaxy A56", Price: decimal.NewFromInt(1_000_000)}
	d := activeDiscount(DiscountTypeFixed, 200_000)

	require.NoError(t, phone.RecomputePricing(d, now))

	assert.True(t, phone.FinalPrice.Equal(decimal.NewFromInt(800_000)), "got %s", phone.FinalPrice)
	assert.True(t, phone.DiscountAmount.Equal(decimal.NewFromInt(200_000)))
	require.NotNil(t, phone.DiscountID)
	assert.Equal(t, d.ID, *phone.DiscountID)
}

func TestRecomputePricingIdempotent(t *testing.T) {
	now := time.Now()
	phone := &Phone{ID: 1, Name: "Galaxy A56", Price: decimal.NewFromInt(1_000_000)}
	d := activeDiscount(DiscountTypeFixed, 200_000)

	require.NoError(t, phone.RecomputePricing(d, now))
	first := phone.FinalPrice

	// Applying again must rederive from Price, never from FinalPrice.
	require.NoError(t, phone.RecomputePricing(d, now))
	assert.True(t, phone.FinalPrice.Equal(first), "re-applying changed final price from %s to %s", first, phone.FinalPrice)
}

func TestRecomputePricingNilResets(t *testing.T) {
	now := time.Now()
	phone := &Phone{ID: 1, Price: decimal.NewFromInt(500_000)}
	require.NoError(t, phone.RecomputePricing(activeDiscount(DiscountTypePercentage, 10), now))
	require.NotNil(t, phone.DiscountID)

	require.NoError(t, phone.RecomputePricing(nil, now))
	assert.Nil(t, phone.DiscountID)
	assert.True(t, phone.DiscountAmount.IsZero())
	assert.True(t, phone.FinalPrice.Equal(phone.Price))
}

func TestRecomputePricingExpiredDiscountFails(t *testing.T) {
	d := activeDiscount(DiscountTypeFixed, 1000)
	phone := &Phone{ID: 1, Price: decimal.NewFromInt(5000), FinalPrice: decimal.NewFromInt(5000)}

	err := phone.RecomputePricing(d, d.EndDate.Add(time.Hour))
	require.Error(t, err)
	// The phone keeps its previous pricing; the caller must not persist.
	assert.True(t, phone.FinalPrice.Equal(decimal.NewFromInt(5000)))
}

func TestEffectivePrice(t *testing.T) {
	now := time.Now()
	phone := &Phone{ID: 1, Price: decimal.NewFromInt(1_000_000)}
	assert.True(t, phone.EffectivePrice().Equal(decimal.NewFromInt(1_000_000)))

	require.NoError(t, phone.RecomputePricing(activeDiscount(DiscountTypeFixed, 300_000), now))
	assert.True(t, phone.EffectivePrice().Equal(decimal.NewFromInt(700_000)))
}

func TestSyncInventoryMirror(t *testing.T) {
	phone := &Phone{ID: 1}
	phone.SyncInventoryMirror(&InventoryItem{Stock: 12, Quantity: 10, Reserved: 3})
	assert.Equal(t, 12, phone.Stock)
	assert.Equal(t, 10, phone.Quantity)
	assert.Equal(t, 3, phone.Reserved)
}
