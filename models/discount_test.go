package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minh-nguyen1624/phone-commerce-api/apperrors"
)

func activeDiscount(dt DiscountType, value int64) *Discount {
	now := time.Now()
	return &Discount{
		ID:            1,
		Code:          "SUMMER",
		DiscountType:  dt,
		DiscountValue: decimal.NewFromInt(value),
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
		IsActive:      true,
	}
}

func TestDiscountValidateRejectsPercentageOver100(t *testing.T) {
	d := activeDiscount(DiscountTypePercentage, 150)
	err := d.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestDiscountValidate(t *testing.T) {
	t.Run("valid percentage", func(t *testing.T) {
		assert.NoError(t, activeDiscount(DiscountTypePercentage, 100).Validate())
	})
	t.Run("missing code", func(t *testing.T) {
		d := activeDiscount(DiscountTypeFixed, 1000)
		d.Code = ""
		assert.True(t, apperrors.IsValidation(d.Validate()))
	})
	t.Run("unknown type", func(t *testing.T) {
		d := activeDiscount("bogo", 10)
		assert.True(t, apperrors.IsValidation(d.Validate()))
	})
	t.Run("negative value", func(t *testing.T) {
		d := activeDiscount(DiscountTypeFixed, 1000)
		d.DiscountValue = decimal.NewFromInt(-1)
		assert.True(t, apperrors.IsValidation(d.Validate()))
	})
	t.Run("end before start", func(t *testing.T) {
		d := activeDiscount(DiscountTypeFixed, 1000)
		d.EndDate = d.StartDate.Add(-time.Minute)
		assert.True(t, apperrors.IsValidation(d.Validate()))
	})
}

func TestDiscountIsCurrentlyActive(t *testing.T) {
	now := time.Now()
	d := activeDiscount(DiscountTypePercentage, 10)

	assert.True(t, d.IsCurrentlyActive(now))

	t.Run("inactive flag", func(t *testing.T) {
		d := activeDiscount(DiscountTypePercentage, 10)
		d.IsActive = false
		assert.False(t, d.IsCurrentlyActive(now))
	})
	t.Run("before window", func(t *testing.T) {
		assert.False(t, d.IsCurrentlyActive(d.StartDate.Add(-time.Minute)))
	})
	t.Run("after window", func(t *testing.T) {
		assert.False(t, d.IsCurrentlyActive(d.EndDate.Add(time.Minute)))
	})
	t.Run("usage limit reached", func(t *testing.T) {
		d := activeDiscount(DiscountTypePercentage, 10)
		d.UsageLimit = 3
		d.UsedCount = 3
		assert.False(t, d.IsCurrentlyActive(now))
	})
	t.Run("zero limit means unlimited", func(t *testing.T) {
		d := activeDiscount(DiscountTypePercentage, 10)
		d.UsageLimit = 0
		d.UsedCount = 9999
		assert.True(t, d.IsCurrentlyActive(now))
	})
}

func TestDiscountEvaluatePercentage(t *testing.T) {
	now := time.Now()
	d := activeDiscount(DiscountTypePercentage, 20)

	amount, err := d.Evaluate(decimal.NewFromInt(1_000_000), now)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(200_000)), "got %s", amount)
}

func TestDiscountEvaluateFixedClampsToBase(t *testing.T) {
	now := time.Now()
	d := activeDiscount(DiscountTypeFixed, 500_000)

	amount, err := d.Evaluate(decimal.NewFromInt(300_000), now)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(300_000)), "fixed discount must not exceed the base price, got %s", amount)
}

func TestDiscountEvaluateExpired(t *testing.T) {
	d := activeDiscount(DiscountTypeFixed, 1000)
	_, err := d.Evaluate(decimal.NewFromInt(5000), d.EndDate.Add(time.Hour))
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestDiscountEvaluateIsPure(t *testing.T) {
	now := time.Now()
	d := activeDiscount(DiscountTypePercentage, 10)
	d.UsageLimit = 5

	before := *d
	_, err := d.Evaluate(decimal.NewFromInt(100), now)
	require.NoError(t, err)
	assert.Equal(t, before.UsedCount, d.UsedCount, "evaluation must not consume a usage")
}

func TestDiscountAppliesTo(t *testing.T) {
	phone := &Phone{ID: 7, Categories: []Category{{ID: 3}}}

	t.Run("empty lists apply to everything", func(t *testing.T) {
		d := activeDiscount(DiscountTypeFixed, 10)
		assert.True(t, d.AppliesTo(phone))
	})
	t.Run("phone list", func(t *testing.T) {
		d := activeDiscount(DiscountTypeFixed, 10)
		d.Phones = []Phone{{ID: 8}}
		assert.False(t, d.AppliesTo(phone))
		d.Phones = append(d.Phones, Phone{ID: 7})
		assert.True(t, d.AppliesTo(phone))
	})
	t.Run("category list", func(t *testing.T) {
		d := activeDiscount(DiscountTypeFixed, 10)
		d.Categories = []Category{{ID: 3}}
		assert.True(t, d.AppliesTo(phone))
		d.Categories = []Category{{ID: 4}}
		assert.False(t, d.AppliesTo(phone))
	})
}
