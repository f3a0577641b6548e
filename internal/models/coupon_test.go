package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func activeCoupon() Coupon {
	now := time.Now()
	return Coupon{
		Code:              "SAVE10",
		DiscountType:      DiscountTypePercentage,
		DiscountValue:     decimal.NewFromInt(10),
		MinimumOrderValue: decimal.NewFromInt(50),
		ValidFrom:         now.Add(-time.Hour),
		ValidUntil:        now.Add(time.Hour),
		MaxUses:           0,
		TimesUsed:         0,
		IsActive:          true,
	}
}

func TestCouponIsValid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		mutate     func(*Coupon)
		orderValue decimal.Decimal
		want       bool
	}{
		{
			name:       "valid",
			mutate:     func(c *Coupon) {},
			orderValue: decimal.NewFromInt(100),
			want:       true,
		},
		{
			name:       "inactive",
			mutate:     func(c *Coupon) { c.IsActive = false },
			orderValue: decimal.NewFromInt(100),
			want:       false,
		},
		{
			name:       "not yet valid",
			mutate:     func(c *Coupon) { c.ValidFrom = now.Add(time.Hour) },
			orderValue: decimal.NewFromInt(100),
			want:       false,
		},
		{
			name:       "expired",
			mutate:     func(c *Coupon) { c.ValidUntil = now.Add(-time.Minute) },
			orderValue: decimal.NewFromInt(100),
			want:       false,
		},
		{
			name: "usage cap reached",
			mutate: func(c *Coupon) {
				c.MaxUses = 3
				c.TimesUsed = 3
			},
			orderValue: decimal.NewFromInt(100),
			want:       false,
		},
		{
			name: "under usage cap",
			mutate: func(c *Coupon) {
				c.MaxUses = 3
				c.TimesUsed = 2
			},
			orderValue: decimal.NewFromInt(100),
			want:       true,
		},
		{
			name:       "zero cap means unlimited",
			mutate:     func(c *Coupon) { c.TimesUsed = 10000 },
			orderValue: decimal.NewFromInt(100),
			want:       true,
		},
		{
			name:       "below minimum order value",
			mutate:     func(c *Coupon) {},
			orderValue: decimal.NewFromInt(40),
			want:       false,
		},
		{
			name:       "exactly minimum order value",
			mutate:     func(c *Coupon) {},
			orderValue: decimal.NewFromInt(50),
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := activeCoupon()
			tt.mutate(&coupon)
			assert.Equal(t, tt.want, coupon.IsValid(tt.orderValue, now))
		})
	}
}

func TestCouponCalculateDiscountPercentage(t *testing.T) {
	now := time.Now()
	coupon := activeCoupon()

	discount := coupon.CalculateDiscount(decimal.NewFromInt(100), now)
	assert.True(t, discount.Equal(decimal.NewFromInt(10)), "got %s", discount)

	// Below minimum order value the coupon is invalid and discounts nothing.
	discount = coupon.CalculateDiscount(decimal.NewFromInt(40), now)
	assert.True(t, discount.IsZero(), "got %s", discount)
}

func TestCouponCalculateDiscountFixed(t *testing.T) {
	now := time.Now()
	coupon := activeCoupon()
	coupon.DiscountType = DiscountTypeFixed
	coupon.DiscountValue = decimal.NewFromInt(30)
	coupon.MinimumOrderValue = decimal.Zero

	discount := coupon.CalculateDiscount(decimal.NewFromInt(100), now)
	assert.True(t, discount.Equal(decimal.NewFromInt(30)), "got %s", discount)

	// Fixed discounts are capped at the order value.
	discount = coupon.CalculateDiscount(decimal.NewFromInt(20), now)
	assert.True(t, discount.Equal(decimal.NewFromInt(20)), "got %s", discount)
}

func TestCouponCalculateDiscountInvalid(t *testing.T) {
	now := time.Now()
	coupon := activeCoupon()
	coupon.IsActive = false

	discount := coupon.CalculateDiscount(decimal.NewFromInt(100), now)
	assert.True(t, discount.IsZero())
}
