package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

type Coupon struct {
	ID                int64           `json:"id"`
	Code              string          `json:"code"`
	DiscountType      string          `json:"discount_type"`
	DiscountValue     decimal.Decimal `json:"discount_value"`
	MinimumOrderValue decimal.Decimal `json:"minimum_order_value"`
	ValidFrom         time.Time       `json:"valid_from"`
	ValidUntil        time.Time       `json:"valid_until"`
	MaxUses           int             `json:"max_uses"`
	TimesUsed         int             `json:"times_used"`
	IsActive          bool            `json:"is_active"`
}

// IsValid reports whether the coupon can be applied to an order of the
// given value at the given instant. A MaxUses of 0 means unlimited.
func (c Coupon) IsValid(orderValue decimal.Decimal, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return false
	}
	if c.MaxUses > 0 && c.TimesUsed >= c.MaxUses {
		return false
	}
	if orderValue.LessThan(c.MinimumOrderValue) {
		return false
	}
	return true
}

// CalculateDiscount returns the discount amount for the given order value,
// or zero when the coupon is not valid. Fixed discounts never exceed the
// order value. Pure; incrementing TimesUsed is the caller's concern.
func (c Coupon) CalculateDiscount(orderValue decimal.Decimal, now time.Time) decimal.Decimal {
	if !c.IsValid(orderValue, now) {
		return decimal.Zero
	}

	if c.DiscountType == DiscountTypePercentage {
		return orderValue.Mul(c.DiscountValue.Div(decimal.NewFromInt(100)))
	}

	if c.DiscountValue.GreaterThan(orderValue) {
		return orderValue
	}
	return c.DiscountValue
}
