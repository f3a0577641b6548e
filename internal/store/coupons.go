package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/averin/backoffice/internal/database"
	"github.com/averin/backoffice/internal/models"
)

type CouponRequest struct {
	Code              string
	DiscountType      string
	DiscountValue     decimal.Decimal
	MinimumOrderValue decimal.Decimal
	ValidFrom         time.Time
	ValidUntil        time.Time
	MaxUses           int
	IsActive          bool
}

func validateCouponRequest(req CouponRequest) error {
	if req.Code == "" {
		return database.Validationf("coupon code is required")
	}
	if req.DiscountType != models.DiscountTypePercentage && req.DiscountType != models.DiscountTypeFixed {
		return database.Validationf("invalid discount type %q", req.DiscountType)
	}
	if req.DiscountValue.IsNegative() {
		return database.Validationf("discount value must not be negative")
	}
	if !req.ValidFrom.Before(req.ValidUntil) {
		return database.Validationf("valid_until must be after valid_from")
	}
	return nil
}

func CreateCoupon(ctx context.Context, db *sql.DB, req CouponRequest) (*models.Coupon, error) {
	if err := validateCouponRequest(req); err != nil {
		return nil, err
	}

	coupon := &models.Coupon{}

	query := `
		INSERT INTO coupons
		  (code, discount_type, discount_value, minimum_order_value,
		   valid_from, valid_until, max_uses, times_used, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)
		RETURNING id, code, discount_type, discount_value, minimum_order_value,
		          valid_from, valid_until, max_uses, times_used, is_active`

	err := db.QueryRowContext(ctx, query,
		req.Code, req.DiscountType, req.DiscountValue, req.MinimumOrderValue,
		req.ValidFrom, req.ValidUntil, req.MaxUses, req.IsActive).Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.DiscountType,
		&coupon.DiscountValue,
		&coupon.MinimumOrderValue,
		&coupon.ValidFrom,
		&coupon.ValidUntil,
		&coupon.MaxUses,
		&coupon.TimesUsed,
		&coupon.IsActive,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "coupons_code_key") {
			return nil, database.Validationf("coupon with code %q already exists", req.Code)
		}
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	return coupon, nil
}

// UpdateCoupon replaces the coupon's definition. The usage counter is
// not writable through this path.
func UpdateCoupon(ctx context.Context, db *sql.DB, id int64, req CouponRequest) (*models.Coupon, error) {
	if err := validateCouponRequest(req); err != nil {
		return nil, err
	}

	coupon := &models.Coupon{}

	query := `
		UPDATE coupons
		SET code = $2, discount_type = $3, discount_value = $4, minimum_order_value = $5,
		    valid_from = $6, valid_until = $7, max_uses = $8, is_active = $9
		WHERE id = $1
		RETURNING id, code, discount_type, discount_value, minimum_order_value,
		          valid_from, valid_until, max_uses, times_used, is_active`

	err := db.QueryRowContext(ctx, query,
		id, req.Code, req.DiscountType, req.DiscountValue, req.MinimumOrderValue,
		req.ValidFrom, req.ValidUntil, req.MaxUses, req.IsActive).Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.DiscountType,
		&coupon.DiscountValue,
		&coupon.MinimumOrderValue,
		&coupon.ValidFrom,
		&coupon.ValidUntil,
		&coupon.MaxUses,
		&coupon.TimesUsed,
		&coupon.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCouponNotFound
		}
		if database.IsUniqueViolation(err, "coupons_code_key") {
			return nil, database.Validationf("coupon with code %q already exists", req.Code)
		}
		return nil, fmt.Errorf("update coupon: %w", err)
	}

	return coupon, nil
}

func GetCoupon(ctx context.Context, db *sql.DB, id int64) (*models.Coupon, error) {
	return getCoupon(ctx, db, `WHERE id = $1`, id)
}

func GetCouponByCode(ctx context.Context, db *sql.DB, code string) (*models.Coupon, error) {
	return getCoupon(ctx, db, `WHERE code = $1`, code)
}

func getCoupon(ctx context.Context, db *sql.DB, where string, arg any) (*models.Coupon, error) {
	coupon := &models.Coupon{}

	query := `
		SELECT id, code, discount_type, discount_value, minimum_order_value,
		       valid_from, valid_until, max_uses, times_used, is_active
		FROM coupons ` + where

	err := db.QueryRowContext(ctx, query, arg).Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.DiscountType,
		&coupon.DiscountValue,
		&coupon.MinimumOrderValue,
		&coupon.ValidFrom,
		&coupon.ValidUntil,
		&coupon.MaxUses,
		&coupon.TimesUsed,
		&coupon.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}

	return coupon, nil
}

func ListCoupons(ctx context.Context, db *sql.DB) ([]models.Coupon, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, code, discount_type, discount_value, minimum_order_value,
		        valid_from, valid_until, max_uses, times_used, is_active
		 FROM coupons
		 ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		var coupon models.Coupon
		err := rows.Scan(
			&coupon.ID,
			&coupon.Code,
			&coupon.DiscountType,
			&coupon.DiscountValue,
			&coupon.MinimumOrderValue,
			&coupon.ValidFrom,
			&coupon.ValidUntil,
			&coupon.MaxUses,
			&coupon.TimesUsed,
			&coupon.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return coupons, nil
}

func DeleteCoupon(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrCouponNotFound
	}

	return nil
}

type CouponQuote struct {
	Valid      bool            `json:"valid"`
	Discount   decimal.Decimal `json:"discount"`
	FinalValue decimal.Decimal `json:"final_value"`
}

// ValidateCoupon quotes the discount for an order value without touching
// the usage counter. Redemption is a separate step.
func ValidateCoupon(ctx context.Context, db *sql.DB, code string, orderValue decimal.Decimal) (*CouponQuote, error) {
	coupon, err := GetCouponByCode(ctx, db, code)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !coupon.IsValid(orderValue, now) {
		return &CouponQuote{Valid: false, Discount: decimal.Zero, FinalValue: orderValue}, nil
	}

	discount := coupon.CalculateDiscount(orderValue, now)
	return &CouponQuote{
		Valid:      true,
		Discount:   discount,
		FinalValue: orderValue.Sub(discount),
	}, nil
}

// RedeemCoupon increments times_used, honoring the usage cap under
// concurrent redemption. The guard and the increment are one statement,
// so two racing redemptions cannot both take the last use.
func RedeemCoupon(ctx context.Context, db *sql.DB, code string) (*models.Coupon, error) {
	coupon := &models.Coupon{}

	err := db.QueryRowContext(ctx,
		`UPDATE coupons
		 SET times_used = times_used + 1
		 WHERE code = $1
		   AND is_active = TRUE
		   AND (max_uses = 0 OR times_used < max_uses)
		 RETURNING id, code, discount_type, discount_value, minimum_order_value,
		           valid_from, valid_until, max_uses, times_used, is_active`,
		code).Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.DiscountType,
		&coupon.DiscountValue,
		&coupon.MinimumOrderValue,
		&coupon.ValidFrom,
		&coupon.ValidUntil,
		&coupon.MaxUses,
		&coupon.TimesUsed,
		&coupon.IsActive,
	)
	if err == nil {
		return coupon, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("redeem coupon: %w", err)
	}

	// Distinguish a missing coupon from one that is inactive or spent.
	if _, getErr := GetCouponByCode(ctx, db, code); getErr != nil {
		return nil, getErr
	}
	return nil, database.InvalidStatef("coupon %q cannot be redeemed: inactive or usage cap reached", code)
}
