package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/averin/backoffice/internal/database"
	"github.com/averin/backoffice/internal/models"
)

type ShippingRateRequest struct {
	Name          string
	Carrier       string
	Rate          decimal.Decimal
	EstimatedDays int
	IsActive      bool
}

func CreateShippingRate(ctx context.Context, db *sql.DB, req ShippingRateRequest) (*models.ShippingRate, error) {
	if req.Rate.IsNegative() {
		return nil, database.Validationf("rate must not be negative")
	}

	rate := &models.ShippingRate{}

	query := `
		INSERT INTO shipping_rates (name, carrier, rate, estimated_days, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, carrier, rate, estimated_days, is_active`

	err := db.QueryRowContext(ctx, query,
		req.Name, req.Carrier, req.Rate, req.EstimatedDays, req.IsActive).Scan(
		&rate.ID,
		&rate.Name,
		&rate.Carrier,
		&rate.Rate,
		&rate.EstimatedDays,
		&rate.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("create shipping rate: %w", err)
	}

	return rate, nil
}

func GetShippingRate(ctx context.Context, db *sql.DB, id int64) (*models.ShippingRate, error) {
	rate := &models.ShippingRate{}

	err := db.QueryRowContext(ctx,
		`SELECT id, name, carrier, rate, estimated_days, is_active
		 FROM shipping_rates
		 WHERE id = $1`, id).Scan(
		&rate.ID,
		&rate.Name,
		&rate.Carrier,
		&rate.Rate,
		&rate.EstimatedDays,
		&rate.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrShippingRateNotFound
		}
		return nil, fmt.Errorf("get shipping rate: %w", err)
	}

	return rate, nil
}

func UpdateShippingRate(ctx context.Context, db *sql.DB, id int64, req ShippingRateRequest) (*models.ShippingRate, error) {
	if req.Rate.IsNegative() {
		return nil, database.Validationf("rate must not be negative")
	}

	rate := &models.ShippingRate{}

	query := `
		UPDATE shipping_rates
		SET name = $2, carrier = $3, rate = $4, estimated_days = $5, is_active = $6
		WHERE id = $1
		RETURNING id, name, carrier, rate, estimated_days, is_active`

	err := db.QueryRowContext(ctx, query,
		id, req.Name, req.Carrier, req.Rate, req.EstimatedDays, req.IsActive).Scan(
		&rate.ID,
		&rate.Name,
		&rate.Carrier,
		&rate.Rate,
		&rate.EstimatedDays,
		&rate.IsActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrShippingRateNotFound
		}
		return nil, fmt.Errorf("update shipping rate: %w", err)
	}

	return rate, nil
}

func DeleteShippingRate(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM shipping_rates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shipping rate: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrShippingRateNotFound
	}

	return nil
}

func ListShippingRates(ctx context.Context, db *sql.DB, activeOnly bool) ([]models.ShippingRate, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, carrier, rate, estimated_days, is_active
		 FROM shipping_rates
		 WHERE $1 = FALSE OR is_active = TRUE
		 ORDER BY carrier, name`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list shipping rates: %w", err)
	}
	defer rows.Close()

	var rates []models.ShippingRate
	for rows.Next() {
		var rate models.ShippingRate
		err := rows.Scan(
			&rate.ID,
			&rate.Name,
			&rate.Carrier,
			&rate.Rate,
			&rate.EstimatedDays,
			&rate.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("scan shipping rate: %w", err)
		}
		rates = append(rates, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return rates, nil
}
