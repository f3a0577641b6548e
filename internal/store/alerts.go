package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/averin/backoffice/internal/database"
	"github.com/averin/backoffice/internal/models"
)

func CreateStockAlert(ctx context.Context, db *sql.DB, productID, warehouseID int64, threshold int) (*models.StockAlert, error) {
	if threshold < 0 {
		return nil, database.Validationf("threshold must not be negative")
	}
	if _, err := GetProduct(ctx, db, productID); err != nil {
		return nil, err
	}
	if _, err := GetWarehouse(ctx, db, warehouseID); err != nil {
		return nil, err
	}

	alert := &models.StockAlert{}

	query := `
		INSERT INTO stock_alerts (product_id, warehouse_id, threshold, alert_sent)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, product_id, warehouse_id, threshold, alert_sent`

	err := db.QueryRowContext(ctx, query, productID, warehouseID, threshold).Scan(
		&alert.ID,
		&alert.ProductID,
		&alert.WarehouseID,
		&alert.Threshold,
		&alert.AlertSent,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "stock_alerts_product_warehouse_key") {
			return nil, database.Validationf(
				"stock alert already exists for product %d in warehouse %d", productID, warehouseID)
		}
		return nil, fmt.Errorf("create stock alert: %w", err)
	}

	return alert, nil
}

func GetStockAlert(ctx context.Context, db *sql.DB, id int64) (*models.StockAlert, error) {
	alert := &models.StockAlert{}

	err := db.QueryRowContext(ctx,
		`SELECT id, product_id, warehouse_id, threshold, alert_sent
		 FROM stock_alerts
		 WHERE id = $1`, id).Scan(
		&alert.ID,
		&alert.ProductID,
		&alert.WarehouseID,
		&alert.Threshold,
		&alert.AlertSent,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrStockAlertNotFound
		}
		return nil, fmt.Errorf("get stock alert: %w", err)
	}

	return alert, nil
}

func ListStockAlerts(ctx context.Context, db *sql.DB) ([]models.StockAlert, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, product_id, warehouse_id, threshold, alert_sent
		 FROM stock_alerts
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list stock alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.StockAlert
	for rows.Next() {
		var alert models.StockAlert
		err := rows.Scan(
			&alert.ID,
			&alert.ProductID,
			&alert.WarehouseID,
			&alert.Threshold,
			&alert.AlertSent,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stock alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return alerts, nil
}

// ResetStockAlert re-arms a tripped alert. This is the only path that
// clears alert_sent; evaluation never does.
func ResetStockAlert(ctx context.Context, db *sql.DB, id int64) (*models.StockAlert, error) {
	alert := &models.StockAlert{}

	err := db.QueryRowContext(ctx,
		`UPDATE stock_alerts
		 SET alert_sent = FALSE
		 WHERE id = $1
		 RETURNING id, product_id, warehouse_id, threshold, alert_sent`, id).Scan(
		&alert.ID,
		&alert.ProductID,
		&alert.WarehouseID,
		&alert.Threshold,
		&alert.AlertSent,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrStockAlertNotFound
		}
		return nil, fmt.Errorf("reset stock alert: %w", err)
	}

	return alert, nil
}

func DeleteStockAlert(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM stock_alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock alert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrStockAlertNotFound
	}

	return nil
}

// evaluateStockAlertsTx trips every armed alert on the pair whose
// threshold exceeds the current quantity. One-way latch: already-sent
// alerts are untouched, so repeated evaluation below threshold is a
// no-op.
func evaluateStockAlertsTx(ctx context.Context, tx *sql.Tx, productID, warehouseID int64, quantity int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE stock_alerts
		 SET alert_sent = TRUE
		 WHERE product_id = $1 AND warehouse_id = $2
		   AND alert_sent = FALSE
		   AND threshold > $3`,
		productID, warehouseID, quantity)
	if err != nil {
		return fmt.Errorf("evaluate stock alerts: %w", err)
	}
	return nil
}
