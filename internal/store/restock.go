package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/averin/backoffice/internal/database"
	"github.com/averin/backoffice/internal/models"
)

func CreateRestockOrder(ctx context.Context, db *sql.DB, productID, warehouseID int64, quantity int) (*models.RestockOrder, error) {
	if quantity <= 0 {
		return nil, database.Validationf("restock quantity must be positive")
	}
	if _, err := GetProduct(ctx, db, productID); err != nil {
		return nil, err
	}
	if _, err := GetWarehouse(ctx, db, warehouseID); err != nil {
		return nil, err
	}

	order := &models.RestockOrder{}

	query := `
		INSERT INTO restock_orders (product_id, warehouse_id, quantity, order_date, completed)
		VALUES ($1, $2, $3, NOW(), FALSE)
		RETURNING id, product_id, warehouse_id, quantity, order_date, completed`

	err := db.QueryRowContext(ctx, query, productID, warehouseID, quantity).Scan(
		&order.ID,
		&order.ProductID,
		&order.WarehouseID,
		&order.Quantity,
		&order.OrderDate,
		&order.Completed,
	)
	if err != nil {
		return nil, fmt.Errorf("create restock order: %w", err)
	}

	return order, nil
}

func GetRestockOrder(ctx context.Context, db *sql.DB, id int64) (*models.RestockOrder, error) {
	order := &models.RestockOrder{}

	err := db.QueryRowContext(ctx,
		`SELECT id, product_id, warehouse_id, quantity, order_date, completed
		 FROM restock_orders
		 WHERE id = $1`, id).Scan(
		&order.ID,
		&order.ProductID,
		&order.WarehouseID,
		&order.Quantity,
		&order.OrderDate,
		&order.Completed,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrRestockOrderNotFound
		}
		return nil, fmt.Errorf("get restock order: %w", err)
	}

	return order, nil
}

func ListRestockOrders(ctx context.Context, db *sql.DB) ([]models.RestockOrder, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, product_id, warehouse_id, quantity, order_date, completed
		 FROM restock_orders
		 ORDER BY order_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list restock orders: %w", err)
	}
	defer rows.Close()

	var orders []models.RestockOrder
	for rows.Next() {
		var order models.RestockOrder
		err := rows.Scan(
			&order.ID,
			&order.ProductID,
			&order.WarehouseID,
			&order.Quantity,
			&order.OrderDate,
			&order.Completed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan restock order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// CompleteRestockOrder marks the intent fulfilled and credits the ledger
// in the same transaction. Completing twice fails with an invalid-state
// error and leaves the ledger alone.
func CompleteRestockOrder(ctx context.Context, db *sql.DB, id int64) (*models.RestockOrder, error) {
	var order *models.RestockOrder

	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		order = &models.RestockOrder{}

		err := tx.QueryRowContext(ctx,
			`SELECT id, product_id, warehouse_id, quantity, order_date, completed
			 FROM restock_orders
			 WHERE id = $1
			 FOR UPDATE`, id).Scan(
			&order.ID,
			&order.ProductID,
			&order.WarehouseID,
			&order.Quantity,
			&order.OrderDate,
			&order.Completed,
		)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrRestockOrderNotFound
			}
			return fmt.Errorf("lock restock order: %w", err)
		}

		if order.Completed {
			return database.InvalidStatef("restock order %d already completed", id)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE restock_orders SET completed = TRUE WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("complete restock order: %w", err)
		}
		order.Completed = true

		_, err = adjustStockTx(ctx, tx, order.ProductID, order.WarehouseID, order.Quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}
