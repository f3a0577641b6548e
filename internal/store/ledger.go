package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/averin/backoffice/internal/database"
	"github.com/averin/backoffice/internal/models"
)

// AdjustStock applies delta (positive or negative) to the (product,
// warehouse) quantity cell in one retried transaction. The row is created
// on first movement. Debits that would drive the quantity negative fail
// with a ValidationError and leave the ledger untouched. After every
// successful adjustment the product's active flag is recomputed from the
// resulting quantity and un-sent stock alerts for the pair are evaluated.
func AdjustStock(ctx context.Context, db *sql.DB, productID, warehouseID int64, delta int) (*models.InventoryItem, error) {
	var item *models.InventoryItem

	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var txErr error
		item, txErr = adjustStockTx(ctx, tx, productID, warehouseID, delta)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// adjustStockTx is the transactional body of AdjustStock, shared with
// order creation, cancellation and restock completion so that all ledger
// mutations follow the same rules.
func adjustStockTx(ctx context.Context, tx *sql.Tx, productID, warehouseID int64, delta int) (*models.InventoryItem, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check product exists: %w", err)
	}
	if !exists {
		return nil, database.ErrProductNotFound
	}

	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM warehouses WHERE id = $1)`, warehouseID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check warehouse exists: %w", err)
	}
	if !exists {
		return nil, database.ErrWarehouseNotFound
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO inventory_items (product_id, warehouse_id, quantity, updated_at)
		 VALUES ($1, $2, 0, NOW())
		 ON CONFLICT (product_id, warehouse_id) DO NOTHING`,
		productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("ensure inventory item: %w", err)
	}

	item := &models.InventoryItem{ProductID: productID, WarehouseID: warehouseID}

	// Atomic read-modify-write; the predicate keeps the quantity from
	// going negative under concurrent debits.
	err = tx.QueryRowContext(ctx,
		`UPDATE inventory_items
		 SET quantity = quantity + $3, updated_at = NOW()
		 WHERE product_id = $1 AND warehouse_id = $2 AND quantity + $3 >= 0
		 RETURNING id, quantity, updated_at`,
		productID, warehouseID, delta).Scan(&item.ID, &item.Quantity, &item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.Validationf(
				"insufficient stock for product %d in warehouse %d: adjustment by %d rejected",
				productID, warehouseID, delta)
		}
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	// The active flag mirrors the just-touched warehouse's quantity only,
	// not the sum across warehouses.
	_, err = tx.ExecContext(ctx,
		`UPDATE products SET active = $2, updated_at = NOW() WHERE id = $1`,
		productID, item.Quantity > 0)
	if err != nil {
		return nil, fmt.Errorf("recompute product active: %w", err)
	}

	if err := evaluateStockAlertsTx(ctx, tx, productID, warehouseID, item.Quantity); err != nil {
		return nil, err
	}

	return item, nil
}

func GetInventoryItem(ctx context.Context, db *sql.DB, id int64) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}

	err := db.QueryRowContext(ctx,
		`SELECT id, product_id, warehouse_id, quantity, updated_at
		 FROM inventory_items
		 WHERE id = $1`, id).Scan(
		&item.ID,
		&item.ProductID,
		&item.WarehouseID,
		&item.Quantity,
		&item.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrInventoryItemNotFound
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}

	return item, nil
}

func GetInventoryLevel(ctx context.Context, db *sql.DB, productID, warehouseID int64) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}

	err := db.QueryRowContext(ctx,
		`SELECT id, product_id, warehouse_id, quantity, updated_at
		 FROM inventory_items
		 WHERE product_id = $1 AND warehouse_id = $2`,
		productID, warehouseID).Scan(
		&item.ID,
		&item.ProductID,
		&item.WarehouseID,
		&item.Quantity,
		&item.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrInventoryItemNotFound
		}
		return nil, fmt.Errorf("get inventory level: %w", err)
	}

	return item, nil
}

func ListInventoryByWarehouse(ctx context.Context, db *sql.DB, warehouseID int64) ([]models.InventoryItem, error) {
	if _, err := GetWarehouse(ctx, db, warehouseID); err != nil {
		return nil, err
	}

	return listInventory(ctx, db,
		`SELECT id, product_id, warehouse_id, quantity, updated_at
		 FROM inventory_items
		 WHERE warehouse_id = $1
		 ORDER BY product_id`, warehouseID)
}

func ListInventoryByProduct(ctx context.Context, db *sql.DB, productID int64) ([]models.InventoryItem, error) {
	if _, err := GetProduct(ctx, db, productID); err != nil {
		return nil, err
	}

	return listInventory(ctx, db,
		`SELECT id, product_id, warehouse_id, quantity, updated_at
		 FROM inventory_items
		 WHERE product_id = $1
		 ORDER BY warehouse_id`, productID)
}

func listInventory(ctx context.Context, db *sql.DB, query string, arg int64) ([]models.InventoryItem, error) {
	rows, err := db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.WarehouseID,
			&item.Quantity,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}
