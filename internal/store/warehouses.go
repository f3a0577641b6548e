package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/averin/backoffice/internal/database"
	"github.com/averin/backoffice/internal/models"
)

func CreateWarehouse(ctx context.Context, db *sql.DB, name, location string, capacity int) (*models.Warehouse, error) {
	if capacity < 0 {
		return nil, database.Validationf("capacity must not be negative")
	}

	warehouse := &models.Warehouse{}

	query := `
		INSERT INTO warehouses (name, location, capacity)
		VALUES ($1, $2, $3)
		RETURNING id, name, location, capacity`

	err := db.QueryRowContext(ctx, query, name, location, capacity).Scan(
		&warehouse.ID,
		&warehouse.Name,
		&warehouse.Location,
		&warehouse.Capacity,
	)
	if err != nil {
		return nil, fmt.Errorf("create warehouse: %w", err)
	}

	return warehouse, nil
}

func GetWarehouse(ctx context.Context, db *sql.DB, id int64) (*models.Warehouse, error) {
	warehouse := &models.Warehouse{}

	err := db.QueryRowContext(ctx,
		`SELECT id, name, location, capacity FROM warehouses WHERE id = $1`, id).Scan(
		&warehouse.ID,
		&warehouse.Name,
		&warehouse.Location,
		&warehouse.Capacity,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}

	return warehouse, nil
}

func UpdateWarehouse(ctx context.Context, db *sql.DB, id int64, name, location string, capacity int) (*models.Warehouse, error) {
	if capacity < 0 {
		return nil, database.Validationf("capacity must not be negative")
	}

	warehouse := &models.Warehouse{}

	query := `
		UPDATE warehouses
		SET name = $2, location = $3, capacity = $4
		WHERE id = $1
		RETURNING id, name, location, capacity`

	err := db.QueryRowContext(ctx, query, id, name, location, capacity).Scan(
		&warehouse.ID,
		&warehouse.Name,
		&warehouse.Location,
		&warehouse.Capacity,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrWarehouseNotFound
		}
		return nil, fmt.Errorf("update warehouse: %w", err)
	}

	return warehouse, nil
}

func DeleteWarehouse(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete warehouse: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrWarehouseNotFound
	}

	return nil
}

func ListWarehouses(ctx context.Context, db *sql.DB) ([]models.Warehouse, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, location, capacity FROM warehouses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []models.Warehouse
	for rows.Next() {
		var warehouse models.Warehouse
		err := rows.Scan(
			&warehouse.ID,
			&warehouse.Name,
			&warehouse.Location,
			&warehouse.Capacity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		warehouses = append(warehouses, warehouse)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return warehouses, nil
}
