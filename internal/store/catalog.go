package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/averin/backoffice/internal/database"
	"github.com/averin/backoffice/internal/models"
)

func CreateCategory(ctx context.Context, db *sql.DB, name string, parentID *int64) (*models.Category, error) {
	category := &models.Category{}

	if parentID != nil {
		if _, err := GetCategory(ctx, db, *parentID); err != nil {
			return nil, err
		}
	}

	query := `
		INSERT INTO categories (name, parent_id)
		VALUES ($1, $2)
		RETURNING id, name, parent_id`

	err := db.QueryRowContext(ctx, query, name, parentID).Scan(
		&category.ID,
		&category.Name,
		&category.ParentID,
	)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

func GetCategory(ctx context.Context, db *sql.DB, id int64) (*models.Category, error) {
	category := &models.Category{}

	err := db.QueryRowContext(ctx,
		`SELECT id, name, parent_id FROM categories WHERE id = $1`, id).Scan(
		&category.ID,
		&category.Name,
		&category.ParentID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return category, nil
}

func UpdateCategory(ctx context.Context, db *sql.DB, id int64, name string, parentID *int64) (*models.Category, error) {
	if parentID != nil {
		if *parentID == id {
			return nil, database.Validationf("category cannot be its own parent")
		}
		if _, err := GetCategory(ctx, db, *parentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{}

	query := `
		UPDATE categories
		SET name = $2, parent_id = $3
		WHERE id = $1
		RETURNING id, name, parent_id`

	err := db.QueryRowContext(ctx, query, id, name, parentID).Scan(
		&category.ID,
		&category.Name,
		&category.ParentID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	return category, nil
}

func DeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrCategoryNotFound
	}

	return nil
}

func ListCategories(ctx context.Context, db *sql.DB) ([]models.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, parent_id FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.ParentID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}

type CreateProductRequest struct {
	SKU         string
	Name        string
	Description string
	CategoryID  int64
	Price       decimal.Decimal
}

func CreateProduct(ctx context.Context, db *sql.DB, req CreateProductRequest) (*models.Product, error) {
	if req.SKU == "" {
		return nil, database.Validationf("sku is required")
	}
	if req.Price.IsNegative() {
		return nil, database.Validationf("price must not be negative")
	}

	if _, err := GetCategory(ctx, db, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{}

	query := `
		INSERT INTO products (sku, name, description, category_id, price, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
		RETURNING id, sku, name, description, category_id, price, active, created_at, updated_at`

	err := db.QueryRowContext(ctx, query,
		req.SKU, req.Name, req.Description, req.CategoryID, req.Price).Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Description,
		&product.CategoryID,
		&product.Price,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "products_sku_key") {
			return nil, database.Validationf("product with sku %q already exists", req.SKU)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	product := &models.Product{}

	query := `
		SELECT id, sku, name, description, category_id, price, active, created_at, updated_at
		FROM products
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Description,
		&product.CategoryID,
		&product.Price,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

type UpdateProductRequest struct {
	Name        string
	Description string
	CategoryID  int64
	Price       decimal.Decimal
}

func UpdateProduct(ctx context.Context, db *sql.DB, id int64, req UpdateProductRequest) (*models.Product, error) {
	if req.Price.IsNegative() {
		return nil, database.Validationf("price must not be negative")
	}

	if _, err := GetCategory(ctx, db, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{}

	query := `
		UPDATE products
		SET name = $1, description = $2, category_id = $3, price = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id, sku, name, description, category_id, price, active, created_at, updated_at`

	err := db.QueryRowContext(ctx, query,
		req.Name, req.Description, req.CategoryID, req.Price, id).Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Description,
		&product.CategoryID,
		&product.Price,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

func DeleteProduct(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func ListProducts(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT id, sku, name, description, category_id, price, active, created_at, updated_at
		FROM products
		ORDER BY name
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	return &OffsetPage{
		Items:      products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func ListProductsByCategory(ctx context.Context, db *sql.DB, categoryID int64) ([]models.Product, error) {
	if _, err := GetCategory(ctx, db, categoryID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, sku, name, description, category_id, price, active, created_at, updated_at
		FROM products
		WHERE category_id = $1
		ORDER BY name`

	rows, err := db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID,
			&product.SKU,
			&product.Name,
			&product.Description,
			&product.CategoryID,
			&product.Price,
			&product.Active,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}
