package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/averin/backoffice/internal/database"
	"github.com/averin/backoffice/internal/models"
)

type CreateOrderRequest struct {
	UserID          int64
	ShippingAddress string
	BillingAddress  string
	ShippingRateID  *int64
	Notes           string
	Items           []OrderItemRequest
}

type OrderItemRequest struct {
	ProductID   int64
	WarehouseID int64
	Quantity    int
}

func formatOrderNumber(n int64) string {
	return fmt.Sprintf("ORD%08d", n)
}

// nextOrderNumberTx allocates the next order number from the counter row.
// The row update serializes concurrent creations; a rolled-back creation
// rolls the counter back with it, so numbers stay dense.
func nextOrderNumberTx(ctx context.Context, tx *sql.Tx) (string, error) {
	var n int64
	err := tx.QueryRowContext(ctx,
		`UPDATE order_number_counter
		 SET last_value = last_value + 1
		 WHERE id = 1
		 RETURNING last_value`).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("allocate order number: %w", err)
	}
	return formatOrderNumber(n), nil
}

// CreateOrder creates an order and its items in one serializable retried
// transaction: validates availability against the locked inventory rows,
// snapshots current product prices, debits the ledger per item and
// computes subtotal/tax/total. Nothing is persisted on failure.
func CreateOrder(ctx context.Context, db *sql.DB, taxRate decimal.Decimal, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, database.Validationf("order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, database.Validationf("item quantity must be positive")
		}
	}

	var order *models.Order

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, req.UserID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check user exists: %w", err)
		}
		if !exists {
			return database.ErrUserNotFound
		}

		shippingCost := decimal.Zero
		if req.ShippingRateID != nil {
			err := tx.QueryRowContext(ctx,
				`SELECT rate FROM shipping_rates WHERE id = $1 AND is_active = TRUE`,
				*req.ShippingRateID).Scan(&shippingCost)
			if err != nil {
				if err == sql.ErrNoRows {
					return database.ErrShippingRateNotFound
				}
				return fmt.Errorf("get shipping rate: %w", err)
			}
		}

		orderNumber, err := nextOrderNumberTx(ctx, tx)
		if err != nil {
			return err
		}

		type pricedItem struct {
			OrderItemRequest
			price decimal.Decimal
		}
		priced := make([]pricedItem, 0, len(req.Items))

		for _, item := range req.Items {
			var productName string
			var price decimal.Decimal
			err := tx.QueryRowContext(ctx,
				`SELECT name, price FROM products WHERE id = $1`, item.ProductID).Scan(
				&productName, &price)
			if err != nil {
				if err == sql.ErrNoRows {
					return database.ErrProductNotFound
				}
				return fmt.Errorf("get product %d: %w", item.ProductID, err)
			}

			var available int
			err = tx.QueryRowContext(ctx,
				`SELECT quantity FROM inventory_items
				 WHERE product_id = $1 AND warehouse_id = $2
				 FOR UPDATE`,
				item.ProductID, item.WarehouseID).Scan(&available)
			if err != nil && err != sql.ErrNoRows {
				return fmt.Errorf("lock inventory for product %d: %w", item.ProductID, err)
			}

			if available < item.Quantity {
				return database.Validationf(
					"insufficient inventory for %s: available %d, requested %d",
					productName, available, item.Quantity)
			}

			// Debit the locked row; recomputes product.active and
			// evaluates stock alerts along the way.
			if _, err := adjustStockTx(ctx, tx, item.ProductID, item.WarehouseID, -item.Quantity); err != nil {
				return err
			}

			priced = append(priced, pricedItem{OrderItemRequest: item, price: price})
		}

		order = &models.Order{
			UserID:          req.UserID,
			OrderNumber:     orderNumber,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			ShippingCost:    shippingCost,
			Notes:           req.Notes,
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders
			   (user_id, order_number, status, payment_status, shipping_address,
			    billing_address, subtotal, shipping_cost, tax, total, notes,
			    created_at, updated_at, version)
			 VALUES ($1, $2, $3, $4, $5, $6, 0, $7, 0, 0, $8, NOW(), NOW(), 1)
			 RETURNING id, created_at, updated_at, version`,
			order.UserID, order.OrderNumber, order.Status, order.PaymentStatus,
			order.ShippingAddress, order.BillingAddress, order.ShippingCost,
			order.Notes).Scan(
			&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.Version)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range priced {
			var orderItem models.OrderItem
			err := tx.QueryRowContext(ctx,
				`INSERT INTO order_items (order_id, product_id, warehouse_id, quantity, price)
				 VALUES ($1, $2, $3, $4, $5)
				 RETURNING id, order_id, product_id, warehouse_id, quantity, price`,
				order.ID, item.ProductID, item.WarehouseID, item.Quantity, item.price).Scan(
				&orderItem.ID, &orderItem.OrderID, &orderItem.ProductID,
				&orderItem.WarehouseID, &orderItem.Quantity, &orderItem.Price)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			order.Items = append(order.Items, orderItem)
		}

		return recomputeOrderTotalsTx(ctx, tx, order, taxRate)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// recomputeOrderTotalsTx derives subtotal, tax and total from the order's
// persisted line items and writes them back. This is the only place the
// money columns are written.
func recomputeOrderTotalsTx(ctx context.Context, tx *sql.Tx, order *models.Order, taxRate decimal.Decimal) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT quantity, price FROM order_items WHERE order_id = $1`, order.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	subtotal := decimal.Zero
	for rows.Next() {
		var quantity int
		var price decimal.Decimal
		if err := rows.Scan(&quantity, &price); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	tax := subtotal.Mul(taxRate).Round(2)
	total := subtotal.Add(order.ShippingCost).Add(tax)

	_, err = tx.ExecContext(ctx,
		`UPDATE orders
		 SET subtotal = $2, tax = $3, total = $4, updated_at = NOW()
		 WHERE id = $1`,
		order.ID, subtotal, tax, total)
	if err != nil {
		return fmt.Errorf("update order totals: %w", err)
	}

	order.Subtotal = subtotal
	order.Tax = tax
	order.Total = total
	return nil
}

// CancelOrder credits every debited (product, warehouse) cell back and
// marks the order cancelled. Only pending and processing orders can be
// cancelled; anything later fails with an invalid-state error and the
// ledger is left untouched.
func CancelOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	var order *models.Order

	err := database.WithRetry(ctx, db, database.SerializableTxOptions(), func(tx *sql.Tx) error {
		var err error
		order, err = lockOrderTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusProcessing {
			return database.InvalidStatef("cannot cancel order %s in status %q", order.OrderNumber, order.Status)
		}

		items, err := loadOrderItemsTx(ctx, tx, id)
		if err != nil {
			return err
		}

		for _, item := range items {
			if _, err := adjustStockTx(ctx, tx, item.ProductID, item.WarehouseID, item.Quantity); err != nil {
				return err
			}
		}

		err = tx.QueryRowContext(ctx,
			`UPDATE orders
			 SET status = $2, updated_at = NOW(), version = version + 1
			 WHERE id = $1
			 RETURNING status, updated_at, version`,
			id, models.OrderStatusCancelled).Scan(
			&order.Status, &order.UpdatedAt, &order.Version)
		if err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}

		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// UpdateOrderStatus sets the status unconditionally after validating the
// value. Lifecycle enforcement beyond this lives in CancelOrder and
// AddTracking.
func UpdateOrderStatus(ctx context.Context, db *sql.DB, id int64, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, database.Validationf("invalid order status %q", status)
	}

	return updateOrderField(ctx, db, id,
		`UPDATE orders
		 SET status = $2, updated_at = NOW(), version = version + 1
		 WHERE id = $1
		 RETURNING id`, status)
}

func UpdatePaymentStatus(ctx context.Context, db *sql.DB, id int64, paymentStatus string) (*models.Order, error) {
	if !models.ValidPaymentStatus(paymentStatus) {
		return nil, database.Validationf("invalid payment status %q", paymentStatus)
	}

	return updateOrderField(ctx, db, id,
		`UPDATE orders
		 SET payment_status = $2, updated_at = NOW(), version = version + 1
		 WHERE id = $1
		 RETURNING id`, paymentStatus)
}

// AddTracking records the carrier tracking number and forces the order
// into the shipped status.
func AddTracking(ctx context.Context, db *sql.DB, id int64, trackingNumber string) (*models.Order, error) {
	if trackingNumber == "" {
		return nil, database.Validationf("tracking number is required")
	}

	return updateOrderField(ctx, db, id,
		`UPDATE orders
		 SET tracking_number = $2, status = 'shipped', updated_at = NOW(), version = version + 1
		 WHERE id = $1
		 RETURNING id`, trackingNumber)
}

func updateOrderField(ctx context.Context, db *sql.DB, id int64, query string, arg any) (*models.Order, error) {
	var orderID int64
	err := db.QueryRowContext(ctx, query, id, arg).Scan(&orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order: %w", err)
	}

	return GetOrder(ctx, db, orderID)
}

func GetOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	order := &models.Order{}
	var tracking sql.NullString

	query := `
		SELECT id, user_id, order_number, status, payment_status,
		       shipping_address, billing_address, subtotal, shipping_cost,
		       tax, total, tracking_number, notes, created_at, updated_at, version
		FROM orders
		WHERE id = $1`

	err := db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.Status,
		&order.PaymentStatus,
		&order.ShippingAddress,
		&order.BillingAddress,
		&order.Subtotal,
		&order.ShippingCost,
		&order.Tax,
		&order.Total,
		&tracking,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	order.TrackingNumber = tracking.String

	rows, err := db.QueryContext(ctx,
		`SELECT id, order_id, product_id, warehouse_id, quantity, price
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.WarehouseID,
			&item.Quantity,
			&item.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return order, nil
}

// ListOrdersCursor pages a user's orders newest first. A zero userID
// lists all orders (staff scope).
func ListOrdersCursor(ctx context.Context, db *sql.DB, userID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, database.Validationf("invalid cursor")
	}

	query := `
		SELECT id, user_id, order_number, status, payment_status,
		       subtotal, shipping_cost, tax, total, created_at, updated_at, version
		FROM orders
		WHERE ($1 = 0 OR user_id = $1)
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := db.QueryContext(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.OrderNumber,
			&order.Status,
			&order.PaymentStatus,
			&order.Subtotal,
			&order.ShippingCost,
			&order.Tax,
			&order.Total,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(Cursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func lockOrderTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	order := &models.Order{}
	var tracking sql.NullString

	err := tx.QueryRowContext(ctx,
		`SELECT id, user_id, order_number, status, payment_status,
		        shipping_address, billing_address, subtotal, shipping_cost,
		        tax, total, tracking_number, notes, created_at, updated_at, version
		 FROM orders
		 WHERE id = $1
		 FOR UPDATE`, id).Scan(
		&order.ID,
		&order.UserID,
		&order.OrderNumber,
		&order.Status,
		&order.PaymentStatus,
		&order.ShippingAddress,
		&order.BillingAddress,
		&order.Subtotal,
		&order.ShippingCost,
		&order.Tax,
		&order.Total,
		&tracking,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}
	order.TrackingNumber = tracking.String

	return order, nil
}

func loadOrderItemsTx(ctx context.Context, tx *sql.Tx, orderID int64) ([]models.OrderItem, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, order_id, product_id, warehouse_id, quantity, price
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.WarehouseID,
			&item.Quantity,
			&item.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}
