package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/averin/backoffice/internal/database"
	"github.com/averin/backoffice/internal/store"
)

func TestAdjustStockSumsDeltas(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "INV-001", 100)
	warehouse := createTestWarehouse(t, db, "Main")

	deltas := []int{10, -3, 7, -4, 5}
	expected := 0
	for _, delta := range deltas {
		item, err := store.AdjustStock(ctx, db, product.ID, warehouse.ID, delta)
		if err != nil {
			t.Fatalf("Adjust by %d: %v", delta, err)
		}
		expected += delta
		if item.Quantity != expected {
			t.Errorf("After delta %d: expected quantity %d, got %d", delta, expected, item.Quantity)
		}
	}

	item, err := store.GetInventoryLevel(ctx, db, product.ID, warehouse.ID)
	if err != nil {
		t.Fatalf("Get inventory level: %v", err)
	}
	if item.Quantity != expected {
		t.Errorf("Expected final quantity %d, got %d", expected, item.Quantity)
	}
}

func TestAdjustStockRejectsNegativeQuantity(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "INV-002", 100)
	warehouse := createTestWarehouse(t, db, "Main")
	stock(t, db, product.ID, warehouse.ID, 5)

	_, err := store.AdjustStock(ctx, db, product.ID, warehouse.ID, -10)
	if !database.IsValidation(err) {
		t.Fatalf("Expected validation error, got: %v", err)
	}

	item, err := store.GetInventoryLevel(ctx, db, product.ID, warehouse.ID)
	if err != nil {
		t.Fatalf("Get inventory level: %v", err)
	}
	if item.Quantity != 5 {
		t.Errorf("Quantity should remain 5, got %d", item.Quantity)
	}
}

func TestAdjustStockUnknownReferences(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "INV-003", 100)
	warehouse := createTestWarehouse(t, db, "Main")

	_, err := store.AdjustStock(ctx, db, 99999, warehouse.ID, 5)
	if !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected product not found, got: %v", err)
	}

	_, err = store.AdjustStock(ctx, db, product.ID, 99999, 5)
	if !errors.Is(err, database.ErrWarehouseNotFound) {
		t.Errorf("Expected warehouse not found, got: %v", err)
	}
}

func TestAdjustStockRecomputesActiveFlag(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "INV-004", 100)
	warehouse := createTestWarehouse(t, db, "Main")
	stock(t, db, product.ID, warehouse.ID, 3)

	if _, err := store.AdjustStock(ctx, db, product.ID, warehouse.ID, -3); err != nil {
		t.Fatalf("Drain stock: %v", err)
	}

	after, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if after.Active {
		t.Error("Product should be inactive at zero quantity")
	}

	if _, err := store.AdjustStock(ctx, db, product.ID, warehouse.ID, 1); err != nil {
		t.Fatalf("Restock: %v", err)
	}

	after, err = store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if !after.Active {
		t.Error("Product should be active again at positive quantity")
	}
}

func TestConcurrentAdjustStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "INV-005", 100)
	warehouse := createTestWarehouse(t, db, "Main")
	stock(t, db, product.ID, warehouse.ID, 20)

	concurrency := 10
	var wg sync.WaitGroup
	results := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AdjustStock(ctx, db, product.ID, warehouse.ID, -2)
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	}

	item, err := store.GetInventoryLevel(ctx, db, product.ID, warehouse.ID)
	if err != nil {
		t.Fatalf("Get inventory level: %v", err)
	}
	if item.Quantity != 0 {
		t.Errorf("Expected final quantity 0, got %d", item.Quantity)
	}
}

func TestStockAlertLatch(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "INV-006", 100)
	warehouse := createTestWarehouse(t, db, "Main")
	stock(t, db, product.ID, warehouse.ID, 12)

	alert, err := store.CreateStockAlert(ctx, db, product.ID, warehouse.ID, 10)
	if err != nil {
		t.Fatalf("Create stock alert: %v", err)
	}
	if alert.AlertSent {
		t.Fatal("New alert should be armed")
	}

	// 12 -> 7 crosses the threshold and trips the latch.
	if _, err := store.AdjustStock(ctx, db, product.ID, warehouse.ID, -5); err != nil {
		t.Fatalf("Adjust: %v", err)
	}

	alert, err = store.GetStockAlert(ctx, db, alert.ID)
	if err != nil {
		t.Fatalf("Get stock alert: %v", err)
	}
	if !alert.AlertSent {
		t.Error("Alert should have tripped at quantity 7")
	}

	// Further drops keep the latch tripped; no state change.
	if _, err := store.AdjustStock(ctx, db, product.ID, warehouse.ID, -1); err != nil {
		t.Fatalf("Adjust: %v", err)
	}

	alert, err = store.GetStockAlert(ctx, db, alert.ID)
	if err != nil {
		t.Fatalf("Get stock alert: %v", err)
	}
	if !alert.AlertSent {
		t.Error("Alert should stay tripped")
	}

	// Restocking above the threshold does not re-arm either.
	if _, err := store.AdjustStock(ctx, db, product.ID, warehouse.ID, 20); err != nil {
		t.Fatalf("Adjust: %v", err)
	}

	alert, err = store.GetStockAlert(ctx, db, alert.ID)
	if err != nil {
		t.Fatalf("Get stock alert: %v", err)
	}
	if !alert.AlertSent {
		t.Error("Alert should stay tripped until manually reset")
	}

	// Only the manual reset re-arms.
	alert, err = store.ResetStockAlert(ctx, db, alert.ID)
	if err != nil {
		t.Fatalf("Reset stock alert: %v", err)
	}
	if alert.AlertSent {
		t.Error("Reset alert should be armed")
	}

	// 26 -> 5 trips the re-armed latch again.
	if _, err := store.AdjustStock(ctx, db, product.ID, warehouse.ID, -21); err != nil {
		t.Fatalf("Adjust: %v", err)
	}

	alert, err = store.GetStockAlert(ctx, db, alert.ID)
	if err != nil {
		t.Fatalf("Get stock alert: %v", err)
	}
	if !alert.AlertSent {
		t.Error("Re-armed alert should trip again below threshold")
	}
}

func TestCompleteRestockOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "INV-007", 100)
	warehouse := createTestWarehouse(t, db, "Main")
	stock(t, db, product.ID, warehouse.ID, 5)

	order, err := store.CreateRestockOrder(ctx, db, product.ID, warehouse.ID, 25)
	if err != nil {
		t.Fatalf("Create restock order: %v", err)
	}
	if order.Completed {
		t.Fatal("New restock order should not be completed")
	}

	completed, err := store.CompleteRestockOrder(ctx, db, order.ID)
	if err != nil {
		t.Fatalf("Complete restock order: %v", err)
	}
	if !completed.Completed {
		t.Error("Restock order should be completed")
	}

	item, err := store.GetInventoryLevel(ctx, db, product.ID, warehouse.ID)
	if err != nil {
		t.Fatalf("Get inventory level: %v", err)
	}
	if item.Quantity != 30 {
		t.Errorf("Expected quantity 30 after restock, got %d", item.Quantity)
	}

	// Completing twice is an invalid state and must not credit again.
	_, err = store.CompleteRestockOrder(ctx, db, order.ID)
	if !database.IsInvalidState(err) {
		t.Fatalf("Expected invalid state error, got: %v", err)
	}

	item, err = store.GetInventoryLevel(ctx, db, product.ID, warehouse.ID)
	if err != nil {
		t.Fatalf("Get inventory level: %v", err)
	}
	if item.Quantity != 30 {
		t.Errorf("Quantity should remain 30, got %d", item.Quantity)
	}
}

func TestCreateRestockOrderValidation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "INV-008", 100)
	warehouse := createTestWarehouse(t, db, "Main")

	_, err := store.CreateRestockOrder(ctx, db, product.ID, warehouse.ID, 0)
	if !database.IsValidation(err) {
		t.Errorf("Expected validation error for zero quantity, got: %v", err)
	}

	_, err = store.CreateRestockOrder(ctx, db, 99999, warehouse.ID, 10)
	if !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected product not found, got: %v", err)
	}
}
