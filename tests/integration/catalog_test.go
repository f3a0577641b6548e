package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/averin/backoffice/internal/database"
	"github.com/averin/backoffice/internal/store"
)

func TestUpdateCategory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	parent, err := store.CreateCategory(ctx, db, "Electronics", nil)
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}
	child, err := store.CreateCategory(ctx, db, "Phnoes", nil)
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}

	updated, err := store.UpdateCategory(ctx, db, child.ID, "Phones", &parent.ID)
	if err != nil {
		t.Fatalf("Update category: %v", err)
	}
	if updated.Name != "Phones" {
		t.Errorf("Expected name Phones, got %s", updated.Name)
	}
	if updated.ParentID == nil || *updated.ParentID != parent.ID {
		t.Errorf("Expected parent %d, got %v", parent.ID, updated.ParentID)
	}

	_, err = store.UpdateCategory(ctx, db, child.ID, "Phones", &child.ID)
	if !database.IsValidation(err) {
		t.Errorf("Expected validation error for self-parent, got: %v", err)
	}

	unknown := int64(99999)
	_, err = store.UpdateCategory(ctx, db, child.ID, "Phones", &unknown)
	if !errors.Is(err, database.ErrCategoryNotFound) {
		t.Errorf("Expected category not found for unknown parent, got: %v", err)
	}

	_, err = store.UpdateCategory(ctx, db, 99999, "Ghost", nil)
	if !errors.Is(err, database.ErrCategoryNotFound) {
		t.Errorf("Expected category not found, got: %v", err)
	}
}

func TestDeleteCategory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	category, err := store.CreateCategory(ctx, db, "Seasonal", nil)
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}

	if err := store.DeleteCategory(ctx, db, category.ID); err != nil {
		t.Fatalf("Delete category: %v", err)
	}

	_, err = store.GetCategory(ctx, db, category.ID)
	if !errors.Is(err, database.ErrCategoryNotFound) {
		t.Errorf("Expected category not found after delete, got: %v", err)
	}

	if err := store.DeleteCategory(ctx, db, category.ID); !errors.Is(err, database.ErrCategoryNotFound) {
		t.Errorf("Expected category not found on double delete, got: %v", err)
	}
}

func TestUpdateWarehouse(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	warehouse := createTestWarehouse(t, db, "North")

	updated, err := store.UpdateWarehouse(ctx, db, warehouse.ID, "North Annex", "Dock 4", 25000)
	if err != nil {
		t.Fatalf("Update warehouse: %v", err)
	}
	if updated.Name != "North Annex" || updated.Location != "Dock 4" || updated.Capacity != 25000 {
		t.Errorf("Unexpected warehouse after update: %+v", updated)
	}

	_, err = store.UpdateWarehouse(ctx, db, warehouse.ID, "North Annex", "Dock 4", -1)
	if !database.IsValidation(err) {
		t.Errorf("Expected validation error for negative capacity, got: %v", err)
	}

	_, err = store.UpdateWarehouse(ctx, db, 99999, "Ghost", "Nowhere", 10)
	if !errors.Is(err, database.ErrWarehouseNotFound) {
		t.Errorf("Expected warehouse not found, got: %v", err)
	}
}

func TestDeleteWarehouse(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	warehouse := createTestWarehouse(t, db, "South")

	if err := store.DeleteWarehouse(ctx, db, warehouse.ID); err != nil {
		t.Fatalf("Delete warehouse: %v", err)
	}

	_, err := store.GetWarehouse(ctx, db, warehouse.ID)
	if !errors.Is(err, database.ErrWarehouseNotFound) {
		t.Errorf("Expected warehouse not found after delete, got: %v", err)
	}

	if err := store.DeleteWarehouse(ctx, db, warehouse.ID); !errors.Is(err, database.ErrWarehouseNotFound) {
		t.Errorf("Expected warehouse not found on double delete, got: %v", err)
	}
}
