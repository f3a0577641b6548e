package main

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/averin/backoffice/internal/store"
)

func handleCreateUser(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email   string `json:"email"`
			Name    string `json:"name"`
			IsStaff bool   `json:"is_staff"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user, err := store.CreateUser(r.Context(), db, req.Email, req.Name, req.IsStaff)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusCreated, user)
	}
}

func handleGetUser(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid user ID")
			return
		}

		user, err := store.GetUser(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, user)
	}
}

func handleListUsers(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1, 1, 1<<30)
		pageSize := queryInt(r, "page_size", 20, 1, 100)

		result, err := store.ListUsers(r.Context(), db, page, pageSize)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleCreateCategory(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			ParentID *int64 `json:"parent_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		category, err := store.CreateCategory(r.Context(), db, req.Name, req.ParentID)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusCreated, category)
	}
}

func handleGetCategory(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid category ID")
			return
		}

		category, err := store.GetCategory(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, category)
	}
}

func handleUpdateCategory(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid category ID")
			return
		}

		var req struct {
			Name     string `json:"name"`
			ParentID *int64 `json:"parent_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		category, err := store.UpdateCategory(r.Context(), db, id, req.Name, req.ParentID)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, category)
	}
}

func handleDeleteCategory(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid category ID")
			return
		}

		if err := store.DeleteCategory(r.Context(), db, id); err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

func handleListCategories(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := store.ListCategories(r.Context(), db)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, categories)
	}
}

func handleProductsByCategory(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid category ID")
			return
		}

		products, err := store.ListProductsByCategory(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, products)
	}
}

type productPayload struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CategoryID  int64   `json:"category_id"`
	Price       float64 `json:"price"`
}

func handleCreateProduct(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		product, err := store.CreateProduct(r.Context(), db, store.CreateProductRequest{
			SKU:         req.SKU,
			Name:        req.Name,
			Description: req.Description,
			CategoryID:  req.CategoryID,
			Price:       decimal.NewFromFloat(req.Price),
		})
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusCreated, product)
	}
}

func handleGetProduct(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid product ID")
			return
		}

		product, err := store.GetProduct(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

func handleUpdateProduct(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid product ID")
			return
		}

		var req productPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		product, err := store.UpdateProduct(r.Context(), db, id, store.UpdateProductRequest{
			Name:        req.Name,
			Description: req.Description,
			CategoryID:  req.CategoryID,
			Price:       decimal.NewFromFloat(req.Price),
		})
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

func handleDeleteProduct(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid product ID")
			return
		}

		if err := store.DeleteProduct(r.Context(), db, id); err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

func handleListProducts(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1, 1, 1<<30)
		pageSize := queryInt(r, "page_size", 20, 1, 100)

		result, err := store.ListProducts(r.Context(), db, page, pageSize)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleUpdateInventory(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid product ID")
			return
		}

		var req struct {
			WarehouseID    int64 `json:"warehouse_id"`
			QuantityChange int   `json:"quantity_change"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		item, err := store.AdjustStock(r.Context(), db, productID, req.WarehouseID, req.QuantityChange)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, item)
	}
}

func handleInventoryByProduct(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid product ID")
			return
		}

		items, err := store.ListInventoryByProduct(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, items)
	}
}

func handleCreateWarehouse(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Location string `json:"location"`
			Capacity int    `json:"capacity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		warehouse, err := store.CreateWarehouse(r.Context(), db, req.Name, req.Location, req.Capacity)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusCreated, warehouse)
	}
}

func handleGetWarehouse(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid warehouse ID")
			return
		}

		warehouse, err := store.GetWarehouse(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, warehouse)
	}
}

func handleUpdateWarehouse(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid warehouse ID")
			return
		}

		var req struct {
			Name     string `json:"name"`
			Location string `json:"location"`
			Capacity int    `json:"capacity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		warehouse, err := store.UpdateWarehouse(r.Context(), db, id, req.Name, req.Location, req.Capacity)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, warehouse)
	}
}

func handleDeleteWarehouse(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid warehouse ID")
			return
		}

		if err := store.DeleteWarehouse(r.Context(), db, id); err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

func handleListWarehouses(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		warehouses, err := store.ListWarehouses(r.Context(), db)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, warehouses)
	}
}

func handleInventoryByWarehouse(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid warehouse ID")
			return
		}

		items, err := store.ListInventoryByWarehouse(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, items)
	}
}

func handleGetInventoryItem(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid inventory item ID")
			return
		}

		item, err := store.GetInventoryItem(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, item)
	}
}

func handleCreateStockAlert(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProductID   int64 `json:"product_id"`
			WarehouseID int64 `json:"warehouse_id"`
			Threshold   int   `json:"threshold"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		alert, err := store.CreateStockAlert(r.Context(), db, req.ProductID, req.WarehouseID, req.Threshold)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusCreated, alert)
	}
}

func handleGetStockAlert(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid stock alert ID")
			return
		}

		alert, err := store.GetStockAlert(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, alert)
	}
}

func handleListStockAlerts(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alerts, err := store.ListStockAlerts(r.Context(), db)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, alerts)
	}
}

func handleResetStockAlert(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid stock alert ID")
			return
		}

		alert, err := store.ResetStockAlert(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, alert)
	}
}

func handleDeleteStockAlert(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid stock alert ID")
			return
		}

		if err := store.DeleteStockAlert(r.Context(), db, id); err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

func handleCreateRestockOrder(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProductID   int64 `json:"product_id"`
			WarehouseID int64 `json:"warehouse_id"`
			Quantity    int   `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		order, err := store.CreateRestockOrder(r.Context(), db, req.ProductID, req.WarehouseID, req.Quantity)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusCreated, order)
	}
}

func handleGetRestockOrder(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid restock order ID")
			return
		}

		order, err := store.GetRestockOrder(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}

func handleListRestockOrders(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := store.ListRestockOrders(r.Context(), db)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, orders)
	}
}

func handleCompleteRestockOrder(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid restock order ID")
			return
		}

		order, err := store.CompleteRestockOrder(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}
