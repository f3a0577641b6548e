package main

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"github.com/averin/backoffice/internal/config"
	"github.com/averin/backoffice/internal/database"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("connected to database")

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(logger, newRouter(db, cfg, logger)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newRouter(db *sql.DB, cfg *config.Config, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", handleCreateUser(db, logger))
	mux.HandleFunc("GET /users", handleListUsers(db, logger))
	mux.HandleFunc("GET /users/{id}", handleGetUser(db, logger))

	mux.HandleFunc("POST /categories", handleCreateCategory(db, logger))
	mux.HandleFunc("GET /categories", handleListCategories(db, logger))
	mux.HandleFunc("GET /categories/{id}", handleGetCategory(db, logger))
	mux.HandleFunc("PUT /categories/{id}", handleUpdateCategory(db, logger))
	mux.HandleFunc("DELETE /categories/{id}", handleDeleteCategory(db, logger))
	mux.HandleFunc("GET /categories/{id}/products", handleProductsByCategory(db, logger))

	mux.HandleFunc("POST /products", handleCreateProduct(db, logger))
	mux.HandleFunc("GET /products", handleListProducts(db, logger))
	mux.HandleFunc("GET /products/{id}", handleGetProduct(db, logger))
	mux.HandleFunc("PUT /products/{id}", handleUpdateProduct(db, logger))
	mux.HandleFunc("DELETE /products/{id}", handleDeleteProduct(db, logger))
	mux.HandleFunc("POST /products/{id}/update-inventory", handleUpdateInventory(db, logger))
	mux.HandleFunc("GET /products/{id}/inventory", handleInventoryByProduct(db, logger))

	mux.HandleFunc("POST /warehouses", handleCreateWarehouse(db, logger))
	mux.HandleFunc("GET /warehouses", handleListWarehouses(db, logger))
	mux.HandleFunc("GET /warehouses/{id}", handleGetWarehouse(db, logger))
	mux.HandleFunc("PUT /warehouses/{id}", handleUpdateWarehouse(db, logger))
	mux.HandleFunc("DELETE /warehouses/{id}", handleDeleteWarehouse(db, logger))
	mux.HandleFunc("GET /warehouses/{id}/inventory", handleInventoryByWarehouse(db, logger))

	mux.HandleFunc("GET /inventory-items/{id}", handleGetInventoryItem(db, logger))

	mux.HandleFunc("POST /stock-alerts", handleCreateStockAlert(db, logger))
	mux.HandleFunc("GET /stock-alerts", handleListStockAlerts(db, logger))
	mux.HandleFunc("GET /stock-alerts/{id}", handleGetStockAlert(db, logger))
	mux.HandleFunc("DELETE /stock-alerts/{id}", handleDeleteStockAlert(db, logger))
	mux.HandleFunc("POST /stock-alerts/{id}/reset", handleResetStockAlert(db, logger))

	mux.HandleFunc("POST /restock-orders", handleCreateRestockOrder(db, logger))
	mux.HandleFunc("GET /restock-orders", handleListRestockOrders(db, logger))
	mux.HandleFunc("GET /restock-orders/{id}", handleGetRestockOrder(db, logger))
	mux.HandleFunc("POST /restock-orders/{id}/complete", handleCompleteRestockOrder(db, logger))

	mux.HandleFunc("POST /orders", handleCreateOrder(db, cfg, logger))
	mux.HandleFunc("GET /orders", handleListOrders(db, logger))
	mux.HandleFunc("GET /orders/{id}", handleGetOrder(db, logger))
	mux.HandleFunc("POST /orders/{id}/cancel", handleCancelOrder(db, logger))
	mux.HandleFunc("POST /orders/{id}/status", handleUpdateOrderStatus(db, logger))
	mux.HandleFunc("POST /orders/{id}/payment-status", handleUpdatePaymentStatus(db, logger))
	mux.HandleFunc("POST /orders/{id}/tracking", handleAddTracking(db, logger))

	mux.HandleFunc("POST /shipping-rates", handleCreateShippingRate(db, logger))
	mux.HandleFunc("GET /shipping-rates", handleListShippingRates(db, logger))
	mux.HandleFunc("GET /shipping-rates/{id}", handleGetShippingRate(db, logger))
	mux.HandleFunc("PUT /shipping-rates/{id}", handleUpdateShippingRate(db, logger))
	mux.HandleFunc("DELETE /shipping-rates/{id}", handleDeleteShippingRate(db, logger))

	mux.HandleFunc("POST /coupons", handleCreateCoupon(db, logger))
	mux.HandleFunc("GET /coupons", handleListCoupons(db, logger))
	mux.HandleFunc("GET /coupons/{id}", handleGetCoupon(db, logger))
	mux.HandleFunc("PUT /coupons/{id}", handleUpdateCoupon(db, logger))
	mux.HandleFunc("DELETE /coupons/{id}", handleDeleteCoupon(db, logger))
	mux.HandleFunc("POST /coupons/validate", handleValidateCoupon(db, logger))
	mux.HandleFunc("POST /coupons/redeem", handleRedeemCoupon(db, logger))

	return mux
}
