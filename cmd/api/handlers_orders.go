package main

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/averin/backoffice/internal/config"
	"github.com/averin/backoffice/internal/store"
)

func handleCreateOrder(db *sql.DB, cfg *config.Config, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID          int64  `json:"user_id"`
			ShippingAddress string `json:"shipping_address"`
			BillingAddress  string `json:"billing_address"`
			ShippingRateID  *int64 `json:"shipping_rate_id"`
			Notes           string `json:"notes"`
			Items           []struct {
				ProductID   int64 `json:"product_id"`
				WarehouseID int64 `json:"warehouse_id"`
				Quantity    int   `json:"quantity"`
			} `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var items []store.OrderItemRequest
		for _, item := range req.Items {
			items = append(items, store.OrderItemRequest{
				ProductID:   item.ProductID,
				WarehouseID: item.WarehouseID,
				Quantity:    item.Quantity,
			})
		}

		order, err := store.CreateOrder(r.Context(), db, cfg.Orders.TaxRate, store.CreateOrderRequest{
			UserID:          req.UserID,
			ShippingAddress: req.ShippingAddress,
			BillingAddress:  req.BillingAddress,
			ShippingRateID:  req.ShippingRateID,
			Notes:           req.Notes,
			Items:           items,
		})
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusCreated, order)
	}
}

func handleGetOrder(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid order ID")
			return
		}

		order, err := store.GetOrder(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}

// handleListOrders pages orders newest first. Regular users are scoped to
// their own orders via user_id; the authentication layer in front of this
// service decides who may omit it.
func handleListOrders(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userID int64
		if v := r.URL.Query().Get("user_id"); v != "" {
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid user_id")
				return
			}
			userID = parsed
		}

		cursor := r.URL.Query().Get("cursor")
		limit := queryInt(r, "limit", 20, 1, 100)

		result, err := store.ListOrdersCursor(r.Context(), db, userID, cursor, limit)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

func handleCancelOrder(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid order ID")
			return
		}

		order, err := store.CancelOrder(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}

func handleUpdateOrderStatus(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid order ID")
			return
		}

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		order, err := store.UpdateOrderStatus(r.Context(), db, id, req.Status)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}

func handleUpdatePaymentStatus(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid order ID")
			return
		}

		var req struct {
			PaymentStatus string `json:"payment_status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		order, err := store.UpdatePaymentStatus(r.Context(), db, id, req.PaymentStatus)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}

func handleAddTracking(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid order ID")
			return
		}

		var req struct {
			TrackingNumber string `json:"tracking_number"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		order, err := store.AddTracking(r.Context(), db, id, req.TrackingNumber)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, order)
	}
}

type shippingRatePayload struct {
	Name          string  `json:"name"`
	Carrier       string  `json:"carrier"`
	Rate          float64 `json:"rate"`
	EstimatedDays int     `json:"estimated_days"`
	IsActive      bool    `json:"is_active"`
}

func (p shippingRatePayload) toRequest() store.ShippingRateRequest {
	return store.ShippingRateRequest{
		Name:          p.Name,
		Carrier:       p.Carrier,
		Rate:          decimal.NewFromFloat(p.Rate),
		EstimatedDays: p.EstimatedDays,
		IsActive:      p.IsActive,
	}
}

func handleCreateShippingRate(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shippingRatePayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		rate, err := store.CreateShippingRate(r.Context(), db, req.toRequest())
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusCreated, rate)
	}
}

func handleGetShippingRate(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid shipping rate ID")
			return
		}

		rate, err := store.GetShippingRate(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, rate)
	}
}

func handleListShippingRates(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := r.URL.Query().Get("active") == "true"

		rates, err := store.ListShippingRates(r.Context(), db, activeOnly)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, rates)
	}
}

func handleUpdateShippingRate(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid shipping rate ID")
			return
		}

		var req shippingRatePayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		rate, err := store.UpdateShippingRate(r.Context(), db, id, req.toRequest())
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, rate)
	}
}

func handleDeleteShippingRate(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid shipping rate ID")
			return
		}

		if err := store.DeleteShippingRate(r.Context(), db, id); err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

type couponPayload struct {
	Code              string    `json:"code"`
	DiscountType      string    `json:"discount_type"`
	DiscountValue     float64   `json:"discount_value"`
	MinimumOrderValue float64   `json:"minimum_order_value"`
	ValidFrom         time.Time `json:"valid_from"`
	ValidUntil        time.Time `json:"valid_until"`
	MaxUses           int       `json:"max_uses"`
	IsActive          bool      `json:"is_active"`
}

func (p couponPayload) toRequest() store.CouponRequest {
	return store.CouponRequest{
		Code:              p.Code,
		DiscountType:      p.DiscountType,
		DiscountValue:     decimal.NewFromFloat(p.DiscountValue),
		MinimumOrderValue: decimal.NewFromFloat(p.MinimumOrderValue),
		ValidFrom:         p.ValidFrom,
		ValidUntil:        p.ValidUntil,
		MaxUses:           p.MaxUses,
		IsActive:          p.IsActive,
	}
}

func handleCreateCoupon(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req couponPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		coupon, err := store.CreateCoupon(r.Context(), db, req.toRequest())
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusCreated, coupon)
	}
}

func handleUpdateCoupon(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid coupon ID")
			return
		}

		var req couponPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		coupon, err := store.UpdateCoupon(r.Context(), db, id, req.toRequest())
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, coupon)
	}
}

func handleGetCoupon(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid coupon ID")
			return
		}

		coupon, err := store.GetCoupon(r.Context(), db, id)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, coupon)
	}
}

func handleListCoupons(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		coupons, err := store.ListCoupons(r.Context(), db)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, coupons)
	}
}

func handleDeleteCoupon(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid coupon ID")
			return
		}

		if err := store.DeleteCoupon(r.Context(), db, id); err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusNoContent, nil)
	}
}

func handleValidateCoupon(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code       string  `json:"code"`
			OrderValue float64 `json:"order_value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Code == "" {
			respondError(w, http.StatusBadRequest, "coupon code is required")
			return
		}

		quote, err := store.ValidateCoupon(r.Context(), db, req.Code, decimal.NewFromFloat(req.OrderValue))
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, quote)
	}
}

func handleRedeemCoupon(db *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Code == "" {
			respondError(w, http.StatusBadRequest, "coupon code is required")
			return
		}

		coupon, err := store.RedeemCoupon(r.Context(), db, req.Code)
		if err != nil {
			handleError(w, logger, err)
			return
		}

		respondJSON(w, http.StatusOK, coupon)
	}
}
