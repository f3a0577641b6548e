package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ErrorClassPermanent},
		{"serialization failure", &pq.Error{Code: "40001"}, ErrorClassSerialization},
		{"deadlock", &pq.Error{Code: "40P01"}, ErrorClassDeadlock},
		{"lock not available", &pq.Error{Code: "55P03"}, ErrorClassTransient},
		{"unique violation", &pq.Error{Code: "23505"}, ErrorClassPermanent},
		{"foreign key violation", &pq.Error{Code: "23503"}, ErrorClassPermanent},
		{"no rows", sql.ErrNoRows, ErrorClassPermanent},
		{"wrapped serialization", fmt.Errorf("commit: %w", &pq.Error{Code: "40001"}), ErrorClassSerialization},
		{"plain error", errors.New("boom"), ErrorClassPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pq.Error{Code: "40001"}))
	assert.True(t, IsRetryable(&pq.Error{Code: "40P01"}))
	assert.True(t, IsRetryable(&pq.Error{Code: "55P03"}))
	assert.False(t, IsRetryable(&pq.Error{Code: "23505"}))
	assert.False(t, IsRetryable(sql.ErrNoRows))
	assert.False(t, IsRetryable(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "products_sku_key"}

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "products_sku_key"))
	assert.False(t, IsUniqueViolation(err, "orders_order_number_key"))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}, ""))
}

func TestErrorTaxonomy(t *testing.T) {
	vErr := Validationf("insufficient inventory for %s: available %d", "Widget", 3)
	assert.True(t, IsValidation(vErr))
	assert.False(t, IsInvalidState(vErr))
	assert.Equal(t, "insufficient inventory for Widget: available 3", vErr.Error())

	sErr := InvalidStatef("cannot cancel order in status %q", "shipped")
	assert.True(t, IsInvalidState(sErr))
	assert.False(t, IsValidation(sErr))

	wrapped := fmt.Errorf("create order: %w", vErr)
	assert.True(t, IsValidation(wrapped))

	assert.True(t, NotFound(ErrProductNotFound))
	assert.True(t, NotFound(fmt.Errorf("get: %w", ErrOrderNotFound)))
	assert.False(t, NotFound(vErr))
	assert.False(t, NotFound(errors.New("boom")))
}
