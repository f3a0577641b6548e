package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03":
			return ErrorClassTransient
		case "23505", "23503", "23502", "23514":
			return ErrorClassPermanent
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, optionally narrowed to a named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrWarehouseNotFound     = errors.New("warehouse not found")
	ErrInventoryItemNotFound = errors.New("inventory item not found")
	ErrStockAlertNotFound    = errors.New("stock alert not found")
	ErrRestockOrderNotFound  = errors.New("restock order not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrShippingRateNotFound  = errors.New("shipping rate not found")
	ErrCouponNotFound        = errors.New("coupon not found")
	ErrLockTimeout           = errors.New("lock timeout")
)

// NotFound reports whether err belongs to the missing-entity family.
func NotFound(err error) bool {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, ErrWarehouseNotFound),
		errors.Is(err, ErrInventoryItemNotFound),
		errors.Is(err, ErrStockAlertNotFound),
		errors.Is(err, ErrRestockOrderNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrShippingRateNotFound),
		errors.Is(err, ErrCouponNotFound):
		return true
	}
	return false
}

// ValidationError signals malformed or insufficient input: short stock,
// unknown status values, empty tracking numbers, inverted coupon windows.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// InvalidStateError signals an operation that is illegal for the record's
// current lifecycle state, such as cancelling a shipped order.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

func InvalidStatef(format string, args ...any) error {
	return &InvalidStateError{Msg: fmt.Sprintf(format, args...)}
}

func IsInvalidState(err error) bool {
	var se *InvalidStateError
	return errors.As(err, &se)
}
