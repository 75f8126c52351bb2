package models

import (
	"errors"
	"fmt"
)

// ErrorCode represents standardized error codes surfaced by the store
type ErrorCode string

const (
	ErrorCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrorCodeInsufficientStock ErrorCode = "INSUFFICIENT_STOCK"
	ErrorCodeInvalidQuantity   ErrorCode = "INVALID_QUANTITY"
)

// NotFoundError is returned when an operation references an unknown
// product.
type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product '%s' not found", e.ProductID)
}

// InsufficientStockError is returned when a reservation asks for more
// than the currently available stock. Available carries the count at
// the time of the check so callers can report it.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for '%s': requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// InvalidQuantityError is returned when a non-positive quantity reaches
// the store.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be positive, got %d", e.Quantity)
}

// Error type guards

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

func IsInvalidQuantity(err error) bool {
	var target *InvalidQuantityError
	return errors.As(err, &target)
}

// GetErrorCode extracts the error code from a store error.
func GetErrorCode(err error) ErrorCode {
	switch {
	case IsNotFound(err):
		return ErrorCodeNotFound
	case IsInsufficientStock(err):
		return ErrorCodeInsufficientStock
	case IsInvalidQuantity(err):
		return ErrorCodeInvalidQuantity
	default:
		return ""
	}
}
