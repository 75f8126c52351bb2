package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_Available(t *testing.T) {
	p := Product{ProductID: "P1", Quantity: 100, Reserved: 30}
	assert.Equal(t, 70, p.Available())

	p.Reserved = 100
	assert.Equal(t, 0, p.Available())

	// Clamped, never negative.
	p.Reserved = 120
	assert.Equal(t, 0, p.Available())
}

func TestProduct_Status(t *testing.T) {
	const threshold = 10

	tests := []struct {
		name     string
		quantity int
		reserved int
		want     StockStatus
	}{
		{"in stock", 100, 0, StockStatusInStock},
		{"at threshold is in stock", 100, 90, StockStatusInStock},
		{"below threshold", 100, 91, StockStatusLowStock},
		{"one left", 100, 99, StockStatusLowStock},
		{"out of stock", 100, 100, StockStatusOutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Quantity: tt.quantity, Reserved: tt.reserved}
			assert.Equal(t, tt.want, p.Status(threshold))
		})
	}
}

func TestNewReservation(t *testing.T) {
	before := time.Now().UTC()
	r := NewReservation("OLJCESPC7Z", 5, "order-42", 15*time.Minute)
	after := time.Now().UTC()

	assert.NotEmpty(t, r.ReservationID)
	assert.Equal(t, "OLJCESPC7Z", r.ProductID)
	assert.Equal(t, 5, r.Quantity)
	assert.Equal(t, "order-42", r.OrderID)
	assert.Equal(t, ReservationStatusActive, r.Status)

	require.False(t, r.CreatedAt.Before(before))
	require.False(t, r.CreatedAt.After(after))
	assert.Equal(t, r.CreatedAt.Add(15*time.Minute), r.ExpiresAt)

	other := NewReservation("OLJCESPC7Z", 5, "order-42", 15*time.Minute)
	assert.NotEqual(t, r.ReservationID, other.ReservationID)
}

func TestReservation_IsExpiredAt(t *testing.T) {
	now := time.Now().UTC()
	r := Reservation{ExpiresAt: now}

	// Expiry is strict: equal timestamps are not yet expired.
	assert.False(t, r.IsExpiredAt(now))
	assert.False(t, r.IsExpiredAt(now.Add(-time.Second)))
	assert.True(t, r.IsExpiredAt(now.Add(time.Nanosecond)))
}

func TestErrorGuards(t *testing.T) {
	notFound := &NotFoundError{ProductID: "X"}
	insufficient := &InsufficientStockError{ProductID: "X", Requested: 5, Available: 2}
	invalid := &InvalidQuantityError{Quantity: -1}

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(insufficient))
	assert.True(t, IsInsufficientStock(insufficient))
	assert.True(t, IsInvalidQuantity(invalid))

	assert.Equal(t, ErrorCodeNotFound, GetErrorCode(notFound))
	assert.Equal(t, ErrorCodeInsufficientStock, GetErrorCode(insufficient))
	assert.Equal(t, ErrorCodeInvalidQuantity, GetErrorCode(invalid))

	assert.Contains(t, insufficient.Error(), "requested 5")
	assert.Contains(t, insufficient.Error(), "available 2")
}

func TestNewProductStock(t *testing.T) {
	p := Product{
		ProductID: "9SIQT8TOJO",
		Name:      "Optical Tube Assembly",
		Quantity:  25,
		Reserved:  20,
		Warehouse: "us-west-2a",
	}

	view := NewProductStock(p, 10)
	assert.Equal(t, 5, view.Available)
	assert.Equal(t, StockStatusLowStock, view.Status)
	assert.Equal(t, "us-west-2a", view.Warehouse)
}
