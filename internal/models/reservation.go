package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the state of a reservation
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusFulfilled ReservationStatus = "fulfilled"
	ReservationStatusExpired   ReservationStatus = "expired"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Reservation is a temporary hold of product stock. It is created only
// by a successful reserve and never deleted; it only transitions status.
// The sole in-scope transition is active -> expired, performed by the
// expiry worker. Fulfilled and cancelled are terminal states reserved
// for order-completion integration.
type Reservation struct {
	ReservationID string            `json:"reservation_id"`
	ProductID     string            `json:"product_id"`
	Quantity      int               `json:"quantity"`
	OrderID       string            `json:"order_id"`
	Status        ReservationStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	ExpiresAt     time.Time         `json:"expires_at"`
}

// NewReservation creates an active reservation expiring after ttl.
func NewReservation(productID string, quantity int, orderID string, ttl time.Duration) Reservation {
	now := time.Now().UTC()
	return Reservation{
		ReservationID: uuid.New().String(),
		ProductID:     productID,
		Quantity:      quantity,
		OrderID:       orderID,
		Status:        ReservationStatusActive,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
}

// IsExpiredAt reports whether the reservation's expiry is strictly
// before now.
func (r *Reservation) IsExpiredAt(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}
