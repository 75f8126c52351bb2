package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"inventory-reservation-service/internal/models"
)

// Config holds store configuration
type Config struct {
	ReservationTTL    time.Duration
	LowStockThreshold int
}

// Validate validates the store configuration
func (c Config) Validate() error {
	if c.ReservationTTL < time.Second {
		return fmt.Errorf("reservation TTL must be at least 1 second, got %v", c.ReservationTTL)
	}
	if c.LowStockThreshold < 1 {
		return fmt.Errorf("low stock threshold must be positive, got %d", c.LowStockThreshold)
	}
	return nil
}

// StockSnapshot is a per-product availability view used by the metrics
// gauge callback and the read-side cache writer.
type StockSnapshot struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Available int    `json:"available"`
}

// MemoryStore is the in-memory reservation engine. It owns the product
// ledger and the reservation table; a single mutex serializes every
// operation so each read-check-write sequence is atomic.
//
// No component outside this package touches the products or
// reservations maps.
type MemoryStore struct {
	mu           sync.Mutex
	products     map[string]*models.Product
	order        []string // catalog insertion order, for stable listings
	reservations map[string]*models.Reservation
	cfg          Config

	// expiryHook is invoked, outside the lock, for every reservation the
	// sweep transitions to expired. Set during wiring, before any
	// concurrent use.
	expiryHook func(models.Reservation)
}

// NewMemoryStore creates a store seeded with the given catalog. Seed
// products are inserted in order with a zero reserved counter.
func NewMemoryStore(cfg Config, seed []models.Product) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store configuration: %w", err)
	}

	s := &MemoryStore{
		products:     make(map[string]*models.Product, len(seed)),
		order:        make([]string, 0, len(seed)),
		reservations: make(map[string]*models.Reservation),
		cfg:          cfg,
	}

	for _, p := range seed {
		if _, exists := s.products[p.ProductID]; exists {
			continue
		}
		product := p
		product.Reserved = 0
		s.products[product.ProductID] = &product
		s.order = append(s.order, product.ProductID)
	}

	return s, nil
}

// SetExpiryHook registers a callback invoked for each expired
// reservation. Must be called before the store is shared across
// goroutines.
func (s *MemoryStore) SetExpiryHook(fn func(models.Reservation)) {
	s.expiryHook = fn
}

// LowStockThreshold returns the configured low-stock boundary.
func (s *MemoryStore) LowStockThreshold() int {
	return s.cfg.LowStockThreshold
}

// ListProducts returns a copy of every product in catalog order.
func (s *MemoryStore) ListProducts() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]models.Product, 0, len(s.order))
	for _, id := range s.order {
		products = append(products, *s.products[id])
	}
	return products
}

// GetProduct returns a copy of the product, if present.
func (s *MemoryStore) GetProduct(productID string) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return models.Product{}, false
	}
	return *product, true
}

// Reserve attempts to hold quantity units of a product. The
// availability check and the counter mutation run under the same lock
// acquisition, so concurrent reservations can never jointly oversell.
func (s *MemoryStore) Reserve(productID string, quantity int, orderID string) (models.Reservation, error) {
	if quantity <= 0 {
		return models.Reservation{}, &models.InvalidQuantityError{Quantity: quantity}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return models.Reservation{}, &models.NotFoundError{ProductID: productID}
	}

	available := product.Available()
	if available < quantity {
		return models.Reservation{}, &models.InsufficientStockError{
			ProductID: productID,
			Requested: quantity,
			Available: available,
		}
	}

	product.Reserved += quantity

	reservation := models.NewReservation(productID, quantity, orderID, s.cfg.ReservationTTL)
	s.reservations[reservation.ReservationID] = &reservation

	log.Info().
		Str("reservation_id", reservation.ReservationID).
		Str("product_id", productID).
		Int("quantity", quantity).
		Int("available_after", product.Available()).
		Msg("Reserved stock")

	return reservation, nil
}

// Release returns quantity units of a product's reserved stock. It is
// deliberately not tied to a reservation ID: callers are trusted to
// pass the quantity they originally held, and over-release clamps the
// reserved counter at zero rather than failing.
func (s *MemoryStore) Release(productID string, quantity int) bool {
	if quantity <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return false
	}

	product.Reserved -= quantity
	if product.Reserved < 0 {
		product.Reserved = 0
	}

	log.Info().
		Str("product_id", productID).
		Int("quantity", quantity).
		Int("available_after", product.Available()).
		Msg("Released stock")

	return true
}

// GetReservation returns a copy of the reservation, if present.
func (s *MemoryStore) GetReservation(reservationID string) (models.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[reservationID]
	if !ok {
		return models.Reservation{}, false
	}
	return *reservation, true
}

// ExpireReservations transitions every active reservation whose expiry
// is strictly before now to expired and returns its held quantity to
// the product. Returns the number of reservations expired. Repeated
// sweeps with non-decreasing now are idempotent: expired reservations
// are never revisited.
func (s *MemoryStore) ExpireReservations(now time.Time) int {
	s.mu.Lock()

	var expired []models.Reservation
	for _, res := range s.reservations {
		if res.Status != models.ReservationStatusActive || !res.IsExpiredAt(now) {
			continue
		}

		res.Status = models.ReservationStatusExpired
		if product, ok := s.products[res.ProductID]; ok {
			product.Reserved -= res.Quantity
			if product.Reserved < 0 {
				product.Reserved = 0
			}
		}
		expired = append(expired, *res)

		log.Info().
			Str("reservation_id", res.ReservationID).
			Str("product_id", res.ProductID).
			Int("quantity", res.Quantity).
			Msg("Expired reservation")
	}

	s.mu.Unlock()

	// Hook runs after the lock is released so it may do I/O.
	if s.expiryHook != nil {
		for _, res := range expired {
			s.expiryHook(res)
		}
	}

	return len(expired)
}

// Snapshot returns current availability for every product in catalog
// order.
func (s *MemoryStore) Snapshot() []StockSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]StockSnapshot, 0, len(s.order))
	for _, id := range s.order {
		p := s.products[id]
		snapshot = append(snapshot, StockSnapshot{
			ProductID: p.ProductID,
			Name:      p.Name,
			Available: p.Available(),
		})
	}
	return snapshot
}
