package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"inventory-reservation-service/internal/store"
)

// InventoryMetrics is the container for all inventory-specific
// instruments. Metrics observe engine outcomes; they never influence
// them.
type InventoryMetrics struct {
	reservationCounter metric.Int64Counter
	failureCounter     metric.Int64Counter
	lowStockCounter    metric.Int64UpDownCounter
	reservationLatency metric.Float64Histogram
	stockGauge         metric.Int64ObservableGauge
}

// NewInventoryMetrics creates the instruments. snapshot feeds the
// observable stock-level gauge on every export.
func NewInventoryMetrics(meter metric.Meter, snapshot func() []store.StockSnapshot) (*InventoryMetrics, error) {
	m := &InventoryMetrics{}

	var err error
	if m.reservationCounter, err = meter.Int64Counter(
		"inventory.reservations_total",
		metric.WithDescription("Total number of inventory reservations"),
		metric.WithUnit("{reservations}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create reservation counter: %w", err)
	}

	if m.failureCounter, err = meter.Int64Counter(
		"inventory.reservation_failures_total",
		metric.WithDescription("Total failed reservation attempts"),
		metric.WithUnit("{failures}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failure counter: %w", err)
	}

	if m.lowStockCounter, err = meter.Int64UpDownCounter(
		"inventory.low_stock_products",
		metric.WithDescription("Number of products with stock below threshold"),
		metric.WithUnit("{products}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create low stock counter: %w", err)
	}

	if m.reservationLatency, err = meter.Float64Histogram(
		"inventory.reservation_duration_seconds",
		metric.WithDescription("Time taken to process a reservation"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create reservation latency histogram: %w", err)
	}

	if m.stockGauge, err = meter.Int64ObservableGauge(
		"inventory.stock_level",
		metric.WithDescription("Current stock level per product"),
		metric.WithUnit("{items}"),
		metric.WithInt64Callback(func(_ context.Context, observer metric.Int64Observer) error {
			for _, s := range snapshot() {
				observer.Observe(int64(s.Available),
					metric.WithAttributes(
						attribute.String("product.id", s.ProductID),
						attribute.String("product.name", s.Name),
					))
			}
			return nil
		}),
	); err != nil {
		return nil, fmt.Errorf("failed to create stock level gauge: %w", err)
	}

	return m, nil
}

// RecordReservation records a granted reservation.
func (m *InventoryMetrics) RecordReservation(ctx context.Context, productID string, quantity int) {
	if m == nil {
		return
	}
	m.reservationCounter.Add(ctx, int64(quantity),
		metric.WithAttributes(attribute.String("product.id", productID)))
}

// RecordReservationFailure records a denied reservation attempt.
func (m *InventoryMetrics) RecordReservationFailure(ctx context.Context, productID, reason string) {
	if m == nil {
		return
	}
	m.failureCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("product.id", productID),
			attribute.String("reason", reason),
		))
}

// RecordLowStock records a product crossing the low-stock threshold.
func (m *InventoryMetrics) RecordLowStock(ctx context.Context, productID string) {
	if m == nil {
		return
	}
	m.lowStockCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("product.id", productID)))
}

// RecordReservationLatency records how long a reserve call took.
func (m *InventoryMetrics) RecordReservationLatency(ctx context.Context, productID string, seconds float64) {
	if m == nil {
		return
	}
	m.reservationLatency.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("product.id", productID)))
}
