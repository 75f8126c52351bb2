package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ReservationExpirer is the store surface the worker needs.
type ReservationExpirer interface {
	ExpireReservations(now time.Time) int
}

// ExpiryWorker periodically sweeps the reservation table for stale
// active reservations and releases their stock. A failing sweep is
// logged and the loop keeps running for the lifetime of the process.
type ExpiryWorker struct {
	store    ReservationExpirer
	interval time.Duration
	tracer   trace.Tracer
	done     chan struct{}
}

// NewExpiryWorker creates a worker sweeping every interval.
func NewExpiryWorker(store ReservationExpirer, interval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{
		store:    store,
		interval: interval,
		tracer:   otel.Tracer("inventory.tasks"),
		done:     make(chan struct{}),
	}
}

// Run blocks, sweeping on every tick until ctx is cancelled.
func (w *ExpiryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.done)

	log.Info().Dur("interval", w.interval).Msg("Reservation expiry worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping reservation expiry worker")
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				log.Error().Err(err).Msg("Reservation expiry sweep failed")
			}
		}
	}
}

// sweep runs one expiry pass. A panic inside the store must not take
// down the worker loop.
func (w *ExpiryWorker) sweep(ctx context.Context) (err error) {
	_, span := w.tracer.Start(ctx, "expire_reservations")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("expiry sweep panicked: %v", r)
		}
	}()

	expired := w.store.ExpireReservations(time.Now().UTC())
	span.SetAttributes(attribute.Int("reservations.expired", expired))
	if expired > 0 {
		log.Info().Int("count", expired).Msg("Expired stale reservations")
	}
	return nil
}

// Done is closed once the worker loop has exited; main waits on it
// during graceful shutdown.
func (w *ExpiryWorker) Done() <-chan struct{} {
	return w.done
}
