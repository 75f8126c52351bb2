package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type stubExpirer struct {
	calls       atomic.Int64
	shouldPanic bool
}

func (s *stubExpirer) ExpireReservations(now time.Time) int {
	s.calls.Add(1)
	if s.shouldPanic {
		panic("store blew up")
	}
	return 0
}

func TestExpiryWorker_SweepsPeriodically(t *testing.T) {
	stub := &stubExpirer{}
	worker := NewExpiryWorker(stub, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	assert.Eventually(t, func() bool {
		return stub.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-worker.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestExpiryWorker_SurvivesPanickingSweep(t *testing.T) {
	stub := &stubExpirer{shouldPanic: true}
	worker := NewExpiryWorker(stub, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	// The loop must keep sweeping even though every sweep panics.
	assert.Eventually(t, func() bool {
		return stub.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestExpiryWorker_SweepIsTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	stub := &stubExpirer{}
	worker := NewExpiryWorker(stub, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	assert.Eventually(t, func() bool {
		for _, span := range recorder.Ended() {
			if span.Name() == "expire_reservations" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func TestExpiryWorker_StopsPromptly(t *testing.T) {
	stub := &stubExpirer{}
	worker := NewExpiryWorker(stub, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-worker.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not stop within bounded time")
	}
	assert.Equal(t, int64(0), stub.calls.Load())
}
