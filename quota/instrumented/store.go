// Package instrumentedquota decorates any quota.Store with OpenTelemetry
// spans, a latency histogram, and an outcome counter. It is composed around
// the interface rather than tied to a concrete backend, and it never alters
// the inner store's results.
package instrumentedquota

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/open-rails/gatekit/quota"
)

const scope = "github.com/open-rails/gatekit/quota"

// Store wraps an inner quota.Store with tracing and metrics.
type Store struct {
	inner   quota.Store
	tracer  trace.Tracer
	latency metric.Float64Histogram
	ops     metric.Int64Counter
}

// New wraps inner using the global tracer and meter providers.
func New(inner quota.Store) (*Store, error) {
	meter := otel.Meter(scope)
	latency, err := meter.Float64Histogram("quota.store.duration",
		metric.WithDescription("Latency of quota store operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	ops, err := meter.Int64Counter("quota.store.calls",
		metric.WithDescription("Quota store operations by outcome"))
	if err != nil {
		return nil, err
	}
	return &Store{
		inner:   inner,
		tracer:  otel.Tracer(scope),
		latency: latency,
		ops:     ops,
	}, nil
}

func (s *Store) observe(ctx context.Context, op string, user uuid.UUID, fn func(ctx context.Context) error) {
	ctx, span := s.tracer.Start(ctx, "quota."+op, trace.WithAttributes(
		attribute.String("quota.op", op),
		attribute.String("user.id", user.String()),
	))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", status),
	)
	s.latency.Record(ctx, elapsed.Seconds(), attrs)
	s.ops.Add(ctx, 1, attrs)
}

func (s *Store) Remaining(ctx context.Context, user uuid.UUID) (int, error) {
	var v int
	var err error
	s.observe(ctx, "remaining", user, func(ctx context.Context) error {
		v, err = s.inner.Remaining(ctx, user)
		return err
	})
	return v, err
}

func (s *Store) TryConsume(ctx context.Context, user uuid.UUID, amount int) (quota.Result, error) {
	var res quota.Result
	var err error
	s.observe(ctx, "try_consume", user, func(ctx context.Context) error {
		res, err = s.inner.TryConsume(ctx, user, amount)
		return err
	})
	return res, err
}

func (s *Store) Set(ctx context.Context, user uuid.UUID, value int) error {
	var err error
	s.observe(ctx, "set", user, func(ctx context.Context) error {
		err = s.inner.Set(ctx, user, value)
		return err
	})
	return err
}

func (s *Store) Initialize(ctx context.Context, user uuid.UUID, total int) error {
	var err error
	s.observe(ctx, "initialize", user, func(ctx context.Context) error {
		err = s.inner.Initialize(ctx, user, total)
		return err
	})
	return err
}
