// Package db holds what the storage drivers share: post-commit event hand-off
// and scope instrumentation.
package db

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sharethrift/marketplace/internal/api/metrics"
	"github.com/sharethrift/marketplace/internal/core/domain"
	"github.com/sharethrift/marketplace/internal/core/ports"
)

const tracerName = "github.com/sharethrift/marketplace/internal/infrastructure/db"

// StartScope opens the span that wraps one unit-of-work scope.
func StartScope(ctx context.Context, driver string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "uow.WithTransaction",
		trace.WithAttributes(attribute.String("db.driver", driver)))
}

// EndScope records the outcome of a scope on its span and in metrics.
func EndScope(span trace.Span, driver string, err error) {
	result := "committed"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrConcurrencyConflict):
		result = "conflict"
	default:
		result = "rolled_back"
	}
	metrics.UnitOfWorkTotal.WithLabelValues(driver, result).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	span.End()
}

// PublishCommitted drains rec and hands its events to the event log and the
// bus. It runs only after a successful commit. Failures are logged and not
// returned: the write is already durable and the caller's operation succeeded.
func PublishCommitted(ctx context.Context, rec *domain.EventRecorder, log ports.EventLog, bus ports.EventBus, logger zerolog.Logger) {
	domainEvents, integrationEvents := rec.Drain()
	events := append(domainEvents, integrationEvents...)
	if len(events) == 0 {
		return
	}
	// The request may be cancelled right after commit; delivery must not be.
	ctx = context.WithoutCancel(ctx)
	if log != nil {
		if err := log.Append(ctx, events); err != nil {
			logger.Warn().Err(err).Int("count", len(events)).Msg("failed to append committed events to event log")
		}
	}
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, events...); err != nil {
		logger.Error().Err(err).Int("count", len(events)).Msg("failed to publish committed events")
	}
}
