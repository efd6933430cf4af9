package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/turmas-api/internal/observability"
)

type instrumented struct {
	next   Store
	logger zerolog.Logger
	tracer trace.Tracer
}

// Instrument decorates a store with metrics, tracing and debug logging.
func Instrument(next Store, logger zerolog.Logger) Store {
	observability.RegisterMetrics()
	return &instrumented{
		next:   next,
		logger: logger.With().Str("component", "kvstore").Logger(),
		tracer: observability.Tracer("kvstore"),
	}
}

func (s *instrumented) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.observe(ctx, "get", []string{key}, func(ctx context.Context) error {
		var err error
		value, found, err = s.next.Get(ctx, key)
		return err
	})
	return value, found, err
}

func (s *instrumented) Set(ctx context.Context, key, value string) error {
	return s.observe(ctx, "set", []string{key}, func(ctx context.Context) error {
		return s.next.Set(ctx, key, value)
	})
}

func (s *instrumented) Remove(ctx context.Context, key string) error {
	return s.observe(ctx, "remove", []string{key}, func(ctx context.Context) error {
		return s.next.Remove(ctx, key)
	})
}

func (s *instrumented) RemoveMany(ctx context.Context, keys ...string) error {
	return s.observe(ctx, "remove_many", keys, func(ctx context.Context) error {
		return s.next.RemoveMany(ctx, keys...)
	})
}

func (s *instrumented) Close() error {
	return s.next.Close()
}

func (s *instrumented) observe(ctx context.Context, op string, keys []string, fn func(context.Context) error) error {
	spanCtx, span := s.tracer.Start(ctx, "kvstore."+op, trace.WithAttributes(
		attribute.StringSlice("kv.keys", keys),
	))
	defer span.End()

	start := time.Now()
	err := fn(spanCtx)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = "canceled"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	observability.StoreOperations().WithLabelValues(op, outcome).Inc()
	observability.StoreLatency().WithLabelValues(op).Observe(elapsed.Seconds())

	event := s.logger.Debug()
	if err != nil {
		event = s.logger.Warn().Err(err)
	}
	event.Str("op", op).Strs("keys", keys).Dur("elapsed", elapsed).Msg("kv operation")

	return err
}
