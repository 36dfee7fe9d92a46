package lsp

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("rekah.lsp")
	meter  = otel.Meter("rekah.lsp")

	metricsOnce      sync.Once
	metricsErr       error
	operationLatency metric.Float64Histogram
	operationTotal   metric.Int64Counter
	spawnTotal       metric.Int64Counter
)

// initMetrics registers the package's instruments once. If registration
// fails (e.g. a duplicate instrument name in a test process), every
// subsequent recording call becomes a no-op rather than a crash.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error
		operationLatency, err = meter.Float64Histogram(
			"lsp.operation.latency",
			metric.WithDescription("Latency of LSP client operations, in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		operationTotal, err = meter.Int64Counter(
			"lsp.operation.total",
			metric.WithDescription("Count of LSP client operations by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		spawnTotal, err = meter.Int64Counter(
			"lsp.spawn.total",
			metric.WithDescription("Count of clangd subprocess spawns by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startOperationSpan(ctx context.Context, operation, uri string, sessionID string) (context.Context, trace.Span) {
	_ = initMetrics()
	return tracer.Start(ctx, "lsp."+operation, trace.WithAttributes(
		attribute.String("lsp.operation", operation),
		attribute.String("lsp.uri", uri),
		attribute.String("lsp.session_id", sessionID),
	))
}

func recordOperation(ctx context.Context, operation string, start time.Time, err error) {
	if initMetrics() != nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("lsp.operation", operation),
		attribute.String("lsp.outcome", outcome),
	))
	operationLatency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("lsp.operation", operation),
	))
}

func recordSpawn(ctx context.Context, ok bool) {
	if initMetrics() != nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	spawnTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("lsp.outcome", outcome)))
}
