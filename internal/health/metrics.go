package health

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/opsdeck/opsdeck/internal/health"

// Metrics holds OpenTelemetry instruments for probe statistics.
type Metrics struct {
	probeDuration metric.Float64Histogram
	probeTotal    metric.Int64Counter
}

// NewMetrics creates probe metrics instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	probeDuration, err := meter.Float64Histogram(
		"health.probe.duration",
		metric.WithDescription("Duration of component health probes in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	probeTotal, err := meter.Int64Counter(
		"health.probe.total",
		metric.WithDescription("Total number of component health probes"),
		metric.WithUnit("{probe}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		probeDuration: probeDuration,
		probeTotal:    probeTotal,
	}, nil
}

// recordProbe records one probe attempt. Safe to call on a nil receiver so
// the service works without metrics wired up (tests, worker dry runs).
func (m *Metrics) recordProbe(ctx context.Context, outcome Outcome) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("probe.status", string(outcome.Status)),
		attribute.Bool("probe.aborted", outcome.Aborted()),
	}

	m.probeDuration.Record(ctx, float64(outcome.ResponseTimeMs)/1000, metric.WithAttributes(attrs...))
	m.probeTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
