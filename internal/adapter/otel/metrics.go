package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "clientforge"

// Metrics holds all ClientForge metric instruments.
type Metrics struct {
	BookingsSubmitted metric.Int64Counter
	BookingsFailed    metric.Int64Counter
	Summaries         metric.Int64Counter
	TimelineImported  metric.Int64Counter
	AIDuration        metric.Float64Histogram
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.BookingsSubmitted, err = meter.Int64Counter("clientforge.bookings.submitted",
		metric.WithDescription("Number of intake bookings accepted"))
	if err != nil {
		return nil, err
	}

	m.BookingsFailed, err = meter.Int64Counter("clientforge.bookings.failed",
		metric.WithDescription("Number of intake bookings rejected or failed"))
	if err != nil {
		return nil, err
	}

	m.Summaries, err = meter.Int64Counter("clientforge.summaries",
		metric.WithDescription("Number of AI description summaries, by outcome"))
	if err != nil {
		return nil, err
	}

	m.TimelineImported, err = meter.Int64Counter("clientforge.timeline.imported",
		metric.WithDescription("Number of timeline events created by import"))
	if err != nil {
		return nil, err
	}

	m.AIDuration, err = meter.Float64Histogram("clientforge.ai.duration_seconds",
		metric.WithDescription("Latency of AI provider calls"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
