package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "clientforge"

// StartBookingSpan starts a span for an intake submission.
func StartBookingSpan(ctx context.Context, roleType string, useAI bool) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "booking.submit",
		trace.WithAttributes(
			attribute.String("booking.role_type", roleType),
			attribute.Bool("booking.use_ai", useAI),
		),
	)
}

// StartAISpan starts a span for a call to the AI provider.
func StartAISpan(ctx context.Context, operation, model string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "ai."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("ai.operation", operation),
			attribute.String("ai.model", model),
		),
	)
}

// StartImportSpan starts a span for a timeline import.
func StartImportSpan(ctx context.Context, clientID string, milestones int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "timeline.import",
		trace.WithAttributes(
			attribute.String("client.id", clientID),
			attribute.Int("timeline.milestones", milestones),
		),
	)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
