package logger

import (
	"context"
	"log/slog"
)

// ctxField identifies a request-scoped value copied onto every log record.
type ctxField int

const (
	fieldRequestID ctxField = iota
	fieldClientID
)

// attrKeys maps each field to the attribute name it is logged under.
var attrKeys = [...]string{
	fieldRequestID: "request_id",
	fieldClientID:  "client_id",
}

// WithRequestID returns a new context carrying the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, fieldRequestID, id)
}

// RequestID extracts the request ID from the context, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(fieldRequestID).(string)
	return id
}

// WithClientID tags the context with the client a booking or timeline
// import is acting on, so every record logged below it names the client.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, fieldClientID, id)
}

// ClientID extracts the client ID from the context, or "".
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(fieldClientID).(string)
	return id
}

// contextAttrs returns the request-scoped attributes present on ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for f, key := range attrKeys {
		if v, _ := ctx.Value(ctxField(f)).(string); v != "" {
			attrs = append(attrs, slog.String(key, v))
		}
	}
	return attrs
}
