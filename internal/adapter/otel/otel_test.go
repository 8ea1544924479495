package otel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Strob0t/ClientForge/internal/config"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), config.OTEL{Enabled: false})
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestNewMetricsOnNoopProvider(t *testing.T) {
	m, err := NewMetrics()
	if err != nil {
		t.Fatal(err)
	}
	m.BookingsSubmitted.Add(context.Background(), 1)
	m.AIDuration.Record(context.Background(), 0.25)
}

func TestEndSpanWithError(t *testing.T) {
	_, span := StartBookingSpan(context.Background(), "founder", true)
	EndSpan(span, errors.New("boom"))
	if span.IsRecording() {
		t.Error("span should be ended")
	}
}

func TestHTTPMiddlewarePassesThrough(t *testing.T) {
	h := HTTPMiddleware("clientforge")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/clients", http.NoBody))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}
