// Package service implements business logic on top of ports.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	cfotel "github.com/Strob0t/ClientForge/internal/adapter/otel"
	"github.com/Strob0t/ClientForge/internal/adapter/ws"
	"github.com/Strob0t/ClientForge/internal/config"
	"github.com/Strob0t/ClientForge/internal/domain"
	"github.com/Strob0t/ClientForge/internal/domain/booking"
	"github.com/Strob0t/ClientForge/internal/domain/client"
	"github.com/Strob0t/ClientForge/internal/logger"
	"github.com/Strob0t/ClientForge/internal/port/broadcast"
	"github.com/Strob0t/ClientForge/internal/port/cache"
	"github.com/Strob0t/ClientForge/internal/port/calendar"
	"github.com/Strob0t/ClientForge/internal/port/database"
	"github.com/Strob0t/ClientForge/internal/port/messagequeue"
	"github.com/Strob0t/ClientForge/internal/port/summarizer"
)

// ErrUnavailable is returned when an optional upstream is not configured.
var ErrUnavailable = domain.ErrUnavailable

const bookingSuccessMessage = "Thanks! Your request has been received."

// BookingService handles the public intake flow.
type BookingService struct {
	store       database.Store
	queue       messagequeue.Queue
	hub         broadcast.Broadcaster
	cache       cache.Cache
	bookingsTTL time.Duration
	ai          summarizer.Summarizer
	calendar    calendar.Provider
	metrics     *cfotel.Metrics
	now         func() time.Time
}

// NewBookingService creates a BookingService. The summarizer and calendar
// provider are optional and set separately.
func NewBookingService(store database.Store, queue messagequeue.Queue, hub broadcast.Broadcaster, c cache.Cache, cfg *config.Cache) *BookingService {
	return &BookingService{
		store:       store,
		queue:       queue,
		hub:         hub,
		cache:       c,
		bookingsTTL: cfg.BookingsTTL,
		now:         time.Now,
	}
}

// SetSummarizer enables AI summarization of project descriptions.
func (s *BookingService) SetSummarizer(ai summarizer.Summarizer) { s.ai = ai }

// SetCalendar enables the calendar provider.
func (s *BookingService) SetCalendar(p calendar.Provider) { s.calendar = p }

// SetMetrics enables metric recording.
func (s *BookingService) SetMetrics(m *cfotel.Metrics) { s.metrics = m }

// BookCall validates an intake form and stores the prospect as a lead.
// When AI summarization is requested but fails, the booking proceeds with
// the original description.
func (s *BookingService) BookCall(ctx context.Context, req *booking.Request) (_ *booking.Response, err error) {
	ctx, span := cfotel.StartBookingSpan(ctx, string(req.RoleType), req.UseAISummarization)
	defer func() { cfotel.EndSpan(span, err) }()

	if err := booking.Validate(req); err != nil {
		s.recordFailure(ctx, "validation")
		return nil, err
	}

	create := client.FromBooking(req)
	original := strings.TrimSpace(req.ProjectDescription)
	create.ProjectDescription = original
	create.OriginalDescription = original

	if req.UseAISummarization {
		if summary, ok := s.summarize(ctx, original); ok {
			create.ProjectDescription = summary
			create.AISummarized = true
		}
	}

	c, err := s.store.CreateClient(ctx, create)
	if err != nil {
		s.recordFailure(ctx, "store")
		return nil, fmt.Errorf("create client: %w", err)
	}
	ctx = logger.WithClientID(ctx, c.ID)

	s.publish(ctx, messagequeue.SubjectClientBooked, messagequeue.ClientBookedPayload{
		ClientID:     c.ID,
		Email:        c.Email,
		CompanyName:  c.CompanyName,
		RoleType:     string(c.RoleType),
		Budget:       c.Budget,
		Urgency:      c.Urgency,
		AISummarized: c.AISummarized,
	})
	s.hub.BroadcastEvent(ctx, broadcast.EventClientBooked, ws.ClientBookedEvent{
		ClientID:    c.ID,
		Name:        c.FullName(),
		CompanyName: c.CompanyName,
		Urgency:     c.Urgency,
	})
	if s.metrics != nil {
		s.metrics.BookingsSubmitted.Add(ctx, 1, metric.WithAttributes(
			attribute.String("role_type", string(c.RoleType)),
			attribute.Bool("ai_summarized", c.AISummarized),
		))
	}

	slog.InfoContext(ctx, "call booked", "client_id", c.ID, "ai_summarized", c.AISummarized)

	resp := &booking.Response{ClientID: c.ID, Message: bookingSuccessMessage}
	if req.UseAISummarization {
		// The wizard reviews whatever comes back, so a failed summary
		// echoes the original text.
		resp.AISummarizedDescription = c.ProjectDescription
		resp.OriginalDescription = original
	}
	return resp, nil
}

func (s *BookingService) summarize(ctx context.Context, description string) (string, bool) {
	if s.ai == nil {
		slog.InfoContext(ctx, "ai summarization requested but disabled")
		return "", false
	}
	summary, err := s.ai.SummarizeDescription(ctx, description)
	if err != nil {
		slog.WarnContext(ctx, "ai summarization failed, keeping original description", "error", err)
		return "", false
	}
	summary = strings.TrimSpace(summary)
	return summary, summary != ""
}

// UpdateDescription replaces a client's project description, typically
// after the prospect edited the AI summary.
func (s *BookingService) UpdateDescription(ctx context.Context, clientID, description string) error {
	ctx = logger.WithClientID(ctx, clientID)
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.Invalid("description is required")
	}
	if err := s.store.UpdateClientDescription(ctx, clientID, description); err != nil {
		return fmt.Errorf("update description %s: %w", clientID, err)
	}

	s.publish(ctx, messagequeue.SubjectClientSummarized, messagequeue.ClientSummarizedPayload{
		ClientID:    clientID,
		Description: description,
	})
	s.hub.BroadcastEvent(ctx, broadcast.EventSummaryUpdated, ws.ClientChangedEvent{ClientID: clientID})
	return nil
}

// UpcomingBookings reports the client's scheduled calls. Results are cached
// briefly; cache failures fall through to the provider.
func (s *BookingService) UpcomingBookings(ctx context.Context, clientID string) (*booking.UpcomingBookings, error) {
	ctx = logger.WithClientID(ctx, clientID)
	c, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	key := cache.UpcomingBookingsKey(clientID)
	if cached, ok, err := cache.GetJSON[booking.UpcomingBookings](ctx, s.cache, key); err != nil {
		slog.WarnContext(ctx, "bookings cache get failed", "key", key, "error", err)
	} else if ok {
		return cached, nil
	}

	result := &booking.UpcomingBookings{UpcomingEvents: []booking.CalendarEvent{}}
	if s.calendar != nil {
		events, err := s.calendar.UpcomingEvents(ctx, c.Email, s.now())
		if err != nil {
			return nil, fmt.Errorf("upcoming bookings %s: %w", clientID, err)
		}
		result.UpcomingEvents = append(result.UpcomingEvents, events...)
		result.HasUpcomingBookings = len(events) > 0
	}

	if err := cache.SetJSON(ctx, s.cache, key, result, s.bookingsTTL); err != nil {
		slog.WarnContext(ctx, "bookings cache set failed", "key", key, "error", err)
	}
	return result, nil
}

// CreateCalendarEvent places a call for the client on the calendar.
// Missing attendee details are taken from the client record.
func (s *BookingService) CreateCalendarEvent(ctx context.Context, clientID string, req booking.CreateCalendarEventRequest) (*booking.CalendarEvent, error) {
	ctx = logger.WithClientID(ctx, clientID)
	if s.calendar == nil {
		return nil, domain.Unavailable("calendar provider")
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return nil, domain.Invalid("start_time and end_time are required")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, domain.Invalid("end_time must be after start_time")
	}
	if req.StartTime.Before(s.now()) {
		return nil, domain.Invalid("start_time must be in the future")
	}

	c, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		req.Name = c.FullName()
	}
	if req.Email == "" {
		req.Email = c.Email
	}
	if req.Description == "" {
		req.Description = c.ProjectDescription
	}

	ev, err := s.calendar.CreateEvent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create calendar event for %s: %w", clientID, err)
	}
	s.calendarBooked(ctx, clientID, ev)
	return ev, nil
}

// CalendarBooked records a booking made directly on the provider's page,
// as reported by its webhook. Every client with the attendee's email is
// notified.
func (s *BookingService) CalendarBooked(ctx context.Context, email string, ev *booking.CalendarEvent) (int, error) {
	clients, err := s.store.ListClients(ctx, client.ListFilter{Search: email})
	if err != nil {
		return 0, fmt.Errorf("find clients by email: %w", err)
	}
	n := 0
	for i := range clients {
		if !strings.EqualFold(clients[i].Email, email) {
			continue
		}
		s.calendarBooked(ctx, clients[i].ID, ev)
		n++
	}
	return n, nil
}

func (s *BookingService) calendarBooked(ctx context.Context, clientID string, ev *booking.CalendarEvent) {
	ctx = logger.WithClientID(ctx, clientID)
	if err := s.cache.Delete(ctx, cache.UpcomingBookingsKey(clientID)); err != nil {
		slog.WarnContext(ctx, "bookings cache invalidation failed", "client_id", clientID, "error", err)
	}
	start := ev.StartTime.UTC().Format(time.RFC3339)
	s.publish(ctx, messagequeue.SubjectCalendarBooked, messagequeue.CalendarBookedPayload{
		ClientID:  clientID,
		EventID:   ev.ID,
		StartTime: start,
	})
	s.hub.BroadcastEvent(ctx, broadcast.EventCalendarBooked, ws.CalendarBookedEvent{
		ClientID:  clientID,
		EventID:   ev.ID,
		StartTime: start,
	})
}

func (s *BookingService) publish(ctx context.Context, subject string, payload any) {
	if err := publishJSON(ctx, s.queue, subject, payload); err != nil {
		slog.ErrorContext(ctx, "publish failed", "subject", subject, "error", err)
	}
}

func (s *BookingService) recordFailure(ctx context.Context, reason string) {
	if s.metrics != nil {
		s.metrics.BookingsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

// publishJSON marshals payload and publishes it. A nil queue is a no-op.
func publishJSON(ctx context.Context, q messagequeue.Queue, subject string, payload any) error {
	if q == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	return q.Publish(ctx, subject, data)
}
