// Package calendar provides an HTTP client for the scheduling provider's bookings API.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	cfotel "github.com/Strob0t/ClientForge/internal/adapter/otel"
	"github.com/Strob0t/ClientForge/internal/config"
	"github.com/Strob0t/ClientForge/internal/domain/booking"
	"github.com/Strob0t/ClientForge/internal/port/calendar"
	"github.com/Strob0t/ClientForge/internal/resilience"
)

// StatusError is a non-2xx reply from the provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("calendar provider returned %d: %s", e.StatusCode, e.Body)
}

// providerBooking is the provider's wire format.
type providerBooking struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Status    string    `json:"status"`
	MeetURL   string    `json:"meetingUrl"`
}

func (b providerBooking) toEvent() booking.CalendarEvent {
	return booking.CalendarEvent{
		ID:        b.ID,
		Title:     b.Title,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Status:    b.Status,
		MeetURL:   b.MeetURL,
	}
}

type createBookingRequest struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Attendee    attendee  `json:"attendee"`
	Description string    `json:"description,omitempty"`
}

type attendee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Client talks to the scheduling provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

var _ calendar.Provider = (*Client)(nil)

// NewClient creates a calendar client from config.
func NewClient(cfg *config.Calendar) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfotel.Transport(nil),
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
// Provider 4xx replies do not count as failures.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	b.SetFailurePredicate(func(err error) bool {
		var se *StatusError
		if errors.As(err, &se) {
			return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
		}
		return !errors.Is(err, context.Canceled)
	})
	c.breaker = b
}

// UpcomingEvents lists non-cancelled bookings for email starting after now, soonest first.
func (c *Client) UpcomingEvents(ctx context.Context, email string, now time.Time) ([]booking.CalendarEvent, error) {
	q := url.Values{}
	q.Set("attendeeEmail", email)
	q.Set("afterStart", now.UTC().Format(time.RFC3339))

	data, err := c.doRequest(ctx, http.MethodGet, "/bookings?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	var result struct {
		Bookings []providerBooking `json:"bookings"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal bookings: %w", err)
	}

	events := make([]booking.CalendarEvent, 0, len(result.Bookings))
	for _, b := range result.Bookings {
		if strings.EqualFold(b.Status, "cancelled") || !b.StartTime.After(now) {
			continue
		}
		events = append(events, b.toEvent())
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartTime.Before(events[j].StartTime) })
	return events, nil
}

// CreateEvent books a call.
func (c *Client) CreateEvent(ctx context.Context, req booking.CreateCalendarEventRequest) (*booking.CalendarEvent, error) {
	body, err := json.Marshal(createBookingRequest{
		Start:       req.StartTime.UTC(),
		End:         req.EndTime.UTC(),
		Attendee:    attendee{Name: req.Name, Email: req.Email},
		Description: req.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal booking: %w", err)
	}

	data, err := c.doRequest(ctx, http.MethodPost, "/bookings", body)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	var created providerBooking
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("unmarshal booking: %w", err)
	}
	ev := created.toEvent()
	return &ev, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func(ctx context.Context) error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		}
		result = data
		return nil
	}

	if c.breaker == nil {
		return result, call(ctx)
	}
	return result, c.breaker.Do(ctx, call)
}
