// Package intakeclient is the HTTP client the terminal booking wizard uses
// to reach the ClientForge intake API.
package intakeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	cfotel "github.com/Strob0t/ClientForge/internal/adapter/otel"
	"github.com/Strob0t/ClientForge/internal/config"
	"github.com/Strob0t/ClientForge/internal/domain"
	"github.com/Strob0t/ClientForge/internal/domain/booking"
)

const maxResponseBytes = 1 << 20

// APIError is a non-2xx reply from the intake API.
type APIError struct {
	StatusCode int
	Message    string
	Fields     booking.FieldErrors
}

func (e *APIError) Error() string {
	return fmt.Sprintf("intake api returned %d: %s", e.StatusCode, e.Message)
}

// UserMessage returns the text shown in the wizard banner. Server faults
// return "" so the caller falls back to its generic message.
func (e *APIError) UserMessage() string {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return "Too many requests. Please wait a moment and try again."
	case e.StatusCode >= 500:
		return ""
	default:
		return e.Message
	}
}

// Unwrap exposes field errors or the domain sentinel matching the status.
func (e *APIError) Unwrap() error {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrValidation
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusServiceUnavailable:
		return domain.ErrUnavailable
	default:
		return nil
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Client calls the public intake endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client from the wizard config.
func New(cfg *config.Wizard) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: cfotel.Transport(nil),
		},
	}
}

// BookCall submits the booking form. The Idempotency-Key is derived from
// the form contents, so resubmitting the same form after a lost response
// replays the stored result instead of creating a second lead.
func (c *Client) BookCall(ctx context.Context, req *booking.Request) (*booking.Response, error) {
	var resp booking.Response
	if err := c.do(ctx, http.MethodPost, "/api/clients/book-call", req, &resp); err != nil {
		return nil, fmt.Errorf("book call: %w", err)
	}
	return &resp, nil
}

// UpdateDescription replaces the stored project description.
func (c *Client) UpdateDescription(ctx context.Context, clientID, description string) error {
	path := "/api/clients/" + url.PathEscape(clientID) + "/description"
	if err := c.do(ctx, http.MethodPatch, path, booking.UpdateDescriptionRequest{Description: description}, nil); err != nil {
		return fmt.Errorf("update description: %w", err)
	}
	return nil
}

// UpcomingBookings reports the calls already scheduled for a client.
func (c *Client) UpcomingBookings(ctx context.Context, clientID string) (*booking.UpcomingBookings, error) {
	var resp booking.UpcomingBookings
	path := "/api/clients/" + url.PathEscape(clientID) + "/upcoming-bookings"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("upcoming bookings: %w", err)
	}
	return &resp, nil
}

// idempotencyNamespace scopes name-based keys to intake submissions.
var idempotencyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("clientforge:intake"))

func idempotencyKey(method, path string, body []byte) string {
	name := make([]byte, 0, len(method)+len(path)+len(body)+2)
	name = append(name, method...)
	name = append(name, ' ')
	name = append(name, path...)
	name = append(name, '\n')
	name = append(name, body...)
	return uuid.NewSHA1(idempotencyNamespace, name).String()
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	var idemKey string
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		idemKey = idempotencyKey(method, path, data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost && idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil && eb.Error != "" {
		apiErr.Message = eb.Error
		if len(eb.Fields) > 0 {
			apiErr.Fields = booking.FieldErrors(eb.Fields)
		}
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
