// Package discord posts team alerts to a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	cfotel "github.com/Strob0t/ClientForge/internal/adapter/otel"
	"github.com/Strob0t/ClientForge/internal/port/notifier"
)

const providerName = "discord"

// Notifier sends alerts to Discord via webhook.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
	now        func() time.Time
}

var _ notifier.Notifier = (*Notifier)(nil)

// NewNotifier creates a Discord notifier for the given webhook URL.
func NewNotifier(webhookURL string, timeout time.Duration) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout, Transport: cfotel.Transport(http.DefaultTransport)},
		now:        time.Now,
	}
}

func (n *Notifier) Name() string { return providerName }

type webhook struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      *footer      `json:"footer,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type footer struct {
	Text string `json:"text"`
}

// Send posts n as a single embed.
func (n *Notifier) Send(ctx context.Context, note notifier.Notification) error {
	if n.webhookURL == "" {
		return notifier.ErrNotConfigured
	}

	e := embed{
		Title:       note.Title,
		Description: note.Message,
		URL:         note.URL,
		Color:       levelColor(note.Level),
		Timestamp:   n.now().UTC().Format(time.RFC3339),
	}
	for _, f := range note.Fields {
		e.Fields = append(e.Fields, embedField{Name: f.Label, Value: f.Value, Inline: true})
	}
	if note.Source != "" {
		e.Footer = &footer{Text: "Source: " + note.Source}
	}

	body, err := json.Marshal(webhook{Embeds: []embed{e}})
	if err != nil {
		return fmt.Errorf("discord marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req) //nolint:gosec // webhook URL from trusted config
	if err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Discord answers 204 on success.
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("discord API %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func levelColor(level string) int {
	switch level {
	case notifier.LevelSuccess:
		return 0x2ECC71
	case notifier.LevelError:
		return 0xE74C3C
	case notifier.LevelWarning:
		return 0xF39C12
	default:
		return 0x3498DB
	}
}
