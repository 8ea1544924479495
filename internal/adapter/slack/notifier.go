// Package slack posts team alerts to a Slack incoming webhook.
package slack

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

const providerName = "slack"

// maxFields is the Block Kit limit for fields in one section.
const maxFields = 10

// Notifier sends alerts to Slack via incoming webhook.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

var _ notifier.Notifier = (*Notifier)(nil)

// NewNotifier creates a Slack notifier for the given webhook URL.
func NewNotifier(webhookURL string, timeout time.Duration) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout, Transport: cfotel.Transport(http.DefaultTransport)},
	}
}

func (n *Notifier) Name() string { return providerName }

type message struct {
	Text   string  `json:"text"` // fallback for push notifications
	Blocks []block `json:"blocks"`
}

type block struct {
	Type     string `json:"type"`
	Text     *text  `json:"text,omitempty"`
	Fields   []text `json:"fields,omitempty"`
	Elements []text `json:"elements,omitempty"`
}

type text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func mrkdwn(s string) text { return text{Type: "mrkdwn", Text: s} }

// Send posts n as a Block Kit message.
func (n *Notifier) Send(ctx context.Context, note notifier.Notification) error {
	if n.webhookURL == "" {
		return notifier.ErrNotConfigured
	}

	title := fmt.Sprintf("%s %s", levelTag(note.Level), note.Title)
	msg := message{
		Text: title,
		Blocks: []block{
			{Type: "header", Text: &text{Type: "plain_text", Text: title}},
		},
	}
	if note.Message != "" {
		msg.Blocks = append(msg.Blocks, block{Type: "section", Text: &text{Type: "mrkdwn", Text: note.Message}})
	}
	if len(note.Fields) > 0 {
		fields := make([]text, 0, min(len(note.Fields), maxFields))
		for _, f := range note.Fields[:min(len(note.Fields), maxFields)] {
			fields = append(fields, mrkdwn(fmt.Sprintf("*%s*\n%s", f.Label, f.Value)))
		}
		msg.Blocks = append(msg.Blocks, block{Type: "section", Fields: fields})
	}

	var ctxLine []text
	if note.URL != "" {
		ctxLine = append(ctxLine, mrkdwn(fmt.Sprintf("<%s|Open in ClientForge>", note.URL)))
	}
	if note.Source != "" {
		ctxLine = append(ctxLine, mrkdwn(fmt.Sprintf("_Source: %s_", note.Source)))
	}
	if len(ctxLine) > 0 {
		msg.Blocks = append(msg.Blocks, block{Type: "context", Elements: ctxLine})
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req) //nolint:gosec // webhook URL from trusted config
	if err != nil {
		return fmt.Errorf("slack send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("slack API %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func levelTag(level string) string {
	switch level {
	case notifier.LevelSuccess:
		return "[OK]"
	case notifier.LevelError:
		return "[ERROR]"
	case notifier.LevelWarning:
		return "[WARN]"
	default:
		return "[INFO]"
	}
}
