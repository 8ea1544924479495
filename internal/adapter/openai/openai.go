// Package openai implements the summarizer port on the OpenAI Responses API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	cfotel "github.com/Strob0t/ClientForge/internal/adapter/otel"
	"github.com/Strob0t/ClientForge/internal/config"
	"github.com/Strob0t/ClientForge/internal/domain/timeline"
	"github.com/Strob0t/ClientForge/internal/port/summarizer"
	"github.com/Strob0t/ClientForge/internal/resilience"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("openai: empty response")

const summarizeInstructions = `You rewrite a prospective client's project description for a software consultancy.
Produce a concise brief of at most five sentences covering the goal, the users, the key features and any constraints.
Keep every concrete fact (numbers, dates, technologies, integrations). Do not invent details. Plain text only.`

const timelineInstructions = `You extract a project timeline from a document written by a consultant.
Return project-level fields and one entry per milestone in document order.
Dates must be YYYY-MM-DD; use an empty string when a date is absent or cannot be determined.
Copy text fields verbatim; use an empty string for anything not present.`

// Summarizer calls the Responses API for description summaries and
// structured timeline extraction.
type Summarizer struct {
	client    oai.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	breaker   *resilience.Breaker
	limiter   *resilience.Limiter
	metrics   *cfotel.Metrics
	loc       *time.Location
}

var _ summarizer.Summarizer = (*Summarizer)(nil)

// New creates a Summarizer. Extra options are appended after the API key,
// which lets tests point the client at a local server.
func New(cfg *config.AI, breaker *resilience.Breaker, opts ...option.RequestOption) *Summarizer {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Transport: cfotel.Transport(nil)}),
	}
	breaker.SetFailurePredicate(isProviderFailure)
	return &Summarizer{
		client:    oai.NewClient(append(base, opts...)...),
		model:     cfg.Model,
		maxTokens: cfg.MaxOutputTokens,
		timeout:   cfg.Timeout,
		breaker:   breaker,
		limiter:   resilience.NewLimiter(cfg.MaxConcurrent),
		loc:       time.Local,
	}
}

// SetMetrics enables metric recording.
func (s *Summarizer) SetMetrics(m *cfotel.Metrics) { s.metrics = m }

// SetLocation sets the zone ISO dates returned by the model are interpreted in.
func (s *Summarizer) SetLocation(loc *time.Location) { s.loc = loc }

// SummarizeDescription condenses a project description into a short brief.
func (s *Summarizer) SummarizeDescription(ctx context.Context, description string) (string, error) {
	params := responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: oai.Int(s.maxTokens),
		Instructions:    oai.String(summarizeInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: oai.String(description),
		},
	}

	text, err := s.call(ctx, "summarize", params)
	if err != nil {
		return "", err
	}
	return text, nil
}

// aiTimeline is the structured-output shape of a parsed timeline.
type aiTimeline struct {
	Duration   string        `json:"duration" jsonschema:"description=Overall project duration as written"`
	StartDate  string        `json:"start_date" jsonschema:"description=Project start date YYYY-MM-DD or empty"`
	EndDate    string        `json:"end_date" jsonschema:"description=Project end date YYYY-MM-DD or empty"`
	Engagement string        `json:"engagement" jsonschema:"description=Engagement model such as fixed price or hourly"`
	Deposit    string        `json:"deposit" jsonschema:"description=Upfront deposit as written"`
	HasSprints bool          `json:"has_sprints" jsonschema:"description=True if work is organised in sprints"`
	Milestones []aiMilestone `json:"milestones"`
}

type aiMilestone struct {
	Number             string `json:"number"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	Effort             string `json:"effort"`
	AcceptanceCriteria string `json:"acceptance_criteria"`
	Payment            string `json:"payment"`
	KeyDeliverables    string `json:"key_deliverables"`
	Sprint             string `json:"sprint"`
}

var timelineSchema = generateSchema[aiTimeline]()

// ParseTimeline extracts a timeline with structured output. Milestones the
// model returns without a title or any date are skipped with a note in Errors.
func (s *Summarizer) ParseTimeline(ctx context.Context, text string) (timeline.ParseResult, error) {
	params := responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: oai.Int(s.maxTokens),
		Instructions:    oai.String(timelineInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: oai.String(text),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "ProjectTimeline",
					Schema:      timelineSchema,
					Strict:      oai.Bool(true),
					Description: oai.String("Project info and milestones"),
					Type:        "json_schema",
				},
			},
		},
	}

	out, err := s.call(ctx, "parse_timeline", params)
	if err != nil {
		return timeline.ParseResult{}, err
	}

	var parsed aiTimeline
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return timeline.ParseResult{}, fmt.Errorf("openai: decode timeline: %w", err)
	}
	return parsed.toParseResult(s.loc), nil
}

func (t *aiTimeline) toParseResult(loc *time.Location) timeline.ParseResult {
	res := timeline.ParseResult{
		ProjectInfo: timeline.ProjectInfo{
			Duration:   t.Duration,
			StartDate:  timeline.ParseDate(t.StartDate, loc),
			EndDate:    timeline.ParseDate(t.EndDate, loc),
			Engagement: t.Engagement,
			Deposit:    t.Deposit,
			HasSprints: t.HasSprints,
		},
		Milestones: []timeline.Milestone{},
		Errors:     []string{},
	}
	for _, am := range t.Milestones {
		m := timeline.Milestone{
			MilestoneNumber:    am.Number,
			Title:              strings.TrimSpace(am.Title),
			Description:        am.Description,
			StartDate:          timeline.ParseDate(am.StartDate, loc),
			EndDate:            timeline.ParseDate(am.EndDate, loc),
			Effort:             am.Effort,
			AcceptanceCriteria: am.AcceptanceCriteria,
			Payment:            am.Payment,
		}
		if am.KeyDeliverables != "" || am.Sprint != "" {
			m.Extra = map[string]string{}
			if am.KeyDeliverables != "" {
				m.Extra["key_deliverables"] = am.KeyDeliverables
			}
			if am.Sprint != "" {
				m.Extra["sprint"] = am.Sprint
			}
		}
		if !m.Emittable() {
			res.Errors = append(res.Errors, fmt.Sprintf("skipped milestone %q: missing title or dates", am.Title))
			continue
		}
		res.Milestones = append(res.Milestones, m)
	}
	return res
}

// call runs one Responses request through the limiter and breaker and records telemetry.
func (s *Summarizer) call(ctx context.Context, op string, params responses.ResponseNewParams) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	ctx, span := cfotel.StartAISpan(ctx, op, s.model)
	start := time.Now()

	var text string
	err := s.limiter.Run(ctx, func(ctx context.Context) error {
		return s.breaker.Do(ctx, func(ctx context.Context) error {
			resp, err := s.client.Responses.New(ctx, params)
			if err != nil {
				return err
			}
			text = strings.TrimSpace(resp.OutputText())
			if text == "" {
				return ErrEmptyResponse
			}
			return nil
		})
	})

	s.record(ctx, op, time.Since(start), err)
	cfotel.EndSpan(span, err)
	if err != nil {
		slog.WarnContext(ctx, "openai call failed", "operation", op, "model", s.model, "error", err)
		return "", fmt.Errorf("openai %s: %w", op, err)
	}
	return text, nil
}

func (s *Summarizer) record(ctx context.Context, op string, d time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(attribute.String("operation", op), attribute.String("outcome", outcome))
	s.metrics.AIDuration.Record(ctx, d.Seconds(), attrs)
	if op == "summarize" {
		s.metrics.Summaries.Add(ctx, 1, attrs)
	}
}

// isProviderFailure keeps request errors (bad input, auth) from tripping
// the breaker; rate limits and server errors still count.
func isProviderFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}
