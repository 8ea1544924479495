package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	cfotel "github.com/Strob0t/ClientForge/internal/adapter/otel"
	"github.com/Strob0t/ClientForge/internal/adapter/ws"
	"github.com/Strob0t/ClientForge/internal/domain"
	"github.com/Strob0t/ClientForge/internal/domain/timeline"
	"github.com/Strob0t/ClientForge/internal/logger"
	"github.com/Strob0t/ClientForge/internal/port/broadcast"
	"github.com/Strob0t/ClientForge/internal/port/database"
	"github.com/Strob0t/ClientForge/internal/port/messagequeue"
	"github.com/Strob0t/ClientForge/internal/port/summarizer"
)

// TimelineService parses timeline documents and manages timeline events.
type TimelineService struct {
	store   database.Store
	queue   messagequeue.Queue
	hub     broadcast.Broadcaster
	ai      summarizer.Summarizer
	metrics *cfotel.Metrics
	loc     *time.Location
	now     func() time.Time
}

// NewTimelineService creates a TimelineService. Bare dates are read in the
// local zone unless SetLocation is called.
func NewTimelineService(store database.Store, queue messagequeue.Queue, hub broadcast.Broadcaster) *TimelineService {
	return &TimelineService{
		store: store,
		queue: queue,
		hub:   hub,
		loc:   time.Local,
		now:   time.Now,
	}
}

// SetSummarizer enables AI timeline parsing.
func (s *TimelineService) SetSummarizer(ai summarizer.Summarizer) { s.ai = ai }

// SetMetrics enables metric recording.
func (s *TimelineService) SetMetrics(m *cfotel.Metrics) { s.metrics = m }

// SetLocation sets the zone bare dates are interpreted in.
func (s *TimelineService) SetLocation(loc *time.Location) { s.loc = loc }

// Parse runs the rule-based parser. It never fails.
func (s *TimelineService) Parse(text string) timeline.ParseResult {
	return timeline.ParseInLocation(text, s.loc)
}

// ParseWithAI extracts a timeline with the AI provider. clientID is only
// checked for existence so callers get a 404 before paying for a model call.
func (s *TimelineService) ParseWithAI(ctx context.Context, clientID, text string) (timeline.ParseResult, error) {
	ctx = logger.WithClientID(ctx, clientID)
	if s.ai == nil {
		return timeline.ParseResult{}, domain.Unavailable("ai timeline parsing")
	}
	if clientID != "" {
		if _, err := s.store.GetClient(ctx, clientID); err != nil {
			return timeline.ParseResult{}, err
		}
	}
	return s.ai.ParseTimeline(ctx, text)
}

// ImportText parses text with the requested parser and imports the result.
// A dry run returns the events that would be created without storing them.
func (s *TimelineService) ImportText(ctx context.Context, clientID string, req timeline.ImportRequest) (*timeline.ImportResult, error) {
	var (
		parsed timeline.ParseResult
		err    error
	)
	if req.UseAI {
		parsed, err = s.ParseWithAI(ctx, clientID, req.Text)
		if err != nil {
			return nil, err
		}
	} else {
		parsed = s.Parse(req.Text)
	}

	if req.DryRun {
		return s.preview(clientID, parsed), nil
	}
	return s.importParsed(ctx, clientID, parsed, req.UseAI)
}

// Import stores the milestones of an already parsed timeline.
func (s *TimelineService) Import(ctx context.Context, clientID string, parsed timeline.ParseResult) (*timeline.ImportResult, error) {
	return s.importParsed(ctx, clientID, parsed, false)
}

// importParsed creates events one at a time, in milestone order. It stops at
// the first failure and returns the events created so far with the error.
func (s *TimelineService) importParsed(ctx context.Context, clientID string, parsed timeline.ParseResult, usedAI bool) (_ *timeline.ImportResult, err error) {
	ctx = logger.WithClientID(ctx, clientID)
	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	ctx, span := cfotel.StartImportSpan(ctx, clientID, len(parsed.Milestones))
	defer func() { cfotel.EndSpan(span, err) }()

	reqs, skipped := s.toRequests(clientID, parsed.Milestones)
	res := &timeline.ImportResult{
		ProjectInfo: parsed.ProjectInfo,
		Events:      make([]timeline.Event, 0, len(reqs)),
		Skipped:     skipped,
		Warnings:    parsed.Errors,
	}

	for i := range reqs {
		ev, err := s.createEvent(ctx, &reqs[i])
		if err != nil {
			s.recordImport(ctx, len(res.Events), usedAI)
			return res, fmt.Errorf("failed to create timeline event %q (created %d of %d): %w",
				reqs[i].Title, len(res.Events), len(reqs), err)
		}
		res.Events = append(res.Events, *ev)
	}

	s.recordImport(ctx, len(res.Events), usedAI)
	if err := publishJSON(ctx, s.queue, messagequeue.SubjectTimelineImported, messagequeue.TimelineImportedPayload{
		ClientID: clientID,
		Created:  len(res.Events),
		Skipped:  skipped,
		UsedAI:   usedAI,
	}); err != nil {
		slog.ErrorContext(ctx, "publish failed", "subject", messagequeue.SubjectTimelineImported, "error", err)
	}
	s.hub.BroadcastEvent(ctx, broadcast.EventTimelineImported, ws.TimelineEvent{ClientID: clientID, Count: len(res.Events)})

	slog.InfoContext(ctx, "timeline imported", "client_id", clientID, "created", len(res.Events), "skipped", skipped)
	return res, nil
}

func (s *TimelineService) preview(clientID string, parsed timeline.ParseResult) *timeline.ImportResult {
	reqs, skipped := s.toRequests(clientID, parsed.Milestones)
	res := &timeline.ImportResult{
		ProjectInfo: parsed.ProjectInfo,
		Events:      make([]timeline.Event, 0, len(reqs)),
		Skipped:     skipped,
		Warnings:    parsed.Errors,
	}
	for _, r := range reqs {
		res.Events = append(res.Events, timeline.Event{
			ClientID:    r.ClientID,
			EventType:   r.EventType,
			Title:       r.Title,
			Description: r.Description,
			EventDate:   r.EventDate,
			NextSteps:   r.NextSteps,
		})
	}
	return res
}

// toRequests converts the milestones that have a title and a date.
func (s *TimelineService) toRequests(clientID string, milestones []timeline.Milestone) ([]timeline.CreateEventRequest, int) {
	keep := make([]timeline.Milestone, 0, len(milestones))
	for i := range milestones {
		if milestones[i].Emittable() {
			keep = append(keep, milestones[i])
		}
	}
	return timeline.ToTimelineEvents(clientID, keep, s.now()), len(milestones) - len(keep)
}

func (s *TimelineService) createEvent(ctx context.Context, req *timeline.CreateEventRequest) (*timeline.Event, error) {
	if err := timeline.ValidateCreateEvent(req); err != nil {
		return nil, err
	}
	return s.store.CreateTimelineEvent(ctx, *req)
}

func (s *TimelineService) recordImport(ctx context.Context, n int, usedAI bool) {
	if s.metrics != nil && n > 0 {
		s.metrics.TimelineImported.Add(ctx, int64(n), metric.WithAttributes(attribute.Bool("used_ai", usedAI)))
	}
}

// List returns a client's timeline in date order.
func (s *TimelineService) List(ctx context.Context, clientID string) ([]timeline.Event, error) {
	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	return s.store.ListTimelineEvents(ctx, clientID)
}

// Create adds a single event to a client's timeline.
func (s *TimelineService) Create(ctx context.Context, req timeline.CreateEventRequest) (*timeline.Event, error) {
	ev, err := s.createEvent(ctx, &req)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastEvent(ctx, broadcast.EventTimelineChanged, ws.TimelineEvent{ClientID: ev.ClientID, EventID: ev.ID, Count: 1})
	return ev, nil
}

// Delete removes a timeline event.
func (s *TimelineService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTimelineEvent(ctx, id); err != nil {
		return err
	}
	s.hub.BroadcastEvent(ctx, broadcast.EventTimelineChanged, ws.TimelineEvent{EventID: id})
	return nil
}
