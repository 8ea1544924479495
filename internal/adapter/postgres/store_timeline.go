package postgres

import (
	"context"
	"fmt"

	"github.com/Strob0t/ClientForge/internal/domain/timeline"
)

// --- Timeline ---

func scanTimelineEvent(row scannable) (timeline.Event, error) {
	var e timeline.Event
	err := row.Scan(&e.ID, &e.ClientID, &e.EventType, &e.Title, &e.Description,
		&e.EventDate, &e.NextSteps, &e.CreatedAt)
	return e, err
}

func (s *Store) ListTimelineEvents(ctx context.Context, clientID string) ([]timeline.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, client_id, event_type, title, description, event_date, next_steps, created_at
		 FROM timeline_events WHERE client_id = $1 ORDER BY event_date ASC, created_at ASC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list timeline events: %w", err)
	}
	return collect(rows, scanTimelineEvent)
}

func (s *Store) CreateTimelineEvent(ctx context.Context, req timeline.CreateEventRequest) (*timeline.Event, error) {
	e, err := scanTimelineEvent(s.pool.QueryRow(ctx,
		`INSERT INTO timeline_events (client_id, event_type, title, description, event_date, next_steps)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, client_id, event_type, title, description, event_date, next_steps, created_at`,
		req.ClientID, req.EventType, req.Title, req.Description, req.EventDate, req.NextSteps))
	if err != nil {
		return nil, notFoundWrap(err, "create timeline event %q", req.Title)
	}
	return &e, nil
}

func (s *Store) DeleteTimelineEvent(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM timeline_events WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete timeline event %s", id)
}
