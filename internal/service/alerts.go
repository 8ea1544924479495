package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Strob0t/ClientForge/internal/port/messagequeue"
	"github.com/Strob0t/ClientForge/internal/port/notifier"
)

// alertSubjects are the queue subjects forwarded to the team.
var alertSubjects = []string{
	messagequeue.SubjectClientBooked,
	messagequeue.SubjectCalendarBooked,
	messagequeue.SubjectTimelineImported,
}

// AlertService forwards intake events from the queue to the team's
// notification channels.
type AlertService struct {
	queue     messagequeue.Queue
	notifiers []notifier.Notifier
	publicURL string
}

// NewAlertService creates an alert service. publicURL is the base for links
// back to the admin API and may be empty.
func NewAlertService(queue messagequeue.Queue, publicURL string, notifiers ...notifier.Notifier) *AlertService {
	return &AlertService{
		queue:     queue,
		notifiers: notifiers,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Enabled reports whether any channel is configured.
func (s *AlertService) Enabled() bool { return len(s.notifiers) > 0 }

// Start subscribes to the alert subjects. The returned function cancels
// every subscription.
func (s *AlertService) Start(ctx context.Context) (func(), error) {
	var cancels []func()
	stop := func() {
		for _, c := range cancels {
			c()
		}
	}
	for _, subject := range alertSubjects {
		cancel, err := s.queue.Subscribe(ctx, subject, s.handle)
		if err != nil {
			stop()
			return nil, fmt.Errorf("subscribe %s: %w", subject, err)
		}
		cancels = append(cancels, cancel)
	}
	return stop, nil
}

// handle delivers one event to every channel. It fails, and so asks for a
// redelivery, only when no channel accepted the alert.
func (s *AlertService) handle(ctx context.Context, subject string, data []byte) error {
	note, err := s.notificationFor(subject, data)
	if err != nil {
		return err
	}
	if len(s.notifiers) == 0 {
		return nil
	}

	errs := make([]error, len(s.notifiers))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range s.notifiers {
		g.Go(func() error {
			if err := n.Send(gctx, note); err != nil {
				slog.WarnContext(ctx, "alert delivery failed", "channel", n.Name(), "subject", subject, "error", err)
				errs[i] = fmt.Errorf("%s: %w", n.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(s.notifiers) {
		return errors.Join(errs...)
	}
	return nil
}

func (s *AlertService) notificationFor(subject string, data []byte) (notifier.Notification, error) {
	switch subject {
	case messagequeue.SubjectClientBooked:
		var p messagequeue.ClientBookedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return notifier.Notification{}, fmt.Errorf("decode %s: %w", subject, err)
		}
		who := p.CompanyName
		if who == "" {
			who = p.Email
		}
		fields := []notifier.Field{
			{Label: "Email", Value: p.Email},
			{Label: "Role", Value: strings.ReplaceAll(p.RoleType, "_", " ")},
			{Label: "Budget", Value: formatMoney(p.Budget)},
			{Label: "Urgency", Value: fmt.Sprintf("%d/10", p.Urgency)},
		}
		msg := "A prospect booked a discovery call through the intake form."
		if p.AISummarized {
			msg += " The project description was summarized by AI."
		}
		return notifier.Notification{
			Title:   "New lead: " + who,
			Message: msg,
			Level:   notifier.LevelInfo,
			Source:  subject,
			URL:     s.clientURL(p.ClientID),
			Fields:  fields,
		}, nil

	case messagequeue.SubjectCalendarBooked:
		var p messagequeue.CalendarBookedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return notifier.Notification{}, fmt.Errorf("decode %s: %w", subject, err)
		}
		starts := p.StartTime
		if t, err := time.Parse(time.RFC3339, p.StartTime); err == nil {
			starts = t.UTC().Format("Mon 2 Jan 2006 15:04 MST")
		}
		return notifier.Notification{
			Title:   "Discovery call scheduled",
			Message: "A lead picked a time on the booking calendar.",
			Level:   notifier.LevelSuccess,
			Source:  subject,
			URL:     s.clientURL(p.ClientID),
			Fields:  []notifier.Field{{Label: "Starts", Value: starts}},
		}, nil

	case messagequeue.SubjectTimelineImported:
		var p messagequeue.TimelineImportedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return notifier.Notification{}, fmt.Errorf("decode %s: %w", subject, err)
		}
		level := notifier.LevelInfo
		if p.Skipped > 0 {
			level = notifier.LevelWarning
		}
		return notifier.Notification{
			Title:   "Timeline imported",
			Message: fmt.Sprintf("%d event(s) created, %d milestone(s) skipped.", p.Created, p.Skipped),
			Level:   level,
			Source:  subject,
			URL:     s.clientURL(p.ClientID),
		}, nil
	}
	return notifier.Notification{}, fmt.Errorf("no alert for subject %q", subject)
}

func (s *AlertService) clientURL(clientID string) string {
	if s.publicURL == "" || clientID == "" {
		return ""
	}
	return s.publicURL + "/api/clients/" + clientID + "/overview"
}

// formatMoney renders 15000.5 as "$15,000.50".
func formatMoney(v float64) string {
	whole := int64(v)
	cents := int64((v-float64(whole))*100 + 0.5)
	if cents == 100 {
		whole++
		cents = 0
	}
	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if cents == 0 {
		return "$" + b.String()
	}
	return fmt.Sprintf("$%s.%02d", b.String(), cents)
}
