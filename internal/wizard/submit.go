package wizard

import (
	"context"
	"errors"
	"strings"

	"github.com/Strob0t/ClientForge/internal/domain/booking"
)

const progressCeiling = 90

// beginSubmitLocked marks a submission as in flight and returns the call
// that performs it.
func (w *Wizard) beginSubmitLocked(aiPath bool) (followUp, error) {
	if w.st.submitting {
		return nil, ErrBusy
	}
	w.st.submitting = true
	w.st.bannerError = ""
	w.st.progress = 0
	req := w.st.form
	gen := w.gen

	w.sched.every(taskProgress, w.cfg.ProgressInterval, func() bool {
		return w.tickProgress(gen)
	})

	return func(ctx context.Context) error {
		return w.submit(ctx, gen, &req, aiPath)
	}, nil
}

// tickProgress advances the cosmetic progress indicator. It stops at the
// ceiling until the response arrives.
func (w *Wizard) tickProgress(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.sessionLocked(gen) || !w.st.submitting {
		return false
	}
	w.st.progress = min(w.st.progress+w.cfg.ProgressStep, progressCeiling)
	return w.st.progress < progressCeiling
}

func (w *Wizard) submit(ctx context.Context, gen uint64, req *booking.Request, aiPath bool) error {
	resp, err := w.api.BookCall(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.sessionLocked(gen) {
		return ErrNotOpen
	}

	w.sched.cancel(taskProgress)
	w.st.progress = 100
	w.st.submitting = false

	if err != nil {
		w.applyAPIErrorLocked(err)
		return err
	}

	w.st.submittedForm = req
	w.st.submitted = resp
	w.st.form = booking.Request{}
	w.st.fieldErrors = nil

	if aiPath {
		w.st.summary = firstNonBlank(resp.AISummarizedDescription, resp.OriginalDescription, req.ProjectDescription)
		w.st.summaryDraft = w.st.summary
		w.st.step = StepPostAIReview
	} else {
		w.st.success = true
	}

	clientID := resp.ClientID
	w.sched.after(taskBookingsCheck, w.cfg.BookingsCheckDelay, func() {
		w.refreshBookings(gen, clientID)
	})
	return nil
}

// refreshBookings records whether the client already has calls scheduled.
// Failures are logged and leave the previous answer in place.
func (w *Wizard) refreshBookings(gen uint64, clientID string) {
	w.mu.Lock()
	if !w.sessionLocked(gen) {
		w.mu.Unlock()
		return
	}
	ctx := w.st.ctx
	w.mu.Unlock()

	ub, err := w.api.UpcomingBookings(ctx, clientID)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.sessionLocked(gen) {
		return
	}
	if err != nil {
		logger().Warn("upcoming bookings check failed", "client_id", clientID, "error", err)
		return
	}
	w.st.bookingsChecked = true
	w.st.hasOtherBookings = ub.HasUpcomingBookings
	w.st.upcoming = ub.UpcomingEvents
}

// UserMessager is implemented by errors that carry a message for the end user.
type UserMessager interface {
	UserMessage() string
}

func userMessage(err error) string {
	var um UserMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return GenericErrorMessage
}

func (w *Wizard) applyAPIErrorLocked(err error) {
	if fe, ok := booking.AsFieldErrors(err); ok {
		w.st.fieldErrors = fe
	}
	w.st.bannerError = userMessage(err)
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
