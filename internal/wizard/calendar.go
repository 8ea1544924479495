package wizard

import (
	"context"
	"net/url"
	"strings"
)

// calendarURLLocked returns the booking page prefilled with the contact
// details of the submitted form.
func (w *Wizard) calendarURLLocked() string {
	base := w.cfg.CalendarURL
	u, err := url.Parse(base)
	if err != nil || w.st.submittedForm == nil {
		return base
	}
	f := w.st.submittedForm
	q := u.Query()
	if name := strings.TrimSpace(f.FirstName + " " + f.LastName); name != "" {
		q.Set("name", name)
	}
	if f.Email != "" {
		q.Set("email", f.Email)
	}
	if w.st.submitted != nil && w.st.submitted.ClientID != "" {
		q.Set("metadata[client_id]", w.st.submitted.ClientID)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenCalendar opens the booking page and watches for it to be closed. When
// it closes, upcoming bookings are re-read after a settle delay. Watching
// stops after the configured ceiling in any case.
//
// If the client already has a call scheduled, confirmSecond must be set.
func (w *Wizard) OpenCalendar(ctx context.Context, confirmSecond bool) error {
	w.mu.Lock()
	if !w.st.open {
		w.mu.Unlock()
		return ErrNotOpen
	}
	if w.st.submitted == nil {
		w.mu.Unlock()
		return ErrNoSubmission
	}
	if w.st.hasOtherBookings && !confirmSecond {
		w.mu.Unlock()
		return ErrUpcomingBooking
	}
	target := w.calendarURLLocked()
	gen := w.gen
	clientID := w.st.submitted.ClientID
	w.mu.Unlock()

	win, err := w.cal.Open(ctx, target)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.sessionLocked(gen) {
		return ErrNotOpen
	}
	if err != nil {
		w.st.bannerError = "Could not open the booking calendar. Please try again."
		return err
	}

	w.st.window = win
	w.st.calendarOpen = true
	w.sched.cancel(taskWindowSettle)
	w.sched.every(taskWindowPoll, w.cfg.WindowPollInterval, func() bool {
		return w.pollWindow(gen, win, clientID)
	})
	w.sched.after(taskWindowCeiling, w.cfg.WindowPollCeiling, func() {
		w.abandonWindow(gen, win)
	})
	return nil
}

func (w *Wizard) pollWindow(gen uint64, win Window, clientID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.sessionLocked(gen) || w.st.window != win {
		return false
	}
	if !win.Closed() {
		return true
	}
	w.st.window = nil
	w.st.calendarOpen = false
	w.sched.cancel(taskWindowCeiling)
	w.sched.after(taskWindowSettle, w.cfg.WindowSettleDelay, func() {
		w.refreshBookings(gen, clientID)
	})
	return false
}

func (w *Wizard) abandonWindow(gen uint64, win Window) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.sessionLocked(gen) || w.st.window != win {
		return
	}
	w.sched.cancel(taskWindowPoll)
	w.st.window = nil
	w.st.calendarOpen = false
	logger().Info("stopped watching booking window", "after", w.cfg.WindowPollCeiling)
}
