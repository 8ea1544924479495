// Package wizard drives the multi-step "book a call" intake flow: a
// disclaimer, contact and project steps, then either a CAPTCHA review or an
// immediate AI-summarized submission, and finally the hand-off to the
// calendar booking page.
//
// A Wizard is safe for concurrent use. At most one booking submission and
// one summary save can be in flight; further attempts fail with ErrBusy
// without reaching the intake API. Every background task is owned by the
// wizard and cancelled on Close, on success and when it is restarted.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"

	"github.com/Strob0t/ClientForge/internal/config"
	"github.com/Strob0t/ClientForge/internal/domain/booking"
)

// Step is a wizard screen.
type Step int

const (
	StepDisclaimer Step = iota
	StepContactInfo
	StepProjectDetails
	StepReview
	StepPostAIReview
)

func (s Step) String() string {
	switch s {
	case StepDisclaimer:
		return "disclaimer"
	case StepContactInfo:
		return "contact_info"
	case StepProjectDetails:
		return "project_details"
	case StepReview:
		return "review"
	case StepPostAIReview:
		return "post_ai_review"
	default:
		return "unknown"
	}
}

var (
	// ErrBusy is returned when a submission or save is already in flight.
	ErrBusy = errors.New("wizard: request already in flight")
	// ErrInvalidTransition is returned for a trigger the current step does not accept.
	ErrInvalidTransition = errors.New("wizard: invalid transition")
	// ErrNotOpen is returned when the wizard has not been opened.
	ErrNotOpen = errors.New("wizard: not open")
	// ErrCaptchaMismatch is returned when the CAPTCHA answer is wrong.
	ErrCaptchaMismatch = errors.New("wizard: captcha answer does not match")
	// ErrUpcomingBooking is returned when the client already has a call scheduled
	// and the caller did not confirm a second booking.
	ErrUpcomingBooking = errors.New("wizard: client already has an upcoming booking")
	// ErrNoSubmission is returned by operations that need a completed submission.
	ErrNoSubmission = errors.New("wizard: nothing has been submitted yet")
)

// GenericErrorMessage is shown when an API failure carries no message of its own.
const GenericErrorMessage = "Something went wrong. Please try again."

// IntakeAPI is the booking backend used by the wizard.
type IntakeAPI interface {
	BookCall(ctx context.Context, req *booking.Request) (*booking.Response, error)
	UpdateDescription(ctx context.Context, clientID, description string) error
	UpcomingBookings(ctx context.Context, clientID string) (*booking.UpcomingBookings, error)
}

// CalendarOpener opens the external booking page.
type CalendarOpener interface {
	Open(ctx context.Context, url string) (Window, error)
}

// Window is an opened booking page.
type Window interface {
	Closed() bool
}

// Wizard is one booking wizard instance.
type Wizard struct {
	api   IntakeAPI
	cal   CalendarOpener
	cfg   *config.Wizard
	sched *scheduler
	rng   booking.IntN

	mu  sync.Mutex
	gen uint64 // incremented on every Open and Close
	st  session
}

// session is everything discarded by Close.
type session struct {
	open    bool
	ctx     context.Context
	cancel  context.CancelFunc
	step    Step
	success bool

	form        booking.Request
	fieldErrors booking.FieldErrors
	bannerError string

	captcha booking.Captcha

	submitting bool
	progress   int

	submittedForm *booking.Request
	submitted     *booking.Response

	summary        string
	summaryDraft   string
	editingSummary bool
	saving         bool
	summaryError   string

	bookingsChecked  bool
	hasOtherBookings bool
	upcoming         []booking.CalendarEvent

	calendarOpen bool
	window       Window
}

// New creates a closed Wizard.
func New(api IntakeAPI, cal CalendarOpener, cfg *config.Wizard) *Wizard {
	return &Wizard{
		api:   api,
		cal:   cal,
		cfg:   cfg,
		sched: newScheduler(realClock{}),
	}
}

// SetClock replaces the clock used for background tasks. Call before Open.
func (w *Wizard) SetClock(c Clock) {
	w.sched = newScheduler(c)
}

// SetRand replaces the random source used for CAPTCHA challenges.
func (w *Wizard) SetRand(rng booking.IntN) {
	w.rng = rng
}

// Open starts a fresh session at the disclaimer. The session context is
// derived from ctx and used for background requests.
func (w *Wizard) Open(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
	w.st.open = true
	w.st.ctx, w.st.cancel = context.WithCancel(ctx)
}

// Close cancels every background task, discards all state and returns to
// the disclaimer. It is safe to call on a closed wizard.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked()
}

func (w *Wizard) resetLocked() {
	w.sched.cancelAll()
	if w.st.cancel != nil {
		w.st.cancel()
	}
	w.st = session{}
	w.gen++
}

// Snapshot is a read-only copy of the wizard state.
type Snapshot struct {
	Open             bool
	Step             Step
	Success          bool
	Form             booking.Request
	FieldErrors      booking.FieldErrors
	Error            string
	CaptchaQuestion  string
	Submitting       bool
	Progress         int
	Submitted        *booking.Response
	Summary          string
	SummaryDraft     string
	EditingSummary   bool
	Saving           bool
	SummaryError     string
	BookingsChecked  bool
	HasOtherBookings bool
	UpcomingEvents   []booking.CalendarEvent
	CalendarOpen     bool
	PendingTasks     []string
}

// State returns a snapshot of the current state.
func (w *Wizard) State() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := &w.st
	s := Snapshot{
		Open:             st.open,
		Step:             st.step,
		Success:          st.success,
		Form:             st.form,
		FieldErrors:      maps.Clone(st.fieldErrors),
		Error:            st.bannerError,
		Submitting:       st.submitting,
		Progress:         st.progress,
		Summary:          st.summary,
		SummaryDraft:     st.summaryDraft,
		EditingSummary:   st.editingSummary,
		Saving:           st.saving,
		SummaryError:     st.summaryError,
		BookingsChecked:  st.bookingsChecked,
		HasOtherBookings: st.hasOtherBookings,
		UpcomingEvents:   append([]booking.CalendarEvent(nil), st.upcoming...),
		CalendarOpen:     st.calendarOpen,
		PendingTasks:     w.sched.pending(),
	}
	if st.step == StepReview && !st.success {
		s.CaptchaQuestion = st.captcha.Question()
	}
	if st.submitted != nil {
		resp := *st.submitted
		s.Submitted = &resp
	}
	return s
}

// Captcha returns the current challenge.
func (w *Wizard) Captcha() booking.Captcha {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.st.captcha
}

// Update applies fn to the form. Field errors are kept until the next
// validation so they stay visible next to the field being corrected.
func (w *Wizard) Update(fn func(*booking.Request)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.st.open {
		return ErrNotOpen
	}
	fn(&w.st.form)
	return nil
}

// SetPhone stores the phone number reformatted as typed.
func (w *Wizard) SetPhone(raw string) (string, error) {
	formatted := booking.FormatPhone(raw)
	err := w.Update(func(r *booking.Request) { r.Phone = formatted })
	return formatted, err
}

// RegenerateCaptcha draws a new challenge.
func (w *Wizard) RegenerateCaptcha() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.newCaptchaLocked()
}

func (w *Wizard) newCaptchaLocked() {
	w.st.captcha = booking.NewCaptcha(w.rng)
}

// sessionLocked reports whether gen is still the live session.
func (w *Wizard) sessionLocked(gen uint64) bool {
	return w.st.open && w.gen == gen
}

func logger() *slog.Logger {
	return slog.Default().With("component", "wizard")
}
