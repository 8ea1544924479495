package wizard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Strob0t/ClientForge/internal/config"
	"github.com/Strob0t/ClientForge/internal/domain/booking"
)

// fakeClock fires timers only when advanced, in due order, on the caller's goroutine.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	c       *fakeClock
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{c: c, at: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

// live counts timers that are neither stopped nor fired.
func (c *fakeClock) live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type apiError struct{ msg string }

func (e *apiError) Error() string       { return "intake api: " + e.msg }
func (e *apiError) UserMessage() string { return e.msg }

type fakeAPI struct {
	mu          sync.Mutex
	bookCalls   atomic.Int32
	upcoming    atomic.Int32
	updates     []string
	lastRequest *booking.Request

	bookErr     error
	updateErr   error
	noSummary   bool // AI responses carry no description fields
	upcomingRes booking.UpcomingBookings

	started chan struct{} // receives once per BookCall when set
	release chan struct{} // BookCall blocks until closed when set
}

func (a *fakeAPI) BookCall(_ context.Context, req *booking.Request) (*booking.Response, error) {
	a.bookCalls.Add(1)
	if a.started != nil {
		a.started <- struct{}{}
	}
	if a.release != nil {
		<-a.release
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	cp := *req
	a.lastRequest = &cp
	if a.bookErr != nil {
		return nil, a.bookErr
	}
	resp := &booking.Response{ClientID: "client-42", Message: "Thanks!"}
	if req.UseAISummarization && !a.noSummary {
		resp.AISummarizedDescription = "Summary: " + req.ProjectDescription
		resp.OriginalDescription = req.ProjectDescription
	}
	return resp, nil
}

func (a *fakeAPI) UpdateDescription(_ context.Context, _ string, description string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.updates = append(a.updates, description)
	return a.updateErr
}

func (a *fakeAPI) UpcomingBookings(_ context.Context, _ string) (*booking.UpcomingBookings, error) {
	a.upcoming.Add(1)
	a.mu.Lock()
	defer a.mu.Unlock()
	res := a.upcomingRes
	return &res, nil
}

type fakeWindow struct{ closed atomic.Bool }

func (w *fakeWindow) Closed() bool { return w.closed.Load() }

type fakeOpener struct {
	urls   []string
	window *fakeWindow
	err    error
}

func (o *fakeOpener) Open(_ context.Context, url string) (Window, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.urls = append(o.urls, url)
	o.window = &fakeWindow{}
	return o.window, nil
}

// seqRand returns the given values in a cycle.
type seqRand struct {
	mu   sync.Mutex
	vals []int
	i    int
}

func (r *seqRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

func testConfig() *config.Wizard {
	return &config.Wizard{
		ProgressStep:         10,
		ProgressInterval:     100 * time.Millisecond,
		BookingsCheckDelay:   time.Second,
		WindowPollInterval:   time.Second,
		WindowSettleDelay:    2 * time.Second,
		WindowPollCeiling:    30 * time.Second,
		CalendarURL:          "https://cal.example.com/intro",
		ShowUpcomingBookings: true,
	}
}

type harness struct {
	w      *Wizard
	api    *fakeAPI
	clock  *fakeClock
	opener *fakeOpener
}

func newHarness() *harness {
	api := &fakeAPI{}
	opener := &fakeOpener{}
	clock := &fakeClock{}
	w := New(api, opener, testConfig())
	w.SetClock(clock)
	// Operands (1,2), (3,4), (5,6), ...
	w.SetRand(&seqRand{vals: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}})
	w.Open(context.Background())
	return &harness{w: w, api: api, clock: clock, opener: opener}
}

func fillContact(r *booking.Request) {
	r.FirstName = "Grace"
	r.LastName = "Hopper"
	r.Email = "grace@example.com"
	r.Phone = "(555) 010-2030"
	r.RoleType = booking.RoleFounder
}

func fillProject(r *booking.Request) {
	r.ProjectDescription = "Compiler for a new language"
	r.StartDate = "2026-11-02"
	r.Budget = "100"
	r.Urgency = 7
}

// toProjectDetails drives the wizard through the first two steps.
func (h *harness) toProjectDetails() {
	ctx := context.Background()
	_ = h.w.Next(ctx)
	_ = h.w.Update(fillContact)
	_ = h.w.Next(ctx)
	_ = h.w.Update(fillProject)
}

func (h *harness) toReview() {
	h.toProjectDetails()
	_ = h.w.Next(context.Background())
}

func (h *harness) answer() string {
	c := h.w.Captcha()
	return itoa(c.Num1 + c.Num2)
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return itoa(n/10) + string(rune('0'+n%10))
}
