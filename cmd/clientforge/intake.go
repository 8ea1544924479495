package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/term"

	"github.com/Strob0t/ClientForge/internal/adapter/intakeclient"
	"github.com/Strob0t/ClientForge/internal/config"
	"github.com/Strob0t/ClientForge/internal/domain/booking"
	"github.com/Strob0t/ClientForge/internal/wizard"
)

const disclaimer = `Book a discovery call

We use the details you share here only to prepare for our conversation.
The form takes about two minutes. Type "<" at the first question of a
step to go back.`

// refreshGrace covers the bookings request made after the settle delay.
const refreshGrace = 500 * time.Millisecond

var (
	errQuit = errors.New("intake: cancelled")
	errBack = errors.New("intake: back")
)

var roleChoices = []booking.RoleType{
	booking.RoleFounder,
	booking.RoleEmployee,
	booking.RoleBusinessRepresentative,
	booking.RoleOther,
}

func runIntake(args []string) error {
	fs := flag.NewFlagSet("intake", flag.ContinueOnError)
	apiURL := fs.String("api", "", "intake API base URL (overrides config)")
	calURL := fs.String("calendar-url", "", "booking page URL (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // fd fits in int
		return errors.New("intake needs an interactive terminal")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *apiURL != "" {
		cfg.Wizard.APIBaseURL = *apiURL
	}
	if *calURL != "" {
		cfg.Wizard.CalendarURL = *calURL
	}
	if cfg.Wizard.CalendarURL == "" {
		cfg.Wizard.CalendarURL = cfg.Calendar.BookingPageURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opener := &terminalOpener{out: os.Stdout}
	wiz := wizard.New(intakeclient.New(&cfg.Wizard), opener, &cfg.Wizard)
	s := newIntakeSession(wiz, opener, &cfg.Wizard, os.Stdin, os.Stdout)
	return s.run(ctx)
}

// terminalOpener prints the booking link. The window counts as closed once
// the user confirms at the prompt.
type terminalOpener struct {
	out  io.Writer
	last *terminalWindow
}

func (o *terminalOpener) Open(_ context.Context, url string) (wizard.Window, error) {
	fmt.Fprintf(o.out, "\nOpen this link in your browser to pick a time:\n\n  %s\n\n", url)
	o.last = &terminalWindow{}
	return o.last, nil
}

type terminalWindow struct {
	closed atomic.Bool
}

func (w *terminalWindow) Closed() bool { return w.closed.Load() }

func (w *terminalWindow) close() { w.closed.Store(true) }

// intakeSession drives a wizard from line-based terminal input.
type intakeSession struct {
	wiz    *wizard.Wizard
	opener *terminalOpener
	cfg    *config.Wizard
	in     *bufio.Scanner
	out    io.Writer
}

func newIntakeSession(wiz *wizard.Wizard, opener *terminalOpener, cfg *config.Wizard, in io.Reader, out io.Writer) *intakeSession {
	return &intakeSession{
		wiz:    wiz,
		opener: opener,
		cfg:    cfg,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

func (s *intakeSession) run(ctx context.Context) error {
	s.wiz.Open(ctx)
	defer s.wiz.Close()

	for {
		st := s.wiz.State()
		if st.Submitted != nil {
			break
		}

		var err error
		switch st.Step {
		case wizard.StepDisclaimer:
			err = s.disclaimer(ctx)
		case wizard.StepContactInfo:
			err = s.contactInfo(ctx)
		case wizard.StepProjectDetails:
			err = s.projectDetails(ctx)
		case wizard.StepReview:
			err = s.review(ctx)
		default:
			return fmt.Errorf("intake: unexpected step %s", st.Step)
		}

		switch {
		case errors.Is(err, errQuit):
			fmt.Fprintln(s.out, "No problem. Nothing was sent.")
			return nil
		case errors.Is(err, errBack):
			if berr := s.wiz.Back(); berr != nil {
				fmt.Fprintf(s.out, "Cannot go back from here.\n")
			}
		case err != nil:
			return err
		}
	}

	if err := s.postSubmit(ctx); err != nil {
		return err
	}
	return s.calendar(ctx)
}

func (s *intakeSession) disclaimer(ctx context.Context) error {
	fmt.Fprintf(s.out, "%s\n\n", disclaimer)
	ok, err := s.confirm("Continue?", false)
	if err != nil {
		return err
	}
	if !ok {
		return errQuit
	}
	return s.settle(ctx, s.wiz.Next(ctx))
}

func (s *intakeSession) contactInfo(ctx context.Context) error {
	f := s.wiz.State().Form
	fmt.Fprintln(s.out, "\nAbout you")

	first, err := s.askBack("First name", f.FirstName)
	if err != nil {
		return err
	}
	last, err := s.ask("Last name", f.LastName)
	if err != nil {
		return err
	}
	email, err := s.ask("Email", f.Email)
	if err != nil {
		return err
	}
	phone, err := s.ask("Phone", f.Phone)
	if err != nil {
		return err
	}
	role, err := s.askRole(f.RoleType)
	if err != nil {
		return err
	}
	company, err := s.ask("Company (optional)", f.CompanyName)
	if err != nil {
		return err
	}

	if err := s.wiz.Update(func(r *booking.Request) {
		r.FirstName = first
		r.LastName = last
		r.Email = email
		r.RoleType = role
		r.CompanyName = company
	}); err != nil {
		return err
	}
	if _, err := s.wiz.SetPhone(phone); err != nil {
		return err
	}
	return s.settle(ctx, s.wiz.Next(ctx))
}

func (s *intakeSession) projectDetails(ctx context.Context) error {
	f := s.wiz.State().Form
	fmt.Fprintln(s.out, "\nYour project")

	desc, err := s.askBack("What would you like to build?", f.ProjectDescription)
	if err != nil {
		return err
	}
	timeline, err := s.ask("Timeline (optional)", f.Timeline)
	if err != nil {
		return err
	}
	start, err := s.ask("Preferred start date (YYYY-MM-DD)", f.StartDate)
	if err != nil {
		return err
	}
	end, err := s.ask("Target end date (optional)", f.EndDate)
	if err != nil {
		return err
	}
	budget, err := s.ask("Budget", f.Budget)
	if err != nil {
		return err
	}
	urgencyRaw, err := s.ask("Urgency from 0 to 10", strconv.Itoa(f.Urgency))
	if err != nil {
		return err
	}
	urgency, convErr := strconv.Atoi(urgencyRaw)
	if convErr != nil {
		urgency = -1
	}
	useAI, err := s.confirm("Let AI tidy up your description?", f.UseAISummarization)
	if err != nil {
		return err
	}

	if err := s.wiz.Update(func(r *booking.Request) {
		r.ProjectDescription = desc
		r.Timeline = timeline
		r.StartDate = start
		r.EndDate = end
		r.Budget = budget
		r.Urgency = urgency
		r.UseAISummarization = useAI
	}); err != nil {
		return err
	}
	if useAI {
		fmt.Fprintln(s.out, "Submitting and summarizing...")
	}
	return s.settle(ctx, s.wiz.Next(ctx))
}

func (s *intakeSession) review(ctx context.Context) error {
	st := s.wiz.State()
	f := st.Form
	fmt.Fprintln(s.out, "\nPlease check your details")
	fmt.Fprintf(s.out, "  Name:     %s %s\n", f.FirstName, f.LastName)
	fmt.Fprintf(s.out, "  Email:    %s\n", f.Email)
	fmt.Fprintf(s.out, "  Phone:    %s\n", f.Phone)
	fmt.Fprintf(s.out, "  Role:     %s\n", f.RoleType)
	fmt.Fprintf(s.out, "  Project:  %s\n", f.ProjectDescription)
	fmt.Fprintf(s.out, "  Start:    %s\n", f.StartDate)
	fmt.Fprintf(s.out, "  Budget:   %s\n", f.Budget)
	fmt.Fprintf(s.out, "  Urgency:  %d\n\n", f.Urgency)

	answer, err := s.askBack(st.CaptchaQuestion, "")
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Submitting...")
	return s.settle(ctx, s.wiz.Submit(ctx, answer))
}

// postSubmit offers to edit the AI summary when the AI path was taken.
func (s *intakeSession) postSubmit(ctx context.Context) error {
	st := s.wiz.State()
	if st.Step != wizard.StepPostAIReview {
		fmt.Fprintln(s.out, "\nThanks, your request has been received.")
		return nil
	}

	fmt.Fprintf(s.out, "\nHere is how we summarized your project:\n\n%s\n\n", st.Summary)
	for {
		edit, err := s.confirm("Would you like to edit it?", false)
		if err != nil || !edit {
			return err
		}
		if err := s.wiz.BeginEditSummary(); err != nil {
			return err
		}
		text, err := s.readBlock("Type the new summary. Finish with a line containing only a dot.")
		if err != nil {
			s.wiz.CancelEditSummary()
			return err
		}
		if err := s.wiz.SetSummaryDraft(text); err != nil {
			return err
		}
		saved, err := s.saveSummary(ctx)
		if err != nil || saved {
			return err
		}
	}
}

// saveSummary saves the current draft, offering to retry the same draft
// after a failure. It reports false when the user gives up, in which case
// the edit is cancelled.
func (s *intakeSession) saveSummary(ctx context.Context) (bool, error) {
	for {
		err := s.wiz.SaveSummary(ctx)
		if err == nil {
			fmt.Fprintln(s.out, "Summary saved.")
			return true, nil
		}
		msg := s.wiz.State().SummaryError
		if msg == "" {
			msg = err.Error()
		}
		fmt.Fprintf(s.out, "Could not save the summary: %s\n", msg)

		retry, cerr := s.confirm("Try saving it again?", true)
		if cerr != nil {
			return false, cerr
		}
		if !retry {
			s.wiz.CancelEditSummary()
			return false, nil
		}
	}
}

// calendar hands off to the booking page and reports the calls on record
// once the user is done there.
func (s *intakeSession) calendar(ctx context.Context) error {
	if s.cfg.CalendarURL == "" {
		return nil
	}
	ok, err := s.confirm("Pick a time for the call now?", true)
	if err != nil || !ok {
		return err
	}

	err = s.wiz.OpenCalendar(ctx, false)
	if errors.Is(err, wizard.ErrUpcomingBooking) {
		fmt.Fprintln(s.out, "\nYou already have a call with us:")
		s.printEvents(s.wiz.State().UpcomingEvents)
		again, cerr := s.confirm("Book another one anyway?", false)
		if cerr != nil || !again {
			return cerr
		}
		err = s.wiz.OpenCalendar(ctx, true)
	}
	if err != nil {
		if msg := s.wiz.State().Error; msg != "" {
			fmt.Fprintln(s.out, msg)
			return nil
		}
		return err
	}

	if _, err := s.ask("Press Enter once you have booked", ""); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if s.opener.last != nil {
		s.opener.last.close()
	}

	if !s.cfg.ShowUpcomingBookings {
		return nil
	}
	if err := sleepCtx(ctx, s.cfg.WindowPollInterval+s.cfg.WindowSettleDelay+refreshGrace); err != nil {
		return err
	}
	if events := s.wiz.State().UpcomingEvents; len(events) > 0 {
		fmt.Fprintln(s.out, "\nYour upcoming calls:")
		s.printEvents(events)
	}
	return nil
}

// settle reports a failed transition and keeps the session on its step.
func (s *intakeSession) settle(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	st := s.wiz.State()
	if errors.Is(err, wizard.ErrCaptchaMismatch) {
		fmt.Fprintln(s.out, "That answer was not right, here is a new question.")
		return nil
	}
	if len(st.FieldErrors) > 0 {
		fmt.Fprintln(s.out, "\nPlease correct the following:")
		keys := make([]string, 0, len(st.FieldErrors))
		for k := range st.FieldErrors {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(s.out, "  - %s\n", st.FieldErrors[k])
		}
	}
	if st.Error != "" {
		fmt.Fprintln(s.out, st.Error)
	}
	if len(st.FieldErrors) == 0 && st.Error == "" {
		fmt.Fprintf(s.out, "Something went wrong: %v\n", err)
	}
	return nil
}

func (s *intakeSession) printEvents(events []booking.CalendarEvent) {
	for _, ev := range events {
		fmt.Fprintf(s.out, "  - %s, %s\n", ev.Title, ev.StartTime.Local().Format("Mon 2 Jan 2006 15:04"))
	}
}

func (s *intakeSession) readLine() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

// ask prompts for a value. An empty answer keeps current.
func (s *intakeSession) ask(label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(s.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(s.out, "%s: ", label)
	}
	line, err := s.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return current, nil
	}
	return line, nil
}

// askBack is ask for the first question of a step, where "<" goes back.
func (s *intakeSession) askBack(label, current string) (string, error) {
	v, err := s.ask(label, current)
	if err == nil && v == "<" {
		return "", errBack
	}
	return v, err
}

func (s *intakeSession) askRole(current booking.RoleType) (booking.RoleType, error) {
	fmt.Fprintln(s.out, "Your role:")
	def := ""
	for i, r := range roleChoices {
		fmt.Fprintf(s.out, "  %d) %s\n", i+1, strings.ReplaceAll(string(r), "_", " "))
		if r == current {
			def = strconv.Itoa(i + 1)
		}
	}
	v, err := s.ask("Choose 1-4", def)
	if err != nil {
		return "", err
	}
	n, convErr := strconv.Atoi(v)
	if convErr != nil || n < 1 || n > len(roleChoices) {
		return booking.RoleType(v), nil
	}
	return roleChoices[n-1], nil
}

func (s *intakeSession) confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(s.out, "%s [%s]: ", label, hint)
	line, err := s.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// readBlock reads lines until a line holding a single dot.
func (s *intakeSession) readBlock(prompt string) (string, error) {
	fmt.Fprintln(s.out, prompt)
	var lines []string
	for {
		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		line := s.in.Text()
		if strings.TrimSpace(line) == "." {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
