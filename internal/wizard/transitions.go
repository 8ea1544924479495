package wizard

import (
	"context"
	"fmt"

	"github.com/Strob0t/ClientForge/internal/domain/booking"
)

// Trigger is a user action that may move the wizard between steps.
type Trigger string

const (
	TriggerNext   Trigger = "next"
	TriggerBack   Trigger = "back"
	TriggerSubmit Trigger = "submit"
	TriggerClose  Trigger = "close"
)

type input struct {
	captchaAnswer string
}

// followUp is work a transition starts but that must run without the
// wizard lock held, such as a network call.
type followUp func(ctx context.Context) error

// transition applies a trigger with the wizard lock held.
type transition func(w *Wizard, in input) (followUp, error)

// transitions is the complete step graph. Close is accepted from every
// step and handled by fire directly.
var transitions = map[Step]map[Trigger]transition{
	StepDisclaimer: {
		TriggerNext: advance(StepContactInfo),
	},
	StepContactInfo: {
		TriggerNext: guarded(booking.ValidateContactInfo, advance(StepProjectDetails)),
		TriggerBack: retreat(StepDisclaimer),
	},
	StepProjectDetails: {
		TriggerNext: guarded(booking.ValidateProjectDetails, projectDetailsNext),
		TriggerBack: retreat(StepContactInfo),
	},
	StepReview: {
		TriggerSubmit: reviewSubmit,
		TriggerBack:   retreat(StepProjectDetails),
	},
}

// Next advances from the current step.
func (w *Wizard) Next(ctx context.Context) error {
	return w.fire(ctx, TriggerNext, input{})
}

// Back returns to the previous step.
func (w *Wizard) Back() error {
	return w.fire(context.Background(), TriggerBack, input{})
}

// Submit checks the CAPTCHA answer on the review step and submits the booking.
func (w *Wizard) Submit(ctx context.Context, captchaAnswer string) error {
	return w.fire(ctx, TriggerSubmit, input{captchaAnswer: captchaAnswer})
}

// Fire applies trigger to the current step.
func (w *Wizard) Fire(ctx context.Context, trigger Trigger) error {
	return w.fire(ctx, trigger, input{})
}

func (w *Wizard) fire(ctx context.Context, trigger Trigger, in input) error {
	if trigger == TriggerClose {
		w.Close()
		return nil
	}

	w.mu.Lock()
	if !w.st.open {
		w.mu.Unlock()
		return ErrNotOpen
	}
	t, ok := transitions[w.st.step][trigger]
	if !ok || w.st.success {
		step := w.st.step
		w.mu.Unlock()
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, step)
	}
	next, err := t(w, in)
	w.mu.Unlock()

	if err != nil || next == nil {
		return err
	}
	return next(ctx)
}

func advance(to Step) transition {
	return func(w *Wizard, _ input) (followUp, error) {
		w.st.step = to
		w.st.fieldErrors = nil
		w.st.bannerError = ""
		return nil, nil
	}
}

func retreat(to Step) transition {
	return func(w *Wizard, _ input) (followUp, error) {
		if w.st.submitting {
			return nil, ErrBusy
		}
		w.st.step = to
		w.st.fieldErrors = nil
		w.st.bannerError = ""
		return nil, nil
	}
}

// guarded runs then only when validate finds no field errors; otherwise the
// errors are shown and the step does not change.
func guarded(validate func(*booking.Request) booking.FieldErrors, then transition) transition {
	return func(w *Wizard, in input) (followUp, error) {
		if errs := validate(&w.st.form); len(errs) > 0 {
			w.st.fieldErrors = errs
			return nil, errs
		}
		return then(w, in)
	}
}

// projectDetailsNext goes to the CAPTCHA review, or submits right away when
// AI summarization was requested.
func projectDetailsNext(w *Wizard, in input) (followUp, error) {
	if !w.st.form.UseAISummarization {
		if _, err := advance(StepReview)(w, in); err != nil {
			return nil, err
		}
		w.newCaptchaLocked()
		return nil, nil
	}
	return w.beginSubmitLocked(true)
}

func reviewSubmit(w *Wizard, in input) (followUp, error) {
	if w.st.submitting {
		return nil, ErrBusy
	}
	if !w.st.captcha.Verify(in.captchaAnswer) {
		w.st.fieldErrors = booking.FieldErrors{"captcha": "Incorrect answer. Please try again."}
		w.newCaptchaLocked()
		return nil, ErrCaptchaMismatch
	}
	if err := booking.Validate(&w.st.form); err != nil {
		fe, _ := booking.AsFieldErrors(err)
		w.st.fieldErrors = fe
		return nil, err
	}
	w.st.fieldErrors = nil
	return w.beginSubmitLocked(false)
}
