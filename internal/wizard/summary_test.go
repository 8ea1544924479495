package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Strob0t/ClientForge/internal/domain/booking"
)

func toPostAIReview(t *testing.T, h *harness) {
	t.Helper()
	h.toProjectDetails()
	_ = h.w.Update(func(r *booking.Request) { r.UseAISummarization = true })
	if err := h.w.Next(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestSummaryEditAndSave(t *testing.T) {
	h := newHarness()
	toPostAIReview(t, h)
	ctx := context.Background()

	if err := h.w.BeginEditSummary(); err != nil {
		t.Fatal(err)
	}
	if err := h.w.SetSummaryDraft("  Edited summary  "); err != nil {
		t.Fatal(err)
	}
	if err := h.w.SaveSummary(ctx); err != nil {
		t.Fatal(err)
	}

	s := h.w.State()
	if s.EditingSummary {
		t.Error("save should exit edit mode")
	}
	if s.Summary != "Edited summary" {
		t.Errorf("summary = %q", s.Summary)
	}
	if s.Submitted.AISummarizedDescription != "Edited summary" {
		t.Errorf("submitted data not updated: %q", s.Submitted.AISummarizedDescription)
	}
	if len(h.api.updates) != 1 || h.api.updates[0] != "Edited summary" {
		t.Errorf("updates = %q", h.api.updates)
	}
}

func TestSummarySaveFailureKeepsDraft(t *testing.T) {
	h := newHarness()
	toPostAIReview(t, h)
	h.api.updateErr = &apiError{msg: "Client not found"}
	original := h.w.State().Summary

	_ = h.w.BeginEditSummary()
	_ = h.w.SetSummaryDraft("My unsaved words")
	if err := h.w.SaveSummary(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	s := h.w.State()
	if !s.EditingSummary {
		t.Error("edit mode must stay open after a failed save")
	}
	if s.SummaryDraft != "My unsaved words" {
		t.Errorf("draft reverted to %q", s.SummaryDraft)
	}
	if s.Summary != original {
		t.Errorf("summary changed to %q", s.Summary)
	}
	if s.SummaryError != "Client not found" {
		t.Errorf("summary error = %q", s.SummaryError)
	}
	if s.Saving {
		t.Error("saving flag must be released")
	}
}

func TestSummaryCancelEdit(t *testing.T) {
	h := newHarness()
	toPostAIReview(t, h)
	original := h.w.State().Summary

	_ = h.w.BeginEditSummary()
	_ = h.w.SetSummaryDraft("discard me")
	h.w.CancelEditSummary()

	s := h.w.State()
	if s.EditingSummary || s.SummaryDraft != original {
		t.Errorf("cancel should restore the draft: %+v", s)
	}
	if err := h.w.SetSummaryDraft("x"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("draft outside edit mode = %v", err)
	}
}

func TestSummaryEmptyRejected(t *testing.T) {
	h := newHarness()
	toPostAIReview(t, h)
	_ = h.w.BeginEditSummary()
	_ = h.w.SetSummaryDraft("   ")
	if err := h.w.SaveSummary(context.Background()); err == nil {
		t.Fatal("expected validation error")
	}
	if len(h.api.updates) != 0 {
		t.Error("empty summary must not be sent")
	}
}

func TestSummaryRequiresAIReview(t *testing.T) {
	h := newHarness()
	if err := h.w.BeginEditSummary(); !errors.Is(err, ErrNoSubmission) {
		t.Errorf("begin edit before submission = %v", err)
	}
}

type blockingUpdateAPI struct {
	*fakeAPI
	started chan struct{}
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func (a *blockingUpdateAPI) UpdateDescription(ctx context.Context, id, d string) error {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	a.started <- struct{}{}
	<-a.release
	return a.fakeAPI.UpdateDescription(ctx, id, d)
}

func TestSummarySaveSingleFlight(t *testing.T) {
	h := newHarness()
	api := &blockingUpdateAPI{fakeAPI: h.api, started: make(chan struct{}, 1), release: make(chan struct{})}
	h.w.api = api
	toPostAIReview(t, h)

	_ = h.w.BeginEditSummary()
	_ = h.w.SetSummaryDraft("v2")

	done := make(chan error, 1)
	go func() { done <- h.w.SaveSummary(context.Background()) }()
	<-api.started

	if err := h.w.SaveSummary(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("second save = %v, want ErrBusy", err)
	}
	close(api.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if api.calls != 1 {
		t.Errorf("update calls = %d, want 1", api.calls)
	}
}
