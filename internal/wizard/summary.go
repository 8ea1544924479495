package wizard

import (
	"context"
	"fmt"
	"strings"

	"github.com/Strob0t/ClientForge/internal/domain"
)

// BeginEditSummary opens the AI summary for editing.
func (w *Wizard) BeginEditSummary() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireSummaryLocked(); err != nil {
		return err
	}
	w.st.editingSummary = true
	w.st.summaryDraft = w.st.summary
	w.st.summaryError = ""
	return nil
}

// SetSummaryDraft replaces the edited text.
func (w *Wizard) SetSummaryDraft(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.st.editingSummary {
		return fmt.Errorf("%w: summary is not being edited", ErrInvalidTransition)
	}
	w.st.summaryDraft = text
	return nil
}

// CancelEditSummary leaves edit mode and drops the unsaved text.
func (w *Wizard) CancelEditSummary() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.st.saving {
		return
	}
	w.st.editingSummary = false
	w.st.summaryDraft = w.st.summary
	w.st.summaryError = ""
}

// SaveSummary stores the edited summary as the client's project
// description. On failure the wizard stays in edit mode with the draft
// intact.
func (w *Wizard) SaveSummary(ctx context.Context) error {
	w.mu.Lock()
	if !w.st.editingSummary {
		w.mu.Unlock()
		return fmt.Errorf("%w: summary is not being edited", ErrInvalidTransition)
	}
	if w.st.saving {
		w.mu.Unlock()
		return ErrBusy
	}
	text := strings.TrimSpace(w.st.summaryDraft)
	if text == "" {
		w.st.summaryError = "Summary cannot be empty"
		w.mu.Unlock()
		return domain.Invalid("summary is empty")
	}
	w.st.saving = true
	w.st.summaryError = ""
	gen := w.gen
	clientID := w.st.submitted.ClientID
	w.mu.Unlock()

	err := w.api.UpdateDescription(ctx, clientID, text)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.sessionLocked(gen) {
		return ErrNotOpen
	}
	w.st.saving = false
	if err != nil {
		w.st.summaryError = userMessage(err)
		return err
	}
	w.st.summary = text
	w.st.summaryDraft = text
	w.st.submitted.AISummarizedDescription = text
	w.st.editingSummary = false
	return nil
}

func (w *Wizard) requireSummaryLocked() error {
	if !w.st.open {
		return ErrNotOpen
	}
	if w.st.step != StepPostAIReview || w.st.submitted == nil {
		return ErrNoSubmission
	}
	return nil
}
