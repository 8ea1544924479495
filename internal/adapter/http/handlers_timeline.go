package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/ClientForge/internal/domain/timeline"
)

const maxTimelineText = 256 << 10

// ParseTimeline handles POST /api/timeline/parse. It runs the rule-based
// parser only and never stores anything.
func (h *Handlers) ParseTimeline(w http.ResponseWriter, r *http.Request) {
	req, ok := readTimelineText[timeline.ParseRequest](w, r, func(p *timeline.ParseRequest) string { return p.Text })
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Timeline.Parse(req.Text))
}

// ParseTimelineAI handles POST /api/clients/{id}/timeline/parse-ai
func (h *Handlers) ParseTimelineAI(w http.ResponseWriter, r *http.Request) {
	req, ok := readTimelineText[timeline.ParseRequest](w, r, func(p *timeline.ParseRequest) string { return p.Text })
	if !ok {
		return
	}
	res, err := h.Timeline.ParseWithAI(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ImportTimeline handles POST /api/clients/{id}/timeline/import. When event
// creation fails part way, the events created so far are returned with the
// error so the caller can see where the import stopped.
func (h *Handlers) ImportTimeline(w http.ResponseWriter, r *http.Request) {
	req, ok := readTimelineText[timeline.ImportRequest](w, r, func(p *timeline.ImportRequest) string { return p.Text })
	if !ok {
		return
	}
	res, err := h.Timeline.ImportText(r.Context(), chi.URLParam(r, "id"), req)
	switch {
	case err == nil && req.DryRun:
		writeJSON(w, http.StatusOK, res)
	case err == nil:
		writeJSON(w, http.StatusCreated, res)
	case res != nil:
		writePartialImport(w, err, res)
	default:
		writeDomainError(w, err, "client not found")
	}
}

// CreateTimelineEvent handles POST /api/clients/{id}/timeline
func (h *Handlers) CreateTimelineEvent(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[timeline.CreateEventRequest](w, r)
	if !ok {
		return
	}
	req.ClientID = chi.URLParam(r, "id")
	ev, err := h.Timeline.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func readTimelineText[T any](w http.ResponseWriter, r *http.Request, text func(*T) string) (T, bool) {
	req, ok := readJSON[T](w, r)
	if !ok {
		return req, false
	}
	switch t := text(&req); {
	case strings.TrimSpace(t) == "":
		writeError(w, http.StatusBadRequest, "text is required")
		return req, false
	case len(t) > maxTimelineText:
		writeError(w, http.StatusRequestEntityTooLarge, "timeline text too large")
		return req, false
	}
	return req, true
}

type partialImportResponse struct {
	Error  string                 `json:"error"`
	Result *timeline.ImportResult `json:"result"`
}

func writePartialImport(w http.ResponseWriter, err error, res *timeline.ImportResult) {
	slog.Error("timeline import stopped", "created", len(res.Events), "error", err)
	writeJSON(w, http.StatusInternalServerError, partialImportResponse{
		Error:  fmt.Sprintf("timeline import stopped after %d events", len(res.Events)),
		Result: res,
	})
}
