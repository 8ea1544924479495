package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ---------------------------------------------------------------------------
// Generic handler factories for client-scoped records
// ---------------------------------------------------------------------------

// handleListFor lists the records owned by the client in URL param "id".
func handleListFor[T any](listFn func(ctx context.Context, clientID string) ([]T, error), notFoundMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := listFn(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err, notFoundMsg)
			return
		}
		if items == nil {
			items = []T{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// handleGet retrieves a single resource by URL param "id".
func handleGet[T any](getFn func(ctx context.Context, id string) (*T, error), notFoundMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := getFn(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err, notFoundMsg)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

// handleCreateFor decodes a JSON body and creates a record for the client in URL param "id".
func handleCreateFor[Req any, Res any](createFn func(ctx context.Context, clientID string, req Req) (*Res, error), notFoundMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := readJSON[Req](w, r)
		if !ok {
			return
		}
		res, err := createFn(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			writeDomainError(w, err, notFoundMsg)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// handleUpdate decodes a JSON body and updates the resource in URL param "id".
func handleUpdate[Req any, Res any](updateFn func(ctx context.Context, id string, req Req) (*Res, error), notFoundMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := readJSON[Req](w, r)
		if !ok {
			return
		}
		res, err := updateFn(r.Context(), chi.URLParam(r, "id"), req)
		if err != nil {
			writeDomainError(w, err, notFoundMsg)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// handleDelete deletes the resource in URL param "id".
func handleDelete(deleteFn func(ctx context.Context, id string) error, notFoundMsg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deleteFn(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, err, notFoundMsg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
