package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/ClientForge/internal/domain/client"
	"github.com/Strob0t/ClientForge/internal/middleware"
)

// ListClients handles GET /api/clients?status=&search=&limit=&offset=
func (h *Handlers) ListClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clients, err := h.Clients.List(r.Context(), client.ListFilter{
		Status: client.Status(q.Get("status")),
		Search: q.Get("search"),
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	if clients == nil {
		clients = []client.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

// CreateClient handles POST /api/clients
func (h *Handlers) CreateClient(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[client.CreateRequest](w, r)
	if !ok {
		return
	}
	c, err := h.Clients.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// CreateNote handles POST /api/clients/{id}/notes. The author defaults to
// the authenticated caller.
func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[client.CreateNoteRequest](w, r)
	if !ok {
		return
	}
	var caller string
	if p := middleware.PrincipalFromContext(r.Context()); p != nil {
		caller = p.Email
	}
	n, err := h.Clients.CreateNote(r.Context(), chi.URLParam(r, "id"), caller, req)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handlers) createContract(ctx context.Context, clientID string, req client.CreateContractRequest) (*client.Contract, error) {
	if _, err := h.Clients.Get(ctx, clientID); err != nil {
		return nil, err
	}
	return h.Clients.CreateContract(ctx, clientID, req)
}

func (h *Handlers) addTechStackItem(ctx context.Context, clientID string, req client.CreateTechStackRequest) (*client.TechStackItem, error) {
	if _, err := h.Clients.Get(ctx, clientID); err != nil {
		return nil, err
	}
	return h.Clients.AddTechStackItem(ctx, clientID, req)
}

func (h *Handlers) createAccount(ctx context.Context, clientID string, req client.CreateAccountRequest) (*client.AdminAccount, error) {
	if _, err := h.Clients.Get(ctx, clientID); err != nil {
		return nil, err
	}
	return h.Clients.CreateAccount(ctx, clientID, req)
}

// RevealAccount handles GET /api/accounts/{id}/reveal. Each reveal is logged
// with the caller for auditing.
func (h *Handlers) RevealAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.Clients.RevealAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "account not found")
		return
	}
	if p := middleware.PrincipalFromContext(r.Context()); p != nil {
		slog.InfoContext(r.Context(), "account secret revealed", "account_id", id, "client_id", a.ClientID, "by", p.Email)
	}
	writeJSON(w, http.StatusOK, a)
}
