package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Strob0t/ClientForge/internal/adapter/ws"
	"github.com/Strob0t/ClientForge/internal/domain"
	"github.com/Strob0t/ClientForge/internal/domain/client"
	"github.com/Strob0t/ClientForge/internal/port/broadcast"
	"github.com/Strob0t/ClientForge/internal/port/database"
)

// Sealer encrypts and decrypts stored account secrets.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ClientService handles the CRM side: clients and their records.
type ClientService struct {
	store database.Store
	hub   broadcast.Broadcaster
	vault Sealer
}

// NewClientService creates a ClientService. vault may be nil, in which case
// admin accounts cannot be created or revealed.
func NewClientService(store database.Store, hub broadcast.Broadcaster, vault Sealer) *ClientService {
	return &ClientService{store: store, hub: hub, vault: vault}
}

// List returns clients matching the filter.
func (s *ClientService) List(ctx context.Context, f client.ListFilter) ([]client.Client, error) {
	if f.Status != "" {
		if err := client.ValidateStatus(f.Status); err != nil {
			return nil, err
		}
	}
	switch {
	case f.Limit <= 0:
		f.Limit = defaultListLimit
	case f.Limit > maxListLimit:
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Search = strings.TrimSpace(f.Search)
	return s.store.ListClients(ctx, f)
}

// Get returns a client by ID.
func (s *ClientService) Get(ctx context.Context, id string) (*client.Client, error) {
	return s.store.GetClient(ctx, id)
}

// Create adds a client from the admin API.
func (s *ClientService) Create(ctx context.Context, req client.CreateRequest) (*client.Client, error) {
	if err := client.ValidateCreate(&req); err != nil {
		return nil, err
	}
	req.OriginalDescription, req.AISummarized = "", false
	c, err := s.store.CreateClient(ctx, req)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastEvent(ctx, broadcast.EventClientUpdated, ws.ClientChangedEvent{ClientID: c.ID, Status: string(c.Status)})
	return c, nil
}

// Update applies a partial update. A non-zero Version must match the stored
// version, otherwise domain.ErrConflict is returned.
func (s *ClientService) Update(ctx context.Context, id string, req client.UpdateRequest) (*client.Client, error) {
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != c.Version {
		return nil, fmt.Errorf("client %s at version %d, got %d: %w", id, c.Version, req.Version, domain.ErrConflict)
	}

	req.Apply(c)
	if err := client.ValidateUpdated(c); err != nil {
		return nil, err
	}
	if err := s.store.UpdateClient(ctx, c); err != nil {
		return nil, err
	}
	s.hub.BroadcastEvent(ctx, broadcast.EventClientUpdated, ws.ClientChangedEvent{ClientID: c.ID, Status: string(c.Status)})
	return c, nil
}

// Delete removes a client and, through the store, all of its records.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.hub.BroadcastEvent(ctx, broadcast.EventClientDeleted, ws.ClientChangedEvent{ClientID: id})
	return nil
}

// Overview loads a client with all of its records concurrently.
func (s *ClientService) Overview(ctx context.Context, id string) (*client.Overview, error) {
	c, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	ov := &client.Overview{Client: *c}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ov.Notes, err = s.store.ListNotes(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		ov.Contracts, err = s.store.ListContracts(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		ov.Timeline, err = s.store.ListTimelineEvents(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		ov.TechStack, err = s.store.ListTechStack(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		ov.Accounts, err = s.store.ListAccounts(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("client overview %s: %w", id, err)
	}
	return ov, nil
}

// ListNotes returns a client's notes, newest first.
func (s *ClientService) ListNotes(ctx context.Context, clientID string) ([]client.Note, error) {
	return s.store.ListNotes(ctx, clientID)
}

// CreateNote adds a note. An empty author defaults to the caller.
func (s *ClientService) CreateNote(ctx context.Context, clientID, caller string, req client.CreateNoteRequest) (*client.Note, error) {
	if err := client.ValidateNote(&req); err != nil {
		return nil, err
	}
	if req.Author == "" {
		req.Author = caller
	}
	return s.store.CreateNote(ctx, clientID, req)
}

// DeleteNote removes a note.
func (s *ClientService) DeleteNote(ctx context.Context, id string) error {
	return s.store.DeleteNote(ctx, id)
}

// ListContracts returns a client's contracts.
func (s *ClientService) ListContracts(ctx context.Context, clientID string) ([]client.Contract, error) {
	return s.store.ListContracts(ctx, clientID)
}

// CreateContract adds a contract.
func (s *ClientService) CreateContract(ctx context.Context, clientID string, req client.CreateContractRequest) (*client.Contract, error) {
	if err := client.ValidateContract(&req); err != nil {
		return nil, err
	}
	return s.store.CreateContract(ctx, clientID, req)
}

// UpdateContract applies a partial update with the same version rule as Update.
func (s *ClientService) UpdateContract(ctx context.Context, id string, req client.UpdateContractRequest) (*client.Contract, error) {
	c, err := s.store.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != c.Version {
		return nil, fmt.Errorf("contract %s at version %d, got %d: %w", id, c.Version, req.Version, domain.ErrConflict)
	}

	req.Apply(c)
	if err := client.ValidateUpdatedContract(c); err != nil {
		return nil, err
	}
	if err := s.store.UpdateContract(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteContract removes a contract.
func (s *ClientService) DeleteContract(ctx context.Context, id string) error {
	return s.store.DeleteContract(ctx, id)
}

// ListTechStack returns a client's tech stack.
func (s *ClientService) ListTechStack(ctx context.Context, clientID string) ([]client.TechStackItem, error) {
	return s.store.ListTechStack(ctx, clientID)
}

// AddTechStackItem records a technology used by the client.
func (s *ClientService) AddTechStackItem(ctx context.Context, clientID string, req client.CreateTechStackRequest) (*client.TechStackItem, error) {
	if err := client.ValidateTechStack(&req); err != nil {
		return nil, err
	}
	return s.store.CreateTechStackItem(ctx, clientID, req)
}

// DeleteTechStackItem removes a tech stack item.
func (s *ClientService) DeleteTechStackItem(ctx context.Context, id string) error {
	return s.store.DeleteTechStackItem(ctx, id)
}

// ListAccounts returns a client's admin accounts without secrets.
func (s *ClientService) ListAccounts(ctx context.Context, clientID string) ([]client.AdminAccount, error) {
	return s.store.ListAccounts(ctx, clientID)
}

// CreateAccount seals the secret and stores the account.
func (s *ClientService) CreateAccount(ctx context.Context, clientID string, req client.CreateAccountRequest) (*client.AdminAccount, error) {
	if s.vault == nil {
		return nil, domain.Unavailable("credential vault")
	}
	if err := client.ValidateAccount(&req); err != nil {
		return nil, err
	}
	sealed, err := s.vault.Seal([]byte(req.Secret))
	if err != nil {
		return nil, fmt.Errorf("seal account secret: %w", err)
	}
	return s.store.CreateAccount(ctx, &client.AdminAccount{
		ClientID:        clientID,
		Service:         strings.TrimSpace(req.Service),
		URL:             strings.TrimSpace(req.URL),
		Username:        strings.TrimSpace(req.Username),
		EncryptedSecret: sealed,
		Notes:           req.Notes,
	})
}

// RevealAccount returns an account with its decrypted secret.
func (s *ClientService) RevealAccount(ctx context.Context, id string) (*client.RevealedAccount, error) {
	if s.vault == nil {
		return nil, domain.Unavailable("credential vault")
	}
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	plain, err := s.vault.Open(a.EncryptedSecret)
	if err != nil {
		return nil, fmt.Errorf("open account secret %s: %w", id, err)
	}
	return &client.RevealedAccount{AdminAccount: *a, Secret: string(plain)}, nil
}

// DeleteAccount removes an admin account.
func (s *ClientService) DeleteAccount(ctx context.Context, id string) error {
	return s.store.DeleteAccount(ctx, id)
}
