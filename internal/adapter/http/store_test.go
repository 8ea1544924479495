package http_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Strob0t/ClientForge/internal/domain"
	"github.com/Strob0t/ClientForge/internal/domain/client"
	"github.com/Strob0t/ClientForge/internal/domain/timeline"
)

// memStore implements database.Store in memory.
type memStore struct {
	mu        sync.Mutex
	seq       int
	clients   map[string]*client.Client
	notes     map[string]client.Note
	contracts map[string]*client.Contract
	stack     map[string]client.TechStackItem
	accounts  map[string]client.AdminAccount
	events    map[string]timeline.Event
	order     []string

	failEventAt int
	eventCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		clients:   make(map[string]*client.Client),
		notes:     make(map[string]client.Note),
		contracts: make(map[string]*client.Contract),
		stack:     make(map[string]client.TechStackItem),
		accounts:  make(map[string]client.AdminAccount),
		events:    make(map[string]timeline.Event),
	}
}

func (m *memStore) id(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func notFound(kind, id string) error { return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound) }

func (m *memStore) ListClients(_ context.Context, f client.ListFilter) ([]client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []client.Client
	for _, c := range m.clients {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Email+" "+c.FullName()), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *memStore) GetClient(_ context.Context, id string) (*client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, notFound("client", id)
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) CreateClient(_ context.Context, req client.CreateRequest) (*client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &client.Client{
		ID: m.id("client"), FirstName: req.FirstName, LastName: req.LastName, Email: req.Email,
		Phone: req.Phone, RoleType: req.RoleType, CompanyName: req.CompanyName,
		ProjectDescription: req.ProjectDescription, OriginalDescription: req.OriginalDescription,
		AISummarized: req.AISummarized, Budget: req.Budget, Urgency: req.Urgency, Status: req.Status, Version: 1,
	}
	m.clients[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *memStore) UpdateClient(_ context.Context, c *client.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.clients[c.ID]
	if !ok {
		return notFound("client", c.ID)
	}
	if cur.Version != c.Version {
		return domain.ErrConflict
	}
	c.Version++
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *memStore) UpdateClientDescription(_ context.Context, id, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return notFound("client", id)
	}
	c.ProjectDescription = description
	return nil
}

func (m *memStore) DeleteClient(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[id]; !ok {
		return notFound("client", id)
	}
	delete(m.clients, id)
	return nil
}

func (m *memStore) ListNotes(_ context.Context, clientID string) ([]client.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []client.Note
	for _, n := range m.notes {
		if n.ClientID == clientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) CreateNote(_ context.Context, clientID string, req client.CreateNoteRequest) (*client.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[clientID]; !ok {
		return nil, notFound("client", clientID)
	}
	n := client.Note{ID: m.id("note"), ClientID: clientID, Body: req.Body, Author: req.Author}
	m.notes[n.ID] = n
	return &n, nil
}

func (m *memStore) DeleteNote(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return notFound("note", id)
	}
	delete(m.notes, id)
	return nil
}

func (m *memStore) ListContracts(_ context.Context, clientID string) ([]client.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []client.Contract
	for _, c := range m.contracts {
		if c.ClientID == clientID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) GetContract(_ context.Context, id string) (*client.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[id]
	if !ok {
		return nil, notFound("contract", id)
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) CreateContract(_ context.Context, clientID string, req client.CreateContractRequest) (*client.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &client.Contract{ID: m.id("contract"), ClientID: clientID, Title: req.Title, Value: req.Value,
		Currency: req.Currency, Status: req.Status, Version: 1}
	m.contracts[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *memStore) UpdateContract(_ context.Context, c *client.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.contracts[c.ID]
	if !ok {
		return notFound("contract", c.ID)
	}
	if cur.Version != c.Version {
		return domain.ErrConflict
	}
	c.Version++
	cp := *c
	m.contracts[c.ID] = &cp
	return nil
}

func (m *memStore) DeleteContract(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.contracts[id]; !ok {
		return notFound("contract", id)
	}
	delete(m.contracts, id)
	return nil
}

func (m *memStore) ListTechStack(_ context.Context, clientID string) ([]client.TechStackItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []client.TechStackItem
	for _, it := range m.stack {
		if it.ClientID == clientID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memStore) CreateTechStackItem(_ context.Context, clientID string, req client.CreateTechStackRequest) (*client.TechStackItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := client.TechStackItem{ID: m.id("stack"), ClientID: clientID, Category: req.Category, Name: req.Name, Version: req.Version}
	m.stack[it.ID] = it
	return &it, nil
}

func (m *memStore) DeleteTechStackItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stack[id]; !ok {
		return notFound("tech stack item", id)
	}
	delete(m.stack, id)
	return nil
}

func (m *memStore) ListAccounts(_ context.Context, clientID string) ([]client.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []client.AdminAccount
	for _, a := range m.accounts {
		if a.ClientID == clientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) GetAccount(_ context.Context, id string) (*client.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, notFound("account", id)
	}
	return &a, nil
}

func (m *memStore) CreateAccount(_ context.Context, a *client.AdminAccount) (*client.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	cp.ID = m.id("account")
	m.accounts[cp.ID] = cp
	return &cp, nil
}

func (m *memStore) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return notFound("account", id)
	}
	delete(m.accounts, id)
	return nil
}

func (m *memStore) ListTimelineEvents(_ context.Context, clientID string) ([]timeline.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timeline.Event
	for _, id := range m.order {
		if ev, ok := m.events[id]; ok && ev.ClientID == clientID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memStore) CreateTimelineEvent(_ context.Context, req timeline.CreateEventRequest) (*timeline.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventCalls++
	if m.failEventAt != 0 && m.eventCalls == m.failEventAt {
		return nil, errors.New("connection reset")
	}
	ev := timeline.Event{ID: m.id("event"), ClientID: req.ClientID, EventType: req.EventType, Title: req.Title,
		Description: req.Description, EventDate: req.EventDate, NextSteps: req.NextSteps}
	m.events[ev.ID] = ev
	m.order = append(m.order, ev.ID)
	return &ev, nil
}

func (m *memStore) DeleteTimelineEvent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return notFound("timeline event", id)
	}
	delete(m.events, id)
	return nil
}
