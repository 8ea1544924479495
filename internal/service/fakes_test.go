package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Strob0t/ClientForge/internal/domain"
	"github.com/Strob0t/ClientForge/internal/domain/booking"
	"github.com/Strob0t/ClientForge/internal/domain/client"
	"github.com/Strob0t/ClientForge/internal/domain/timeline"
	"github.com/Strob0t/ClientForge/internal/port/database"
	"github.com/Strob0t/ClientForge/internal/port/messagequeue"
)

// Ensure mockStore implements database.Store at compile time.
var _ database.Store = (*mockStore)(nil)

// mockStore is a minimal in-memory implementation of database.Store for testing.
type mockStore struct {
	mu        sync.Mutex
	seq       int
	clients   map[string]*client.Client
	notes     []client.Note
	contracts map[string]*client.Contract
	stack     []client.TechStackItem
	accounts  map[string]*client.AdminAccount
	events    []timeline.Event

	// Error hooks; set these to inject failures.
	createClientErr error
	listNotesErr    error
	// failEventAt makes the n-th CreateTimelineEvent call (1-based) fail.
	failEventAt int
	eventCalls  int
}

func newMockStore() *mockStore {
	return &mockStore{
		clients:   make(map[string]*client.Client),
		contracts: make(map[string]*client.Contract),
		accounts:  make(map[string]*client.AdminAccount),
	}
}

func (m *mockStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *mockStore) ListClients(_ context.Context, f client.ListFilter) ([]client.Client, error) {
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

func (m *mockStore) GetClient(_ context.Context, id string) (*client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *mockStore) CreateClient(_ context.Context, req client.CreateRequest) (*client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createClientErr != nil {
		return nil, m.createClientErr
	}
	c := &client.Client{
		ID:                  m.nextID("client"),
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		Phone:               req.Phone,
		RoleType:            req.RoleType,
		CompanyName:         req.CompanyName,
		ProjectDescription:  req.ProjectDescription,
		OriginalDescription: req.OriginalDescription,
		AISummarized:        req.AISummarized,
		Budget:              req.Budget,
		Urgency:             req.Urgency,
		Status:              req.Status,
		Version:             1,
	}
	m.clients[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *mockStore) UpdateClient(_ context.Context, c *client.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.clients[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != c.Version {
		return domain.ErrConflict
	}
	c.Version++
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *mockStore) UpdateClientDescription(_ context.Context, id, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.ProjectDescription = description
	return nil
}

func (m *mockStore) DeleteClient(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.clients, id)
	return nil
}

func (m *mockStore) ListNotes(_ context.Context, clientID string) ([]client.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listNotesErr != nil {
		return nil, m.listNotesErr
	}
	var out []client.Note
	for _, n := range m.notes {
		if n.ClientID == clientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockStore) CreateNote(_ context.Context, clientID string, req client.CreateNoteRequest) (*client.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[clientID]; !ok {
		return nil, domain.ErrNotFound
	}
	n := client.Note{ID: m.nextID("note"), ClientID: clientID, Body: req.Body, Author: req.Author}
	m.notes = append(m.notes, n)
	return &n, nil
}

func (m *mockStore) DeleteNote(context.Context, string) error { return nil }

func (m *mockStore) ListContracts(_ context.Context, clientID string) ([]client.Contract, error) {
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

func (m *mockStore) GetContract(_ context.Context, id string) (*client.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockStore) CreateContract(_ context.Context, clientID string, req client.CreateContractRequest) (*client.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &client.Contract{ID: m.nextID("contract"), ClientID: clientID, Title: req.Title, Value: req.Value,
		Currency: req.Currency, Status: req.Status, Version: 1}
	m.contracts[c.ID] = c
	cp := *c
	return &cp, nil
}

func (m *mockStore) UpdateContract(_ context.Context, c *client.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.contracts[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != c.Version {
		return domain.ErrConflict
	}
	c.Version++
	cp := *c
	m.contracts[c.ID] = &cp
	return nil
}

func (m *mockStore) DeleteContract(context.Context, string) error { return nil }

func (m *mockStore) ListTechStack(context.Context, string) ([]client.TechStackItem, error) {
	return m.stack, nil
}

func (m *mockStore) CreateTechStackItem(_ context.Context, clientID string, req client.CreateTechStackRequest) (*client.TechStackItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := client.TechStackItem{ID: m.nextID("stack"), ClientID: clientID, Category: req.Category, Name: req.Name}
	m.stack = append(m.stack, it)
	return &it, nil
}

func (m *mockStore) DeleteTechStackItem(context.Context, string) error { return nil }

func (m *mockStore) ListAccounts(context.Context, string) ([]client.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]client.AdminAccount, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockStore) GetAccount(_ context.Context, id string) (*client.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockStore) CreateAccount(_ context.Context, a *client.AdminAccount) (*client.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	cp.ID = m.nextID("account")
	m.accounts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockStore) DeleteAccount(context.Context, string) error { return nil }

func (m *mockStore) ListTimelineEvents(_ context.Context, clientID string) ([]timeline.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timeline.Event
	for _, e := range m.events {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockStore) CreateTimelineEvent(_ context.Context, req timeline.CreateEventRequest) (*timeline.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventCalls++
	if m.failEventAt != 0 && m.eventCalls == m.failEventAt {
		return nil, errors.New("connection reset")
	}
	ev := timeline.Event{
		ID:          m.nextID("event"),
		ClientID:    req.ClientID,
		EventType:   req.EventType,
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
		NextSteps:   req.NextSteps,
	}
	m.events = append(m.events, ev)
	return &ev, nil
}

func (m *mockStore) DeleteTimelineEvent(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.events {
		if e.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeQueue records published messages and subscribed handlers.
type fakeQueue struct {
	mu        sync.Mutex
	subjects  []string
	payloads  [][]byte
	err       error
	subErr    error
	handlers  map[string]messagequeue.Handler
	cancelled int
}

var _ messagequeue.Queue = (*fakeQueue)(nil)

func (q *fakeQueue) Publish(_ context.Context, subject string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.subjects = append(q.subjects, subject)
	q.payloads = append(q.payloads, data)
	return nil
}

func (q *fakeQueue) Subscribe(_ context.Context, subject string, h messagequeue.Handler) (func(), error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.subErr != nil {
		return nil, q.subErr
	}
	if q.handlers == nil {
		q.handlers = map[string]messagequeue.Handler{}
	}
	q.handlers[subject] = h
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.cancelled++
	}, nil
}

func (q *fakeQueue) deliver(ctx context.Context, subject string, data []byte) error {
	q.mu.Lock()
	h := q.handlers[subject]
	q.mu.Unlock()
	if h == nil {
		return fmt.Errorf("no handler for %s", subject)
	}
	return h(ctx, subject, data)
}
func (q *fakeQueue) Drain() error      { return nil }
func (q *fakeQueue) Close() error      { return nil }
func (q *fakeQueue) IsConnected() bool { return true }

func (q *fakeQueue) published(subject string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, s := range q.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

// fakeHub records broadcast event types.
type fakeHub struct {
	mu     sync.Mutex
	events []string
}

func (h *fakeHub) BroadcastEvent(_ context.Context, eventType string, _ any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, eventType)
}

func (h *fakeHub) count(eventType string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.events {
		if e == eventType {
			n++
		}
	}
	return n
}

// memCache is a map-backed cache.Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
	err  error
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sets++
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// fakeSummarizer returns canned results.
type fakeSummarizer struct {
	summary string
	err     error
	parsed  timeline.ParseResult
	calls   int
}

func (f *fakeSummarizer) SummarizeDescription(context.Context, string) (string, error) {
	f.calls++
	return f.summary, f.err
}

func (f *fakeSummarizer) ParseTimeline(context.Context, string) (timeline.ParseResult, error) {
	f.calls++
	return f.parsed, f.err
}

// fakeCalendar is an in-memory calendar.Provider.
type fakeCalendar struct {
	events  []booking.CalendarEvent
	created []booking.CreateCalendarEventRequest
	calls   int
	err     error
}

func (f *fakeCalendar) UpcomingEvents(context.Context, string, time.Time) ([]booking.CalendarEvent, error) {
	f.calls++
	return f.events, f.err
}

func (f *fakeCalendar) CreateEvent(_ context.Context, req booking.CreateCalendarEventRequest) (*booking.CalendarEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &booking.CalendarEvent{ID: "cal-1", Title: "Intro call", StartTime: req.StartTime, EndTime: req.EndTime}, nil
}

// xorSealer is a reversible stand-in for the keyring.
type xorSealer struct{ openErr error }

func (xorSealer) Seal(p []byte) ([]byte, error) {
	out := make([]byte, len(p))
	for i, b := range p {
		out[i] = b ^ 0x5a
	}
	return out, nil
}

func (s xorSealer) Open(p []byte) ([]byte, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.Seal(p)
}
