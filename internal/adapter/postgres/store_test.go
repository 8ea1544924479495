package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/ClientForge/internal/adapter/postgres"
	"github.com/Strob0t/ClientForge/internal/domain"
	"github.com/Strob0t/ClientForge/internal/domain/booking"
	"github.com/Strob0t/ClientForge/internal/domain/client"
	"github.com/Strob0t/ClientForge/internal/domain/timeline"
)

// setupStore creates a pgxpool connection, runs all migrations, and returns a
// ready-to-use Store. The pool is closed via t.Cleanup.
func setupStore(t *testing.T) *postgres.Store {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("requires DATABASE_URL")
	}

	ctx := context.Background()
	if err := postgres.RunMigrations(ctx, dsn); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return postgres.NewStore(pool)
}

func createTestClient(t *testing.T, store *postgres.Store) *client.Client {
	t.Helper()
	ctx := context.Background()
	c, err := store.CreateClient(ctx, client.CreateRequest{
		FirstName: "Test",
		LastName:  "Client",
		Email:     "test-" + uuid.New().String()[:8] + "@example.com",
		RoleType:  booking.RoleFounder,
		Budget:    2500,
		Urgency:   4,
		Status:    client.StatusLead,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { _ = store.DeleteClient(ctx, c.ID) })
	return c
}

func TestStore_ClientCRUD(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	c := createTestClient(t, store)
	if c.Version != 1 {
		t.Errorf("version = %d, want 1", c.Version)
	}

	got, err := store.GetClient(ctx, c.ID)
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if got.Email != c.Email || got.Budget != 2500 {
		t.Errorf("unexpected client: %+v", got)
	}

	got.Status = client.StatusActive
	if err := store.UpdateClient(ctx, got); err != nil {
		t.Fatalf("update client: %v", err)
	}
	if got.Version != 2 {
		t.Errorf("version after update = %d, want 2", got.Version)
	}

	stale := *c
	stale.FirstName = "Stale"
	if err := store.UpdateClient(ctx, &stale); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict for stale version, got %v", err)
	}

	list, err := store.ListClients(ctx, client.ListFilter{Status: client.StatusActive, Search: c.Email})
	if err != nil {
		t.Fatalf("list clients: %v", err)
	}
	if len(list) != 1 || list[0].ID != c.ID {
		t.Errorf("expected filtered list with one client, got %d", len(list))
	}

	if err := store.UpdateClientDescription(ctx, c.ID, "Condensed brief"); err != nil {
		t.Fatalf("update description: %v", err)
	}
}

func TestStore_GetClientNotFound(t *testing.T) {
	store := setupStore(t)
	_, err := store.GetClient(context.Background(), uuid.New().String())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ChildRecords(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	c := createTestClient(t, store)

	if _, err := store.CreateNote(ctx, c.ID, client.CreateNoteRequest{Body: "Called, left voicemail"}); err != nil {
		t.Fatalf("create note: %v", err)
	}
	notes, err := store.ListNotes(ctx, c.ID)
	if err != nil || len(notes) != 1 {
		t.Fatalf("list notes: %v (n=%d)", err, len(notes))
	}

	ct, err := store.CreateContract(ctx, c.ID, client.CreateContractRequest{
		Title: "Discovery", Value: 4000, Currency: "USD", Status: client.ContractDraft,
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	if ct.SignedAt != nil {
		t.Error("draft contract should not be signed")
	}
	ct.Status = client.ContractSigned
	if err := store.UpdateContract(ctx, ct); err != nil {
		t.Fatalf("update contract: %v", err)
	}
	if ct.SignedAt == nil {
		t.Error("signing should stamp signed_at")
	}

	req := client.CreateTechStackRequest{Category: "backend", Name: "Go"}
	if _, err := store.CreateTechStackItem(ctx, c.ID, req); err != nil {
		t.Fatalf("create tech stack item: %v", err)
	}
	if _, err := store.CreateTechStackItem(ctx, c.ID, req); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate item, got %v", err)
	}

	acct, err := store.CreateAccount(ctx, &client.AdminAccount{
		ClientID: c.ID, Service: "Registrar", Username: "ops", EncryptedSecret: []byte{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	got, err := store.GetAccount(ctx, acct.ID)
	if err != nil || len(got.EncryptedSecret) != 3 {
		t.Fatalf("get account: %v", err)
	}
}

func TestStore_ChildOfMissingClient(t *testing.T) {
	store := setupStore(t)
	_, err := store.CreateNote(context.Background(), uuid.New().String(), client.CreateNoteRequest{Body: "x"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_TimelineEvents(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	c := createTestClient(t, store)

	later := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, d := range []time.Time{later, earlier} {
		_, err := store.CreateTimelineEvent(ctx, timeline.CreateEventRequest{
			ClientID:  c.ID,
			EventType: timeline.EventMilestoneReached,
			Title:     "Milestone " + d.Format("Jan"),
			EventDate: d,
		})
		if err != nil {
			t.Fatalf("create event: %v", err)
		}
	}

	events, err := store.ListTimelineEvents(ctx, c.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 || !events[0].EventDate.Equal(earlier) {
		t.Errorf("expected events ordered by date, got %+v", events)
	}

	if err := store.DeleteTimelineEvent(ctx, events[0].ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	if err := store.DeleteTimelineEvent(ctx, events[0].ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
