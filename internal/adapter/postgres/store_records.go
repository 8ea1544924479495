package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/ClientForge/internal/domain"
	"github.com/Strob0t/ClientForge/internal/domain/client"
)

// --- Notes ---

func scanNote(row scannable) (client.Note, error) {
	var n client.Note
	err := row.Scan(&n.ID, &n.ClientID, &n.Body, &n.Author, &n.CreatedAt)
	return n, err
}

func (s *Store) ListNotes(ctx context.Context, clientID string) ([]client.Note, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, client_id, body, author, created_at
		 FROM client_notes WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return collect(rows, scanNote)
}

func (s *Store) CreateNote(ctx context.Context, clientID string, req client.CreateNoteRequest) (*client.Note, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO client_notes (client_id, body, author) VALUES ($1, $2, $3)
		 RETURNING id, client_id, body, author, created_at`,
		clientID, req.Body, req.Author)
	n, err := scanNote(row)
	if err != nil {
		return nil, notFoundWrap(err, "create note for client %s", clientID)
	}
	return &n, nil
}

func (s *Store) DeleteNote(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM client_notes WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete note %s", id)
}

// --- Contracts ---

const contractColumns = `id, client_id, title, value, currency, status, signed_at, version, created_at, updated_at`

func scanContract(row scannable) (client.Contract, error) {
	var c client.Contract
	err := row.Scan(&c.ID, &c.ClientID, &c.Title, &c.Value, &c.Currency, &c.Status,
		&c.SignedAt, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) ListContracts(ctx context.Context, clientID string) ([]client.Contract, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	return collect(rows, scanContract)
}

func (s *Store) GetContract(ctx context.Context, id string) (*client.Contract, error) {
	c, err := scanContract(s.pool.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundWrap(err, "get contract %s", id)
	}
	return &c, nil
}

func (s *Store) CreateContract(ctx context.Context, clientID string, req client.CreateContractRequest) (*client.Contract, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO contracts (client_id, title, value, currency, status, signed_at)
		 VALUES ($1, $2, $3, $4, $5, CASE WHEN $5 = 'signed' THEN now() END)
		 RETURNING `+contractColumns,
		clientID, req.Title, req.Value, req.Currency, req.Status)
	c, err := scanContract(row)
	if err != nil {
		return nil, notFoundWrap(err, "create contract for client %s", clientID)
	}
	return &c, nil
}

// UpdateContract writes c using optimistic locking on Version. signed_at is
// stamped the first time the status becomes signed.
func (s *Store) UpdateContract(ctx context.Context, c *client.Contract) error {
	row := s.pool.QueryRow(ctx,
		`UPDATE contracts SET title = $2, value = $3, currency = $4, status = $5,
			signed_at = CASE WHEN $5 = 'signed' THEN COALESCE(signed_at, now()) ELSE signed_at END,
			version = version + 1
		 WHERE id = $1 AND version = $6
		 RETURNING signed_at, version, updated_at`,
		c.ID, c.Title, c.Value, c.Currency, c.Status, c.Version)
	if err := row.Scan(&c.SignedAt, &c.Version, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update contract %s: %w", c.ID, domain.ErrConflict)
		}
		return fmt.Errorf("update contract %s: %w", c.ID, err)
	}
	return nil
}

func (s *Store) DeleteContract(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete contract %s", id)
}

// --- Tech stack ---

func scanTechStackItem(row scannable) (client.TechStackItem, error) {
	var t client.TechStackItem
	err := row.Scan(&t.ID, &t.ClientID, &t.Category, &t.Name, &t.Version, &t.Notes, &t.CreatedAt)
	return t, err
}

func (s *Store) ListTechStack(ctx context.Context, clientID string) ([]client.TechStackItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, client_id, category, name, version, notes, created_at
		 FROM tech_stack_items WHERE client_id = $1 ORDER BY category, name`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list tech stack: %w", err)
	}
	return collect(rows, scanTechStackItem)
}

func (s *Store) CreateTechStackItem(ctx context.Context, clientID string, req client.CreateTechStackRequest) (*client.TechStackItem, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO tech_stack_items (client_id, category, name, version, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, client_id, category, name, version, notes, created_at`,
		clientID, req.Category, req.Name, req.Version, req.Notes)
	t, err := scanTechStackItem(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create tech stack item %s/%s: %w", req.Category, req.Name, domain.ErrConflict)
		}
		return nil, notFoundWrap(err, "create tech stack item for client %s", clientID)
	}
	return &t, nil
}

func (s *Store) DeleteTechStackItem(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tech_stack_items WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete tech stack item %s", id)
}
