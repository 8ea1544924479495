package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/ClientForge/internal/domain"
	"github.com/Strob0t/ClientForge/internal/domain/client"
	"github.com/Strob0t/ClientForge/internal/port/database"
)

var _ database.Store = (*Store)(nil)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Clients ---

const clientColumns = `id, first_name, last_name, email, phone, role_type, company_name,
	project_description, original_description, ai_summarized, timeline, start_date, end_date,
	budget, urgency, status, version, created_at, updated_at`

func scanClient(row scannable) (client.Client, error) {
	var c client.Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.RoleType, &c.CompanyName,
		&c.ProjectDescription, &c.OriginalDescription, &c.AISummarized, &c.Timeline, &c.StartDate, &c.EndDate,
		&c.Budget, &c.Urgency, &c.Status, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) ListClients(ctx context.Context, filter client.ListFilter) ([]client.Client, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		args = append(args, likePattern(q))
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR company_name ILIKE $%d)", n, n, n, n))
	}

	query := `SELECT ` + clientColumns + ` FROM clients`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	clients, err := collect(rows, scanClient)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (s *Store) GetClient(ctx context.Context, id string) (*client.Client, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if err != nil {
		return nil, notFoundWrap(err, "get client %s", id)
	}
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, req client.CreateRequest) (*client.Client, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO clients (first_name, last_name, email, phone, role_type, company_name,
			project_description, original_description, ai_summarized, timeline, start_date, end_date,
			budget, urgency, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING `+clientColumns,
		req.FirstName, req.LastName, req.Email, req.Phone, req.RoleType, req.CompanyName,
		req.ProjectDescription, req.OriginalDescription, req.AISummarized, req.Timeline, req.StartDate, req.EndDate,
		req.Budget, req.Urgency, req.Status)

	c, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &c, nil
}

// UpdateClient writes c using optimistic locking on Version.
func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE clients SET first_name = $2, last_name = $3, email = $4, phone = $5, role_type = $6,
			company_name = $7, project_description = $8, timeline = $9, start_date = $10, end_date = $11,
			budget = $12, urgency = $13, status = $14, version = version + 1
		 WHERE id = $1 AND version = $15`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.RoleType,
		c.CompanyName, c.ProjectDescription, c.Timeline, c.StartDate, c.EndDate,
		c.Budget, c.Urgency, c.Status, c.Version)
	if err != nil {
		return fmt.Errorf("update client %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update client %s: %w", c.ID, domain.ErrConflict)
	}
	c.Version++
	return nil
}

func (s *Store) UpdateClientDescription(ctx context.Context, id, description string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE clients SET project_description = $2, version = version + 1 WHERE id = $1`, id, description)
	return execExpectOne(tag, err, "update client description %s", id)
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete client %s", id)
}
