package postgres

import (
	"context"
	"fmt"

	"github.com/Strob0t/ClientForge/internal/domain/client"
)

// --- Admin accounts ---

const accountColumns = `id, client_id, service, url, username, encrypted_secret, notes, created_at, updated_at`

func scanAccount(row scannable) (client.AdminAccount, error) {
	var a client.AdminAccount
	err := row.Scan(&a.ID, &a.ClientID, &a.Service, &a.URL, &a.Username,
		&a.EncryptedSecret, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *Store) ListAccounts(ctx context.Context, clientID string) ([]client.AdminAccount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM admin_accounts WHERE client_id = $1 ORDER BY service, username`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list admin accounts: %w", err)
	}
	return collect(rows, scanAccount)
}

func (s *Store) GetAccount(ctx context.Context, id string) (*client.AdminAccount, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM admin_accounts WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundWrap(err, "get admin account %s", id)
	}
	return &a, nil
}

// CreateAccount stores a. EncryptedSecret must already be sealed.
func (s *Store) CreateAccount(ctx context.Context, a *client.AdminAccount) (*client.AdminAccount, error) {
	created, err := scanAccount(s.pool.QueryRow(ctx,
		`INSERT INTO admin_accounts (client_id, service, url, username, encrypted_secret, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+accountColumns,
		a.ClientID, a.Service, a.URL, a.Username, a.EncryptedSecret, a.Notes))
	if err != nil {
		return nil, notFoundWrap(err, "create admin account for client %s", a.ClientID)
	}
	return &created, nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM admin_accounts WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete admin account %s", id)
}
