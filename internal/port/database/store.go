// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/Strob0t/ClientForge/internal/domain/client"
	"github.com/Strob0t/ClientForge/internal/domain/timeline"
)

// Store is the port interface for database operations.
type Store interface {
	// Clients
	ListClients(ctx context.Context, filter client.ListFilter) ([]client.Client, error)
	GetClient(ctx context.Context, id string) (*client.Client, error)
	CreateClient(ctx context.Context, req client.CreateRequest) (*client.Client, error)
	UpdateClient(ctx context.Context, c *client.Client) error
	UpdateClientDescription(ctx context.Context, id, description string) error
	DeleteClient(ctx context.Context, id string) error

	// Notes
	ListNotes(ctx context.Context, clientID string) ([]client.Note, error)
	CreateNote(ctx context.Context, clientID string, req client.CreateNoteRequest) (*client.Note, error)
	DeleteNote(ctx context.Context, id string) error

	// Contracts
	ListContracts(ctx context.Context, clientID string) ([]client.Contract, error)
	GetContract(ctx context.Context, id string) (*client.Contract, error)
	CreateContract(ctx context.Context, clientID string, req client.CreateContractRequest) (*client.Contract, error)
	UpdateContract(ctx context.Context, c *client.Contract) error
	DeleteContract(ctx context.Context, id string) error

	// Tech stack
	ListTechStack(ctx context.Context, clientID string) ([]client.TechStackItem, error)
	CreateTechStackItem(ctx context.Context, clientID string, req client.CreateTechStackRequest) (*client.TechStackItem, error)
	DeleteTechStackItem(ctx context.Context, id string) error

	// Admin accounts
	ListAccounts(ctx context.Context, clientID string) ([]client.AdminAccount, error)
	GetAccount(ctx context.Context, id string) (*client.AdminAccount, error)
	CreateAccount(ctx context.Context, a *client.AdminAccount) (*client.AdminAccount, error)
	DeleteAccount(ctx context.Context, id string) error

	// Timeline
	ListTimelineEvents(ctx context.Context, clientID string) ([]timeline.Event, error)
	CreateTimelineEvent(ctx context.Context, req timeline.CreateEventRequest) (*timeline.Event, error)
	DeleteTimelineEvent(ctx context.Context, id string) error
}
