package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/Strob0t/ClientForge/internal/adapter/postgres"
)

// TestMigrationUpDownUp checks that every Down section reverses its Up.
func TestMigrationUpDownUp(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("requires DATABASE_URL")
	}
	if os.Getenv("CLIENTFORGE_TEST_DESTRUCTIVE") == "" {
		t.Skip("drops every table; set CLIENTFORGE_TEST_DESTRUCTIVE=1 to run")
	}

	ctx := context.Background()
	const latest = 1

	if err := postgres.RunMigrations(ctx, dsn); err != nil {
		t.Fatalf("up: %v", err)
	}
	assertVersion(t, dsn, latest)

	if err := postgres.RollbackMigrations(ctx, dsn, latest); err != nil {
		t.Fatalf("down: %v", err)
	}
	assertVersion(t, dsn, 0)

	if err := postgres.RunMigrations(ctx, dsn); err != nil {
		t.Fatalf("re-up: %v", err)
	}
	assertVersion(t, dsn, latest)
}

func assertVersion(t *testing.T, dsn string, want int64) {
	t.Helper()
	v, err := postgres.MigrationVersion(context.Background(), dsn)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != want {
		t.Fatalf("expected migration version %d, got %d", want, v)
	}
}
