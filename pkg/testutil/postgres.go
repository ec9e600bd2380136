package testutil

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pkgpostgres "github.com/bibbank/fraudwatch/pkg/postgres"
)

// Postgres is a throwaway PostgreSQL with the fraudwatch schema applied.
type Postgres struct {
	container *postgres.PostgresContainer
	DSN       string
	Pool      *pgxpool.Pool
}

// StartPostgres runs PostgreSQL in a container, applies every migration under
// the repository's migrations directory and registers teardown on t.
func StartPostgres(ctx context.Context, t *testing.T) *Postgres {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("fraudwatch"),
		postgres.WithUsername("fraudwatch"),
		postgres.WithPassword("fraudwatch"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	pg := &Postgres{container: container}
	t.Cleanup(func() { pg.terminate(t) })

	pg.DSN, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	if err := pkgpostgres.RunMigrations(pg.DSN, "file://"+MigrationsDir()); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	pg.Pool, err = pkgpostgres.NewPool(ctx, pkgpostgres.Config{URL: pg.DSN, ApplicationName: "fraudwatch-test"})
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	return pg
}

// Reset deletes every stored row so subtests start from an empty store.
func (pg *Postgres) Reset(ctx context.Context, t *testing.T) {
	t.Helper()
	if _, err := pg.Pool.Exec(ctx, `DELETE FROM flagged_transactions; DELETE FROM processing_logs`); err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}
}

func (pg *Postgres) terminate(t *testing.T) {
	if pg.Pool != nil {
		pg.Pool.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pg.container.Terminate(ctx); err != nil {
		t.Logf("warning: failed to terminate postgres container: %v", err)
	}
}

// MigrationsDir returns the absolute path of the repository's migrations.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}
