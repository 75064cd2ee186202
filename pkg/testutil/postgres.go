package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pkgpostgres "github.com/garciaurbina83/Rental-Properties-New-sub000/pkg/postgres"
)

// PostgresContainer is a throwaway PostgreSQL with a pool connected to it.
type PostgresContainer struct {
	DSN  string
	Pool *pgxpool.Pool
}

// NewPostgresContainer starts PostgreSQL and applies the migrations found in
// migrationsDir with the same migrator the daemon uses. Pool and container
// are released when the test ends.
func NewPostgresContainer(ctx context.Context, t *testing.T, migrationsDir string) *PostgresContainer {
	t.Helper()

	ctr, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("loans_test"),
		postgres.WithUsername("loand"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := ctr.Terminate(stopCtx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	abs, err := filepath.Abs(migrationsDir)
	require.NoError(t, err)
	version, err := pkgpostgres.RunMigrations(dsn, "file://"+filepath.ToSlash(abs))
	require.NoError(t, err, "migrate %s", migrationsDir)
	t.Logf("schema at version %d", version)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pkgpostgres.HealthCheck(ctx, pool))

	return &PostgresContainer{DSN: dsn, Pool: pool}
}
