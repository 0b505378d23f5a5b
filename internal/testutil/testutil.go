// Package testutil starts throwaway infrastructure for integration tests.
package testutil

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/nkiryanov/medify/internal/db"
)

type PG struct {
	Pool      *pgxpool.Pool
	DSN       string
	Terminate func()
}

// Start postgres in docker container, apply migrations and open connection pool to it
// Call Terminate when done (t.Cleanup is a good place)
func StartPostgresContainer(t *testing.T) *PG {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("medify-test"),
		postgres.WithUsername("medify"),
		postgres.WithPassword("pwd"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "container with pg start failed")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	t.Logf("Container with pg started, DSN=%v", dsn)

	pool, err := db.ConnectAndMigrate(ctx, dsn)
	require.NoError(t, err, "could not migrate or connect to test database")

	return &PG{
		Pool: pool,
		DSN:  dsn,
		Terminate: func() {
			pool.Close()
			if err := testcontainers.TerminateContainer(container); err != nil {
				t.Logf("failed to terminate pg container: %v", err)
			}
		},
	}
}

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Run fn in transaction that is rolled back when fn returns
// Pass pgx.Tx as db to get nested transaction (savepoint)
func WithTx(db beginner, t *testing.T, fn func(tx pgx.Tx)) {
	t.Helper()

	tx, err := db.Begin(t.Context())
	require.NoError(t, err, "could not begin test transaction")

	defer func() {
		err := tx.Rollback(context.Background())
		require.NoError(t, err, "could not rollback test transaction")
	}()

	fn(tx)
}

// Ask OS for a free TCP port
func RandomPort() (int, error) {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()

	return l.Addr().(*net.TCPAddr).Port, nil
}
