package pgutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"github.com/chainsafe/identity-oracle/pkg/config"
	"github.com/chainsafe/identity-oracle/pkg/testutil"
)

const (
	testDatabase = "vault_test"
	testUser     = "vault"
	testPassword = "vault"
)

// SetupTestDB starts an empty vault database in a postgres container. The connection and
// the container are released when the test ends; the test is skipped without docker.
func SetupTestDB(t *testing.T) *bun.DB {
	t.Helper()
	testutil.RequireDockerAccess(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     testUser,
		Password: testPassword,
		Database: testDatabase,
		SSLMode:  "disable",
	}

	// the log line can precede the listener by a few hundred milliseconds
	var db *bun.DB
	require.Eventually(t, func() bool {
		db, err = ConnectDB(cfg)
		return err == nil
	}, 10*time.Second, 200*time.Millisecond, "connect to vault test database")
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// AssertTables checks that every named table is present (or, with present unset, absent)
func AssertTables(t *testing.T, db *bun.DB, present bool, tables ...string) {
	t.Helper()
	for _, table := range tables {
		exists := queryExists(t, db,
			"SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?", table)
		if present {
			require.Truef(t, exists, "table %s does not exist", table)
		} else {
			require.Falsef(t, exists, "table %s should have been dropped", table)
		}
	}
}

// AssertIndexes checks that every named index exists
func AssertIndexes(t *testing.T, db *bun.DB, indexes ...string) {
	t.Helper()
	for _, index := range indexes {
		exists := queryExists(t, db,
			"SELECT 1 FROM pg_indexes WHERE schemaname = 'public' AND indexname = ?", index)
		require.Truef(t, exists, "index %s does not exist", index)
	}
}

// AssertRowCount checks the number of rows stored for model
func AssertRowCount(t *testing.T, db *bun.DB, model any, expected int) {
	t.Helper()
	count, err := db.NewSelect().Model(model).Count(context.Background())
	require.NoError(t, err)
	require.Equalf(t, expected, count, "rows in %T", model)
}

func queryExists(t *testing.T, db *bun.DB, query string, args ...any) bool {
	t.Helper()
	var exists bool
	err := db.NewSelect().ColumnExpr("EXISTS ("+query+")", args...).Scan(context.Background(), &exists)
	require.NoError(t, err)
	return exists
}
