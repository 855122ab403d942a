package pgutil

import (
	"context"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"github.com/chainsafe/lockmint-relayer/pkg/config"
)

const (
	testImage    = "postgres:15-alpine"
	testDatabase = "relayer_test"
	testUser     = "relayer"
	testPassword = "relayer"
)

// NewTestDB starts a throwaway PostgreSQL container and returns a connection
// to it. Container and connection are released through t.Cleanup. The test is
// skipped when no container provider is available.
func NewTestDB(t *testing.T) *bun.DB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx, testImage,
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     testUser,
		Password: testPassword,
		Database: testDatabase,
		SSLMode:  "disable",
	}

	// the port can be mapped a moment before postgres accepts connections
	db, err := retry.DoWithData(
		func() (*bun.DB, error) { return ConnectDB(ctx, cfg) },
		retry.Context(ctx),
		retry.Attempts(8),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// AssertTables checks that every named table in the public schema exists
// (exists=true) or is absent (exists=false).
func AssertTables(t *testing.T, db *bun.DB, exists bool, tables ...string) {
	t.Helper()
	for _, table := range tables {
		got := queryExists(t, db,
			"SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?", table)
		if got != exists {
			t.Errorf("table %s: exists = %v, want %v", table, got, exists)
		}
	}
}

// AssertIndexes checks that every named index exists in the public schema
func AssertIndexes(t *testing.T, db *bun.DB, indexes ...string) {
	t.Helper()
	for _, index := range indexes {
		if !queryExists(t, db, "SELECT 1 FROM pg_indexes WHERE schemaname = 'public' AND indexname = ?", index) {
			t.Errorf("index %s does not exist", index)
		}
	}
}

func queryExists(t *testing.T, db *bun.DB, query string, arg any) bool {
	t.Helper()
	var exists bool
	err := db.NewSelect().
		ColumnExpr("EXISTS ("+query+")", arg).
		Scan(context.Background(), &exists)
	if err != nil {
		t.Fatalf("existence query failed: %v", err)
	}
	return exists
}
