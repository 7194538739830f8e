// Package dbtest gives repository tests a migrated Postgres database.
package dbtest

import (
	"context"
	"os"
	"sync"
	"testing"

	"souq/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	once    sync.Once
	pool    *pgxpool.Pool
	poolErr error
)

// Tx returns a transaction on TEST_DATABASE_URL that is rolled back when the
// test ends. The test is skipped when the variable is unset or the database
// cannot be reached.
func Tx(t *testing.T) pgx.Tx {
	t.Helper()

	addr := os.Getenv("TEST_DATABASE_URL")
	if addr == "" {
		t.Skip("skipping integration test: TEST_DATABASE_URL not set")
	}

	once.Do(func() {
		pool, poolErr = db.New(addr, db.Options{MaxConns: 4, MaxIdleTime: "1m"})
		if poolErr == nil {
			poolErr = db.Migrate(pool)
		}
	})
	if poolErr != nil {
		t.Skipf("skipping integration test: database not usable: %v", poolErr)
	}

	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin test transaction: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(ctx) })
	return tx
}
