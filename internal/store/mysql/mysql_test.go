package mysql_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brightline/agency-server/internal/store"
	"github.com/brightline/agency-server/internal/store/mysql"
	"github.com/brightline/agency-server/internal/store/storetest"
)

// TestMySQLStoreConformance runs the shared suite against a real
// database. It needs TEST_DB_HOST (plus the usual DB_ vars) pointing
// at a throwaway schema; without that it skips. Each subtest gets a
// freshly truncated set of tables.
func TestMySQLStoreConformance(t *testing.T) {
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping MySQL conformance suite")
	}

	db, err := mysql.Open(
		envOr("TEST_DB_USER", "root"),
		os.Getenv("TEST_DB_PASS"),
		host,
		envOr("TEST_DB_PORT", "3306"),
		envOr("TEST_DB_NAME", "agency_test"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, mysql.Migrate(ctx, db))

	tables := []string{
		"audit_logs", "order_revisions", "order_items", "orders",
		"cart_items", "notes", "submissions", "blog_posts",
		"otp_codes", "password_reset_tokens", "refresh_tokens",
		"addon_products", "users",
	}

	storetest.RunSuite(t, func(t *testing.T) store.Store {
		if _, err := db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=0"); err != nil {
			t.Fatalf("disable fk checks: %v", err)
		}
		for _, tbl := range tables {
			if _, err := db.ExecContext(ctx, "TRUNCATE TABLE "+tbl); err != nil {
				t.Fatalf("truncate %s: %v", tbl, err)
			}
		}
		if _, err := db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=1"); err != nil {
			t.Fatalf("enable fk checks: %v", err)
		}
		return mysql.New(db)
	})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
