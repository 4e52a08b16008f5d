// Package dbtest provides a migrated, empty Postgres database for integration tests.
package dbtest

import (
	"context"
	"os"
	"testing"

	"commerce-sync/internal/db"
	"commerce-sync/internal/domain"
	"commerce-sync/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool connects to TEST_DB_DSN, applies migrations and truncates every table.
// The test is skipped when TEST_DB_DSN is unset.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn, db.Options{MaxConns: 4})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE subscriptions, purchase_orders, catalog_items, merchants RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}

// Merchant inserts a merchant row and returns it.
func Merchant(t *testing.T, pool *pgxpool.Pool, key, subAccount string) domain.Merchant {
	t.Helper()
	m := domain.Merchant{Key: key, Name: key, SubAccountID: subAccount}
	err := pool.QueryRow(context.Background(), `
		INSERT INTO merchants (key, name, sub_account_id, state, postal_code)
		VALUES ($1, $1, NULLIF($2, ''), 'CA', '92093')
		RETURNING id::text, created_at
	`, key, subAccount).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		t.Fatalf("insert merchant: %v", err)
	}
	m.Address.State = "CA"
	m.Address.PostalCode = "92093"
	m.Address.Country = "US"
	return m
}
