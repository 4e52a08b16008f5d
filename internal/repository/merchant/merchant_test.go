package merchant

import (
	"context"
	"errors"
	"testing"

	"commerce-sync/internal/db/dbtest"
	"commerce-sync/internal/domain"
)

func TestPostgres_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Merchant{
		Key:          "acme",
		Name:         "Acme",
		SubAccountID: "acct_1",
		Address:      domain.Address{Line1: "1 Main", City: "Austin", State: "TX", PostalCode: "78701", Country: "US"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.SubAccountID != "acct_1" {
		t.Fatalf("unexpected merchant %+v", created)
	}

	got, err := repo.GetByKey(ctx, "acme")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if got.ID != created.ID || got.Address.PostalCode != "78701" {
		t.Fatalf("unexpected merchant %+v", got)
	}

	if _, err := repo.Create(ctx, domain.Merchant{Key: "acme", Name: "Other"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := repo.GetByKey(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_UpsertClearsSubAccount(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	first, err := repo.Upsert(ctx, domain.Merchant{Key: "demo", Name: "Demo", SubAccountID: "acct_1"})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	second, err := repo.Upsert(ctx, domain.Merchant{Key: "demo", Name: "Demo Store"})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same id after upsert")
	}
	if second.SubAccountID != "" || second.Name != "Demo Store" {
		t.Fatalf("unexpected merchant %+v", second)
	}

	byID, err := repo.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Key != "demo" {
		t.Fatalf("unexpected merchant %+v", byID)
	}
}
