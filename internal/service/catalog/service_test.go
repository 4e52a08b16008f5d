package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"commerce-sync/internal/domain"
	"commerce-sync/internal/gateway"
	"commerce-sync/internal/gateway/memory"
	catalogsync "commerce-sync/internal/sync/catalog"
	"github.com/shopspring/decimal"
)

type stubRepo struct {
	items   map[string]*domain.CatalogItem
	saves   int
	deleted []string
	saveErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{items: map[string]*domain.CatalogItem{}}
}

func (s *stubRepo) ListByMerchant(_ context.Context, merchantID string) ([]domain.CatalogItem, error) {
	var out []domain.CatalogItem
	for _, it := range s.items {
		if it.MerchantID == merchantID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (s *stubRepo) GetByID(_ context.Context, merchantID, id string) (*domain.CatalogItem, error) {
	it, ok := s.items[id]
	if !ok || it.MerchantID != merchantID {
		return nil, domain.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (s *stubRepo) Create(_ context.Context, item domain.CatalogItem) (*domain.CatalogItem, error) {
	item.ID = fmt.Sprintf("item-%d", len(s.items)+1)
	s.items[item.ID] = &item
	cp := item
	return &cp, nil
}

func (s *stubRepo) SaveCatalogItem(_ context.Context, item *domain.CatalogItem) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *stubRepo) SaveErrors(_ context.Context, item *domain.CatalogItem) error {
	stored, ok := s.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Errors = append(domain.ValidationErrors(nil), item.Errors...)
	return nil
}

func (s *stubRepo) Delete(_ context.Context, merchantID, id string) error {
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	s.deleted = append(s.deleted, id)
	return nil
}

var merchant = &domain.Merchant{ID: "m1", SubAccountID: "acct_1"}

func spec(name string, variants ...domain.VariantSpec) domain.CatalogItemSpec {
	return domain.CatalogItemSpec{Name: name, Attributes: []string{"color"}, Variants: variants}
}

func variant(price string, color string) domain.VariantSpec {
	return domain.VariantSpec{Price: decimal.RequireFromString(price), Quantity: 5, Attributes: map[string]string{"color": color}}
}

func TestCreatePushesAndPersistsLink(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, memory.New(), "usd", nil)

	view, err := svc.Create(context.Background(), merchant, spec("Tee", variant("10.00", "blue"), variant("12.50", "red")))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if view.Remote == nil || len(view.Remote.Variants) != 2 {
		t.Fatalf("expected remote with 2 variants, got %+v", view.Remote)
	}
	stored := repo.items[view.Item.ID]
	if stored.Remote.ID() != view.Remote.ID {
		t.Fatalf("remote link not persisted: %+v", stored)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc := New(newStubRepo(), memory.New(), "usd", nil)
	if _, err := svc.Create(context.Background(), merchant, spec(" ")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCreateRejectionPersistsErrors(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, memory.New(), "usd", nil)

	view, err := svc.Create(context.Background(), merchant, spec("Tee", variant("-1", "blue")))
	if !errors.Is(err, domain.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	stored := repo.items[view.Item.ID]
	if !stored.Errors.Any() {
		t.Fatalf("expected errors persisted, got %+v", stored)
	}
	if !stored.Remote.Linked() {
		t.Fatalf("item link should survive a variant failure")
	}
}

func TestUpdateAppliesLocalFields(t *testing.T) {
	repo := newStubRepo()
	p := memory.New()
	svc := New(repo, p, "usd", nil)
	ctx := context.Background()

	view, err := svc.Create(ctx, merchant, spec("Tee", variant("10.00", "blue")))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	keep := view.Remote.Variants[0]

	next := spec("Tee v2",
		domain.VariantSpec{RemoteID: keep.ID, Price: decimal.RequireFromString("11.00"), Quantity: 3, Attributes: keep.Attributes},
		variant("9.00", "green"),
	)
	next.Published = true
	updated, err := svc.Update(ctx, merchant, view.Item.ID, next)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Remote.Name != "Tee v2" || len(updated.Remote.Variants) != 2 {
		t.Fatalf("unexpected remote %+v", updated.Remote)
	}
	stored := repo.items[view.Item.ID]
	if stored.Name != "Tee v2" || !stored.Published {
		t.Fatalf("local fields not saved: %+v", stored)
	}
}

func TestUpdateUnsyncedItem(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, memory.New(), "usd", nil)
	item, _ := repo.Create(context.Background(), domain.CatalogItem{MerchantID: merchant.ID, Name: "Mug"})

	if _, err := svc.Update(context.Background(), merchant, item.ID, spec("Mug")); !errors.Is(err, domain.ErrNotCreated) {
		t.Fatalf("expected ErrNotCreated, got %v", err)
	}
}

func TestDeleteRemovesRemoteThenLocal(t *testing.T) {
	repo := newStubRepo()
	p := memory.New()
	svc := New(repo, p, "usd", nil)
	ctx := context.Background()

	view, err := svc.Create(ctx, merchant, spec("Tee", variant("10.00", "blue")))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Delete(ctx, merchant, view.Item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected local delete")
	}
	remote, err := svc.RemoteList(ctx, merchant, nil)
	if err != nil {
		t.Fatalf("RemoteList: %v", err)
	}
	if len(remote) != 0 {
		t.Fatalf("expected empty remote catalog, got %d", len(remote))
	}
}

func TestDeleteConflictKeepsLocalItem(t *testing.T) {
	repo := newStubRepo()
	p := memory.New()
	svc := New(repo, p, "usd", nil)
	ctx := context.Background()

	view, err := svc.Create(ctx, merchant, spec("Tee", variant("10.00", "blue")))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	p.MarkReferenced(view.Remote.Variants[0].ID)

	item, err := svc.Delete(ctx, merchant, view.Item.ID)
	if !errors.Is(err, domain.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if item.Errors.Last() != catalogsync.DeleteConflictMessage {
		t.Fatalf("unexpected errors %v", item.Errors)
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("local item must stay when the remote refuses deletion")
	}
}

func TestRemoteListWithoutSubAccount(t *testing.T) {
	svc := New(newStubRepo(), memory.New(), "usd", nil)
	items, err := svc.RemoteList(context.Background(), &domain.Merchant{ID: "m2"}, nil)
	if err != nil {
		t.Fatalf("RemoteList: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items")
	}
}

func TestUpdateRejectedLeavesStoredFields(t *testing.T) {
	repo := newStubRepo()
	p := memory.New()
	svc := New(repo, p, "usd", nil)
	ctx := context.Background()

	view, err := svc.Create(ctx, merchant, spec("Tee", variant("10.00", "blue")))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	keep := view.Remote.Variants[0]
	next := spec("Renamed", domain.VariantSpec{RemoteID: keep.ID, Price: decimal.RequireFromString("10.00"), Quantity: 5, Attributes: keep.Attributes})
	next.Published = true

	p.FailNext(memory.OpUpdateCatalogItem, &gateway.Error{Kind: gateway.KindInvalidRequest, Message: "nope"})
	rejected, err := svc.Update(ctx, merchant, view.Item.ID, next)
	if !errors.Is(err, domain.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if rejected.Item.Name != "Tee" {
		t.Fatalf("returned item took rejected fields: %+v", rejected.Item)
	}
	stored := repo.items[view.Item.ID]
	if stored.Name != "Tee" || stored.Published {
		t.Fatalf("rejected fields were stored: %+v", stored)
	}
	if len(stored.Errors) != 1 || stored.Errors[0] != "nope" {
		t.Fatalf("unexpected stored errors %v", stored.Errors)
	}

	updated, err := svc.Update(ctx, merchant, view.Item.ID, next)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Item.Errors.Any() || repo.items[view.Item.ID].Errors.Any() {
		t.Fatalf("errors from the rejected update survived a success: %v", repo.items[view.Item.ID].Errors)
	}
	if repo.items[view.Item.ID].Name != "Renamed" {
		t.Fatalf("accepted fields not stored")
	}
}
