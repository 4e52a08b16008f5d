package catalog

import (
	"context"
	"errors"
	"testing"

	"commerce-sync/internal/domain"
	"commerce-sync/internal/gateway"
	"commerce-sync/internal/gateway/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	saved []domain.CatalogItem
	err   error
}

func (s *stubStore) SaveCatalogItem(_ context.Context, item *domain.CatalogItem) error {
	s.saved = append(s.saved, *item)
	return s.err
}

func productSpec() domain.CatalogItemSpec {
	return domain.CatalogItemSpec{
		Name:       "Test Product",
		Attributes: []string{"color"},
		Published:  true,
		Variants: []domain.VariantSpec{
			{Price: decimal.NewFromInt(100), Quantity: 10, Attributes: map[string]string{"color": "blue"}},
			{Price: decimal.NewFromInt(200), Quantity: 10, Attributes: map[string]string{"color": "green"}},
		},
	}
}

func newSync(t *testing.T, p *memory.Provider, store *stubStore, item *domain.CatalogItem) *Synchronizer {
	t.Helper()
	s, err := NewSynchronizer(context.Background(), Deps{Gateway: p, Store: store, Currency: "usd"}, item, &domain.Merchant{ID: "m1"})
	require.NoError(t, err)
	return s
}

func TestCreateBuildsItemAndVariants(t *testing.T) {
	p := memory.New()
	store := &stubStore{}
	item := &domain.CatalogItem{ID: "item-1", Name: "Test Product"}

	remote, err := newSync(t, p, store, item).Create(context.Background(), productSpec())
	require.NoError(t, err)
	assert.Equal(t, "Test Product", remote.Name)
	assert.True(t, remote.Shippable)
	assert.Equal(t, map[string]string{"id": "item-1", "published": "true"}, remote.Metadata)
	require.Len(t, remote.Variants, 2)
	assert.Equal(t, int64(10000), remote.Variants[0].Price)

	assert.Equal(t, remote.ID, item.Remote.ID())
	require.Len(t, store.saved, 1)
	assert.Equal(t, remote.ID, store.saved[0].Remote.ID())

	hydrated := newSync(t, p, store, item)
	require.NotNil(t, hydrated.Remote())
	assert.Equal(t, int64(10000), hydrated.Remote().Variants[0].Price)
}

func TestCreateTwiceIsGuarded(t *testing.T) {
	p := memory.New()
	item := &domain.CatalogItem{ID: "item-1"}
	s := newSync(t, p, &stubStore{}, item)
	_, err := s.Create(context.Background(), productSpec())
	require.NoError(t, err)
	first := item.Remote.ID()

	_, err = s.Create(context.Background(), productSpec())
	assert.ErrorIs(t, err, domain.ErrAlreadyCreated)
	assert.Equal(t, 1, p.CallCount(memory.OpCreateCatalogItem))
	assert.Equal(t, first, item.Remote.ID())
	assert.Empty(t, item.Errors)
}

func TestCreateItemRejectionSkipsVariants(t *testing.T) {
	p := memory.New()
	item := &domain.CatalogItem{ID: "item-1"}
	spec := productSpec()
	spec.Name = ""

	_, err := newSync(t, p, &stubStore{}, item).Create(context.Background(), spec)
	assert.ErrorIs(t, err, domain.ErrRejected)
	assert.False(t, item.Remote.Linked())
	assert.Equal(t, []string{"Missing required param: name."}, []string(item.Errors))
	assert.Equal(t, 0, p.CallCount(memory.OpCreateVariant))
}

func TestCreateTransportErrorIsNotRecorded(t *testing.T) {
	p := memory.New()
	p.FailNext(memory.OpCreateCatalogItem, errors.New("connection reset"))
	item := &domain.CatalogItem{ID: "item-1"}

	_, err := newSync(t, p, &stubStore{}, item).Create(context.Background(), productSpec())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRejected)
	assert.Empty(t, item.Errors)
}

func TestUpdateRequiresRemote(t *testing.T) {
	item := &domain.CatalogItem{ID: "item-1"}
	_, err := newSync(t, memory.New(), &stubStore{}, item).Update(context.Background(), productSpec())
	assert.ErrorIs(t, err, domain.ErrNotCreated)
}

func TestStaleRemoteLinkHydratesAsAbsent(t *testing.T) {
	item := &domain.CatalogItem{ID: "item-1", Remote: domain.LinkedTo("prod_missing")}
	s := newSync(t, memory.New(), &stubStore{}, item)
	assert.Nil(t, s.Remote())

	_, err := s.Update(context.Background(), productSpec())
	assert.ErrorIs(t, err, domain.ErrNotCreated)
	_, err = s.Create(context.Background(), productSpec())
	assert.ErrorIs(t, err, domain.ErrAlreadyCreated)
}

func TestProductLifecycle(t *testing.T) {
	ctx := context.Background()
	p := memory.New()
	item := &domain.CatalogItem{ID: "item-1"}
	s := newSync(t, p, &stubStore{}, item)

	created, err := s.Create(ctx, productSpec())
	require.NoError(t, err)
	require.Len(t, created.Variants, 2)
	keep, removed := created.Variants[0], created.Variants[1]
	p.MarkReferenced(removed.ID)

	spec := productSpec()
	spec.Name = "Renamed"
	spec.Variants = []domain.VariantSpec{
		{RemoteID: keep.ID, Price: decimal.NewFromInt(200), Quantity: 20, Attributes: keep.Attributes},
		{Price: decimal.NewFromInt(50), Quantity: 10, Attributes: map[string]string{"color": "gold"}},
	}
	updated, err := s.Update(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	live := Live(updated.Variants)
	require.Len(t, live, len(spec.Variants))
	assert.Contains(t, ids(live), keep.ID)
	assert.NotContains(t, ids(live), removed.ID)
	assert.Contains(t, ids(updated.Variants), removed.ID)
	assert.Empty(t, item.Errors)
}

func TestUpdatePricesAndQuantities(t *testing.T) {
	ctx := context.Background()
	p := memory.New()
	item := &domain.CatalogItem{ID: "item-1"}
	s := newSync(t, p, &stubStore{}, item)
	created, err := s.Create(ctx, productSpec())
	require.NoError(t, err)

	spec := productSpec()
	spec.Variants = []domain.VariantSpec{
		{RemoteID: created.Variants[0].ID, Price: decimal.NewFromInt(200), Quantity: 20, Attributes: created.Variants[0].Attributes},
		{RemoteID: created.Variants[1].ID, Price: decimal.NewFromInt(300), Quantity: 30, Attributes: created.Variants[1].Attributes},
	}
	updated, err := s.Update(ctx, spec)
	require.NoError(t, err)
	require.Len(t, updated.Variants, 2)
	assert.Equal(t, int64(20000), updated.Variants[0].Price)
	assert.Equal(t, 20, updated.Variants[0].Inventory.Quantity)
	assert.Equal(t, int64(30000), updated.Variants[1].Price)
	assert.Equal(t, 30, updated.Variants[1].Inventory.Quantity)
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()
	p := memory.New()
	item := &domain.CatalogItem{ID: "item-1"}
	s := newSync(t, p, &stubStore{}, item)
	_, err := s.Create(ctx, productSpec())
	require.NoError(t, err)

	require.NoError(t, s.Destroy(ctx))
	_, err = p.RetrieveCatalogItem(ctx, item.Remote.ID(), gateway.Scope{})
	assert.True(t, gateway.IsNotFound(err))
}

func TestDestroyPartOfOrder(t *testing.T) {
	ctx := context.Background()
	p := memory.New()
	item := &domain.CatalogItem{ID: "item-1"}
	s := newSync(t, p, &stubStore{}, item)
	created, err := s.Create(ctx, productSpec())
	require.NoError(t, err)
	p.MarkReferenced(created.Variants[0].ID)

	err = s.Destroy(ctx)
	assert.ErrorIs(t, err, domain.ErrRejected)
	assert.Equal(t, []string{DeleteConflictMessage}, []string(item.Errors))
}

func TestListWithoutSubAccountIsEmpty(t *testing.T) {
	p := memory.New()
	items, err := List(context.Background(), p, &domain.Merchant{ID: "m1"}, []string{"prod_1"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, p.CallCount(memory.OpListCatalogItems))
}

func TestListScopedToSubAccount(t *testing.T) {
	ctx := context.Background()
	p := memory.New()
	merchant := &domain.Merchant{ID: "m1", SubAccountID: "acct_1"}
	item := &domain.CatalogItem{ID: "item-1"}
	s, err := NewSynchronizer(ctx, Deps{Gateway: p, Store: &stubStore{}, Currency: "usd"}, item, merchant)
	require.NoError(t, err)
	_, err = s.Create(ctx, productSpec())
	require.NoError(t, err)
	_, err = p.CreateCatalogItem(ctx, gateway.CatalogItemParams{Name: "Platform"}, gateway.Scope{})
	require.NoError(t, err)

	items, err := List(ctx, p, merchant, []string{item.Remote.ID()})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.Remote.ID(), items[0].ID)
}
