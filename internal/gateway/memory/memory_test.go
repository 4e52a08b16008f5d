package memory

import (
	"context"
	"errors"
	"testing"

	"commerce-sync/internal/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedVariant(t *testing.T, p *Provider, scope gateway.Scope, qty int) (*gateway.CatalogItem, *gateway.Variant) {
	t.Helper()
	ctx := context.Background()
	item, err := p.CreateCatalogItem(ctx, gateway.CatalogItemParams{Name: "Tee", Shippable: true}, scope)
	require.NoError(t, err)
	v, err := p.CreateVariant(ctx, gateway.VariantParams{
		CatalogItem: item.ID,
		Price:       1500,
		Currency:    "USD",
		Inventory:   gateway.Inventory{Type: gateway.InventoryFinite, Quantity: qty},
	}, scope)
	require.NoError(t, err)
	return item, v
}

func TestScopeIsolation(t *testing.T) {
	p := New()
	ctx := context.Background()
	_, v := seedVariant(t, p, gateway.ScopeFor("acct_a"), 1)

	_, err := p.RetrieveVariant(ctx, v.ID, gateway.ScopeFor("acct_b"))
	assert.True(t, gateway.IsNotFound(err))
	_, err = p.RetrieveVariant(ctx, v.ID, gateway.Scope{})
	assert.True(t, gateway.IsNotFound(err))

	got, err := p.RetrieveVariant(ctx, v.ID, gateway.ScopeFor("acct_a"))
	require.NoError(t, err)
	assert.Equal(t, "usd", got.Currency)
}

func TestRetrieveItemNestsVariants(t *testing.T) {
	p := New()
	item, v := seedVariant(t, p, gateway.Scope{}, 1)

	got, err := p.RetrieveCatalogItem(context.Background(), item.ID, gateway.Scope{})
	require.NoError(t, err)
	require.Len(t, got.Variants, 1)
	assert.Equal(t, v.ID, got.Variants[0].ID)
}

func TestDeleteConflicts(t *testing.T) {
	p := New()
	ctx := context.Background()
	item, v := seedVariant(t, p, gateway.Scope{}, 1)

	err := p.DeleteCatalogItem(ctx, item.ID, gateway.Scope{})
	gwErr, ok := gateway.AsError(err)
	require.True(t, ok)
	assert.Equal(t, gateway.CodeResourceInUse, gwErr.Code)

	p.MarkReferenced(v.ID)
	err = p.DeleteVariant(ctx, v.ID, gateway.Scope{})
	assert.True(t, gateway.IsInvalidRequest(err))

	_, v2 := seedVariant(t, p, gateway.Scope{}, 1)
	require.NoError(t, p.DeleteVariant(ctx, v2.ID, gateway.Scope{}))
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	p := New()
	ctx := context.Background()
	scope := gateway.ScopeFor("acct_a")
	_, v := seedVariant(t, p, scope, 2)

	order, err := p.CreatePurchaseOrder(ctx, gateway.PurchaseOrderParams{
		Currency: "usd",
		Email:    "buyer@example.com",
		Items:    []gateway.OrderItem{{Type: gateway.ItemTypeSKU, Parent: v.ID, Quantity: 2}},
	}, scope)
	require.NoError(t, err)
	assert.Equal(t, "created", order.Status)
	assert.Equal(t, int64(3000), order.Amount)

	left, err := p.RetrieveVariant(ctx, v.ID, scope)
	require.NoError(t, err)
	assert.Equal(t, 0, left.Inventory.Quantity)

	_, err = p.CreatePurchaseOrder(ctx, gateway.PurchaseOrderParams{
		Currency: "usd",
		Email:    "buyer@example.com",
		Items:    []gateway.OrderItem{{Type: gateway.ItemTypeSKU, Parent: v.ID, Quantity: 1}},
	}, scope)
	gwErr, ok := gateway.AsError(err)
	require.True(t, ok)
	assert.Equal(t, gateway.CodeUpstreamOrderCreationFailed, gwErr.Code)

	_, err = p.PayPurchaseOrder(ctx, order.ID, DeclinedToken, scope)
	gwErr, ok = gateway.AsError(err)
	require.True(t, ok)
	assert.Equal(t, gateway.KindCard, gwErr.Kind)

	paid, err := p.PayPurchaseOrder(ctx, order.ID, "tok_visa", scope)
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.Status)

	_, err = p.PayPurchaseOrder(ctx, order.ID, "tok_visa", scope)
	assert.Error(t, err)
}

func TestSubscriptionCancelAndUpdate(t *testing.T) {
	p := New()
	ctx := context.Background()

	cust, err := p.CreateCustomer(ctx, gateway.CustomerParams{Source: "tok_visa", Plan: "pro", Email: "a@b.c"})
	require.NoError(t, err)
	require.Len(t, cust.Subscriptions, 1)
	subID := cust.Subscriptions[0].ID

	_, err = p.CancelSubscription(ctx, subID, true)
	require.NoError(t, err)
	s, ok := p.Subscription(subID)
	require.True(t, ok)
	assert.True(t, s.CancelAtPeriodEnd)
	assert.Equal(t, "active", s.Status)

	s.CancelAtPeriodEnd = false
	_, err = p.UpdateSubscription(ctx, &s)
	require.NoError(t, err)
	s, _ = p.Subscription(subID)
	assert.False(t, s.CancelAtPeriodEnd)

	subs, err := p.ListSubscriptions(ctx, gateway.SubscriptionFilter{Customer: cust.ID, Status: gateway.StatusAll})
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	_, err = p.ListSubscriptions(ctx, gateway.SubscriptionFilter{Customer: "cus_missing"})
	assert.True(t, gateway.IsNotFound(err))
}

func TestCreateCustomerRejectsUnknownCoupon(t *testing.T) {
	p := New()
	_, err := p.CreateCustomer(context.Background(), gateway.CustomerParams{Source: "tok_visa", Plan: "pro", Coupon: "NOPE"})
	gwErr, ok := gateway.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "No such coupon: NOPE", gwErr.Message)

	p.AddCoupon("NOPE")
	_, err = p.CreateCustomer(context.Background(), gateway.CustomerParams{Source: "tok_visa", Plan: "pro", Coupon: "NOPE"})
	assert.NoError(t, err)
}

func TestTaxForOrder(t *testing.T) {
	p := New()
	p.SetTaxRate("ca", decimal.RequireFromString("0.08"))

	quote, err := p.TaxForOrder(context.Background(), gateway.TaxQuoteRequest{
		To:     gateway.TaxAddress{Zip: "94108", State: "CA"},
		Amount: decimal.RequireFromString("105.00"),
	})
	require.NoError(t, err)
	assert.True(t, quote.AmountToCollect.Equal(decimal.RequireFromString("8.40")))

	_, err = p.TaxForOrder(context.Background(), gateway.TaxQuoteRequest{})
	gwErr, ok := gateway.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "to_zip is missing, to_state is missing", gwErr.Message)
}

func TestFailNextIsOneShot(t *testing.T) {
	p := New()
	boom := errors.New("boom")
	p.FailNext(OpListCatalogItems, boom)

	_, err := p.ListCatalogItems(context.Background(), nil, gateway.Scope{})
	assert.ErrorIs(t, err, boom)
	_, err = p.ListCatalogItems(context.Background(), nil, gateway.Scope{})
	assert.NoError(t, err)
	assert.Equal(t, 2, p.CallCount(OpListCatalogItems))
}
