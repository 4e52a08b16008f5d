package rest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"commerce-sync/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method  string
	path    string
	query   url.Values
	form    url.Values
	account string
	user    string
}

func newServer(t *testing.T, status int, body string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.Query()
		rec.form, _ = url.ParseQuery(string(raw))
		rec.account = r.Header.Get("Stripe-Account")
		rec.user, _, _ = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "sk_test"}, nil), rec
}

func TestCreateVariantSendsFormAndScope(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"id":"sku_1","product":"prod_1","price":1000,"currency":"usd","attributes":{"size":"M"},"inventory":{"type":"finite","quantity":3},"active":true}`)

	v, err := c.CreateVariant(context.Background(), gateway.VariantParams{
		CatalogItem: "prod_1",
		Price:       1000,
		Currency:    "usd",
		Attributes:  map[string]string{"size": "M"},
		Inventory:   gateway.Inventory{Type: gateway.InventoryFinite, Quantity: 3},
	}, gateway.ScopeFor("acct_9"))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/v1/skus", rec.path)
	assert.Equal(t, "acct_9", rec.account)
	assert.Equal(t, "sk_test", rec.user)
	assert.Equal(t, "prod_1", rec.form.Get("product"))
	assert.Equal(t, "1000", rec.form.Get("price"))
	assert.Equal(t, "M", rec.form.Get("attributes[size]"))
	assert.Equal(t, "finite", rec.form.Get("inventory[type]"))
	assert.Equal(t, "3", rec.form.Get("inventory[quantity]"))

	assert.Equal(t, "sku_1", v.ID)
	assert.True(t, v.Active)
	assert.Equal(t, 3, v.Inventory.Quantity)
}

func TestPlatformScopeOmitsAccountHeader(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"id":"sku_1"}`)
	_, err := c.RetrieveVariant(context.Background(), "sku_1", gateway.Scope{})
	require.NoError(t, err)
	assert.Equal(t, "", rec.account)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/v1/skus/sku_1", rec.path)
}

func TestRetrieveCatalogItemUnwrapsVariants(t *testing.T) {
	c, _ := newServer(t, http.StatusOK, `{"id":"prod_1","name":"Tee","attributes":["size"],"metadata":{"id":"42"},"skus":{"data":[{"id":"sku_1"},{"id":"sku_2"}]}}`)

	item, err := c.RetrieveCatalogItem(context.Background(), "prod_1", gateway.Scope{})
	require.NoError(t, err)
	assert.Equal(t, "Tee", item.Name)
	assert.Equal(t, "42", item.Metadata["id"])
	require.Len(t, item.Variants, 2)
	assert.Equal(t, "sku_2", item.Variants[1].ID)
}

func TestListCatalogItemsPassesIDs(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"data":[{"id":"prod_1","skus":{"data":[]}}]}`)

	items, err := c.ListCatalogItems(context.Background(), []string{"prod_1", "prod_2"}, gateway.Scope{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, []string{"prod_1", "prod_2"}, rec.query["ids[]"])
}

func TestProviderErrorIsDecoded(t *testing.T) {
	c, _ := newServer(t, http.StatusBadRequest, `{"error":{"type":"invalid_request_error","code":"resource_in_use","message":"This SKU is in use."}}`)

	err := c.DeleteVariant(context.Background(), "sku_1", gateway.Scope{})
	require.Error(t, err)
	gwErr, ok := gateway.AsError(err)
	require.True(t, ok)
	assert.Equal(t, gateway.KindInvalidRequest, gwErr.Kind)
	assert.Equal(t, gateway.CodeResourceInUse, gwErr.Code)
	assert.Equal(t, http.StatusBadRequest, gwErr.Status)
	assert.True(t, gateway.IsInvalidRequest(err))
}

func TestErrorWithoutBodyFallsBackToStatus(t *testing.T) {
	c, _ := newServer(t, http.StatusNotFound, `not json`)
	_, err := c.RetrievePurchaseOrder(context.Background(), "or_1", gateway.Scope{})
	assert.True(t, gateway.IsNotFound(err))
}

func TestPayPurchaseOrder(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"id":"or_1","status":"paid"}`)

	order, err := c.PayPurchaseOrder(context.Background(), "or_1", "tok_visa", gateway.ScopeFor("acct_1"))
	require.NoError(t, err)
	assert.Equal(t, "paid", order.Status)
	assert.Equal(t, "/v1/orders/or_1/pay", rec.path)
	assert.Equal(t, "tok_visa", rec.form.Get("source"))
}

func TestCreatePurchaseOrderItems(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"id":"or_1","status":"created"}`)

	_, err := c.CreatePurchaseOrder(context.Background(), gateway.PurchaseOrderParams{
		Currency: "usd",
		Email:    "buyer@example.com",
		Shipping: gateway.Shipping{Name: "Jane", Address: gateway.Address{Line1: "1 Main", City: "Austin", State: "TX", PostalCode: "78701", Country: "US"}},
		Items:    []gateway.OrderItem{{Type: gateway.ItemTypeSKU, Parent: "sku_1", Quantity: 2}},
		Metadata: map[string]string{"id": "7"},
	}, gateway.Scope{})
	require.NoError(t, err)
	assert.Equal(t, "sku", rec.form.Get("items[0][type]"))
	assert.Equal(t, "sku_1", rec.form.Get("items[0][parent]"))
	assert.Equal(t, "2", rec.form.Get("items[0][quantity]"))
	assert.Equal(t, "78701", rec.form.Get("shipping[address][postal_code]"))
	assert.Equal(t, "7", rec.form.Get("metadata[id]"))
}

func TestCreateCustomerFlattensPlan(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"id":"cus_1","email":"a@b.c","subscriptions":{"data":[{"id":"sub_1","customer":"cus_1","status":"active","plan":{"id":"pro"}}]}}`)

	cust, err := c.CreateCustomer(context.Background(), gateway.CustomerParams{Source: "tok_visa", Plan: "pro", Email: "a@b.c", Coupon: "WELCOME"})
	require.NoError(t, err)
	assert.Equal(t, "WELCOME", rec.form.Get("coupon"))
	require.Len(t, cust.Subscriptions, 1)
	assert.Equal(t, "pro", cust.Subscriptions[0].Plan)
	assert.Equal(t, "sub_1", cust.Subscriptions[0].ID)
}

func TestCancelSubscriptionAtPeriodEnd(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"id":"sub_1","cancel_at_period_end":true,"plan":{"id":"pro"}}`)

	sub, err := c.CancelSubscription(context.Background(), "sub_1", true)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "true", rec.query.Get("at_period_end"))
	assert.True(t, sub.CancelAtPeriodEnd)
}

func TestCanceledContextStopsRequest(t *testing.T) {
	c, _ := newServer(t, http.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.RetrieveVariant(ctx, "sku_1", gateway.Scope{})
	require.Error(t, err)
	_, ok := gateway.AsError(err)
	assert.False(t, ok)
}
