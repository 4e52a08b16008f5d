package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"commerce-sync/internal/gateway"
)

// catalogItemWire matches the provider's product payload, where variants
// arrive as a nested list object.
type catalogItemWire struct {
	gateway.CatalogItem
	Variants listEnvelope[gateway.Variant] `json:"skus"`
}

func (w catalogItemWire) item() *gateway.CatalogItem {
	item := w.CatalogItem
	item.Variants = w.Variants.Data
	return &item
}

func variantForm(catalogItem string, price int64, currency string, attrs map[string]string, inv gateway.Inventory) url.Values {
	form := url.Values{}
	if catalogItem != "" {
		form.Set("product", catalogItem)
	}
	form.Set("price", strconv.FormatInt(price, 10))
	form.Set("currency", currency)
	setMap(form, "attributes", attrs)
	form.Set("inventory[type]", inv.Type)
	form.Set("inventory[quantity]", strconv.Itoa(inv.Quantity))
	return form
}

func (c *Client) CreateVariant(ctx context.Context, params gateway.VariantParams, scope gateway.Scope) (*gateway.Variant, error) {
	var out gateway.Variant
	form := variantForm(params.CatalogItem, params.Price, params.Currency, params.Attributes, params.Inventory)
	if err := c.do(ctx, http.MethodPost, "/v1/skus", form, scope, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RetrieveVariant(ctx context.Context, id string, scope gateway.Scope) (*gateway.Variant, error) {
	var out gateway.Variant
	if err := c.do(ctx, http.MethodGet, "/v1/skus/"+escape(id), nil, scope, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateVariant(ctx context.Context, v *gateway.Variant, scope gateway.Scope) (*gateway.Variant, error) {
	var out gateway.Variant
	form := variantForm("", v.Price, v.Currency, v.Attributes, v.Inventory)
	form.Set("active", strconv.FormatBool(v.Active))
	if err := c.do(ctx, http.MethodPost, "/v1/skus/"+escape(v.ID), form, scope, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteVariant(ctx context.Context, id string, scope gateway.Scope) error {
	return c.do(ctx, http.MethodDelete, "/v1/skus/"+escape(id), nil, scope, nil)
}

func catalogItemForm(name string, images []string, shippable bool, attrs []string, metadata map[string]string) url.Values {
	form := url.Values{}
	form.Set("name", name)
	form.Set("shippable", strconv.FormatBool(shippable))
	setList(form, "images", images)
	setList(form, "attributes", attrs)
	setMap(form, "metadata", metadata)
	return form
}

func (c *Client) CreateCatalogItem(ctx context.Context, params gateway.CatalogItemParams, scope gateway.Scope) (*gateway.CatalogItem, error) {
	var out catalogItemWire
	form := catalogItemForm(params.Name, params.Images, params.Shippable, params.Attributes, params.Metadata)
	form.Set("type", "good")
	if err := c.do(ctx, http.MethodPost, "/v1/products", form, scope, &out); err != nil {
		return nil, err
	}
	return out.item(), nil
}

func (c *Client) RetrieveCatalogItem(ctx context.Context, id string, scope gateway.Scope) (*gateway.CatalogItem, error) {
	var out catalogItemWire
	if err := c.do(ctx, http.MethodGet, "/v1/products/"+escape(id), nil, scope, &out); err != nil {
		return nil, err
	}
	return out.item(), nil
}

func (c *Client) UpdateCatalogItem(ctx context.Context, item *gateway.CatalogItem, scope gateway.Scope) (*gateway.CatalogItem, error) {
	var out catalogItemWire
	form := catalogItemForm(item.Name, item.Images, item.Shippable, item.Attributes, item.Metadata)
	if err := c.do(ctx, http.MethodPost, "/v1/products/"+escape(item.ID), form, scope, &out); err != nil {
		return nil, err
	}
	return out.item(), nil
}

func (c *Client) DeleteCatalogItem(ctx context.Context, id string, scope gateway.Scope) error {
	return c.do(ctx, http.MethodDelete, "/v1/products/"+escape(id), nil, scope, nil)
}

func (c *Client) ListCatalogItems(ctx context.Context, ids []string, scope gateway.Scope) ([]gateway.CatalogItem, error) {
	form := url.Values{}
	setList(form, "ids", ids)
	var out listEnvelope[catalogItemWire]
	if err := c.do(ctx, http.MethodGet, "/v1/products", form, scope, &out); err != nil {
		return nil, err
	}
	items := make([]gateway.CatalogItem, 0, len(out.Data))
	for _, w := range out.Data {
		items = append(items, *w.item())
	}
	return items, nil
}
