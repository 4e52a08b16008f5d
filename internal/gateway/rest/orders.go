package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"commerce-sync/internal/gateway"
)

func (c *Client) CreatePurchaseOrder(ctx context.Context, params gateway.PurchaseOrderParams, scope gateway.Scope) (*gateway.PurchaseOrder, error) {
	form := url.Values{}
	form.Set("currency", params.Currency)
	form.Set("email", params.Email)
	form.Set("shipping[name]", params.Shipping.Name)
	if params.Shipping.Phone != "" {
		form.Set("shipping[phone]", params.Shipping.Phone)
	}
	setAddress(form, "shipping[address]", params.Shipping.Address)
	for i, item := range params.Items {
		prefix := "items[" + strconv.Itoa(i) + "]"
		form.Set(prefix+"[type]", item.Type)
		form.Set(prefix+"[parent]", item.Parent)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		if item.Description != "" {
			form.Set(prefix+"[description]", item.Description)
		}
	}
	setMap(form, "metadata", params.Metadata)

	var out gateway.PurchaseOrder
	if err := c.do(ctx, http.MethodPost, "/v1/orders", form, scope, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RetrievePurchaseOrder(ctx context.Context, id string, scope gateway.Scope) (*gateway.PurchaseOrder, error) {
	var out gateway.PurchaseOrder
	if err := c.do(ctx, http.MethodGet, "/v1/orders/"+escape(id), nil, scope, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePurchaseOrder(ctx context.Context, order *gateway.PurchaseOrder, scope gateway.Scope) (*gateway.PurchaseOrder, error) {
	form := url.Values{}
	if order.Status != "" {
		form.Set("status", order.Status)
	}
	if order.SelectedShippingMethod != "" {
		form.Set("selected_shipping_method", order.SelectedShippingMethod)
	}
	var out gateway.PurchaseOrder
	if err := c.do(ctx, http.MethodPost, "/v1/orders/"+escape(order.ID), form, scope, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PayPurchaseOrder(ctx context.Context, id, source string, scope gateway.Scope) (*gateway.PurchaseOrder, error) {
	form := url.Values{}
	form.Set("source", source)
	var out gateway.PurchaseOrder
	if err := c.do(ctx, http.MethodPost, "/v1/orders/"+escape(id)+"/pay", form, scope, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPurchaseOrders(ctx context.Context, ids []string, scope gateway.Scope) ([]gateway.PurchaseOrder, error) {
	form := url.Values{}
	setList(form, "ids", ids)
	var out listEnvelope[gateway.PurchaseOrder]
	if err := c.do(ctx, http.MethodGet, "/v1/orders", form, scope, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
