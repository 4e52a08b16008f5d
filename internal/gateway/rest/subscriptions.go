package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"commerce-sync/internal/gateway"
)

// subscriptionWire flattens the plan object the provider nests in subscriptions.
type subscriptionWire struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	Plan              struct {
		ID string `json:"id"`
	} `json:"plan"`
}

func (w subscriptionWire) subscription() gateway.Subscription {
	return gateway.Subscription{
		ID:                w.ID,
		Customer:          w.Customer,
		Plan:              w.Plan.ID,
		Status:            w.Status,
		CancelAtPeriodEnd: w.CancelAtPeriodEnd,
	}
}

// Subscriptions are account-wide; none of these calls take a sub-account scope.

func (c *Client) CreateCustomer(ctx context.Context, params gateway.CustomerParams) (*gateway.Customer, error) {
	form := url.Values{}
	form.Set("source", params.Source)
	form.Set("plan", params.Plan)
	form.Set("email", params.Email)
	if params.Coupon != "" {
		form.Set("coupon", params.Coupon)
	}
	var out struct {
		ID            string                         `json:"id"`
		Email         string                         `json:"email"`
		Subscriptions listEnvelope[subscriptionWire] `json:"subscriptions"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/customers", form, gateway.Scope{}, &out); err != nil {
		return nil, err
	}
	customer := &gateway.Customer{ID: out.ID, Email: out.Email}
	for _, s := range out.Subscriptions.Data {
		customer.Subscriptions = append(customer.Subscriptions, s.subscription())
	}
	return customer, nil
}

func (c *Client) ListSubscriptions(ctx context.Context, filter gateway.SubscriptionFilter) ([]gateway.Subscription, error) {
	form := url.Values{}
	form.Set("customer", filter.Customer)
	if filter.Status != "" {
		form.Set("status", filter.Status)
	}
	var out listEnvelope[subscriptionWire]
	if err := c.do(ctx, http.MethodGet, "/v1/subscriptions", form, gateway.Scope{}, &out); err != nil {
		return nil, err
	}
	subs := make([]gateway.Subscription, 0, len(out.Data))
	for _, s := range out.Data {
		subs = append(subs, s.subscription())
	}
	return subs, nil
}

func (c *Client) CancelSubscription(ctx context.Context, id string, atPeriodEnd bool) (*gateway.Subscription, error) {
	form := url.Values{}
	form.Set("at_period_end", strconv.FormatBool(atPeriodEnd))
	var out subscriptionWire
	if err := c.do(ctx, http.MethodDelete, "/v1/subscriptions/"+escape(id)+"?"+form.Encode(), nil, gateway.Scope{}, &out); err != nil {
		return nil, err
	}
	sub := out.subscription()
	return &sub, nil
}

func (c *Client) UpdateSubscription(ctx context.Context, sub *gateway.Subscription) (*gateway.Subscription, error) {
	form := url.Values{}
	form.Set("cancel_at_period_end", strconv.FormatBool(sub.CancelAtPeriodEnd))
	if sub.Plan != "" {
		form.Set("plan", sub.Plan)
	}
	var out subscriptionWire
	if err := c.do(ctx, http.MethodPost, "/v1/subscriptions/"+escape(sub.ID), form, gateway.Scope{}, &out); err != nil {
		return nil, err
	}
	updated := out.subscription()
	return &updated, nil
}
