package memory

import (
	"context"
	"strings"

	"commerce-sync/internal/gateway"
	"commerce-sync/internal/money"
	"github.com/shopspring/decimal"
)

func (p *Provider) CreateCustomer(ctx context.Context, params gateway.CustomerParams) (*gateway.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpCreateCustomer); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Source) == "" {
		return nil, invalid("parameter_missing", "This customer has no attached payment source")
	}
	if !p.plans[params.Plan] {
		return nil, invalid(gateway.CodeResourceMissing, "No such plan: %s", params.Plan)
	}
	if params.Coupon != "" && !p.coupons[params.Coupon] {
		return nil, invalid(gateway.CodeResourceMissing, "No such coupon: %s", params.Coupon)
	}
	cust := &gateway.Customer{ID: newID("cus"), Email: params.Email}
	sub := &gateway.Subscription{
		ID:       newID("sub"),
		Customer: cust.ID,
		Plan:     params.Plan,
		Status:   "active",
	}
	p.customers[cust.ID] = cust
	p.subscriptions[sub.ID] = sub
	p.subOrder = append(p.subOrder, sub.ID)
	out := *cust
	out.Subscriptions = []gateway.Subscription{*sub}
	return &out, nil
}

func (p *Provider) ListSubscriptions(ctx context.Context, filter gateway.SubscriptionFilter) ([]gateway.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpListSubscriptions); err != nil {
		return nil, err
	}
	if filter.Customer != "" {
		if _, ok := p.customers[filter.Customer]; !ok {
			return nil, missing("customer", filter.Customer)
		}
	}
	var out []gateway.Subscription
	for _, id := range p.subOrder {
		s := p.subscriptions[id]
		if filter.Customer != "" && s.Customer != filter.Customer {
			continue
		}
		if filter.Status != gateway.StatusAll && s.Status == "canceled" {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (p *Provider) CancelSubscription(ctx context.Context, id string, atPeriodEnd bool) (*gateway.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpCancelSubscription); err != nil {
		return nil, err
	}
	s, ok := p.subscriptions[id]
	if !ok {
		return nil, missing("subscription", id)
	}
	if s.Status == "canceled" {
		return nil, invalid("subscription_canceled", "Subscription %s is already canceled.", id)
	}
	if atPeriodEnd {
		s.CancelAtPeriodEnd = true
	} else {
		s.Status = "canceled"
	}
	out := *s
	return &out, nil
}

func (p *Provider) UpdateSubscription(ctx context.Context, in *gateway.Subscription) (*gateway.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpUpdateSubscription); err != nil {
		return nil, err
	}
	s, ok := p.subscriptions[in.ID]
	if !ok {
		return nil, missing("subscription", in.ID)
	}
	if s.Status == "canceled" {
		return nil, invalid("subscription_canceled", "A canceled subscription can only update its metadata.")
	}
	if in.Plan != "" {
		if !p.plans[in.Plan] {
			return nil, invalid(gateway.CodeResourceMissing, "No such plan: %s", in.Plan)
		}
		s.Plan = in.Plan
	}
	s.CancelAtPeriodEnd = in.CancelAtPeriodEnd
	out := *s
	return &out, nil
}

// TaxForOrder applies the configured state rate to the order amount.
func (p *Provider) TaxForOrder(ctx context.Context, req gateway.TaxQuoteRequest) (*gateway.TaxQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpTaxForOrder); err != nil {
		return nil, err
	}
	var problems []string
	if strings.TrimSpace(req.To.Zip) == "" {
		problems = append(problems, "to_zip is missing")
	}
	if strings.TrimSpace(req.To.State) == "" {
		problems = append(problems, "to_state is missing")
	}
	if len(problems) > 0 {
		return nil, &gateway.Error{Kind: gateway.KindInvalidRequest, Message: strings.Join(problems, ", "), Status: 400}
	}
	rate, ok := p.taxRates[strings.ToUpper(req.To.State)]
	if !ok {
		rate = decimal.Zero
	}
	amount := req.Amount.Add(req.Shipping).Mul(rate).Round(money.MinorScale)
	return &gateway.TaxQuote{AmountToCollect: amount}, nil
}
