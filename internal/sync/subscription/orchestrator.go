// Package subscription keeps exactly one active remote subscription behind a
// local subscription record.
package subscription

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"commerce-sync/internal/domain"
	"commerce-sync/internal/gateway"
)

// Orchestrator owns the remote lifecycle of one subscription.
type Orchestrator struct {
	gw     gateway.SubscriptionGateway
	logger *log.Logger

	sub    *domain.Subscription
	remote *gateway.Subscription
}

// New binds an orchestrator to sub and looks up its remote subscription when
// sub is linked. A customer or subscription unknown to the provider is treated as absent.
func New(ctx context.Context, gw gateway.SubscriptionGateway, sub *domain.Subscription, logger *log.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	o := &Orchestrator{gw: gw, logger: logger, sub: sub}
	if !sub.Remote.Linked() {
		return o, nil
	}
	subs, err := gw.ListSubscriptions(ctx, gateway.SubscriptionFilter{Customer: sub.RemoteCustomerID, Status: gateway.StatusAll})
	if err != nil {
		if gateway.IsInvalidRequest(err) {
			o.logger.Printf("subscription sync: subscription=%s customer=%s not found at provider", sub.ID, sub.RemoteCustomerID)
			return o, nil
		}
		return nil, fmt.Errorf("hydrate subscription %s: %w", sub.ID, err)
	}
	for i := range subs {
		if subs[i].ID == sub.Remote.ID() {
			o.remote = &subs[i]
			break
		}
	}
	return o, nil
}

// Remote returns the hydrated remote subscription, or nil when none exists.
func (o *Orchestrator) Remote() *gateway.Subscription {
	return o.remote
}

// Plan returns plan when it is a sellable plan and the pro plan otherwise.
func Plan(plan string) string {
	switch plan {
	case domain.PlanPro, domain.PlanCompany:
		return plan
	default:
		return domain.PlanPro
	}
}

// Create cancels the current remote subscription, if any, and subscribes a new
// customer. The local record ends up pointing at the new subscription only.
func (o *Orchestrator) Create(ctx context.Context) (*gateway.Subscription, error) {
	if o.remote != nil {
		if err := o.Cancel(ctx); err != nil {
			return nil, err
		}
	}
	params := gateway.CustomerParams{
		Source: o.sub.BillingToken,
		Plan:   Plan(o.sub.Plan),
		Email:  o.sub.UserEmail,
	}
	if code := strings.TrimSpace(o.sub.PromoCode); code != "" {
		params.Coupon = code
	}
	customer, err := o.gw.CreateCustomer(ctx, params)
	if err != nil {
		return nil, o.reject("create", err)
	}
	if len(customer.Subscriptions) == 0 {
		return nil, fmt.Errorf("customer %s created without a subscription", customer.ID)
	}
	created := customer.Subscriptions[0]
	o.sub.Relink(customer.ID, created.ID)
	o.remote = &created
	o.logger.Printf("subscription sync: created subscription=%s customer=%s remote=%s plan=%s", o.sub.ID, customer.ID, created.ID, created.Plan)
	return o.remote, nil
}

// Cancel schedules cancellation at the end of the current billing period.
func (o *Orchestrator) Cancel(ctx context.Context) error {
	if o.remote == nil {
		return nil
	}
	canceled, err := o.gw.CancelSubscription(ctx, o.remote.ID, true)
	if err != nil {
		return o.reject("cancel", err)
	}
	o.remote = canceled
	o.logger.Printf("subscription sync: cancel at period end subscription=%s remote=%s", o.sub.ID, canceled.ID)
	return nil
}

// Reactivate saves the remote subscription with its pending cancellation cleared.
func (o *Orchestrator) Reactivate(ctx context.Context) error {
	if o.remote == nil {
		return nil
	}
	next := *o.remote
	next.CancelAtPeriodEnd = false
	saved, err := o.gw.UpdateSubscription(ctx, &next)
	if err != nil {
		return o.reject("reactivate", err)
	}
	o.remote = saved
	o.logger.Printf("subscription sync: reactivated subscription=%s remote=%s", o.sub.ID, saved.ID)
	return nil
}

func (o *Orchestrator) reject(op string, err error) error {
	if _, ok := gateway.AsError(err); !ok {
		o.logger.Printf("subscription sync: %s subscription=%s error=%v", op, o.sub.ID, err)
		return err
	}
	msg := gateway.Humanize(err)
	o.sub.Errors.Add(msg)
	o.logger.Printf("subscription sync: %s subscription=%s rejected: %s", op, o.sub.ID, msg)
	return fmt.Errorf("%w: %s", domain.ErrRejected, msg)
}
