// Package memory is an in-process implementation of the commerce and tax
// provider gateways. It enforces the provider rules the sync core depends on
// (delete conflicts, sub-account isolation, payment state) and supports
// one-shot fault injection for tests.
package memory

import (
	"fmt"
	"strings"
	"sync"

	"commerce-sync/internal/gateway"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operation names accepted by FailNext and reported by Calls.
const (
	OpCreateVariant         = "variant.create"
	OpRetrieveVariant       = "variant.retrieve"
	OpUpdateVariant         = "variant.update"
	OpDeleteVariant         = "variant.delete"
	OpCreateCatalogItem     = "catalog_item.create"
	OpRetrieveCatalogItem   = "catalog_item.retrieve"
	OpUpdateCatalogItem     = "catalog_item.update"
	OpDeleteCatalogItem     = "catalog_item.delete"
	OpListCatalogItems      = "catalog_item.list"
	OpCreatePurchaseOrder   = "order.create"
	OpRetrievePurchaseOrder = "order.retrieve"
	OpUpdatePurchaseOrder   = "order.update"
	OpPayPurchaseOrder      = "order.pay"
	OpListPurchaseOrders    = "order.list"
	OpCreateCustomer        = "customer.create"
	OpListSubscriptions     = "subscription.list"
	OpCancelSubscription    = "subscription.cancel"
	OpUpdateSubscription    = "subscription.update"
	OpTaxForOrder           = "tax.quote"
)

// DeclinedToken is a payment source the provider always declines.
const DeclinedToken = "tok_chargeDeclined"

var orderStatuses = map[string]bool{
	"created":   true,
	"paid":      true,
	"canceled":  true,
	"fulfilled": true,
	"returned":  true,
}

type scoped[T any] struct {
	scope gateway.Scope
	obj   T
}

// Provider holds remote state for every resource kind.
type Provider struct {
	mu sync.Mutex

	variants      map[string]*scoped[gateway.Variant]
	items         map[string]*scoped[gateway.CatalogItem]
	itemOrder     []string
	variantOrder  []string
	orders        map[string]*scoped[gateway.PurchaseOrder]
	orderIDs      []string
	customers     map[string]*gateway.Customer
	subscriptions map[string]*gateway.Subscription
	subOrder      []string
	referenced    map[string]bool

	plans    map[string]bool
	coupons  map[string]bool
	taxRates map[string]decimal.Decimal

	faults map[string][]error
	calls  []string
}

func New() *Provider {
	return &Provider{
		variants:      map[string]*scoped[gateway.Variant]{},
		items:         map[string]*scoped[gateway.CatalogItem]{},
		orders:        map[string]*scoped[gateway.PurchaseOrder]{},
		customers:     map[string]*gateway.Customer{},
		subscriptions: map[string]*gateway.Subscription{},
		referenced:    map[string]bool{},
		plans:         map[string]bool{"pro": true, "company": true},
		coupons:       map[string]bool{},
		taxRates:      map[string]decimal.Decimal{},
		faults:        map[string][]error{},
	}
}

// FailNext makes the next call to op return err instead of running.
func (p *Provider) FailNext(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.faults[op] = append(p.faults[op], err)
}

// MarkReferenced records that a historical order references the variant, which blocks its deletion.
func (p *Provider) MarkReferenced(variantID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.referenced[variantID] = true
}

// AddCoupon registers a promo code accepted on customer creation.
func (p *Provider) AddCoupon(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.coupons[code] = true
}

// SetTaxRate sets the rate applied to destinations in state.
func (p *Provider) SetTaxRate(state string, rate decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.taxRates[strings.ToUpper(state)] = rate
}

// Calls returns the operations invoked so far, in order.
func (p *Provider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns how many times op was invoked.
func (p *Provider) CallCount(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c == op {
			n++
		}
	}
	return n
}

// Subscription returns the stored subscription by id.
func (p *Provider) Subscription(id string) (gateway.Subscription, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.subscriptions[id]
	if !ok {
		return gateway.Subscription{}, false
	}
	return *s, true
}

// enter records the call and returns an injected fault, if any. Callers hold p.mu.
func (p *Provider) enter(op string) error {
	p.calls = append(p.calls, op)
	if queued := p.faults[op]; len(queued) > 0 {
		p.faults[op] = queued[1:]
		return queued[0]
	}
	return nil
}

func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}

func invalid(code, format string, args ...any) error {
	return &gateway.Error{Kind: gateway.KindInvalidRequest, Code: code, Message: fmt.Sprintf(format, args...), Status: 400}
}

func missing(kind, id string) error {
	return &gateway.Error{
		Kind:    gateway.KindInvalidRequest,
		Code:    gateway.CodeResourceMissing,
		Param:   "id",
		Message: fmt.Sprintf("No such %s: %s", kind, id),
		Status:  404,
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneVariant(v gateway.Variant) *gateway.Variant {
	v.Attributes = cloneMap(v.Attributes)
	return &v
}

func filterIDs(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

var _ gateway.Commerce = (*Provider)(nil)
var _ gateway.TaxGateway = (*Provider)(nil)

func (p *Provider) lookupVariant(id string, scope gateway.Scope) (*scoped[gateway.Variant], error) {
	v, ok := p.variants[id]
	if !ok || v.scope != scope {
		return nil, missing("sku", id)
	}
	return v, nil
}

func (p *Provider) lookupItem(id string, scope gateway.Scope) (*scoped[gateway.CatalogItem], error) {
	it, ok := p.items[id]
	if !ok || it.scope != scope {
		return nil, missing("product", id)
	}
	return it, nil
}
