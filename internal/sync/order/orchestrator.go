// Package order drives the remote lifecycle of a purchase order: creation,
// status and shipping updates, and payment.
package order

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"commerce-sync/internal/domain"
	"commerce-sync/internal/gateway"
)

var createRewrites = []gateway.Rewrite{{
	Code:    gateway.CodeUpstreamOrderCreationFailed,
	Find:    "Upstream order creation failed: ",
	Replace: "Couldn't create your order: ",
}}

// Gateway is the provider surface the orchestrator needs.
type Gateway interface {
	gateway.PurchaseOrderGateway
	gateway.VariantGateway
}

// Store persists purchase order changes.
type Store interface {
	SaveOrder(ctx context.Context, order *domain.PurchaseOrder) error
}

type Deps struct {
	Gateway  Gateway
	Store    Store
	Currency string
	Logger   *log.Logger
}

// CreateParams selects the single line item and the recipient of a new order.
type CreateParams struct {
	VariantID string          `json:"variantId"`
	Quantity  int             `json:"quantity"`
	Email     string          `json:"email"`
	Shipping  domain.Shipping `json:"shipping"`
}

// Orchestrator owns the remote lifecycle of one purchase order.
type Orchestrator struct {
	gw       Gateway
	store    Store
	currency string
	logger   *log.Logger

	order   *domain.PurchaseOrder
	product *domain.CatalogItem
	scope   gateway.Scope
	remote  *gateway.PurchaseOrder
}

// New binds an orchestrator to order and hydrates the remote order when order is linked.
func New(ctx context.Context, deps Deps, order *domain.PurchaseOrder, product *domain.CatalogItem, merchant *domain.Merchant) (*Orchestrator, error) {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	o := &Orchestrator{
		gw:       deps.Gateway,
		store:    deps.Store,
		currency: deps.Currency,
		logger:   logger,
		order:    order,
		product:  product,
		scope:    gateway.ScopeFor(merchant.SubAccountID),
	}
	if !order.Remote.Linked() {
		return o, nil
	}
	remote, err := o.gw.RetrievePurchaseOrder(ctx, order.Remote.ID(), o.scope)
	if err != nil {
		if gateway.IsInvalidRequest(err) {
			o.logger.Printf("order sync: order=%s remote=%s not found at provider", order.ID, order.Remote.ID())
			return o, nil
		}
		return nil, fmt.Errorf("hydrate order %s: %w", order.ID, err)
	}
	o.remote = remote
	return o, nil
}

// Remote returns the hydrated remote order, or nil when none exists.
func (o *Orchestrator) Remote() *gateway.PurchaseOrder {
	return o.remote
}

// Create submits a single-line remote order and marks the local order created.
func (o *Orchestrator) Create(ctx context.Context, params CreateParams) (*gateway.PurchaseOrder, error) {
	if o.order.Remote.Linked() {
		return nil, domain.ErrAlreadyCreated
	}
	item, err := o.lineItem(ctx, params)
	if err != nil {
		return nil, o.reject("create", err, createRewrites...)
	}
	remote, err := o.gw.CreatePurchaseOrder(ctx, gateway.PurchaseOrderParams{
		Currency: o.currency,
		Email:    params.Email,
		Shipping: toGatewayShipping(params.Shipping),
		Items:    []gateway.OrderItem{item},
		Metadata: map[string]string{"product_id": o.product.ID},
	}, o.scope)
	if err != nil {
		return nil, o.reject("create", err, createRewrites...)
	}
	if err := o.order.Remote.Bind(remote.ID); err != nil {
		return nil, err
	}
	o.order.Status = domain.OrderStatusCreated
	o.remote = remote
	if err := o.store.SaveOrder(ctx, o.order); err != nil {
		o.logger.Printf("order sync: order=%s remote=%s save error=%v", o.order.ID, remote.ID, err)
		return nil, fmt.Errorf("save order %s: %w", o.order.ID, err)
	}
	o.logger.Printf("order sync: created order=%s remote=%s amount=%d", o.order.ID, remote.ID, remote.Amount)
	return remote, nil
}

// Description is the human-readable line description for a variant of the order's product.
func Description(product *domain.CatalogItem, v gateway.Variant) string {
	attrs := v.AttributeString(product.Attributes)
	if attrs == "" {
		return product.Name
	}
	return product.Name + " " + attrs
}

func (o *Orchestrator) lineItem(ctx context.Context, params CreateParams) (gateway.OrderItem, error) {
	variant, err := o.gw.RetrieveVariant(ctx, params.VariantID, o.scope)
	if err != nil {
		return gateway.OrderItem{}, err
	}
	quantity := params.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	return gateway.OrderItem{
		Type:        gateway.ItemTypeSKU,
		Parent:      variant.ID,
		Quantity:    quantity,
		Description: Description(o.product, *variant),
	}, nil
}

// Update pushes a new status and/or shipping method. Nil arguments leave the
// field unchanged. Local fields changed in memory are not rolled back when the
// provider rejects the update.
func (o *Orchestrator) Update(ctx context.Context, status, shippingMethod *string) (*gateway.PurchaseOrder, error) {
	if o.remote == nil {
		return nil, domain.ErrNotCreated
	}
	next := *o.remote
	if status != nil {
		next.Status = *status
		o.order.Status = domain.OrderStatus(*status)
	}
	if shippingMethod != nil {
		next.SelectedShippingMethod = *shippingMethod
		o.order.ShippingMethodID = *shippingMethod
	}
	saved, err := o.gw.UpdatePurchaseOrder(ctx, &next, o.scope)
	if err != nil {
		return nil, o.reject("update", err)
	}
	o.remote = saved
	if err := o.store.SaveOrder(ctx, o.order); err != nil {
		return nil, fmt.Errorf("save order %s: %w", o.order.ID, err)
	}
	o.logger.Printf("order sync: updated order=%s remote=%s status=%s", o.order.ID, saved.ID, saved.Status)
	return saved, nil
}

// Pay charges token for the order and copies the resulting remote status.
func (o *Orchestrator) Pay(ctx context.Context, token string) (*gateway.PurchaseOrder, error) {
	if o.remote == nil {
		return nil, domain.ErrNotCreated
	}
	paid, err := o.gw.PayPurchaseOrder(ctx, o.remote.ID, token, o.scope)
	if err != nil {
		return nil, o.reject("pay", err)
	}
	o.remote = paid
	o.order.Status = domain.OrderStatus(paid.Status)
	if err := o.store.SaveOrder(ctx, o.order); err != nil {
		return nil, fmt.Errorf("save order %s: %w", o.order.ID, err)
	}
	o.logger.Printf("order sync: paid order=%s remote=%s status=%s", o.order.ID, paid.ID, paid.Status)
	return paid, nil
}

// List returns the merchant's remote orders with the given ids. A merchant
// without a sub-account yields an empty list.
func List(ctx context.Context, gw gateway.PurchaseOrderGateway, merchant *domain.Merchant, ids []string) ([]gateway.PurchaseOrder, error) {
	if merchant == nil || strings.TrimSpace(merchant.SubAccountID) == "" {
		return []gateway.PurchaseOrder{}, nil
	}
	return gw.ListPurchaseOrders(ctx, ids, gateway.ScopeFor(merchant.SubAccountID))
}

func (o *Orchestrator) reject(op string, err error, rules ...gateway.Rewrite) error {
	if _, ok := gateway.AsError(err); !ok {
		o.logger.Printf("order sync: %s order=%s error=%v", op, o.order.ID, err)
		return err
	}
	msg := gateway.Humanize(err, rules...)
	o.order.Errors.Add(msg)
	o.logger.Printf("order sync: %s order=%s rejected: %s", op, o.order.ID, msg)
	return fmt.Errorf("%w: %s", domain.ErrRejected, msg)
}

func toGatewayShipping(s domain.Shipping) gateway.Shipping {
	return gateway.Shipping{
		Name:  s.Name,
		Phone: s.Phone,
		Address: gateway.Address{
			Line1:      s.Address.Line1,
			Line2:      s.Address.Line2,
			City:       s.Address.City,
			State:      s.Address.State,
			PostalCode: s.Address.PostalCode,
			Country:    s.Address.Country,
		},
	}
}
