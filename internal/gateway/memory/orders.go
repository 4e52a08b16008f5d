package memory

import (
	"context"
	"strings"

	"commerce-sync/internal/gateway"
)

func cloneOrder(o gateway.PurchaseOrder) *gateway.PurchaseOrder {
	o.Metadata = cloneMap(o.Metadata)
	items := make([]gateway.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return &o
}

func (p *Provider) CreatePurchaseOrder(ctx context.Context, params gateway.PurchaseOrderParams, scope gateway.Scope) (*gateway.PurchaseOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpCreatePurchaseOrder); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Email) == "" {
		return nil, invalid("parameter_missing", "Missing required param: email.")
	}
	if len(params.Items) == 0 {
		return nil, invalid("parameter_missing", "Missing required param: items.")
	}
	order := gateway.PurchaseOrder{
		ID:       newID("or"),
		Status:   "created",
		Currency: strings.ToLower(params.Currency),
		Email:    params.Email,
		Shipping: params.Shipping,
		Metadata: cloneMap(params.Metadata),
	}
	for _, item := range params.Items {
		v, err := p.lookupVariant(item.Parent, scope)
		if err != nil {
			return nil, err
		}
		if !v.obj.Active {
			return nil, invalid(gateway.CodeUpstreamOrderCreationFailed, "Upstream order creation failed: SKU %s is no longer available.", item.Parent)
		}
		if v.obj.Inventory.Type == gateway.InventoryFinite && v.obj.Inventory.Quantity < item.Quantity {
			return nil, invalid(gateway.CodeUpstreamOrderCreationFailed, "Upstream order creation failed: insufficient inventory for SKU %s.", item.Parent)
		}
		item.Amount = v.obj.Price * int64(item.Quantity)
		item.Currency = v.obj.Currency
		order.Amount += item.Amount
		order.Items = append(order.Items, item)
	}
	for _, item := range order.Items {
		v := p.variants[item.Parent]
		if v.obj.Inventory.Type == gateway.InventoryFinite {
			v.obj.Inventory.Quantity -= item.Quantity
		}
		p.referenced[item.Parent] = true
	}
	p.orders[order.ID] = &scoped[gateway.PurchaseOrder]{scope: scope, obj: order}
	p.orderIDs = append(p.orderIDs, order.ID)
	return cloneOrder(order), nil
}

func (p *Provider) lookupOrder(id string, scope gateway.Scope) (*scoped[gateway.PurchaseOrder], error) {
	o, ok := p.orders[id]
	if !ok || o.scope != scope {
		return nil, missing("order", id)
	}
	return o, nil
}

func (p *Provider) RetrievePurchaseOrder(ctx context.Context, id string, scope gateway.Scope) (*gateway.PurchaseOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpRetrievePurchaseOrder); err != nil {
		return nil, err
	}
	o, err := p.lookupOrder(id, scope)
	if err != nil {
		return nil, err
	}
	return cloneOrder(o.obj), nil
}

func (p *Provider) UpdatePurchaseOrder(ctx context.Context, in *gateway.PurchaseOrder, scope gateway.Scope) (*gateway.PurchaseOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpUpdatePurchaseOrder); err != nil {
		return nil, err
	}
	o, err := p.lookupOrder(in.ID, scope)
	if err != nil {
		return nil, err
	}
	if !orderStatuses[in.Status] {
		return nil, invalid("parameter_invalid_enum", "Invalid status: must be one of created, paid, canceled, fulfilled, or returned")
	}
	if o.obj.Status == "canceled" && in.Status != "canceled" {
		return nil, invalid("order_status_invalid", "You cannot update the status of a canceled order.")
	}
	o.obj.Status = in.Status
	o.obj.SelectedShippingMethod = in.SelectedShippingMethod
	o.obj.Metadata = cloneMap(in.Metadata)
	return cloneOrder(o.obj), nil
}

func (p *Provider) PayPurchaseOrder(ctx context.Context, id, source string, scope gateway.Scope) (*gateway.PurchaseOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpPayPurchaseOrder); err != nil {
		return nil, err
	}
	o, err := p.lookupOrder(id, scope)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		return nil, invalid("parameter_missing", "Missing required param: source.")
	}
	if o.obj.Status != "created" {
		return nil, invalid("order_status_invalid", "Order %s is %s and cannot be paid.", id, o.obj.Status)
	}
	if source == DeclinedToken {
		return nil, &gateway.Error{Kind: gateway.KindCard, Code: "card_declined", Param: "source", Message: "Your card was declined.", Status: 402}
	}
	o.obj.Status = "paid"
	return cloneOrder(o.obj), nil
}

func (p *Provider) ListPurchaseOrders(ctx context.Context, ids []string, scope gateway.Scope) ([]gateway.PurchaseOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpListPurchaseOrders); err != nil {
		return nil, err
	}
	want := filterIDs(ids)
	var out []gateway.PurchaseOrder
	for _, id := range p.orderIDs {
		o := p.orders[id]
		if o.scope != scope || (want != nil && !want[id]) {
			continue
		}
		out = append(out, *cloneOrder(o.obj))
	}
	return out, nil
}
