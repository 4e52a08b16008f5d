package memory

import (
	"context"
	"strings"

	"commerce-sync/internal/gateway"
)

func (p *Provider) CreateVariant(ctx context.Context, params gateway.VariantParams, scope gateway.Scope) (*gateway.Variant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpCreateVariant); err != nil {
		return nil, err
	}
	if _, err := p.lookupItem(params.CatalogItem, scope); err != nil {
		return nil, err
	}
	if params.Price < 0 {
		return nil, invalid("parameter_invalid_integer", "Invalid price: must be greater than or equal to 0")
	}
	if strings.TrimSpace(params.Currency) == "" {
		return nil, invalid("parameter_missing", "Missing required param: currency.")
	}
	v := gateway.Variant{
		ID:          newID("sku"),
		CatalogItem: params.CatalogItem,
		Price:       params.Price,
		Currency:    strings.ToLower(params.Currency),
		Attributes:  cloneMap(params.Attributes),
		Inventory:   params.Inventory,
		Active:      true,
	}
	p.variants[v.ID] = &scoped[gateway.Variant]{scope: scope, obj: v}
	p.variantOrder = append(p.variantOrder, v.ID)
	return cloneVariant(v), nil
}

func (p *Provider) RetrieveVariant(ctx context.Context, id string, scope gateway.Scope) (*gateway.Variant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpRetrieveVariant); err != nil {
		return nil, err
	}
	v, err := p.lookupVariant(id, scope)
	if err != nil {
		return nil, err
	}
	return cloneVariant(v.obj), nil
}

func (p *Provider) UpdateVariant(ctx context.Context, in *gateway.Variant, scope gateway.Scope) (*gateway.Variant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpUpdateVariant); err != nil {
		return nil, err
	}
	v, err := p.lookupVariant(in.ID, scope)
	if err != nil {
		return nil, err
	}
	if in.Price < 0 {
		return nil, invalid("parameter_invalid_integer", "Invalid price: must be greater than or equal to 0")
	}
	v.obj.Price = in.Price
	v.obj.Attributes = cloneMap(in.Attributes)
	v.obj.Inventory = in.Inventory
	v.obj.Active = in.Active
	return cloneVariant(v.obj), nil
}

func (p *Provider) DeleteVariant(ctx context.Context, id string, scope gateway.Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpDeleteVariant); err != nil {
		return err
	}
	if _, err := p.lookupVariant(id, scope); err != nil {
		return err
	}
	if p.referenced[id] {
		return invalid(gateway.CodeResourceInUse, "This SKU cannot be deleted because it is referenced by an existing order.")
	}
	delete(p.variants, id)
	return nil
}

func (p *Provider) CreateCatalogItem(ctx context.Context, params gateway.CatalogItemParams, scope gateway.Scope) (*gateway.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpCreateCatalogItem); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, invalid("parameter_missing", "Missing required param: name.")
	}
	item := gateway.CatalogItem{
		ID:         newID("prod"),
		Name:       params.Name,
		Images:     cloneStrings(params.Images),
		Shippable:  params.Shippable,
		Attributes: cloneStrings(params.Attributes),
		Metadata:   cloneMap(params.Metadata),
	}
	p.items[item.ID] = &scoped[gateway.CatalogItem]{scope: scope, obj: item}
	p.itemOrder = append(p.itemOrder, item.ID)
	return p.renderItem(item), nil
}

func (p *Provider) RetrieveCatalogItem(ctx context.Context, id string, scope gateway.Scope) (*gateway.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpRetrieveCatalogItem); err != nil {
		return nil, err
	}
	it, err := p.lookupItem(id, scope)
	if err != nil {
		return nil, err
	}
	return p.renderItem(it.obj), nil
}

func (p *Provider) UpdateCatalogItem(ctx context.Context, in *gateway.CatalogItem, scope gateway.Scope) (*gateway.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpUpdateCatalogItem); err != nil {
		return nil, err
	}
	it, err := p.lookupItem(in.ID, scope)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("parameter_missing", "Missing required param: name.")
	}
	it.obj.Name = in.Name
	it.obj.Images = cloneStrings(in.Images)
	it.obj.Attributes = cloneStrings(in.Attributes)
	it.obj.Metadata = cloneMap(in.Metadata)
	return p.renderItem(it.obj), nil
}

func (p *Provider) DeleteCatalogItem(ctx context.Context, id string, scope gateway.Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpDeleteCatalogItem); err != nil {
		return err
	}
	if _, err := p.lookupItem(id, scope); err != nil {
		return err
	}
	for _, v := range p.variants {
		if v.obj.CatalogItem == id {
			return invalid(gateway.CodeResourceInUse, "This product cannot be deleted because it has one or more SKUs referenced by an order.")
		}
	}
	delete(p.items, id)
	return nil
}

func (p *Provider) ListCatalogItems(ctx context.Context, ids []string, scope gateway.Scope) ([]gateway.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(OpListCatalogItems); err != nil {
		return nil, err
	}
	want := filterIDs(ids)
	var out []gateway.CatalogItem
	for _, id := range p.itemOrder {
		it, ok := p.items[id]
		if !ok || it.scope != scope {
			continue
		}
		if want != nil && !want[id] {
			continue
		}
		out = append(out, *p.renderItem(it.obj))
	}
	return out, nil
}

// renderItem copies item and nests its current variants in creation order. Callers hold p.mu.
func (p *Provider) renderItem(item gateway.CatalogItem) *gateway.CatalogItem {
	item.Images = cloneStrings(item.Images)
	item.Attributes = cloneStrings(item.Attributes)
	item.Metadata = cloneMap(item.Metadata)
	item.Variants = nil
	for _, id := range p.variantOrder {
		v, ok := p.variants[id]
		if !ok || v.obj.CatalogItem != item.ID {
			continue
		}
		item.Variants = append(item.Variants, *cloneVariant(v.obj))
	}
	return &item
}
