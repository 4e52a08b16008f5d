package catalog

import (
	"context"
	"io"
	"log"

	"commerce-sync/internal/domain"
	"commerce-sync/internal/gateway"
	"commerce-sync/internal/money"
)

// Reconciler converges the variants of one remote catalog item onto a desired list.
//
// Reconciliation is not transactional: a provider error aborts the remaining
// steps and leaves every mutation issued before it in place.
type Reconciler struct {
	variants gateway.VariantGateway
	itemID   string
	currency string
	scope    gateway.Scope
	logger   *log.Logger
}

func NewReconciler(variants gateway.VariantGateway, itemID, currency string, scope gateway.Scope, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Reconciler{variants: variants, itemID: itemID, currency: currency, scope: scope, logger: logger}
}

// Reconcile updates specs whose RemoteID matches a current variant, creates the
// rest, then deletes current variants no spec refers to. A deletion the provider
// refuses is turned into a deactivation and the inactive variant is appended to
// the result after the desired ones.
func (r *Reconciler) Reconcile(ctx context.Context, desired []domain.VariantSpec, current []gateway.Variant) ([]gateway.Variant, error) {
	existing := make(map[string]gateway.Variant, len(current))
	for _, v := range current {
		existing[v.ID] = v
	}
	wanted := make(map[string]bool, len(desired))

	result := make([]gateway.Variant, 0, len(desired))
	for _, spec := range desired {
		if cur, ok := existing[spec.RemoteID]; ok && spec.RemoteID != "" {
			wanted[spec.RemoteID] = true
			updated, err := r.update(ctx, cur, spec)
			if err != nil {
				return result, err
			}
			result = append(result, *updated)
			continue
		}
		created, err := r.Create(ctx, spec)
		if err != nil {
			return result, err
		}
		result = append(result, *created)
	}

	for _, v := range current {
		if wanted[v.ID] {
			continue
		}
		deactivated, err := r.remove(ctx, v)
		if err != nil {
			return result, err
		}
		if deactivated != nil {
			result = append(result, *deactivated)
		}
	}
	return result, nil
}

// Create issues a variant create for spec against the owning catalog item.
func (r *Reconciler) Create(ctx context.Context, spec domain.VariantSpec) (*gateway.Variant, error) {
	v, err := r.variants.CreateVariant(ctx, gateway.VariantParams{
		CatalogItem: r.itemID,
		Price:       money.ToMinor(spec.Price),
		Currency:    r.currency,
		Attributes:  spec.Attributes,
		Inventory:   gateway.Inventory{Type: gateway.InventoryFinite, Quantity: spec.Quantity},
	}, r.scope)
	if err != nil {
		r.logger.Printf("variant reconciler: create item=%s error=%v", r.itemID, err)
		return nil, err
	}
	r.logger.Printf("variant reconciler: created item=%s variant=%s price=%d", r.itemID, v.ID, v.Price)
	return v, nil
}

func (r *Reconciler) update(ctx context.Context, cur gateway.Variant, spec domain.VariantSpec) (*gateway.Variant, error) {
	cur.Price = money.ToMinor(spec.Price)
	cur.Inventory.Quantity = spec.Quantity
	cur.Active = true
	if cur.Inventory.Type == "" {
		cur.Inventory.Type = gateway.InventoryFinite
	}
	if spec.Attributes != nil {
		cur.Attributes = spec.Attributes
	}
	v, err := r.variants.UpdateVariant(ctx, &cur, r.scope)
	if err != nil {
		r.logger.Printf("variant reconciler: update item=%s variant=%s error=%v", r.itemID, cur.ID, err)
		return nil, err
	}
	r.logger.Printf("variant reconciler: updated item=%s variant=%s price=%d quantity=%d", r.itemID, v.ID, v.Price, v.Inventory.Quantity)
	return v, nil
}

// remove deletes v, or deactivates it when the provider refuses the deletion.
// It returns the deactivated variant, or nil when v was deleted or was already gone.
func (r *Reconciler) remove(ctx context.Context, v gateway.Variant) (*gateway.Variant, error) {
	err := r.variants.DeleteVariant(ctx, v.ID, r.scope)
	if err == nil {
		r.logger.Printf("variant reconciler: deleted item=%s variant=%s", r.itemID, v.ID)
		return nil, nil
	}
	if gateway.IsNotFound(err) {
		r.logger.Printf("variant reconciler: delete item=%s variant=%s already gone", r.itemID, v.ID)
		return nil, nil
	}
	if !gateway.IsInvalidRequest(err) {
		r.logger.Printf("variant reconciler: delete item=%s variant=%s error=%v", r.itemID, v.ID, err)
		return nil, err
	}
	v.Active = false
	deactivated, err := r.variants.UpdateVariant(ctx, &v, r.scope)
	if err != nil {
		r.logger.Printf("variant reconciler: deactivate item=%s variant=%s error=%v", r.itemID, v.ID, err)
		return nil, err
	}
	r.logger.Printf("variant reconciler: deactivated item=%s variant=%s", r.itemID, v.ID)
	return deactivated, nil
}

// Live returns the active variants of a reconciled list.
func Live(variants []gateway.Variant) []gateway.Variant {
	out := make([]gateway.Variant, 0, len(variants))
	for _, v := range variants {
		if v.Active {
			out = append(out, v)
		}
	}
	return out
}
