// Package catalog keeps a local catalog item and its variants converged with
// the remote commerce provider.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"

	"commerce-sync/internal/domain"
	"commerce-sync/internal/gateway"
)

// DeleteConflictMessage is recorded when the provider refuses to delete an item that is part of an order.
const DeleteConflictMessage = "The product you attempted to delete cannot be deleted because it is part of an order."

// Store persists catalog item changes made during synchronization.
type Store interface {
	SaveCatalogItem(ctx context.Context, item *domain.CatalogItem) error
}

type Deps struct {
	Gateway  gateway.Commerce
	Store    Store
	Currency string
	Logger   *log.Logger
}

// Synchronizer owns the remote lifecycle of one catalog item.
type Synchronizer struct {
	gw       gateway.Commerce
	store    Store
	currency string
	logger   *log.Logger

	item   *domain.CatalogItem
	scope  gateway.Scope
	remote *gateway.CatalogItem
}

// NewSynchronizer binds a synchronizer to item and hydrates its remote mirror
// when item is linked. A remote item the provider does not know is treated as absent.
func NewSynchronizer(ctx context.Context, deps Deps, item *domain.CatalogItem, merchant *domain.Merchant) (*Synchronizer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Synchronizer{
		gw:       deps.Gateway,
		store:    deps.Store,
		currency: deps.Currency,
		logger:   logger,
		item:     item,
		scope:    gateway.ScopeFor(merchant.SubAccountID),
	}
	if !item.Remote.Linked() {
		return s, nil
	}
	remote, err := s.gw.RetrieveCatalogItem(ctx, item.Remote.ID(), s.scope)
	if err != nil {
		if gateway.IsInvalidRequest(err) {
			s.logger.Printf("catalog sync: item=%s remote=%s not found at provider", item.ID, item.Remote.ID())
			return s, nil
		}
		return nil, fmt.Errorf("hydrate catalog item %s: %w", item.ID, err)
	}
	s.remote = remote
	return s, nil
}

// Remote returns the hydrated remote item, or nil when none exists.
func (s *Synchronizer) Remote() *gateway.CatalogItem {
	return s.remote
}

// Create creates the remote item and all of its variants, then re-reads the
// item so nested variant data is authoritative.
func (s *Synchronizer) Create(ctx context.Context, spec domain.CatalogItemSpec) (*gateway.CatalogItem, error) {
	if s.item.Remote.Linked() {
		return nil, domain.ErrAlreadyCreated
	}
	remote, err := s.gw.CreateCatalogItem(ctx, gateway.CatalogItemParams{
		Name:       spec.Name,
		Images:     spec.Images,
		Shippable:  true,
		Attributes: spec.Attributes,
		Metadata:   s.metadata(spec),
	}, s.scope)
	if err != nil {
		return nil, s.reject("create", err)
	}
	if err := s.item.Remote.Bind(remote.ID); err != nil {
		return nil, err
	}
	s.remote = remote
	if err := s.store.SaveCatalogItem(ctx, s.item); err != nil {
		s.logger.Printf("catalog sync: item=%s remote=%s save error=%v", s.item.ID, remote.ID, err)
		return nil, fmt.Errorf("save catalog item %s: %w", s.item.ID, err)
	}
	s.logger.Printf("catalog sync: created item=%s remote=%s", s.item.ID, remote.ID)

	reconciler := NewReconciler(s.gw, remote.ID, s.currency, s.scope, s.logger)
	variants := make([]gateway.Variant, 0, len(spec.Variants))
	for _, vs := range spec.Variants {
		v, err := reconciler.Create(ctx, vs)
		if err != nil {
			s.remote.Variants = variants
			return nil, s.reject("create variants", err)
		}
		variants = append(variants, *v)
	}
	s.remote.Variants = variants

	refreshed, err := s.gw.RetrieveCatalogItem(ctx, remote.ID, s.scope)
	if err != nil {
		return nil, s.reject("refresh", err)
	}
	s.remote = refreshed
	return s.remote, nil
}

// Update pushes the mutable item fields and reconciles the variant list.
func (s *Synchronizer) Update(ctx context.Context, spec domain.CatalogItemSpec) (*gateway.CatalogItem, error) {
	if s.remote == nil {
		return nil, domain.ErrNotCreated
	}
	next := *s.remote
	next.Name = spec.Name
	next.Attributes = spec.Attributes
	next.Images = spec.Images
	next.Metadata = s.metadata(spec)
	saved, err := s.gw.UpdateCatalogItem(ctx, &next, s.scope)
	if err != nil {
		return nil, s.reject("update", err)
	}
	current := s.remote.Variants
	s.remote = saved
	s.remote.Variants = current

	reconciler := NewReconciler(s.gw, s.remote.ID, s.currency, s.scope, s.logger)
	variants, err := reconciler.Reconcile(ctx, spec.Variants, current)
	if err != nil {
		s.remote.Variants = variants
		return nil, s.reject("reconcile variants", err)
	}
	s.remote.Variants = variants
	s.logger.Printf("catalog sync: updated item=%s remote=%s live_variants=%d", s.item.ID, s.remote.ID, len(Live(variants)))
	return s.remote, nil
}

// Destroy deletes every remote variant and then the remote item.
func (s *Synchronizer) Destroy(ctx context.Context) error {
	if s.remote == nil {
		return domain.ErrNotCreated
	}
	for _, v := range s.remote.Variants {
		if err := s.gw.DeleteVariant(ctx, v.ID, s.scope); err != nil {
			return s.rejectDelete(err)
		}
	}
	if err := s.gw.DeleteCatalogItem(ctx, s.remote.ID, s.scope); err != nil {
		return s.rejectDelete(err)
	}
	s.logger.Printf("catalog sync: deleted item=%s remote=%s", s.item.ID, s.remote.ID)
	s.remote = nil
	return nil
}

// List returns the merchant's remote catalog items with the given ids. A
// merchant without a sub-account has no remote catalog of its own.
func List(ctx context.Context, gw gateway.CatalogItemGateway, merchant *domain.Merchant, ids []string) ([]gateway.CatalogItem, error) {
	if merchant == nil || merchant.SubAccountID == "" {
		return []gateway.CatalogItem{}, nil
	}
	return gw.ListCatalogItems(ctx, ids, gateway.ScopeFor(merchant.SubAccountID))
}

func (s *Synchronizer) metadata(spec domain.CatalogItemSpec) map[string]string {
	return map[string]string{
		"id":        s.item.ID,
		"published": strconv.FormatBool(spec.Published),
	}
}

// reject records a provider error on the item. Other errors pass through untouched.
func (s *Synchronizer) reject(op string, err error) error {
	if _, ok := gateway.AsError(err); !ok {
		s.logger.Printf("catalog sync: %s item=%s error=%v", op, s.item.ID, err)
		return err
	}
	msg := gateway.Humanize(err)
	s.item.Errors.Add(msg)
	s.logger.Printf("catalog sync: %s item=%s rejected: %s", op, s.item.ID, msg)
	return fmt.Errorf("%w: %s", domain.ErrRejected, msg)
}

func (s *Synchronizer) rejectDelete(err error) error {
	if !gateway.IsInvalidRequest(err) {
		return s.reject("delete", err)
	}
	s.item.Errors.Add(DeleteConflictMessage)
	s.logger.Printf("catalog sync: delete item=%s refused: %v", s.item.ID, err)
	return fmt.Errorf("%w: %s", domain.ErrRejected, DeleteConflictMessage)
}
