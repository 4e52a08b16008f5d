package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"commerce-sync/internal/domain"
	"commerce-sync/internal/gateway"
	catalogsync "commerce-sync/internal/sync/catalog"
)

type itemRepo interface {
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.CatalogItem, error)
	GetByID(ctx context.Context, merchantID, id string) (*domain.CatalogItem, error)
	Create(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error)
	SaveCatalogItem(ctx context.Context, item *domain.CatalogItem) error
	SaveErrors(ctx context.Context, item *domain.CatalogItem) error
	Delete(ctx context.Context, merchantID, id string) error
}

type Service struct {
	repo     itemRepo
	gw       gateway.Commerce
	currency string
	logger   *log.Logger
}

func New(repo itemRepo, gw gateway.Commerce, currency string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, gw: gw, currency: currency, logger: logger}
}

// View pairs a local item with its remote mirror, which is nil when the item is not synced.
type View struct {
	Item   *domain.CatalogItem  `json:"item"`
	Remote *gateway.CatalogItem `json:"remote,omitempty"`
}

func (s *Service) List(ctx context.Context, merchant *domain.Merchant) ([]domain.CatalogItem, error) {
	return s.repo.ListByMerchant(ctx, merchant.ID)
}

func (s *Service) Get(ctx context.Context, merchant *domain.Merchant, id string) (*View, error) {
	item, err := s.repo.GetByID(ctx, merchant.ID, id)
	if err != nil {
		return nil, err
	}
	syncer, err := s.synchronizer(ctx, item, merchant)
	if err != nil {
		return nil, err
	}
	return &View{Item: item, Remote: syncer.Remote()}, nil
}

// Create stores a new local item and pushes it with its variants to the provider.
// On a provider rejection the stored item carries the error and is returned with it.
func (s *Service) Create(ctx context.Context, merchant *domain.Merchant, spec domain.CatalogItemSpec) (*View, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	item, err := s.repo.Create(ctx, domain.CatalogItem{
		MerchantID: merchant.ID,
		Name:       spec.Name,
		Images:     spec.Images,
		Attributes: spec.Attributes,
		Published:  spec.Published,
	})
	if err != nil {
		return nil, err
	}
	return s.Push(ctx, merchant, item, spec)
}

// Push creates the remote mirror of an already stored item.
func (s *Service) Push(ctx context.Context, merchant *domain.Merchant, item *domain.CatalogItem, spec domain.CatalogItemSpec) (*View, error) {
	syncer, err := s.synchronizer(ctx, item, merchant)
	if err != nil {
		return nil, err
	}
	remote, err := syncer.Create(ctx, spec)
	if err != nil {
		s.persistErrors(ctx, item, err)
		return &View{Item: item, Remote: syncer.Remote()}, err
	}
	return &View{Item: item, Remote: remote}, nil
}

// Update reconciles the remote item and variants with spec. The local item takes
// the new fields only once the provider accepted them.
func (s *Service) Update(ctx context.Context, merchant *domain.Merchant, id string, spec domain.CatalogItemSpec) (*View, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	item, err := s.repo.GetByID(ctx, merchant.ID, id)
	if err != nil {
		return nil, err
	}
	item.Errors = nil
	syncer, err := s.synchronizer(ctx, item, merchant)
	if err != nil {
		return nil, err
	}

	remote, err := syncer.Update(ctx, spec)
	if err != nil {
		s.persistErrors(ctx, item, err)
		return &View{Item: item, Remote: syncer.Remote()}, err
	}
	item.Name = spec.Name
	item.Images = spec.Images
	item.Attributes = spec.Attributes
	item.Published = spec.Published
	if err := s.repo.SaveCatalogItem(ctx, item); err != nil {
		return nil, err
	}
	return &View{Item: item, Remote: remote}, nil
}

// Delete removes the remote item and its variants, then the local item. An item
// whose remote mirror is gone is deleted locally only.
func (s *Service) Delete(ctx context.Context, merchant *domain.Merchant, id string) (*domain.CatalogItem, error) {
	item, err := s.repo.GetByID(ctx, merchant.ID, id)
	if err != nil {
		return nil, err
	}
	item.Errors = nil
	syncer, err := s.synchronizer(ctx, item, merchant)
	if err != nil {
		return nil, err
	}
	if syncer.Remote() != nil {
		if err := syncer.Destroy(ctx); err != nil {
			s.persistErrors(ctx, item, err)
			return item, err
		}
	}
	if err := s.repo.Delete(ctx, merchant.ID, id); err != nil {
		return nil, err
	}
	s.logger.Printf("catalog service: deleted merchant_id=%s id=%s", merchant.ID, id)
	return item, nil
}

// RemoteList lists the merchant's remote items, optionally restricted to ids.
func (s *Service) RemoteList(ctx context.Context, merchant *domain.Merchant, ids []string) ([]gateway.CatalogItem, error) {
	return catalogsync.List(ctx, s.gw, merchant, ids)
}

func (s *Service) synchronizer(ctx context.Context, item *domain.CatalogItem, merchant *domain.Merchant) (*catalogsync.Synchronizer, error) {
	return catalogsync.NewSynchronizer(ctx, catalogsync.Deps{
		Gateway:  s.gw,
		Store:    s.repo,
		Currency: s.currency,
		Logger:   s.logger,
	}, item, merchant)
}

// persistErrors saves only the messages recorded on the item by a provider rejection.
func (s *Service) persistErrors(ctx context.Context, item *domain.CatalogItem, cause error) {
	if !errors.Is(cause, domain.ErrRejected) {
		return
	}
	if err := s.repo.SaveErrors(ctx, item); err != nil {
		s.logger.Printf("catalog service: save errors id=%s error=%v", item.ID, err)
	}
}
