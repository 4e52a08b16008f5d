package catalogitem

import (
	"context"

	"commerce-sync/internal/domain"
)

type Repository interface {
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.CatalogItem, error)
	GetByID(ctx context.Context, merchantID, id string) (*domain.CatalogItem, error)
	Create(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error)
	// SaveCatalogItem writes the item's mutable fields, remote link and errors.
	SaveCatalogItem(ctx context.Context, item *domain.CatalogItem) error
	// SaveErrors writes only the recorded error list.
	SaveErrors(ctx context.Context, item *domain.CatalogItem) error
	Delete(ctx context.Context, merchantID, id string) error
}
