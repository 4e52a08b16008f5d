package order

import (
	"context"

	"commerce-sync/internal/domain"
)

type Repository interface {
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.PurchaseOrder, error)
	GetByID(ctx context.Context, merchantID, id string) (*domain.PurchaseOrder, error)
	Create(ctx context.Context, order domain.PurchaseOrder) (*domain.PurchaseOrder, error)
	SaveOrder(ctx context.Context, order *domain.PurchaseOrder) error
	// SaveErrors writes only the recorded error list.
	SaveErrors(ctx context.Context, order *domain.PurchaseOrder) error
}
