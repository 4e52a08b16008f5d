package merchant

import (
	"context"

	"commerce-sync/internal/domain"
)

type Repository interface {
	GetByKey(ctx context.Context, key string) (*domain.Merchant, error)
	GetByID(ctx context.Context, id string) (*domain.Merchant, error)
	Create(ctx context.Context, m domain.Merchant) (*domain.Merchant, error)
	// Upsert inserts the merchant or updates the one with the same key.
	Upsert(ctx context.Context, m domain.Merchant) (*domain.Merchant, error)
}
