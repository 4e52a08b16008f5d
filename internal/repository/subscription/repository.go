package subscription

import (
	"context"

	"commerce-sync/internal/domain"
)

// Repository persists subscriptions. Billing tokens are never stored.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	GetByEmail(ctx context.Context, email string) (*domain.Subscription, error)
	Create(ctx context.Context, sub domain.Subscription) (*domain.Subscription, error)
	SaveSubscription(ctx context.Context, sub *domain.Subscription) error
	SaveErrors(ctx context.Context, sub *domain.Subscription) error
}
