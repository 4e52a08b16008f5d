package subscription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"commerce-sync/internal/domain"
	"commerce-sync/internal/gateway"
	subsync "commerce-sync/internal/sync/subscription"
)

type subscriptionRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	GetByEmail(ctx context.Context, email string) (*domain.Subscription, error)
	Create(ctx context.Context, sub domain.Subscription) (*domain.Subscription, error)
	SaveSubscription(ctx context.Context, sub *domain.Subscription) error
	SaveErrors(ctx context.Context, sub *domain.Subscription) error
}

type Service struct {
	repo   subscriptionRepo
	gw     gateway.SubscriptionGateway
	logger *log.Logger
}

func New(repo subscriptionRepo, gw gateway.SubscriptionGateway, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, gw: gw, logger: logger}
}

type SubscribeInput struct {
	Email     string `json:"email"`
	Plan      string `json:"plan"`
	PromoCode string `json:"promoCode,omitempty"`
	Token     string `json:"token"`
}

// View pairs a local subscription with its remote mirror, which is nil when none exists.
type View struct {
	Subscription *domain.Subscription  `json:"subscription"`
	Remote       *gateway.Subscription `json:"remote,omitempty"`
}

func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	orch, err := subsync.New(ctx, s.gw, sub, s.logger)
	if err != nil {
		return nil, err
	}
	return &View{Subscription: sub, Remote: orch.Remote()}, nil
}

// Subscribe creates the user's subscription, or replaces the current remote one
// when the user already has a local record.
func (s *Service) Subscribe(ctx context.Context, in SubscribeInput) (*View, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Token) == "" {
		return nil, fmt.Errorf("%w: token required", domain.ErrInvalidInput)
	}
	sub, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		sub, err = s.repo.Create(ctx, domain.Subscription{UserEmail: email, Plan: subsync.Plan(in.Plan)})
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}
	sub.Errors = nil
	sub.Plan = subsync.Plan(in.Plan)
	sub.PromoCode = strings.TrimSpace(in.PromoCode)
	sub.BillingToken = in.Token

	orch, err := subsync.New(ctx, s.gw, sub, s.logger)
	if err != nil {
		return nil, err
	}
	remote, err := orch.Create(ctx)
	if err != nil {
		s.persistErrors(ctx, sub, err)
		return &View{Subscription: sub, Remote: orch.Remote()}, err
	}
	if err := s.repo.SaveSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return &View{Subscription: sub, Remote: remote}, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (*View, error) {
	return s.apply(ctx, id, (*subsync.Orchestrator).Cancel)
}

func (s *Service) Reactivate(ctx context.Context, id string) (*View, error) {
	return s.apply(ctx, id, (*subsync.Orchestrator).Reactivate)
}

func (s *Service) apply(ctx context.Context, id string, op func(*subsync.Orchestrator, context.Context) error) (*View, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	orch, err := subsync.New(ctx, s.gw, sub, s.logger)
	if err != nil {
		return nil, err
	}
	stale := sub.Errors.Any()
	sub.Errors = nil
	if err := op(orch, ctx); err != nil {
		s.persistErrors(ctx, sub, err)
		return &View{Subscription: sub, Remote: orch.Remote()}, err
	}
	if stale {
		if err := s.repo.SaveErrors(ctx, sub); err != nil {
			return nil, err
		}
	}
	return &View{Subscription: sub, Remote: orch.Remote()}, nil
}

func (s *Service) persistErrors(ctx context.Context, sub *domain.Subscription, cause error) {
	if !errors.Is(cause, domain.ErrRejected) {
		return
	}
	if err := s.repo.SaveErrors(ctx, sub); err != nil {
		s.logger.Printf("subscription service: save errors id=%s error=%v", sub.ID, err)
	}
}
