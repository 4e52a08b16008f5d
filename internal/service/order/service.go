package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"commerce-sync/internal/domain"
	"commerce-sync/internal/gateway"
	ordersync "commerce-sync/internal/sync/order"
	"commerce-sync/internal/sync/tax"
)

type orderRepo interface {
	ListByMerchant(ctx context.Context, merchantID string) ([]domain.PurchaseOrder, error)
	GetByID(ctx context.Context, merchantID, id string) (*domain.PurchaseOrder, error)
	Create(ctx context.Context, order domain.PurchaseOrder) (*domain.PurchaseOrder, error)
	SaveOrder(ctx context.Context, order *domain.PurchaseOrder) error
	SaveErrors(ctx context.Context, order *domain.PurchaseOrder) error
}

type productRepo interface {
	GetByID(ctx context.Context, merchantID, id string) (*domain.CatalogItem, error)
}

type Deps struct {
	Orders   orderRepo
	Products productRepo
	Gateway  ordersync.Gateway
	Tax      gateway.TaxGateway
	Currency string
	Logger   *log.Logger
}

type Service struct {
	orders   orderRepo
	products productRepo
	gw       ordersync.Gateway
	tax      *tax.Adapter
	currency string
	logger   *log.Logger
}

// ErrTaxUnavailable is returned by QuoteTax when no tax provider is configured.
var ErrTaxUnavailable = errors.New("tax provider not configured")

func New(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Service{
		orders:   deps.Orders,
		products: deps.Products,
		gw:       deps.Gateway,
		currency: deps.Currency,
		logger:   logger,
	}
	if deps.Tax != nil {
		s.tax = tax.NewAdapter(deps.Tax, logger)
	}
	return s
}

type CreateInput struct {
	ProductID string `json:"productId"`
	ordersync.CreateParams
}

type UpdateInput struct {
	Status           *string `json:"status,omitempty"`
	ShippingMethodID *string `json:"shippingMethodId,omitempty"`
}

type PayInput struct {
	Token string `json:"token"`
}

// View pairs a local order with its remote mirror, which is nil when the order is not synced.
type View struct {
	Order  *domain.PurchaseOrder  `json:"order"`
	Remote *gateway.PurchaseOrder `json:"remote,omitempty"`
}

func (s *Service) List(ctx context.Context, merchant *domain.Merchant) ([]domain.PurchaseOrder, error) {
	return s.orders.ListByMerchant(ctx, merchant.ID)
}

func (s *Service) Get(ctx context.Context, merchant *domain.Merchant, id string) (*View, error) {
	order, orch, err := s.load(ctx, merchant, id)
	if err != nil {
		return nil, err
	}
	return &View{Order: order, Remote: orch.Remote()}, nil
}

// Create stores a pending order for a catalog item and submits it to the provider.
func (s *Service) Create(ctx context.Context, merchant *domain.Merchant, in CreateInput) (*View, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, fmt.Errorf("%w: productId required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.VariantID) == "" {
		return nil, fmt.Errorf("%w: variantId required", domain.ErrInvalidInput)
	}
	product, err := s.products.GetByID(ctx, merchant.ID, in.ProductID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.Create(ctx, domain.PurchaseOrder{
		MerchantID: merchant.ID,
		ProductID:  product.ID,
		Status:     domain.OrderStatusPending,
	})
	if err != nil {
		return nil, err
	}
	orch, err := s.orchestrator(ctx, order, product, merchant)
	if err != nil {
		return nil, err
	}
	remote, err := orch.Create(ctx, in.CreateParams)
	if err != nil {
		s.persistErrors(ctx, order, err)
		return &View{Order: order}, err
	}
	return &View{Order: order, Remote: remote}, nil
}

func (s *Service) Update(ctx context.Context, merchant *domain.Merchant, id string, in UpdateInput) (*View, error) {
	if in.Status == nil && in.ShippingMethodID == nil {
		return nil, fmt.Errorf("%w: status or shippingMethodId required", domain.ErrInvalidInput)
	}
	order, orch, err := s.mutate(ctx, merchant, id)
	if err != nil {
		return nil, err
	}
	remote, err := orch.Update(ctx, in.Status, in.ShippingMethodID)
	if err != nil {
		s.persistErrors(ctx, order, err)
		return &View{Order: order, Remote: orch.Remote()}, err
	}
	return &View{Order: order, Remote: remote}, nil
}

func (s *Service) Pay(ctx context.Context, merchant *domain.Merchant, id string, in PayInput) (*View, error) {
	if strings.TrimSpace(in.Token) == "" {
		return nil, fmt.Errorf("%w: token required", domain.ErrInvalidInput)
	}
	order, orch, err := s.mutate(ctx, merchant, id)
	if err != nil {
		return nil, err
	}
	remote, err := orch.Pay(ctx, in.Token)
	if err != nil {
		s.persistErrors(ctx, order, err)
		return &View{Order: order, Remote: orch.Remote()}, err
	}
	return &View{Order: order, Remote: remote}, nil
}

// QuoteTax asks the tax provider for the tax on the remote order total shipped
// from the merchant to the order's shipping address, and stores it on the order.
func (s *Service) QuoteTax(ctx context.Context, merchant *domain.Merchant, id string) (*View, error) {
	if s.tax == nil {
		return nil, ErrTaxUnavailable
	}
	order, orch, err := s.mutate(ctx, merchant, id)
	if err != nil {
		return nil, err
	}
	remote := orch.Remote()
	if remote == nil {
		return nil, domain.ErrNotCreated
	}
	to := domain.Address{
		Line1:      remote.Shipping.Address.Line1,
		Line2:      remote.Shipping.Address.Line2,
		City:       remote.Shipping.Address.City,
		State:      remote.Shipping.Address.State,
		PostalCode: remote.Shipping.Address.PostalCode,
		Country:    remote.Shipping.Address.Country,
	}
	if _, err := s.tax.Quote(ctx, order, merchant, remote.Amount, to); err != nil {
		s.persistErrors(ctx, order, err)
		return &View{Order: order, Remote: remote}, err
	}
	if err := s.orders.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	return &View{Order: order, Remote: remote}, nil
}

// RemoteList lists the merchant's remote orders, optionally restricted to ids.
func (s *Service) RemoteList(ctx context.Context, merchant *domain.Merchant, ids []string) ([]gateway.PurchaseOrder, error) {
	return ordersync.List(ctx, s.gw, merchant, ids)
}

func (s *Service) load(ctx context.Context, merchant *domain.Merchant, id string) (*domain.PurchaseOrder, *ordersync.Orchestrator, error) {
	order, err := s.orders.GetByID(ctx, merchant.ID, id)
	if err != nil {
		return nil, nil, err
	}
	product, err := s.products.GetByID(ctx, merchant.ID, order.ProductID)
	if err != nil {
		return nil, nil, err
	}
	orch, err := s.orchestrator(ctx, order, product, merchant)
	if err != nil {
		return nil, nil, err
	}
	return order, orch, nil
}

// mutate loads an order for an operation that reports its own outcome. Errors
// recorded by earlier operations are dropped; a success saves the empty list.
func (s *Service) mutate(ctx context.Context, merchant *domain.Merchant, id string) (*domain.PurchaseOrder, *ordersync.Orchestrator, error) {
	order, orch, err := s.load(ctx, merchant, id)
	if err != nil {
		return nil, nil, err
	}
	order.Errors = nil
	return order, orch, nil
}

func (s *Service) orchestrator(ctx context.Context, order *domain.PurchaseOrder, product *domain.CatalogItem, merchant *domain.Merchant) (*ordersync.Orchestrator, error) {
	return ordersync.New(ctx, ordersync.Deps{
		Gateway:  s.gw,
		Store:    s.orders,
		Currency: s.currency,
		Logger:   s.logger,
	}, order, product, merchant)
}

// persistErrors stores the messages of a provider rejection. Other fields the
// failed operation changed in memory are not written.
func (s *Service) persistErrors(ctx context.Context, order *domain.PurchaseOrder, cause error) {
	if !errors.Is(cause, domain.ErrRejected) {
		return
	}
	if err := s.orders.SaveErrors(ctx, order); err != nil {
		s.logger.Printf("order service: save errors id=%s error=%v", order.ID, err)
	}
}
