package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"commerce-sync/internal/domain"
	"commerce-sync/internal/gateway"
	catalogsvc "commerce-sync/internal/service/catalog"
	ordersvc "commerce-sync/internal/service/order"
	subscriptionsvc "commerce-sync/internal/service/subscription"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type merchantRepo interface {
	GetByKey(ctx context.Context, key string) (*domain.Merchant, error)
}

type catalogService interface {
	List(ctx context.Context, merchant *domain.Merchant) ([]domain.CatalogItem, error)
	Get(ctx context.Context, merchant *domain.Merchant, id string) (*catalogsvc.View, error)
	Create(ctx context.Context, merchant *domain.Merchant, spec domain.CatalogItemSpec) (*catalogsvc.View, error)
	Update(ctx context.Context, merchant *domain.Merchant, id string, spec domain.CatalogItemSpec) (*catalogsvc.View, error)
	Delete(ctx context.Context, merchant *domain.Merchant, id string) (*domain.CatalogItem, error)
	RemoteList(ctx context.Context, merchant *domain.Merchant, ids []string) ([]gateway.CatalogItem, error)
}

type orderService interface {
	List(ctx context.Context, merchant *domain.Merchant) ([]domain.PurchaseOrder, error)
	Get(ctx context.Context, merchant *domain.Merchant, id string) (*ordersvc.View, error)
	Create(ctx context.Context, merchant *domain.Merchant, in ordersvc.CreateInput) (*ordersvc.View, error)
	Update(ctx context.Context, merchant *domain.Merchant, id string, in ordersvc.UpdateInput) (*ordersvc.View, error)
	Pay(ctx context.Context, merchant *domain.Merchant, id string, in ordersvc.PayInput) (*ordersvc.View, error)
	QuoteTax(ctx context.Context, merchant *domain.Merchant, id string) (*ordersvc.View, error)
	RemoteList(ctx context.Context, merchant *domain.Merchant, ids []string) ([]gateway.PurchaseOrder, error)
}

type subscriptionService interface {
	Get(ctx context.Context, id string) (*subscriptionsvc.View, error)
	Subscribe(ctx context.Context, in subscriptionsvc.SubscribeInput) (*subscriptionsvc.View, error)
	Cancel(ctx context.Context, id string) (*subscriptionsvc.View, error)
	Reactivate(ctx context.Context, id string) (*subscriptionsvc.View, error)
}

// Deps carries the repositories and services the handlers call.
type Deps struct {
	MerchantRepo    merchantRepo
	CatalogSvc      catalogService
	OrderSvc        orderService
	SubscriptionSvc subscriptionService
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if deps.MerchantRepo == nil || deps.CatalogSvc == nil || deps.OrderSvc == nil || deps.SubscriptionSvc == nil {
		return nil, errors.New("httpserver: missing dependencies")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(corsOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	subs := router.Group("/subscriptions")
	subs.POST("", subscribeHandler(deps.SubscriptionSvc))
	subs.GET("/:id", getSubscriptionHandler(deps.SubscriptionSvc))
	subs.POST("/:id/cancel", cancelSubscriptionHandler(deps.SubscriptionSvc))
	subs.POST("/:id/reactivate", reactivateSubscriptionHandler(deps.SubscriptionSvc))

	merchant := router.Group("/merchants/:merchantKey", merchantMiddleware(deps.MerchantRepo))

	merchant.GET("/catalog-items", listCatalogItemsHandler(deps.CatalogSvc))
	merchant.POST("/catalog-items", createCatalogItemHandler(deps.CatalogSvc))
	merchant.GET("/catalog-items/:id", getCatalogItemHandler(deps.CatalogSvc))
	merchant.PUT("/catalog-items/:id", updateCatalogItemHandler(deps.CatalogSvc))
	merchant.DELETE("/catalog-items/:id", deleteCatalogItemHandler(deps.CatalogSvc))
	merchant.GET("/remote/catalog-items", remoteCatalogItemsHandler(deps.CatalogSvc))

	merchant.GET("/orders", listOrdersHandler(deps.OrderSvc))
	merchant.POST("/orders", createOrderHandler(deps.OrderSvc))
	merchant.GET("/orders/:id", getOrderHandler(deps.OrderSvc))
	merchant.PATCH("/orders/:id", updateOrderHandler(deps.OrderSvc))
	merchant.POST("/orders/:id/pay", payOrderHandler(deps.OrderSvc))
	merchant.POST("/orders/:id/tax", quoteTaxHandler(deps.OrderSvc))
	merchant.GET("/remote/orders", remoteOrdersHandler(deps.OrderSvc))

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
