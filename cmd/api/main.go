package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"commerce-sync/internal/config"
	"commerce-sync/internal/db"
	"commerce-sync/internal/gateway"
	"commerce-sync/internal/gateway/memory"
	"commerce-sync/internal/gateway/rest"
	"commerce-sync/internal/gateway/taxapi"
	"commerce-sync/internal/httpserver"
	catalogitemrepo "commerce-sync/internal/repository/catalogitem"
	merchantrepo "commerce-sync/internal/repository/merchant"
	orderrepo "commerce-sync/internal/repository/order"
	subscriptionrepo "commerce-sync/internal/repository/subscription"
	catalogsvc "commerce-sync/internal/service/catalog"
	ordersvc "commerce-sync/internal/service/order"
	subscriptionsvc "commerce-sync/internal/service/subscription"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, db.Options{MaxConns: cfg.DBMaxConns})
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	commerce, taxes, err := providers(cfg, logger)
	if err != nil {
		logger.Fatalf("init providers: %v", err)
	}

	merchantRepo := merchantrepo.NewPostgres(dbpool, logger)
	itemRepo := catalogitemrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	subscriptionRepo := subscriptionrepo.NewPostgres(dbpool, logger)

	catalogService := catalogsvc.New(itemRepo, commerce, cfg.DefaultCurrency, logger)
	orderService := ordersvc.New(ordersvc.Deps{
		Orders:   orderRepo,
		Products: itemRepo,
		Gateway:  commerce,
		Tax:      taxes,
		Currency: cfg.DefaultCurrency,
		Logger:   logger,
	})
	subscriptionService := subscriptionsvc.New(subscriptionRepo, commerce, logger)

	srv, err := httpserver.New(httpserver.Options{
		Addr:         cfg.HTTPAddr,
		CORSOrigins:  cfg.CORSAllowedOrigins,
		WriteTimeout: 2 * cfg.HTTPClientTimeout,
	}, logger, dbpool, httpserver.Deps{
		MerchantRepo:    merchantRepo,
		CatalogSvc:      catalogService,
		OrderSvc:        orderService,
		SubscriptionSvc: subscriptionService,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s provider=%s", cfg.HTTPAddr, cfg.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// providers builds the commerce provider and, when configured, the tax provider.
// A nil tax provider disables tax quotes.
func providers(cfg config.Config, logger *log.Logger) (gateway.Commerce, gateway.TaxGateway, error) {
	var taxes gateway.TaxGateway
	if cfg.TaxAPIKey != "" {
		taxes = taxapi.New(taxapi.Config{
			BaseURL: cfg.TaxBaseURL,
			APIKey:  cfg.TaxAPIKey,
			RPS:     cfg.TaxRPS,
			Timeout: cfg.HTTPClientTimeout,
		}, logger)
	}

	switch cfg.Provider {
	case config.ProviderMemory:
		p := memory.New()
		if taxes == nil {
			taxes = p
		}
		logger.Printf("using in-memory commerce provider; state is lost on restart")
		return p, taxes, nil
	case config.ProviderREST:
		if cfg.ProviderAPIKey == "" {
			return nil, nil, errors.New("PROVIDER_API_KEY is required for the rest provider")
		}
		return rest.New(rest.Config{
			BaseURL: cfg.ProviderBaseURL,
			APIKey:  cfg.ProviderAPIKey,
			RPS:     cfg.ProviderRPS,
			Timeout: cfg.HTTPClientTimeout,
		}, logger), taxes, nil
	default:
		return nil, nil, errors.New("unknown PROVIDER " + cfg.Provider)
	}
}
