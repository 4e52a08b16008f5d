package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"commerce-sync/internal/config"
	"commerce-sync/internal/db"
	"commerce-sync/internal/gateway"
	"commerce-sync/internal/gateway/memory"
	"commerce-sync/internal/gateway/rest"
	"commerce-sync/internal/importer"
	"commerce-sync/internal/repository/catalogitem"
	"commerce-sync/internal/repository/merchant"
	catalogsvc "commerce-sync/internal/service/catalog"
)

func main() {
	var (
		filePath    string
		merchantKey string
	)
	flag.StringVar(&filePath, "file", "", "Path to catalog CSV file")
	flag.StringVar(&merchantKey, "merchant", "", "Merchant key to import into")
	flag.Parse()

	if filePath == "" || merchantKey == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, db.Options{MaxConns: cfg.DBMaxConns})
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	m, err := merchant.NewPostgres(pool, logger).GetByKey(ctx, merchantKey)
	if err != nil {
		logger.Fatalf("load merchant %q: %v", merchantKey, err)
	}

	var commerce gateway.Commerce
	switch cfg.Provider {
	case config.ProviderREST:
		commerce = rest.New(rest.Config{
			BaseURL: cfg.ProviderBaseURL,
			APIKey:  cfg.ProviderAPIKey,
			RPS:     cfg.ProviderRPS,
			Timeout: cfg.HTTPClientTimeout,
		}, logger)
	default:
		logger.Printf("provider %q: remote items will not outlive this run", cfg.Provider)
		commerce = memory.New()
	}
	svc := catalogsvc.New(catalogitem.NewPostgres(pool, logger), commerce, cfg.DefaultCurrency, logger)

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	start := time.Now()
	res, err := importer.NewCSVImporter(f, svc, m, logger).Run(ctx)
	if err != nil {
		logger.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d catalog items into merchant %s in %s (%d rejected)\n", res.Imported, merchantKey, time.Since(start).Truncate(time.Millisecond), len(res.Rejected))
	for _, key := range res.Rejected {
		fmt.Printf("  rejected: %s\n", key)
	}
}
