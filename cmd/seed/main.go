package main

import (
	"context"
	"log"
	"os"

	"commerce-sync/internal/config"
	"commerce-sync/internal/db"
	merchantrepo "commerce-sync/internal/repository/merchant"
	"commerce-sync/internal/seed"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, db.Options{MaxConns: cfg.DBMaxConns})
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	merchants, err := seed.Apply(ctx, merchantrepo.NewPostgres(pool, logger))
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}
	for _, m := range merchants {
		logger.Printf("merchant key=%s id=%s sub_account=%q", m.Key, m.ID, m.SubAccountID)
	}
	logger.Println("seed applied")
}
