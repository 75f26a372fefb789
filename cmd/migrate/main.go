package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"educhain/internal/config"
	"educhain/internal/database"
	"educhain/internal/logging"
	"educhain/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Setup(cfg)

	db, err := database.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Errorf("Error closing database: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := repository.NewInquiryRepository(db).CreateTable(ctx); err != nil {
		log.Errorf("Migration failed: %v", err)
		return
	}

	kind := "sqlite"
	if cfg.Database.IsPostgres() {
		kind = "postgres"
	}
	log.Infof("inquiries table is up to date (%s)", kind)
}
