package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"airdrop-ledger/pkg/config"
	"airdrop-ledger/pkg/db"
	"airdrop-ledger/pkg/logger"
)

func main() {
	path := flag.String("file", "seed.yaml", "fixture file to load")
	flag.Parse()

	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		fx.Invoke(func(database *gorm.DB) error {
			return seed(database, *path)
		}),
		fx.NopLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	_ = app.Stop(context.Background())
}

func seed(database *gorm.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fixture, err := ParseFixture(f)
	if err != nil {
		return err
	}

	if err := fixture.Apply(context.Background(), database, time.Now().UTC()); err != nil {
		return err
	}

	zap.L().Info("seed applied",
		zap.String("file", path),
		zap.Int("accounts", len(fixture.Accounts)),
		zap.Int("campaigns", len(fixture.Campaigns)),
	)
	return nil
}
