package main

import (
	"context"
	"log"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"airdrop-ledger/pkg/config"
	"airdrop-ledger/pkg/db"
	"airdrop-ledger/pkg/hashistack/secretmanager"
	"airdrop-ledger/pkg/logger"
	"airdrop-ledger/services/account"
	"airdrop-ledger/services/campaign"
	"airdrop-ledger/services/reach"
	"airdrop-ledger/services/transaction"
)

func main() {
	opts := []fx.Option{
		secretmanager.Options(),
		config.Module,
		logger.Module,
		db.Module,
		fx.Invoke(migrate),
		fx.NopLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	// migrate runs as an invoke, so construction is the whole job
	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	_ = app.Stop(context.Background())
}

func migrate(database *gorm.DB) error {
	models := []any{
		&account.Account{},
		&account.User{},
		&campaign.Campaign{},
		&transaction.Transaction{},
		&transaction.Recipient{},
		&reach.ContentView{},
	}

	if err := database.AutoMigrate(models...); err != nil {
		return err
	}

	zap.L().Info("schema migrated", zap.Int("models", len(models)))
	return nil
}
