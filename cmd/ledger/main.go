package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"airdrop-ledger/pkg/config"
	"airdrop-ledger/pkg/db"
	"airdrop-ledger/pkg/featureflags"
	"airdrop-ledger/pkg/gen"
	"airdrop-ledger/pkg/hashistack/secretmanager"
	"airdrop-ledger/pkg/health"
	"airdrop-ledger/pkg/httpapi"
	"airdrop-ledger/pkg/logger"
	"airdrop-ledger/pkg/metrics"
	"airdrop-ledger/pkg/otelcol"
	"airdrop-ledger/pkg/profiling"
	"airdrop-ledger/pkg/redis"
	"airdrop-ledger/pkg/sequence"
	"airdrop-ledger/pkg/server"
	"airdrop-ledger/pkg/task"
	"airdrop-ledger/services/account"
	"airdrop-ledger/services/airdrop"
	"airdrop-ledger/services/campaign"
	"airdrop-ledger/services/reach"
	"airdrop-ledger/services/transaction"
	"airdrop-ledger/services/wallet"
)

func main() {
	opts := []fx.Option{
		secretmanager.Options(),
		config.Module,
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		redis.Module,
		gen.Module,
		sequence.Module,
		metrics.Module,
		featureflags.Module,
		task.Client,
		health.Module,
		httpapi.Module,
		account.Module,
		reach.Module,
		transaction.Module,
		campaign.Module,
		wallet.Module,
		airdrop.Module,
		airdrop.HTTPModule,
		airdrop.SchedulerModule,
		server.ProvideGRPCServer,
		server.ProvideHTTPServer,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
