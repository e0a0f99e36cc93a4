package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"airdrop-ledger/pkg/config"
	"airdrop-ledger/pkg/db"
	"airdrop-ledger/pkg/hashistack/secretmanager"
	"airdrop-ledger/pkg/health"
	"airdrop-ledger/pkg/httpapi"
	"airdrop-ledger/pkg/logger"
	"airdrop-ledger/pkg/metrics"
	"airdrop-ledger/pkg/otelcol"
	"airdrop-ledger/pkg/profiling"
	"airdrop-ledger/pkg/redis"
	"airdrop-ledger/pkg/server"
	"airdrop-ledger/pkg/task"
	"airdrop-ledger/services/transaction"
	"airdrop-ledger/services/verifier"
)

// worker settles queued transactions and runs the reconcile schedule. It
// serves only health and metrics over HTTP.
func main() {
	opts := []fx.Option{
		secretmanager.Options(),
		config.Module,
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		redis.Module,
		metrics.Module,
		task.Client,
		task.Server,
		task.Scheduler,
		health.Module,
		httpapi.Module,
		transaction.Module,
		verifier.Module,
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
