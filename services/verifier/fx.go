package verifier

import (
	"airdrop-ledger/pkg/config"
	"airdrop-ledger/pkg/taskname"
	txtask "airdrop-ledger/services/transaction/task"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("verifier.worker",
	fx.Provide(
		NewVerifier,
		NewAttemptCounter,
		NewReconciler,
	),
	fx.Invoke(
		registerHandlers,
		registerPeriodicTasks,
	),
)

func registerHandlers(mux *asynq.ServeMux, v *Verifier, r *Reconciler) {
	mux.HandleFunc(taskname.TransactionVerify, v.HandleVerifyTask)
	mux.HandleFunc(taskname.TransactionReconcile, r.HandleReconcileTask)
}

func registerPeriodicTasks(cfg *config.Config, scheduler *asynq.Scheduler) error {
	entryID, err := scheduler.Register(cfg.Airdrop.ReconcileCron, txtask.NewReconcileTask())
	if err != nil {
		return err
	}

	zap.L().Info("[Asynq] registered reconcile task",
		zap.String("cron", cfg.Airdrop.ReconcileCron),
		zap.String("entry_id", entryID),
	)
	return nil
}
