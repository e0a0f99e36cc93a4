package verifier

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"airdrop-ledger/pkg/config"
	"airdrop-ledger/pkg/metrics"
	"airdrop-ledger/pkg/rediskey"
	"airdrop-ledger/pkg/task"
	"airdrop-ledger/services/transaction"
	txtask "airdrop-ledger/services/transaction/task"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// attemptTTL bounds how long a verify-attempt counter outlives its last
// increment.
const attemptTTL = 7 * 24 * time.Hour

// PendingLister returns stale PENDING transactions.
type PendingLister interface {
	ListPending(ctx context.Context, before time.Time, limit int) ([]*transaction.Transaction, error)
}

// AttemptCounter counts verification hand-offs per transaction.
type AttemptCounter interface {
	Incr(ctx context.Context, transactionID string) (int64, error)
}

type redisAttempts struct {
	rdb redis.Cmdable
}

func NewAttemptCounter(rdb *redis.Client) AttemptCounter {
	return &redisAttempts{rdb: rdb}
}

func (a *redisAttempts) Incr(ctx context.Context, transactionID string) (int64, error) {
	key := rediskey.BuildVerifyAttemptKey(transactionID)
	n, err := a.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = a.rdb.Expire(ctx, key, attemptTTL).Err()
	return n, nil
}

// Reconciler re-enqueues verification for transactions stuck in PENDING. It
// never changes a transaction's status itself.
type Reconciler struct {
	txs      PendingLister
	queue    task.Enqueuer
	attempts AttemptCounter
	metrics  *metrics.AirdropMetrics

	after       time.Duration
	batch       int
	maxAttempts int64
	now         func() time.Time
}

type ReconcilerParams struct {
	fx.In

	Config   *config.Config
	Txs      *transaction.Store
	Queue    task.Enqueuer
	Attempts AttemptCounter
	Metrics  *metrics.AirdropMetrics `optional:"true"`
}

func NewReconciler(p ReconcilerParams) *Reconciler {
	return &Reconciler{
		txs:         p.Txs,
		queue:       p.Queue,
		attempts:    p.Attempts,
		metrics:     p.Metrics,
		after:       p.Config.Airdrop.ReconcileAfter,
		batch:       p.Config.Airdrop.ReconcileBatch,
		maxAttempts: p.Config.Airdrop.MaxVerifyAttempts,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type ReconcileReport struct {
	Scanned   int
	Requeued  int
	InFlight  int
	Exhausted int
	Failed    int
}

// HandleReconcileTask is the asynq handler for transaction:reconcile.
func (r *Reconciler) HandleReconcileTask(ctx context.Context, _ *asynq.Task) error {
	_, err := r.Run(ctx)
	return err
}

func (r *Reconciler) Run(ctx context.Context) (ReconcileReport, error) {
	pending, err := r.txs.ListPending(ctx, r.now().Add(-r.after), r.batch)
	if err != nil {
		zap.L().Error("[Reconciler] failed to list pending transactions", zap.Error(err))
		return ReconcileReport{}, err
	}

	var requeued, inFlight, exhausted, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, tx := range pending {
		g.Go(func() error {
			log := zap.L().With(zap.String("transaction_id", tx.ID))

			n, err := r.attempts.Incr(gctx, tx.ID)
			if err != nil {
				failed.Add(1)
				log.Warn("[Reconciler] failed to count verify attempt", zap.Error(err))
				return nil
			}
			if n > r.maxAttempts {
				exhausted.Add(1)
				r.metrics.ObserveExhausted()
				log.Error("[Reconciler] transaction exceeded verification attempts",
					zap.Int64("attempts", n-1),
					zap.Time("created_at", tx.CreatedAt),
				)
				return nil
			}

			job, err := txtask.NewVerifyTask(tx)
			if err == nil {
				_, err = r.queue.Enqueue(gctx, job)
			}
			switch {
			case err == nil:
				requeued.Add(1)
				r.metrics.ObserveRequeued()
			case errors.Is(err, asynq.ErrTaskIDConflict):
				inFlight.Add(1)
			default:
				failed.Add(1)
				log.Warn("[Reconciler] failed to re-enqueue verification", zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	report := ReconcileReport{
		Scanned:   len(pending),
		Requeued:  int(requeued.Load()),
		InFlight:  int(inFlight.Load()),
		Exhausted: int(exhausted.Load()),
		Failed:    int(failed.Load()),
	}

	if report.Scanned > 0 {
		zap.L().Info("[Reconciler] reconciled pending transactions",
			zap.Int("scanned", report.Scanned),
			zap.Int("requeued", report.Requeued),
			zap.Int("in_flight", report.InFlight),
			zap.Int("exhausted", report.Exhausted),
			zap.Int("failed", report.Failed),
		)
	}

	return report, nil
}
