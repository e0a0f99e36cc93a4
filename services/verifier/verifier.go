package verifier

import (
	"context"
	"errors"
	"fmt"

	"airdrop-ledger/pkg/metrics"
	"airdrop-ledger/services/transaction"
	txtask "airdrop-ledger/services/transaction/task"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// TransactionStore is what verification needs from the ledger.
type TransactionStore interface {
	Get(ctx context.Context, id string) (*transaction.Transaction, error)
	UpdateStatus(ctx context.Context, id string, from, to transaction.Status) error
}

// Verifier settles PENDING transactions as VERIFIED or FAILED.
type Verifier struct {
	txs     TransactionStore
	metrics *metrics.AirdropMetrics
}

type Params struct {
	fx.In

	Txs     *transaction.Store
	Metrics *metrics.AirdropMetrics `optional:"true"`
}

func NewVerifier(p Params) *Verifier {
	return &Verifier{txs: p.Txs, metrics: p.Metrics}
}

// HandleVerifyTask is the asynq handler for transaction:verify. Store errors
// are returned so the server retries; malformed payloads are not retried.
func (v *Verifier) HandleVerifyTask(ctx context.Context, t *asynq.Task) error {
	payload, err := txtask.ParseVerifyTask(t)
	if err != nil {
		zap.L().Error("invalid verify payload", zap.Error(err))
		return err
	}

	log := zap.L().With(zap.String("transaction_id", payload.ID))

	stored, err := v.txs.Get(ctx, payload.ID)
	if err != nil {
		log.Error("failed to load transaction", zap.Error(err))
		return err
	}
	if stored == nil {
		log.Warn("transaction to verify does not exist")
		return fmt.Errorf("transaction %s not found: %w", payload.ID, asynq.SkipRetry)
	}
	if stored.IsFinal() {
		log.Info("transaction already settled", zap.String("status", string(stored.Status)))
		return nil
	}

	next := transaction.StatusVerified
	if err := Verify(payload, stored); err != nil {
		log.Warn("transaction failed verification", zap.Error(err))
		next = transaction.StatusFailed
	}

	if err := v.txs.UpdateStatus(ctx, stored.ID, transaction.StatusPending, next); err != nil {
		if errors.Is(err, transaction.ErrStatusChanged) {
			log.Info("transaction settled concurrently")
			return nil
		}
		log.Error("failed to update transaction status", zap.Error(err))
		return err
	}

	v.metrics.ObserveVerified(string(next))
	log.Info("transaction settled", zap.String("status", string(next)))
	return nil
}

var (
	ErrTypeMismatch      = errors.New("transaction type mismatch")
	ErrSourceMismatch    = errors.New("transaction source differs from stored record")
	ErrRecipientMismatch = errors.New("transaction recipients differ from stored record")
)

// Verify checks the stored transaction's invariants and that the queued
// payload describes the same movement.
func Verify(payload, stored *transaction.Transaction) error {
	if stored.Type != transaction.TypeAirdrop || payload.Type != stored.Type {
		return ErrTypeMismatch
	}
	if err := stored.Checksum(); err != nil {
		return err
	}
	if err := payload.Checksum(); err != nil {
		return err
	}

	if payload.From.WalletType != stored.From.WalletType ||
		payload.From.User != stored.From.User ||
		!payload.From.Value.Equal(stored.From.Value) {
		return ErrSourceMismatch
	}

	if len(payload.To) != len(stored.To) {
		return ErrRecipientMismatch
	}
	for i := range stored.To {
		a, b := payload.To[i], stored.To[i]
		if a.User != b.User || a.WalletType != b.WalletType || !a.Value.Equal(b.Value) {
			return fmt.Errorf("%w: line %d", ErrRecipientMismatch, i)
		}
	}

	return nil
}
