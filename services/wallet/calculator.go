package wallet

import (
	"context"
	"fmt"

	"airdrop-ledger/services/transaction"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TransactionLister is the read side of the transaction store the calculator
// needs.
type TransactionLister interface {
	ListByUser(ctx context.Context, userID string) ([]*transaction.Transaction, error)
}

type Calculator struct {
	txs   TransactionLister
	group singleflight.Group
}

type Params struct {
	fx.In

	Transactions *transaction.Store
}

func NewCalculator(p Params) *Calculator {
	return newCalculator(p.Transactions)
}

func newCalculator(txs TransactionLister) *Calculator {
	return &Calculator{txs: txs}
}

// ComputeBalance replays every transaction touching userID. Concurrent calls
// for the same user share one read, which is detached from the cancellation
// of whichever caller started it.
func (c *Calculator) ComputeBalance(ctx context.Context, userID string) (Balance, error) {
	if userID == "" {
		return Replay("", nil), nil
	}

	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(userID, func() (any, error) {
		txs, err := c.txs.ListByUser(shared, userID)
		if err != nil {
			return nil, err
		}
		return Replay(userID, txs), nil
	})
	if err != nil {
		sc := trace.SpanContextFromContext(ctx)
		zap.L().Error("failed to load wallet transactions",
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return Balance{}, fmt.Errorf("compute balance: %w", err)
	}

	return v.(Balance), nil
}
