package task

import (
	"encoding/json"
	"fmt"

	"airdrop-ledger/pkg/taskname"
	"airdrop-ledger/services/transaction"

	"github.com/hibiken/asynq"
)

// VerifyTaskID is the asynq task id for a transaction's verification job.
// Re-enqueueing the same transaction collides on it instead of duplicating.
func VerifyTaskID(transactionID string) string {
	return "verify:" + transactionID
}

// NewVerifyTask carries the full transaction so the worker can check it
// against what was persisted.
func NewVerifyTask(t *transaction.Transaction) (*asynq.Task, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal verify payload: %w", err)
	}

	return asynq.NewTask(taskname.TransactionVerify, payload,
		asynq.TaskID(VerifyTaskID(t.ID)),
		asynq.Queue(taskname.QueueCritical),
	), nil
}

func ParseVerifyTask(task *asynq.Task) (*transaction.Transaction, error) {
	var t transaction.Transaction
	if err := json.Unmarshal(task.Payload(), &t); err != nil {
		return nil, fmt.Errorf("unmarshal verify payload: %w: %w", err, asynq.SkipRetry)
	}
	if t.ID == "" {
		return nil, fmt.Errorf("verify payload without transaction id: %w", asynq.SkipRetry)
	}
	return &t, nil
}

// NewReconcileTask is the periodic sweep over stale PENDING transactions.
func NewReconcileTask() *asynq.Task {
	return asynq.NewTask(taskname.TransactionReconcile, nil,
		asynq.Queue(taskname.QueueDefault),
		asynq.MaxRetry(0),
	)
}
