package taskname

const (
	// Transaction tasks
	TransactionVerify    = "transaction:verify"
	TransactionReconcile = "transaction:reconcile"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)
