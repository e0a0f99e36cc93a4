package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type AirdropMetrics struct {
	claims          *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	enqueueFailures prometheus.Counter
	roundingDust    prometheus.Counter
	sweeps          *prometheus.CounterVec
	verified        *prometheus.CounterVec
	requeued        prometheus.Counter
	exhausted       prometheus.Counter
}

var (
	airdropOnce     sync.Once
	airdropRegistry *AirdropMetrics
)

func Airdrop() *AirdropMetrics {
	airdropOnce.Do(func() {
		airdropRegistry = &AirdropMetrics{
			claims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "airdrop_claims_total",
				Help: "Successful airdrop claims by campaign type.",
			}, []string{"type"}),
			rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "airdrop_claims_rejected_total",
				Help: "Rejected airdrop claims by reason.",
			}, []string{"reason"}),
			enqueueFailures: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "airdrop_verify_enqueue_failures_total",
				Help: "Transactions committed but not handed to the verification queue.",
			}),
			roundingDust: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "airdrop_rounding_dust_total",
				Help: "Cumulative rounding remainder absorbed by last recipients of content-reach splits.",
			}),
			sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "airdrop_content_reach_sweep_campaigns_total",
				Help: "Campaigns processed by the content-reach sweep by result.",
			}, []string{"result"}),
			verified: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "ledger_transactions_verified_total",
				Help: "Transactions finalised by the verifier by resulting status.",
			}, []string{"status"}),
			requeued: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_reconcile_requeued_total",
				Help: "Stale pending transactions re-enqueued for verification.",
			}),
			exhausted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "ledger_reconcile_exhausted_total",
				Help: "Pending transactions that ran out of verification attempts.",
			}),
		}
		prometheus.MustRegister(
			airdropRegistry.claims,
			airdropRegistry.rejected,
			airdropRegistry.enqueueFailures,
			airdropRegistry.roundingDust,
			airdropRegistry.sweeps,
			airdropRegistry.verified,
			airdropRegistry.requeued,
			airdropRegistry.exhausted,
		)
	})
	return airdropRegistry
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

func (m *AirdropMetrics) ObserveClaim(campaignType string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(label(campaignType)).Inc()
}

func (m *AirdropMetrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(label(reason)).Inc()
}

func (m *AirdropMetrics) ObserveEnqueueFailure() {
	if m == nil {
		return
	}
	m.enqueueFailures.Inc()
}

func (m *AirdropMetrics) AddRoundingDust(amount float64) {
	if m == nil || amount <= 0 {
		return
	}
	m.roundingDust.Add(amount)
}

func (m *AirdropMetrics) ObserveSweep(result string) {
	if m == nil {
		return
	}
	m.sweeps.WithLabelValues(label(result)).Inc()
}

func (m *AirdropMetrics) ObserveVerified(status string) {
	if m == nil {
		return
	}
	m.verified.WithLabelValues(label(status)).Inc()
}

func (m *AirdropMetrics) ObserveRequeued() {
	if m == nil {
		return
	}
	m.requeued.Inc()
}

func (m *AirdropMetrics) ObserveExhausted() {
	if m == nil {
		return
	}
	m.exhausted.Inc()
}
