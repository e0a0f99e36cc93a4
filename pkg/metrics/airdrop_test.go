package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestAirdropSingleton(t *testing.T) {
	require.Same(t, Airdrop(), Airdrop())
}

func TestAirdropCounters(t *testing.T) {
	m := Airdrop()

	before := testutil.ToFloat64(m.rejected.WithLabelValues("REACHED_MAX_CLAIMS"))
	m.ObserveRejected("REACHED_MAX_CLAIMS")
	require.Equal(t, before+1, testutil.ToFloat64(m.rejected.WithLabelValues("REACHED_MAX_CLAIMS")))

	m.ObserveClaim("")
	require.GreaterOrEqual(t, testutil.ToFloat64(m.claims.WithLabelValues("unknown")), 1.0)

	dust := testutil.ToFloat64(m.roundingDust)
	m.AddRoundingDust(-1)
	require.Equal(t, dust, testutil.ToFloat64(m.roundingDust))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *AirdropMetrics
	require.NotPanics(t, func() {
		m.ObserveClaim("x")
		m.ObserveRejected("x")
		m.ObserveEnqueueFailure()
		m.AddRoundingDust(1)
		m.ObserveSweep("ok")
		m.ObserveVerified("VERIFIED")
		m.ObserveRequeued()
		m.ObserveExhausted()
	})
}
