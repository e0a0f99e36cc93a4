package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultAppliesAirdropDefaults(t *testing.T) {
	cfg := Default()

	require.Equal(t, int32(8), cfg.Airdrop.Decimals)
	require.Equal(t, 10*time.Minute, cfg.Airdrop.ReconcileAfter)
	require.Equal(t, "@every 5m", cfg.Airdrop.ReconcileCron)
	require.Equal(t, 100, cfg.Airdrop.ReconcileBatch)
	require.Equal(t, int64(10), cfg.Airdrop.MaxVerifyAttempts)
	require.Equal(t, time.Hour, cfg.Airdrop.SweepLockTTL)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	a := Airdrop{Decimals: 2, ScheduleHour: 3, ScheduleMinute: 30, ReconcileCron: "@hourly"}
	a.applyDefaults()

	require.Equal(t, int32(2), a.Decimals)
	require.Equal(t, 3, a.ScheduleHour)
	require.Equal(t, 30, a.ScheduleMinute)
	require.Equal(t, "@hourly", a.ReconcileCron)

	bad := Airdrop{ScheduleHour: 25, ScheduleMinute: 61}
	bad.applyDefaults()
	require.Equal(t, 0, bad.ScheduleHour)
	require.Equal(t, 0, bad.ScheduleMinute)
}
