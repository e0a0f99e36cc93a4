package airdrop

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"airdrop-ledger/pkg/config"
	"airdrop-ledger/pkg/featureflags"
	"airdrop-ledger/pkg/metrics"
	"airdrop-ledger/pkg/redis"
	"airdrop-ledger/pkg/rediskey"
	"airdrop-ledger/services/campaign"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sweepLockName = "content-reach-sweep"

// CampaignLister finds content-reach campaigns due for distribution.
type CampaignLister interface {
	ListClaimableContentReach(ctx context.Context, now time.Time) ([]*campaign.Campaign, error)
}

// Scheduler runs the content-reach sweep once a day.
type Scheduler struct {
	campaigns CampaignLister
	claims    func(ctx context.Context, req ClaimRequest) error
	locker    redis.Locker
	flags     featureflags.FeatureFlag
	metrics   *metrics.AirdropMetrics

	hour, minute int
	lockTTL      time.Duration
	running      atomic.Bool
	now          func() time.Time
}

type SchedulerParams struct {
	fx.In

	Config       *config.Config
	Campaigns    *campaign.Store
	Orchestrator *Orchestrator
	Locker       redis.Locker             `optional:"true"`
	Flags        featureflags.FeatureFlag `optional:"true"`
	Metrics      *metrics.AirdropMetrics  `optional:"true"`
}

func NewScheduler(p SchedulerParams) *Scheduler {
	return &Scheduler{
		campaigns: p.Campaigns,
		claims: func(ctx context.Context, req ClaimRequest) error {
			_, err := p.Orchestrator.Claim(ctx, req)
			return err
		},
		locker:  p.Locker,
		flags:   p.Flags,
		metrics: p.Metrics,
		hour:    p.Config.Airdrop.ScheduleHour,
		minute:  p.Config.Airdrop.ScheduleMinute,
		lockTTL: p.Config.Airdrop.SweepLockTTL,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// StartScheduler starts the daily loop with the application lifecycle.
func StartScheduler(lc fx.Lifecycle, s *Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go s.run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func (s *Scheduler) run(ctx context.Context) {
	zap.L().Info("[Scheduler] started content reach scheduler",
		zap.Int("hour", s.hour),
		zap.Int("minute", s.minute),
	)

	for {
		now := s.now()
		next := nextRunTime(now, s.hour, s.minute)

		sleepDuration := next.Sub(now)
		zap.L().Info("[Scheduler] next run scheduled",
			zap.Time("next_run", next),
			zap.Duration("sleep_for", sleepDuration),
		)

		timer := time.NewTimer(sleepDuration)
		select {
		case <-timer.C:
			if _, err := s.RunOnce(ctx); err != nil {
				zap.L().Error("[Scheduler] content reach sweep failed", zap.Error(err))
			}
		case <-ctx.Done():
			timer.Stop()
			zap.L().Warn("[Scheduler] stopped")
			return
		}
	}
}

// SweepReport summarises one sweep.
type SweepReport struct {
	Skipped   bool
	Processed int
	Failed    int
}

var ErrSweepRunning = errors.New("content reach sweep already running")

// RunOnce processes every due content-reach campaign. A failing campaign is
// logged and counted; the rest are still processed.
func (s *Scheduler) RunOnce(ctx context.Context) (SweepReport, error) {
	if s.flags != nil && !s.flags.IsEnabled(ctx, featureflags.ContentReachSweep, true) {
		zap.L().Warn("[Scheduler] content reach sweep disabled by feature flag")
		return SweepReport{Skipped: true}, nil
	}

	if !s.running.CompareAndSwap(false, true) {
		return SweepReport{Skipped: true}, ErrSweepRunning
	}
	defer s.running.Store(false)

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, rediskey.BuildLockKey(sweepLockName), s.lockTTL)
		if err != nil {
			return SweepReport{}, err
		}
		if !ok {
			zap.L().Info("[Scheduler] content reach sweep held by another instance")
			return SweepReport{Skipped: true}, nil
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				zap.L().Warn("[Scheduler] failed to release sweep lock", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	due, err := s.campaigns.ListClaimableContentReach(ctx, s.now())
	if err != nil {
		return SweepReport{}, err
	}

	var report SweepReport
	for _, c := range due {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		report.Processed++
		if err := s.claims(ctx, ContentReach(c.ID)); err != nil {
			report.Failed++
			s.metrics.ObserveSweep("failed")
			zap.L().Error("[Scheduler] content reach claim failed",
				zap.String("campaign_id", c.ID),
				zap.Error(err),
			)
			continue
		}
		s.metrics.ObserveSweep("completed")
	}

	zap.L().Info("[Scheduler] finished content reach sweep",
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", time.Since(start)),
	)

	return report, nil
}

// nextRunTime returns the next occurrence of hour:minute at or after now.
func nextRunTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(next) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
