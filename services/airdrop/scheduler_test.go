package airdrop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"airdrop-ledger/services/campaign"

	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	due []*campaign.Campaign
	err error
}

func (f fakeLister) ListClaimableContentReach(context.Context, time.Time) ([]*campaign.Campaign, error) {
	return f.due, f.err
}

type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	released int
}

func (l *fakeLocker) TryLock(context.Context, string, time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held = false
		l.released++
		return nil
	}, true, nil
}

type fakeFlags map[string]bool

func (f fakeFlags) IsEnabled(_ context.Context, name string, fallback bool) bool {
	if v, ok := f[name]; ok {
		return v
	}
	return fallback
}

func newTestScheduler(lister CampaignLister, claims func(context.Context, ClaimRequest) error) *Scheduler {
	return &Scheduler{
		campaigns: lister,
		claims:    claims,
		lockTTL:   time.Minute,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func TestRunOnceIsolatesFailures(t *testing.T) {
	lister := fakeLister{due: []*campaign.Campaign{{ID: "c-1"}, {ID: "c-2"}, {ID: "c-3"}}}

	var seen []string
	s := newTestScheduler(lister, func(_ context.Context, req ClaimRequest) error {
		require.Equal(t, KindContentReach, req.Kind)
		seen = append(seen, req.Campaign)
		if req.Campaign == "c-2" {
			return errors.New("boom")
		}
		return nil
	})

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, report.Processed)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, []string{"c-1", "c-2", "c-3"}, seen)
}

func TestRunOnceHonoursFeatureFlag(t *testing.T) {
	called := false
	s := newTestScheduler(fakeLister{due: []*campaign.Campaign{{ID: "c-1"}}}, func(context.Context, ClaimRequest) error {
		called = true
		return nil
	})
	s.flags = fakeFlags{"airdrop_content_reach_sweep": false}

	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, report.Skipped)
	require.False(t, called)
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	called := 0
	s := newTestScheduler(fakeLister{due: []*campaign.Campaign{{ID: "c-1"}}}, func(context.Context, ClaimRequest) error {
		called++
		return nil
	})
	locker := &fakeLocker{}
	s.locker = locker

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, called)
	require.Equal(t, 1, locker.released)

	locker.held = true
	report, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, report.Skipped)
	require.Equal(t, 1, called)
}

func TestRunOnceRejectsOverlap(t *testing.T) {
	s := newTestScheduler(fakeLister{}, nil)
	s.running.Store(true)

	report, err := s.RunOnce(context.Background())
	require.ErrorIs(t, err, ErrSweepRunning)
	require.True(t, report.Skipped)
}

func TestRunOnceListError(t *testing.T) {
	s := newTestScheduler(fakeLister{err: errors.New("db down")}, nil)

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
	require.False(t, s.running.Load())
}

func TestRunOnceAgainstStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	f.campaign(t, &campaign.Campaign{ID: "c-done", Type: campaign.TypeContentReach, StartDate: now.Add(-48 * time.Hour), EndDate: now.Add(-24 * time.Hour), RewardBalance: dec("10")})
	f.campaign(t, &campaign.Campaign{ID: "c-live", Type: campaign.TypeContentReach, RewardBalance: dec("10")})

	s := newTestScheduler(f.campaigns, func(ctx context.Context, req ClaimRequest) error {
		_, err := f.o.Claim(ctx, req)
		return err
	})

	report, err := s.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Processed)
	require.Zero(t, report.Failed)

	require.True(t, f.reload(t, "c-done").IsCompleted())
	require.False(t, f.reload(t, "c-live").IsCompleted())
}

func TestNextRunTime(t *testing.T) {
	loc := time.UTC

	now := time.Date(2026, 10, 16, 9, 0, 0, 0, loc)
	require.Equal(t, time.Date(2026, 10, 16, 12, 30, 0, 0, loc), nextRunTime(now, 12, 30))
	require.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, loc), nextRunTime(now, 0, 0))

	exact := time.Date(2026, 10, 16, 12, 30, 0, 0, loc)
	require.Equal(t, exact, nextRunTime(exact, 12, 30))
}
