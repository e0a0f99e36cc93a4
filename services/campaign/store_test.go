package campaign

import (
	"context"
	"testing"
	"time"

	"airdrop-ledger/services/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newStore(t *testing.T) (*Store, *gorm.DB) {
	db := testutil.NewTestDB(t, &Campaign{})
	return NewStore(StoreParams{DB: db}), db
}

func seedCampaign(t *testing.T, s *Store, c *Campaign) *Campaign {
	t.Helper()
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.Status == "" {
		c.Status = StatusCalculating
	}
	if c.Visibility == "" {
		c.Visibility = VisibilityPublish
	}
	require.NoError(t, s.Create(context.Background(), c))
	return c
}

func TestGetMissingReturnsNil(t *testing.T) {
	s, _ := newStore(t)

	c, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, c)

	c, err = s.Get(context.Background(), "")
	require.NoError(t, err)
	require.Nil(t, c)
}

func TestSwapBalanceCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	now := time.Now().UTC()

	seedCampaign(t, s, &Campaign{
		ID:            "c-1",
		Type:          TypeFriendReferral,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
		RewardBalance: decimal.NewFromInt(10),
		TotalRewards:  decimal.NewFromInt(10),
	})

	require.NoError(t, s.SwapBalance(ctx, "c-1", decimal.NewFromInt(10), decimal.NewFromInt(7), StatusCalculating))
	require.ErrorIs(t, s.SwapBalance(ctx, "c-1", decimal.NewFromInt(10), decimal.NewFromInt(4), StatusCalculating), ErrStaleCampaign)

	c, err := s.Get(ctx, "c-1")
	require.NoError(t, err)
	require.True(t, c.RewardBalance.Equal(decimal.NewFromInt(7)))

	require.NoError(t, s.SwapBalance(ctx, "c-1", decimal.NewFromInt(7), decimal.Zero, StatusCompleted))
	require.ErrorIs(t, s.SwapBalance(ctx, "c-1", decimal.Zero, decimal.Zero, StatusCompleted), ErrStaleCampaign)
}

func TestSwapBalanceInsideTransaction(t *testing.T) {
	ctx := context.Background()
	s, db := newStore(t)
	now := time.Now().UTC()

	seedCampaign(t, s, &Campaign{
		ID:            "c-1",
		Type:          TypeVerifyMobile,
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
		RewardBalance: decimal.RequireFromString("1.5"),
		TotalRewards:  decimal.RequireFromString("1.5"),
	})

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.WithTrx(tx).GetForUpdate(ctx, "c-1")
		require.NoError(t, err)
		require.NotNil(t, locked)
		return s.WithTrx(tx).SwapBalance(ctx, "c-1", locked.RewardBalance, decimal.RequireFromString("0.5"), StatusCalculating)
	})
	require.NoError(t, err)

	c, err := s.Get(ctx, "c-1")
	require.NoError(t, err)
	require.True(t, c.RewardBalance.Equal(decimal.RequireFromString("0.5")))
}

func TestMarkCompleted(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	now := time.Now().UTC()

	seedCampaign(t, s, &Campaign{
		ID:            "c-1",
		Type:          TypeContentReach,
		StartDate:     now.Add(-48 * time.Hour),
		EndDate:       now.Add(-time.Hour),
		RewardBalance: decimal.NewFromInt(100),
		TotalRewards:  decimal.NewFromInt(100),
	})

	require.NoError(t, s.MarkCompleted(ctx, "c-1"))
	require.ErrorIs(t, s.MarkCompleted(ctx, "c-1"), ErrStaleCampaign)

	c, err := s.Get(ctx, "c-1")
	require.NoError(t, err)
	require.True(t, c.IsCompleted())
	require.True(t, c.RewardBalance.Equal(decimal.NewFromInt(100)))
}

func TestListClaimableContentReach(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	now := time.Now().UTC()

	ended := func(id string) *Campaign {
		return &Campaign{
			ID:            id,
			Type:          TypeContentReach,
			StartDate:     now.Add(-48 * time.Hour),
			EndDate:       now.Add(-time.Hour),
			RewardBalance: decimal.NewFromInt(1),
			TotalRewards:  decimal.NewFromInt(1),
		}
	}

	seedCampaign(t, s, ended("due"))

	draft := ended("draft")
	draft.Visibility = VisibilityDraft
	seedCampaign(t, s, draft)

	done := ended("done")
	done.Status = StatusCompleted
	seedCampaign(t, s, done)

	running := ended("running")
	running.EndDate = now.Add(time.Hour)
	seedCampaign(t, s, running)

	referral := ended("referral")
	referral.Type = TypeFriendReferral
	seedCampaign(t, s, referral)

	endingNow := ended("ending-now")
	endingNow.EndDate = now
	seedCampaign(t, s, endingNow)

	out, err := s.ListClaimableContentReach(ctx, now)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "due", out[0].ID)
	require.True(t, out[0].HasEnded(now))
	require.False(t, endingNow.HasEnded(now))

	later := now.Add(time.Second)
	out, err = s.ListClaimableContentReach(ctx, later)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "due", out[0].ID)
	require.Equal(t, "ending-now", out[1].ID)
	require.True(t, endingNow.HasEnded(later))
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	now := time.Now().UTC()

	seedCampaign(t, s, &Campaign{
		ID:            "c-1",
		Type:          TypeVerifyMobile,
		Visibility:    VisibilityDraft,
		StartDate:     now,
		EndDate:       now.Add(time.Hour),
		RewardBalance: decimal.NewFromInt(1),
		TotalRewards:  decimal.NewFromInt(1),
	})

	require.NoError(t, s.Publish(ctx, "c-1"))
	c, err := s.Get(ctx, "c-1")
	require.NoError(t, err)
	require.True(t, c.IsPublished())

	require.Error(t, s.Publish(ctx, "missing"))
}

func TestCampaignWindow(t *testing.T) {
	now := time.Now().UTC()
	c := &Campaign{StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour)}

	require.True(t, c.IsOpen(now))
	require.False(t, c.IsOpen(c.StartDate))
	require.True(t, c.IsOpen(c.EndDate))
	require.False(t, c.HasEnded(c.EndDate))
	require.True(t, c.HasEnded(c.EndDate.Add(time.Nanosecond)))
}
