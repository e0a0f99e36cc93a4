package campaign

import (
	"context"
	"errors"
	"testing"
	"time"

	"airdrop-ledger/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeSequence struct {
	code string
	err  error
}

func (f fakeSequence) NextCampaignCode(context.Context) (string, error) {
	return f.code, f.err
}

func newService(t *testing.T, seq fakeSequence) *Service {
	s, _ := newStore(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(ServiceParams{Store: s, Node: node, Seq: seq})
}

func validRequest() CreateRequest {
	now := time.Now().UTC()
	return CreateRequest{
		Name:            "Verify your phone",
		Type:            TypeVerifyMobile,
		StartDate:       now,
		EndDate:         now.Add(24 * time.Hour),
		MaxClaims:       1,
		RewardsPerClaim: decimal.NewFromInt(5),
		TotalRewards:    decimal.NewFromInt(500),
		EligibilityExpr: `user.type == "PEOPLE"`,
	}
}

func TestCreateDraftWithFullPool(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, fakeSequence{code: "CMP-261016-001AB"})

	c, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	require.Equal(t, "CMP-261016-001AB", c.Code)
	require.Equal(t, VisibilityDraft, c.Visibility)
	require.Equal(t, StatusCalculating, c.Status)
	require.True(t, c.RewardBalance.Equal(c.TotalRewards))

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, c.Code, got.Code)

	published, err := svc.Publish(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, published.IsPublished())
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t, fakeSequence{code: "CMP"})

	cases := map[string]func(r *CreateRequest){
		"missing name":      func(r *CreateRequest) { r.Name = " " },
		"unknown type":      func(r *CreateRequest) { r.Type = "LOTTERY" },
		"inverted window":   func(r *CreateRequest) { r.EndDate = r.StartDate.Add(-time.Hour) },
		"empty pool":        func(r *CreateRequest) { r.TotalRewards = decimal.Zero },
		"claim above pool":  func(r *CreateRequest) { r.RewardsPerClaim = decimal.NewFromInt(501) },
		"zero claim":        func(r *CreateRequest) { r.RewardsPerClaim = decimal.Zero },
		"negative max":      func(r *CreateRequest) { r.MaxClaims = -1 },
		"broken expression": func(r *CreateRequest) { r.EligibilityExpr = `user.type ==` },
		"non bool expr":     func(r *CreateRequest) { r.EligibilityExpr = `"yes"` },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			mutate(&req)

			_, err := svc.Create(context.Background(), req)
			require.Error(t, err)

			var be errutil.BaseError
			require.True(t, errors.As(err, &be))
			require.Equal(t, errutil.StatusValidationFailed, be.Code)
			require.NotEmpty(t, be.Details)
		})
	}
}

func TestContentReachAllowsZeroRewardsPerClaim(t *testing.T) {
	svc := newService(t, fakeSequence{code: "CMP"})

	req := validRequest()
	req.Type = TypeContentReach
	req.RewardsPerClaim = decimal.Zero
	req.EligibilityExpr = ""

	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
}

func TestCreateSequenceFailure(t *testing.T) {
	svc := newService(t, fakeSequence{err: errors.New("redis down")})

	_, err := svc.Create(context.Background(), validRequest())
	require.Error(t, err)
}

func TestGetUnknown(t *testing.T) {
	svc := newService(t, fakeSequence{code: "CMP"})

	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, errutil.NotFound("campaign not found", nil))
}

func TestEligible(t *testing.T) {
	c := &Campaign{ID: "c-1", Type: TypeVerifyMobile, EligibilityExpr: `user.type == "PEOPLE" && account.has_verified_mobile`}

	ok, err := c.Eligible(map[string]any{"type": "PEOPLE"}, map[string]any{"has_verified_mobile": true})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.Eligible(map[string]any{"type": "PAGE"}, map[string]any{"has_verified_mobile": true})
	require.NoError(t, err)
	require.False(t, ok)

	open := &Campaign{}
	ok, err = open.Eligible(nil, nil)
	require.NoError(t, err)
	require.True(t, ok)
}
