package campaign

import (
	"context"
	"strings"
	"time"

	"airdrop-ledger/pkg/errutil"
	"airdrop-ledger/pkg/sequence"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	store *Store
	node  *snowflake.Node
	seq   sequence.Generator
}

type ServiceParams struct {
	fx.In

	Store *Store
	Node  *snowflake.Node
	Seq   sequence.Generator
}

func NewService(p ServiceParams) *Service {
	return &Service{
		store: p.Store,
		node:  p.Node,
		seq:   p.Seq,
	}
}

type CreateRequest struct {
	Name            string          `json:"name" binding:"required"`
	Type            Type            `json:"type" binding:"required"`
	StartDate       time.Time       `json:"start_date" binding:"required"`
	EndDate         time.Time       `json:"end_date" binding:"required"`
	MaxClaims       int             `json:"max_claims"`
	RewardsPerClaim decimal.Decimal `json:"rewards_per_claim"`
	TotalRewards    decimal.Decimal `json:"total_rewards"`
	EligibilityExpr string          `json:"eligibility_expr"`
}

func (r CreateRequest) validate() error {
	var details []errutil.Detail

	if strings.TrimSpace(r.Name) == "" {
		details = append(details, errutil.Detail{Field: "name", Message: "is required"})
	}
	if !r.Type.Valid() {
		details = append(details, errutil.Detail{Field: "type", Message: "must be CONTENT_REACH, FRIEND_REFERRAL or VERIFY_MOBILE"})
	}
	if !r.EndDate.After(r.StartDate) {
		details = append(details, errutil.Detail{Field: "end_date", Message: "must be after start_date"})
	}
	if r.MaxClaims < 0 {
		details = append(details, errutil.Detail{Field: "max_claims", Message: "must not be negative"})
	}
	if !r.TotalRewards.IsPositive() {
		details = append(details, errutil.Detail{Field: "total_rewards", Message: "must be positive"})
	}
	if r.Type.PerUser() {
		if !r.RewardsPerClaim.IsPositive() {
			details = append(details, errutil.Detail{Field: "rewards_per_claim", Message: "must be positive"})
		} else if r.RewardsPerClaim.GreaterThan(r.TotalRewards) {
			details = append(details, errutil.Detail{Field: "rewards_per_claim", Message: "must not exceed total_rewards"})
		}
	} else if r.RewardsPerClaim.IsNegative() {
		details = append(details, errutil.Detail{Field: "rewards_per_claim", Message: "must not be negative"})
	}
	if err := ValidateEligibility(r.EligibilityExpr); err != nil {
		details = append(details, errutil.Detail{Field: "eligibility_expr", Message: err.Error()})
	}

	if len(details) > 0 {
		return errutil.ValidationFailed("invalid campaign", nil, errutil.WithDetails(details...))
	}
	return nil
}

// Create stores a DRAFT campaign whose pool starts full.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Campaign, error) {
	sc := trace.SpanContextFromContext(ctx)
	log := zap.L().With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)

	if err := req.validate(); err != nil {
		return nil, err
	}

	code, err := s.seq.NextCampaignCode(ctx)
	if err != nil {
		log.Error("failed to issue campaign code", zap.Error(err))
		return nil, errutil.Internal("failed to issue campaign code", err)
	}

	c := &Campaign{
		ID:              s.node.Generate().String(),
		Code:            code,
		Name:            strings.TrimSpace(req.Name),
		Type:            req.Type,
		Status:          StatusCalculating,
		Visibility:      VisibilityDraft,
		StartDate:       req.StartDate.UTC(),
		EndDate:         req.EndDate.UTC(),
		MaxClaims:       req.MaxClaims,
		RewardsPerClaim: req.RewardsPerClaim,
		RewardBalance:   req.TotalRewards,
		TotalRewards:    req.TotalRewards,
		EligibilityExpr: strings.TrimSpace(req.EligibilityExpr),
	}

	if err := s.store.Create(ctx, c); err != nil {
		log.Error("failed to create campaign", zap.Error(err))
		return nil, errutil.Internal("failed to create campaign", err)
	}

	log.Info("campaign created", zap.String("campaign_id", c.ID), zap.String("code", c.Code))
	return c, nil
}

func (s *Service) Publish(ctx context.Context, id string) (*Campaign, error) {
	if err := s.store.Publish(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Campaign, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errutil.Internal("failed to load campaign", err)
	}
	if c == nil {
		return nil, errutil.NotFound("campaign not found", nil)
	}
	return c, nil
}
