package campaign

import (
	"context"
	"errors"
	"time"

	"airdrop-ledger/pkg/db/option"
	"airdrop-ledger/pkg/errutil"
	"airdrop-ledger/pkg/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// ErrStaleCampaign is returned when a compare-and-swap on the reward pool
// finds the row changed since it was read.
var ErrStaleCampaign = errutil.Conflict("campaign changed concurrently", nil, errutil.WithReason("CAMPAIGN_CHANGED"))

// Store persists campaigns. Balance and status changes go through
// SwapBalance and MarkCompleted, both conditional updates.
type Store struct {
	db   *gorm.DB
	repo repository.Repository[Campaign]
}

type StoreParams struct {
	fx.In

	DB *gorm.DB
}

func NewStore(p StoreParams) *Store {
	return &Store{
		db:   p.DB,
		repo: repository.ProvideStore[Campaign](p.DB),
	}
}

// WithTrx binds the store to an open transaction.
func (s *Store) WithTrx(tx *gorm.DB) *Store {
	if tx == nil {
		return s
	}
	return &Store{db: tx, repo: s.repo.WithTrx(tx)}
}

func (s *Store) Create(ctx context.Context, c *Campaign) error {
	return s.repo.Create(ctx, c)
}

// Get returns (nil, nil) when the campaign does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Campaign, error) {
	if id == "" {
		return nil, nil
	}
	return s.repo.FindOne(ctx, &Campaign{ID: id})
}

// GetForUpdate reads the campaign holding a row lock until the surrounding
// transaction ends.
func (s *Store) GetForUpdate(ctx context.Context, id string) (*Campaign, error) {
	if id == "" {
		return nil, nil
	}
	return s.repo.FindOne(ctx, &Campaign{ID: id}, option.WithLockingUpdate())
}

// SwapBalance sets reward_balance to next (and status) only if the row still
// holds expected and is not completed.
func (s *Store) SwapBalance(ctx context.Context, id string, expected, next decimal.Decimal, status Status) error {
	res := s.db.WithContext(ctx).
		Model(&Campaign{}).
		Where("id = ? AND reward_balance = ? AND status <> ?", id, expected, StatusCompleted).
		Updates(map[string]any{
			"reward_balance": next,
			"status":         status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleCampaign
	}
	return nil
}

// MarkCompleted moves a CALCULATING campaign to COMPLETED without touching the
// pool.
func (s *Store) MarkCompleted(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Model(&Campaign{}).
		Where("id = ? AND status <> ?", id, StatusCompleted).
		Update("status", StatusCompleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleCampaign
	}
	return nil
}

func (s *Store) Publish(ctx context.Context, id string) error {
	err := s.repo.Update(ctx, id, map[string]any{"visibility": VisibilityPublish})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errutil.NotFound("campaign not found", err)
	}
	return err
}

// ListClaimableContentReach returns published, unfinished content-reach
// campaigns whose window closed strictly before now (see HasEnded), oldest
// end date first.
func (s *Store) ListClaimableContentReach(ctx context.Context, now time.Time) ([]*Campaign, error) {
	return s.repo.Find(ctx, &Campaign{Type: TypeContentReach, Visibility: VisibilityPublish},
		option.ApplyOperator(option.Condition{Field: "status", Operator: option.NEQ, Value: StatusCompleted}),
		option.ApplyOperator(option.Condition{Field: "start_date", Operator: option.LTE, Value: now}),
		option.ApplyOperator(option.Condition{Field: "end_date", Operator: option.LT, Value: now}),
		option.WithSortBy(option.QuerySortBy{SortBy: "end_date", OrderBy: "asc"}),
		option.WithSortBy(option.QuerySortBy{SortBy: "id", OrderBy: "asc"}),
	)
}
