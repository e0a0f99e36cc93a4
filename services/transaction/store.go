package transaction

import (
	"context"
	"errors"
	"time"

	"airdrop-ledger/pkg/db/option"
	"airdrop-ledger/pkg/db/pagination"
	"airdrop-ledger/pkg/errutil"
	"airdrop-ledger/pkg/repository"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var (
	ErrDuplicateClaim = errutil.Conflict("transaction already recorded", nil, errutil.WithReason("DUPLICATE_TRANSACTION"))
	ErrStatusChanged  = errutil.Conflict("transaction status changed concurrently", nil, errutil.WithReason("TRANSACTION_CHANGED"))
)

// Store is the append-only transaction ledger. Nothing but the status of a
// row is ever updated.
type Store struct {
	db   *gorm.DB
	repo repository.Repository[Transaction]
}

type StoreParams struct {
	fx.In

	DB *gorm.DB
}

func NewStore(p StoreParams) *Store {
	return &Store{
		db:   p.DB,
		repo: repository.ProvideStore[Transaction](p.DB),
	}
}

func (s *Store) WithTrx(tx *gorm.DB) *Store {
	if tx == nil {
		return s
	}
	return &Store{db: tx, repo: s.repo.WithTrx(tx)}
}

// Create inserts the transaction and its recipients. A natural-key collision
// maps to ErrDuplicateClaim.
func (s *Store) Create(ctx context.Context, t *Transaction) error {
	if err := t.Checksum(); err != nil {
		return errutil.UnprocessableEntity("invalid transaction", err)
	}

	err := s.repo.Create(ctx, t)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateClaim
	}
	return err
}

func (s *Store) preloadRecipients(db *gorm.DB) *gorm.DB {
	return db.Preload("To", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// Get returns (nil, nil) when id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*Transaction, error) {
	if id == "" {
		return nil, nil
	}
	return s.repo.FindOne(ctx, &Transaction{ID: id}, s.preloadRecipients)
}

// involving selects transactions where user appears on either side.
func (s *Store) involving(user string) option.QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		sub := s.db.Model(&Recipient{}).Select("transaction_id").Where("user_id = ?", user)
		return db.Where("from_user_id = ? OR id IN (?)", user, sub)
	}
}

// creditedTo restricts to transactions with a recipient line for user.
func (s *Store) creditedTo(user string) option.QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		sub := s.db.Model(&Recipient{}).Select("transaction_id").Where("user_id = ?", user)
		return db.Where("id IN (?)", sub)
	}
}

var oldestFirst = []option.QueryOption{
	option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "asc"}),
	option.WithSortBy(option.QuerySortBy{SortBy: "id", OrderBy: "asc"}),
}

func notFailed() option.QueryOption {
	return option.ApplyOperator(option.Condition{Field: "status", Operator: option.NEQ, Value: StatusFailed})
}

// ListByUser returns every non-FAILED transaction touching user, oldest first.
func (s *Store) ListByUser(ctx context.Context, user string) ([]*Transaction, error) {
	opts := append([]option.QueryOption{s.involving(user), notFailed(), s.preloadRecipients}, oldestFirst...)
	return s.repo.Find(ctx, &Transaction{}, opts...)
}

type ListFilter struct {
	User   string
	Status Status
}

// List pages through a user's transactions newest first.
func (s *Store) List(ctx context.Context, f ListFilter, p pagination.Pagination) ([]*Transaction, *pagination.PageInfo, error) {
	p = p.Normalize()
	if p.Cursor != "" {
		if _, err := pagination.DecodeCursor(p.Cursor); err != nil {
			return nil, nil, errutil.BadRequest("invalid cursor", err)
		}
	}

	db := s.preloadRecipients(s.db.WithContext(ctx).Model(&Transaction{}))
	if f.User != "" {
		db = s.involving(f.User)(db)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}

	var rows []*Transaction
	if err := option.Apply(db, option.ApplyPagination(p)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	return pagination.Page(rows, p.Limit, func(t *Transaction) pagination.Cursor {
		return pagination.NewCursor(t.CreatedAt, t.ID)
	})
}

// CountClaims counts non-FAILED transactions recorded against a campaign.
// A non-empty user restricts the count to transactions credited to that user.
func (s *Store) CountClaims(ctx context.Context, campaignID, user string) (int64, error) {
	return s.countCampaign(ctx, campaignID, user, false)
}

// CountRecorded is CountClaims including FAILED transactions. It only grows,
// which makes it usable as a claim sequence number.
func (s *Store) CountRecorded(ctx context.Context, campaignID, user string) (int64, error) {
	return s.countCampaign(ctx, campaignID, user, true)
}

func (s *Store) countCampaign(ctx context.Context, campaignID, user string, includeFailed bool) (int64, error) {
	if campaignID == "" {
		return 0, nil
	}

	var opts []option.QueryOption
	if !includeFailed {
		opts = append(opts, notFailed())
	}
	if user != "" {
		opts = append(opts, s.creditedTo(user))
	}
	return s.repo.Count(ctx, &Transaction{CampaignID: campaignID, Type: TypeAirdrop}, opts...)
}

// MobileRewarded reports whether any non-FAILED airdrop already carries the
// given mobile number.
func (s *Store) MobileRewarded(ctx context.Context, countryCode, number string) (bool, error) {
	total, err := s.repo.Count(ctx, &Transaction{Type: TypeAirdrop}, notFailed(),
		option.ApplyOperator(option.Condition{Field: "mobile_country_code", Value: countryCode}),
		option.ApplyOperator(option.Condition{Field: "mobile_number", Value: number}),
	)
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

// ListPending returns PENDING transactions created before the cutoff, oldest
// first.
func (s *Store) ListPending(ctx context.Context, before time.Time, limit int) ([]*Transaction, error) {
	if limit <= 0 {
		limit = 100
	}

	opts := append([]option.QueryOption{
		option.ApplyOperator(option.Condition{Field: "created_at", Operator: option.LT, Value: before}),
		s.preloadRecipients,
		option.WithLimit(limit),
	}, oldestFirst...)
	return s.repo.Find(ctx, &Transaction{Status: StatusPending}, opts...)
}

// UpdateStatus moves a transaction from one status to another. It is the
// only mutation the ledger allows.
func (s *Store) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	res := s.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}
