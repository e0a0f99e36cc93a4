package repository

import (
	"context"
	"errors"

	"airdrop-ledger/pkg/db/option"

	"gorm.io/gorm"
)

// Repository is the generic gorm-backed store used by the services. FindOne
// returns (nil, nil) when nothing matches.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID string, resource any) error
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
}

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	if tx == nil {
		return s
	}
	return &store[T]{db: tx}
}

func (s *store[T]) conn(ctx context.Context) (*gorm.DB, error) {
	if s.db == nil {
		return nil, gorm.ErrInvalidDB
	}
	return s.db.WithContext(ctx), nil
}

func (s *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var out []*T
	if err := option.Apply(db.Model(new(T)).Where(query), opts...).Find(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}

func (s *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var out T
	if err := option.Apply(db.Model(new(T)).Where(query), opts...).Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &out, nil
}

func (s *store[T]) Create(ctx context.Context, resource *T) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	return db.Create(resource).Error
}

// Update applies resource (a struct or map) to the row with primary key
// resourceID. A missing row yields gorm.ErrRecordNotFound.
func (s *store[T]) Update(ctx context.Context, resourceID string, resource any) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	res := db.Model(new(T)).Where("id = ?", resourceID).Updates(resource)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (s *store[T]) Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := option.Apply(db.Model(new(T)).Where(query), opts...).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}
