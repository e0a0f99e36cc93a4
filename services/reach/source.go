package reach

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Source reports per-viewer impression counts.
type Source interface {
	// ViewsInWindow returns one row per distinct viewer who saw content within
	// [start, end], ordered by viewer id. Authors viewing their own content
	// are not counted.
	ViewsInWindow(ctx context.Context, start, end time.Time) ([]Views, error)
}

type Store struct {
	db *gorm.DB
}

type Params struct {
	fx.In

	DB *gorm.DB
}

func NewStore(p Params) *Store {
	return &Store{db: p.DB}
}

func (s *Store) ViewsInWindow(ctx context.Context, start, end time.Time) ([]Views, error) {
	var out []Views
	err := s.db.WithContext(ctx).
		Model(&ContentView{}).
		Select("viewer_id AS user_id, COUNT(*) AS views").
		Where("seen_at >= ? AND seen_at <= ?", start, end).
		Where("author_id = ? OR viewer_id <> author_id", "").
		Group("viewer_id").
		Order("viewer_id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Record(ctx context.Context, v *ContentView) error {
	if v.ContentID == "" || v.ViewerID == "" {
		return errors.New("content_id and viewer_id are required")
	}
	if v.SeenAt.IsZero() {
		v.SeenAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(v).Error
}
