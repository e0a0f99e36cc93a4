package option

import (
	"strings"

	"airdrop-ledger/pkg/db/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryOption mutates a query before it is executed by a repository.
type QueryOption func(*gorm.DB) *gorm.DB

type Operator string

const (
	EQ  Operator = "="
	NEQ Operator = "<>"
	LT  Operator = "<"
	LTE Operator = "<="
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type QuerySortBy struct {
	SortBy  string
	OrderBy string
}

// Apply runs every option against db in order.
func Apply(db *gorm.DB, opts ...QueryOption) *gorm.DB {
	for _, opt := range opts {
		if opt != nil {
			db = opt(db)
		}
	}
	return db
}

// WithSortBy orders by SortBy, created_at when empty. Descending unless
// OrderBy is "asc".
func WithSortBy(s QuerySortBy) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		field := s.SortBy
		if field == "" {
			field = "created_at"
		}

		return db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: field},
			Desc:   !strings.EqualFold(s.OrderBy, "asc"),
		})
	}
}

func WithLimit(limit int) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(limit)
	}
}

func ApplyOperator(c Condition) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		column := clause.Column{Name: c.Field}

		switch c.Operator {
		case NEQ:
			return db.Where(clause.Neq{Column: column, Value: c.Value})
		case LT:
			return db.Where(clause.Lt{Column: column, Value: c.Value})
		case LTE:
			return db.Where(clause.Lte{Column: column, Value: c.Value})
		default:
			return db.Where(clause.Eq{Column: column, Value: c.Value})
		}
	}
}

// LockingUpdate adds SELECT ... FOR UPDATE. Drivers without row locks
// (sqlite) drop the clause.
func LockingUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func WithLockingUpdate() QueryOption {
	return LockingUpdate
}

// ApplyPagination pages newest first over (created_at, id) and fetches one
// extra row so the caller can tell whether more pages exist.
func ApplyPagination(p pagination.Pagination) QueryOption {
	p = p.Normalize()

	return func(db *gorm.DB) *gorm.DB {
		if p.Cursor != "" {
			cursor, err := pagination.DecodeCursor(p.Cursor)
			if err != nil {
				_ = db.AddError(err)
				return db
			}

			createdAt, err := cursor.Time()
			if err != nil {
				_ = db.AddError(err)
				return db
			}

			db = db.Where("created_at < ? OR (created_at = ? AND id < ?)", createdAt, createdAt, cursor.ID)
		}

		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
			Limit(p.Limit + 1)
	}
}
