package repository

import (
	"context"
	"testing"

	"airdrop-ledger/pkg/db/option"
	"airdrop-ledger/services/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID    string `gorm:"primaryKey"`
	Kind  string
	Count int
}

func newWidgets(t *testing.T) (Repository[widget], *gorm.DB) {
	db := testutil.NewTestDB(t, &widget{})
	return ProvideStore[widget](db), db
}

func TestCreateFindAndCount(t *testing.T) {
	ctx := context.Background()
	repo, _ := newWidgets(t)

	for _, w := range []*widget{
		{ID: "w-1", Kind: "a", Count: 1},
		{ID: "w-2", Kind: "a", Count: 5},
		{ID: "w-3", Kind: "b", Count: 9},
		{ID: "w-4", Kind: "a", Count: 7},
	} {
		require.NoError(t, repo.Create(ctx, w))
	}

	found, err := repo.Find(ctx, &widget{Kind: "a"},
		option.ApplyOperator(option.Condition{Field: "count", Operator: option.LTE, Value: 5}),
		option.WithSortBy(option.QuerySortBy{SortBy: "count"}),
	)
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, "w-2", found[0].ID)
	require.Equal(t, "w-1", found[1].ID)

	found, err = repo.Find(ctx, &widget{},
		option.ApplyOperator(option.Condition{Field: "kind", Operator: option.NEQ, Value: "b"}),
		option.WithSortBy(option.QuerySortBy{SortBy: "count", OrderBy: "asc"}),
		option.WithLimit(2),
	)
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, "w-1", found[0].ID)
	require.Equal(t, "w-2", found[1].ID)

	n, err := repo.Count(ctx, &widget{Kind: "a"})
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	n, err = repo.Count(ctx, &widget{Kind: "a"}, option.ApplyOperator(option.Condition{Field: "count", Operator: option.LT, Value: 5}))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = repo.Count(ctx, &widget{}, option.ApplyOperator(option.Condition{Field: "kind", Value: "b"}))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	missing, err := repo.FindOne(ctx, &widget{ID: "nope"})
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestUpdateMissingRow(t *testing.T) {
	ctx := context.Background()
	repo, _ := newWidgets(t)

	require.NoError(t, repo.Create(ctx, &widget{ID: "w-1", Kind: "a"}))
	require.NoError(t, repo.Update(ctx, "w-1", map[string]any{"count": 3}))

	got, err := repo.FindOne(ctx, &widget{ID: "w-1"})
	require.NoError(t, err)
	require.Equal(t, 3, got.Count)

	require.ErrorIs(t, repo.Update(ctx, "w-9", map[string]any{"count": 1}), gorm.ErrRecordNotFound)
}

func TestWithTrxRollsBack(t *testing.T) {
	ctx := context.Background()
	repo, db := newWidgets(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTrx(tx).Create(ctx, &widget{ID: "w-1"}); err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	require.Error(t, err)

	n, err := repo.Count(ctx, &widget{})
	require.NoError(t, err)
	require.Zero(t, n)
}
