package transaction

import (
	"context"
	"testing"
	"time"

	"airdrop-ledger/pkg/db/pagination"
	"airdrop-ledger/services/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newStore(t *testing.T) *Store {
	db := testutil.NewTestDB(t, &Transaction{}, &Recipient{})
	return NewStore(StoreParams{DB: db})
}

func airdrop(t *testing.T, id, campaignID string, value int64, users ...string) *Transaction {
	t.Helper()

	to := make([]Recipient, 0, len(users))
	for _, u := range users {
		to = append(to, Recipient{WalletType: WalletTypeAds, Value: decimal.NewFromInt(value), User: u})
	}

	tx, err := NewAirdrop(id, Source{WalletType: WalletTypeAirdrop, Value: decimal.NewFromInt(value * int64(len(users)))}, to, Data{Campaign: campaignID})
	require.NoError(t, err)
	tx.NaturalKey = campaignID + ":" + id
	return tx
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	tx := airdrop(t, "tx-1", "c-1", 5, "u-1", "u-2")
	require.NoError(t, s.Create(ctx, tx))

	got, err := s.Get(ctx, "tx-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.To, 2)
	require.Equal(t, "u-1", got.To[0].User)
	require.Equal(t, "u-2", got.To[1].User)
	require.Equal(t, "c-1", got.Data.Data().Campaign)
	require.NoError(t, got.Checksum())

	missing, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestCreateRejectsDuplicateNaturalKey(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first := airdrop(t, "tx-1", "c-1", 5, "u-1")
	first.NaturalKey = "c-1:u-1:AIRDROP:1"
	require.NoError(t, s.Create(ctx, first))

	second := airdrop(t, "tx-2", "c-1", 5, "u-1")
	second.NaturalKey = "c-1:u-1:AIRDROP:1"
	require.ErrorIs(t, s.Create(ctx, second), ErrDuplicateClaim)
}

func TestCreateRejectsBrokenChecksum(t *testing.T) {
	s := newStore(t)

	tx := airdrop(t, "tx-1", "c-1", 5, "u-1")
	tx.From.Value = decimal.NewFromInt(6)
	require.Error(t, s.Create(context.Background(), tx))
}

func TestCountClaimsAndFailedExcluded(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Create(ctx, airdrop(t, "tx-1", "c-1", 5, "u-1")))
	require.NoError(t, s.Create(ctx, airdrop(t, "tx-2", "c-1", 5, "u-2")))
	require.NoError(t, s.Create(ctx, airdrop(t, "tx-3", "c-2", 5, "u-1")))

	n, err := s.CountClaims(ctx, "c-1", "")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	n, err = s.CountClaims(ctx, "c-1", "u-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, s.UpdateStatus(ctx, "tx-1", StatusPending, StatusFailed))
	n, err = s.CountClaims(ctx, "c-1", "u-1")
	require.NoError(t, err)
	require.EqualValues(t, 0, n)

	n, err = s.CountRecorded(ctx, "c-1", "u-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = s.CountClaims(ctx, "", "")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestMobileRewarded(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	tx := airdrop(t, "tx-1", "c-1", 5, "u-1")
	tx.SetData(Data{Campaign: "c-1", MobileCountryCode: "+66", MobileNumber: "812345678"})
	require.NoError(t, s.Create(ctx, tx))

	ok, err := s.MobileRewarded(ctx, "+66", "812345678")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.MobileRewarded(ctx, "+66", "800000000")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.UpdateStatus(ctx, "tx-1", StatusPending, StatusFailed))
	ok, err = s.MobileRewarded(ctx, "+66", "812345678")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdateStatusCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Create(ctx, airdrop(t, "tx-1", "c-1", 5, "u-1")))
	require.NoError(t, s.UpdateStatus(ctx, "tx-1", StatusPending, StatusVerified))
	require.ErrorIs(t, s.UpdateStatus(ctx, "tx-1", StatusPending, StatusFailed), ErrStatusChanged)

	got, err := s.Get(ctx, "tx-1")
	require.NoError(t, err)
	require.Equal(t, StatusVerified, got.Status)
}

func TestListByUserIncludesBothSides(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Create(ctx, airdrop(t, "tx-1", "c-1", 5, "u-1")))
	require.NoError(t, s.Create(ctx, airdrop(t, "tx-2", "c-1", 5, "u-2")))

	out := airdrop(t, "tx-3", "c-2", 1, "u-2")
	out.From = Source{WalletType: WalletTypeAds, Value: decimal.NewFromInt(1), User: "u-1"}
	require.NoError(t, s.Create(ctx, out))

	failed := airdrop(t, "tx-4", "c-3", 9, "u-1")
	require.NoError(t, s.Create(ctx, failed))
	require.NoError(t, s.UpdateStatus(ctx, "tx-4", StatusPending, StatusFailed))

	txs, err := s.ListByUser(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, txs, 2)

	ids := []string{txs[0].ID, txs[1].ID}
	require.ElementsMatch(t, []string{"tx-1", "tx-3"}, ids)
	for _, tx := range txs {
		require.Len(t, tx.To, 1)
	}
}

func TestListPendingOlderThan(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Create(ctx, airdrop(t, "tx-1", "c-1", 5, "u-1")))
	require.NoError(t, s.Create(ctx, airdrop(t, "tx-2", "c-1", 5, "u-2")))
	require.NoError(t, s.UpdateStatus(ctx, "tx-2", StatusPending, StatusVerified))

	txs, err := s.ListPending(ctx, time.Now().UTC().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "tx-1", txs[0].ID)

	txs, err = s.ListPending(ctx, time.Now().UTC().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Empty(t, txs)

	require.NoError(t, s.Create(ctx, airdrop(t, "tx-3", "c-1", 5, "u-3")))
	txs, err = s.ListPending(ctx, time.Now().UTC().Add(time.Minute), 1)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "tx-1", txs[0].ID)
	require.Len(t, txs[0].To, 1)
}

func TestListPaginates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, id := range []string{"tx-1", "tx-2", "tx-3"} {
		require.NoError(t, s.Create(ctx, airdrop(t, id, "c-1", 1, "u-1")))
	}

	page, info, err := s.List(ctx, ListFilter{User: "u-1"}, pagination.Pagination{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.True(t, info.HasMore)
	require.NotEmpty(t, info.NextCursor)

	rest, info, err := s.List(ctx, ListFilter{User: "u-1"}, pagination.Pagination{Limit: 2, Cursor: info.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.False(t, info.HasMore)

	seen := map[string]bool{}
	for _, tx := range append(page, rest...) {
		seen[tx.ID] = true
	}
	require.Len(t, seen, 3)

	_, _, err = s.List(ctx, ListFilter{User: "u-1"}, pagination.Pagination{Cursor: "!!"})
	require.Error(t, err)
}
