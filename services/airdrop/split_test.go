package airdrop

import (
	"testing"

	"airdrop-ledger/services/reach"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSplitTruncatesAndGivesRemainderToLast(t *testing.T) {
	to, dust := Split(dec("10"), []reach.Views{{User: "a", Count: 1}, {User: "b", Count: 1}, {User: "c", Count: 1}}, 8)

	require.Len(t, to, 3)
	require.True(t, to[0].Value.Equal(dec("3.33333333")))
	require.True(t, to[1].Value.Equal(dec("3.33333333")))
	require.True(t, to[2].Value.Equal(dec("3.33333334")))
	require.True(t, dust.Equal(dec("0.00000001")))

	sum := decimal.Zero
	for _, r := range to {
		sum = sum.Add(r.Value)
	}
	require.True(t, sum.Equal(dec("10")))
}

func TestSplitWeightsByViews(t *testing.T) {
	to, dust := Split(dec("9"), []reach.Views{{User: "a", Count: 2}, {User: "b", Count: 1}}, 8)

	require.Len(t, to, 2)
	require.True(t, to[0].Value.Equal(dec("6")))
	require.True(t, to[1].Value.Equal(dec("3")))
	require.True(t, dust.IsZero())
}

func TestSplitSkipsEmptyRows(t *testing.T) {
	to, _ := Split(dec("1"), []reach.Views{{User: "", Count: 4}, {User: "a", Count: 0}, {User: "b", Count: 2}}, 8)
	require.Len(t, to, 1)
	require.Equal(t, "b", to[0].User)
	require.True(t, to[0].Value.Equal(dec("1")))

	to, dust := Split(dec("1"), nil, 8)
	require.Empty(t, to)
	require.True(t, dust.IsZero())

	to, _ = Split(decimal.Zero, []reach.Views{{User: "a", Count: 1}}, 8)
	require.Empty(t, to)
}

func TestSplitDropsSharesTruncatedToZero(t *testing.T) {
	views := []reach.Views{{User: "a", Count: 1}, {User: "b", Count: 1}, {User: "c", Count: 1}}

	to, dust := Split(dec("0.00000002"), views, 8)
	require.Len(t, to, 1)
	require.Equal(t, "c", to[0].User)
	require.True(t, to[0].Value.Equal(dec("0.00000002")))
	require.True(t, dust.Equal(dec("0.00000002")))

	for _, r := range to {
		require.True(t, r.Value.IsPositive())
	}
}
