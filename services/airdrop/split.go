package airdrop

import (
	"airdrop-ledger/services/reach"
	"airdrop-ledger/services/transaction"

	"github.com/shopspring/decimal"
)

// Split divides balance across viewers in proportion to their views. The
// per-view rate is truncated to decimals places and the last recipient takes
// whatever is left, so the credits always sum to balance exactly. dust is the
// part of the last credit that came from truncation. Shares that truncate to
// zero get no credit line.
func Split(balance decimal.Decimal, views []reach.Views, decimals int32) (to []transaction.Recipient, dust decimal.Decimal) {
	eligible := make([]reach.Views, 0, len(views))
	var totalViews int64
	for _, v := range views {
		if v.User == "" || v.Count <= 0 {
			continue
		}
		eligible = append(eligible, v)
		totalViews += v.Count
	}

	if len(eligible) == 0 || !balance.IsPositive() {
		return nil, decimal.Zero
	}

	perView, _ := balance.QuoRem(decimal.NewFromInt(totalViews), decimals)

	to = make([]transaction.Recipient, 0, len(eligible))
	distributed := decimal.Zero
	for i, v := range eligible {
		share := perView.Mul(decimal.NewFromInt(v.Count))
		value := share
		if i == len(eligible)-1 {
			value = balance.Sub(distributed)
			dust = value.Sub(share)
		} else if share.IsZero() {
			continue
		}

		distributed = distributed.Add(value)
		to = append(to, transaction.Recipient{
			WalletType: transaction.WalletTypePersonal,
			Value:      value,
			User:       v.User,
		})
	}

	return to, dust
}
