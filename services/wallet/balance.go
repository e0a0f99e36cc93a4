package wallet

import (
	"airdrop-ledger/services/transaction"

	"github.com/shopspring/decimal"
)

// Balance is a snapshot derived from the transaction log. Farm funds are
// locked and never count toward Available.
type Balance struct {
	Ads         decimal.Decimal `json:"ads"`
	Farm        decimal.Decimal `json:"farm"`
	Personal    decimal.Decimal `json:"personal"`
	Others      decimal.Decimal `json:"others"`
	Available   decimal.Decimal `json:"available"`
	Unavailable decimal.Decimal `json:"unavailable"`
	Total       decimal.Decimal `json:"total"`
}

type bucket int

const (
	bucketAds bucket = iota
	bucketFarm
	bucketPersonal
	bucketOthers
)

func bucketOf(w transaction.WalletType) bucket {
	switch w {
	case transaction.WalletTypeAds:
		return bucketAds
	case transaction.WalletTypeFarm:
		return bucketFarm
	case transaction.WalletTypePersonal:
		return bucketPersonal
	default:
		return bucketOthers
	}
}

// Replay folds txs into a balance for userID. FAILED transactions are
// skipped. Credits count once VERIFIED; debits that are not yet VERIFIED are
// reserved in Unavailable instead of leaving their bucket.
func Replay(userID string, txs []*transaction.Transaction) Balance {
	var buckets [4]decimal.Decimal
	for i := range buckets {
		buckets[i] = decimal.Zero
	}
	unavailable := decimal.Zero

	for _, tx := range txs {
		if tx == nil || tx.Status == transaction.StatusFailed {
			continue
		}

		if tx.Status == transaction.StatusVerified {
			for _, to := range tx.To {
				if to.User != userID {
					continue
				}
				b := bucketOf(to.WalletType)
				buckets[b] = buckets[b].Add(to.Value)
			}
		}

		if tx.From.User != "" && tx.From.User == userID {
			switch tx.Status {
			case transaction.StatusVerified:
				b := bucketOf(tx.From.WalletType)
				buckets[b] = buckets[b].Sub(tx.From.Value)
			default:
				unavailable = unavailable.Add(tx.From.Value)
			}
		}
	}

	out := Balance{
		Ads:         buckets[bucketAds],
		Farm:        buckets[bucketFarm],
		Personal:    buckets[bucketPersonal],
		Others:      buckets[bucketOthers],
		Unavailable: unavailable,
	}
	spendable := out.Ads.Add(out.Personal).Add(out.Others)
	out.Available = spendable.Sub(unavailable)
	out.Total = spendable.Add(out.Farm)

	return out
}
