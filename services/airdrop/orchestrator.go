package airdrop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"airdrop-ledger/pkg/config"
	"airdrop-ledger/pkg/errutil"
	"airdrop-ledger/pkg/metrics"
	"airdrop-ledger/pkg/task"
	"airdrop-ledger/services/account"
	"airdrop-ledger/services/campaign"
	"airdrop-ledger/services/reach"
	"airdrop-ledger/services/transaction"
	txtask "airdrop-ledger/services/transaction/task"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Orchestrator validates claims against campaign and account state, writes
// the transaction together with the campaign update, and hands the result to
// the verifier queue.
type Orchestrator struct {
	db        *gorm.DB
	node      *snowflake.Node
	campaigns *campaign.Store
	txs       *transaction.Store
	directory account.Directory
	views     reach.Source
	queue     task.Enqueuer
	metrics   *metrics.AirdropMetrics

	decimals int32
	now      func() time.Time
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Config    *config.Config
	Node      *snowflake.Node
	Campaigns *campaign.Store
	Txs       *transaction.Store
	Directory account.Directory
	Views     reach.Source
	Queue     task.Enqueuer
	Metrics   *metrics.AirdropMetrics `optional:"true"`
}

func NewOrchestrator(p Params) *Orchestrator {
	decimals := int32(8)
	if p.Config != nil && p.Config.Airdrop.Decimals > 0 {
		decimals = p.Config.Airdrop.Decimals
	}

	return &Orchestrator{
		db:        p.DB,
		node:      p.Node,
		campaigns: p.Campaigns,
		txs:       p.Txs,
		directory: p.Directory,
		views:     p.Views,
		queue:     p.Queue,
		metrics:   p.Metrics,
		decimals:  decimals,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// claimant is what a per-user claim resolved before the write phase.
type claimant struct {
	user     *account.User
	account  *account.Account
	referrer *account.User
}

// Claim runs one claim. Content-reach claims on a campaign without viewers
// complete the campaign and return (nil, nil).
func (o *Orchestrator) Claim(ctx context.Context, req ClaimRequest) (*transaction.Transaction, error) {
	sc := trace.SpanContextFromContext(ctx)
	log := zap.L().With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
		zap.String("kind", string(req.Kind)),
		zap.String("campaign_id", req.Campaign),
		zap.String("user_id", req.User),
	)

	tx, err := o.claim(ctx, req)
	if err != nil {
		var be errutil.BaseError
		if errors.As(err, &be) && be.Reason != "" {
			o.metrics.ObserveRejected(be.Reason)
			log.Info("claim rejected", zap.String("reason", be.Reason))
		} else {
			log.Error("claim failed", zap.Error(err))
		}
		return nil, err
	}

	if tx == nil {
		log.Info("campaign completed without recipients")
		return nil, nil
	}

	o.metrics.ObserveClaim(string(req.Kind))
	log.Info("claim recorded",
		zap.String("transaction_id", tx.ID),
		zap.String("value", tx.From.Value.String()),
		zap.Int("recipients", len(tx.To)),
	)

	o.enqueue(ctx, log, tx)
	return tx, nil
}

func (o *Orchestrator) claim(ctx context.Context, req ClaimRequest) (*transaction.Transaction, error) {
	req, err := req.validate()
	if err != nil {
		return nil, err
	}

	c, err := o.campaigns.Get(ctx, req.Campaign)
	if err != nil {
		return nil, fmt.Errorf("load campaign: %w", err)
	}
	want, _ := req.Kind.campaignType()
	if c == nil || !c.IsPublished() || c.IsCompleted() || c.Type != want {
		return nil, ErrCampaignNotFound
	}

	if !c.RewardBalance.IsPositive() {
		return nil, ErrRewardIsNotEnough
	}

	if c.MaxClaims > 0 {
		if err := o.checkMaxClaims(ctx, o.txs, c, req.User); err != nil {
			return nil, err
		}
	}

	switch c.Type {
	case campaign.TypeContentReach:
		return o.claimContentReach(ctx, c)
	case campaign.TypeFriendReferral, campaign.TypeVerifyMobile:
		return o.claimPerUser(ctx, c, req.User)
	default:
		return nil, ErrCampaignNotFound
	}
}

func (o *Orchestrator) checkMaxClaims(ctx context.Context, txs *transaction.Store, c *campaign.Campaign, userID string) error {
	n, err := txs.CountClaims(ctx, c.ID, userID)
	if err != nil {
		return fmt.Errorf("count claims: %w", err)
	}
	if n >= int64(c.MaxClaims) {
		return ErrReachedMaxClaims
	}
	return nil
}

func (o *Orchestrator) claimContentReach(ctx context.Context, c *campaign.Campaign) (*transaction.Transaction, error) {
	if !c.HasEnded(o.now()) {
		return nil, ErrCampaignNotFound
	}

	views, err := o.views.ViewsInWindow(ctx, c.StartDate, c.EndDate)
	if err != nil {
		return nil, fmt.Errorf("load content views: %w", err)
	}

	var out *transaction.Transaction
	err = o.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		campaigns := o.campaigns.WithTrx(db)

		locked, err := campaigns.GetForUpdate(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("lock campaign: %w", err)
		}
		if locked == nil || locked.IsCompleted() || !locked.IsPublished() {
			return ErrCampaignNotFound
		}

		to, dust := Split(locked.RewardBalance, views, o.decimals)
		if len(to) == 0 {
			return campaigns.MarkCompleted(ctx, locked.ID)
		}

		t, err := transaction.NewAirdrop(o.node.Generate().String(),
			transaction.Source{WalletType: transaction.WalletTypeAirdrop, Value: locked.RewardBalance},
			to,
			transaction.Data{Campaign: locked.ID},
		)
		if err != nil {
			return errutil.Internal("content reach distribution does not balance", err)
		}
		t.NaturalKey = naturalKey(locked.ID, "", 1)

		if err := campaigns.SwapBalance(ctx, locked.ID, locked.RewardBalance, decimal.Zero, campaign.StatusCompleted); err != nil {
			return err
		}
		if err := o.txs.WithTrx(db).Create(ctx, t); err != nil {
			return err
		}

		o.metrics.AddRoundingDust(dust.InexactFloat64())
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (o *Orchestrator) claimPerUser(ctx context.Context, c *campaign.Campaign, userID string) (*transaction.Transaction, error) {
	if !c.IsOpen(o.now()) {
		return nil, ErrCampaignHasNotStarted
	}
	if c.RewardBalance.LessThan(c.RewardsPerClaim) {
		return nil, ErrRewardIsNotEnough
	}

	who, err := o.resolveClaimant(ctx, c, userID)
	if err != nil {
		return nil, err
	}

	if c.Type == campaign.TypeVerifyMobile {
		if !who.account.HasVerifiedMobile() {
			return nil, ErrNotEligible
		}
		if err := o.checkMobile(ctx, o.txs, who.account); err != nil {
			return nil, err
		}
	}

	var out *transaction.Transaction
	err = o.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		campaigns := o.campaigns.WithTrx(db)
		txs := o.txs.WithTrx(db)

		locked, err := campaigns.GetForUpdate(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("lock campaign: %w", err)
		}
		if locked == nil || locked.IsCompleted() || !locked.IsPublished() {
			return ErrCampaignNotFound
		}
		if !locked.RewardBalance.IsPositive() || locked.RewardBalance.LessThan(locked.RewardsPerClaim) {
			return ErrRewardIsNotEnough
		}

		prior, err := txs.CountClaims(ctx, locked.ID, userID)
		if err != nil {
			return fmt.Errorf("count claims: %w", err)
		}
		if locked.MaxClaims > 0 && prior >= int64(locked.MaxClaims) {
			return ErrReachedMaxClaims
		}

		data := transaction.Data{Campaign: locked.ID}
		if locked.Type == campaign.TypeVerifyMobile {
			if err := o.checkMobile(ctx, txs, who.account); err != nil {
				return err
			}
			data.MobileCountryCode = who.account.MobileCountryCode
			data.MobileNumber = who.account.MobileNumber
		}

		t, err := transaction.NewAirdrop(o.node.Generate().String(),
			transaction.Source{WalletType: transaction.WalletTypeAirdrop, Value: locked.RewardsPerClaim},
			[]transaction.Recipient{{WalletType: transaction.WalletTypePersonal, Value: locked.RewardsPerClaim, User: who.user.ID}},
			data,
		)
		if err != nil {
			return errutil.Internal("claim does not balance", err)
		}

		double := locked.RewardsPerClaim.Mul(decimal.NewFromInt(2))
		if locked.Type == campaign.TypeFriendReferral && who.referrer != nil && locked.RewardBalance.GreaterThanOrEqual(double) {
			if err := t.Extend(transaction.Recipient{
				WalletType: transaction.WalletTypePersonal,
				Value:      locked.RewardsPerClaim,
				User:       who.referrer.ID,
			}); err != nil {
				return errutil.Internal("referral claim does not balance", err)
			}
		}
		seq, err := txs.CountRecorded(ctx, locked.ID, who.user.ID)
		if err != nil {
			return fmt.Errorf("count claims: %w", err)
		}
		t.NaturalKey = naturalKey(locked.ID, who.user.ID, seq+1)

		next := locked.RewardBalance.Sub(t.From.Value)
		status := campaign.StatusCalculating
		if !next.IsPositive() {
			status = campaign.StatusCompleted
		}

		if err := campaigns.SwapBalance(ctx, locked.ID, locked.RewardBalance, next, status); err != nil {
			return err
		}
		if err := txs.Create(ctx, t); err != nil {
			return err
		}

		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// resolveClaimant loads the claiming user, checks eligibility and, for
// referral campaigns, finds the referrer. All lookups happen before the
// write phase.
func (o *Orchestrator) resolveClaimant(ctx context.Context, c *campaign.Campaign, userID string) (*claimant, error) {
	user, acct, err := o.directory.FindUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || acct == nil || !user.IsPublished() {
		return nil, ErrUserOrPageNotFound
	}

	ok, err := c.Eligible(user.Attributes(), acct.Attributes())
	if err != nil {
		zap.L().Warn("eligibility expression failed",
			zap.String("campaign_id", c.ID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, ErrNotEligible
	}
	if !ok {
		return nil, ErrNotEligible
	}

	who := &claimant{user: user, account: acct}
	if c.Type == campaign.TypeFriendReferral && acct.ReferralBy != nil && *acct.ReferralBy != "" {
		ref, err := o.directory.FindReferrer(ctx, *acct.ReferralBy)
		if err != nil {
			return nil, fmt.Errorf("find referrer: %w", err)
		}
		if ref != nil && ref.ID != user.ID {
			who.referrer = ref
		}
	}

	return who, nil
}

func (o *Orchestrator) checkMobile(ctx context.Context, txs *transaction.Store, acct *account.Account) error {
	used, err := txs.MobileRewarded(ctx, acct.MobileCountryCode, acct.MobileNumber)
	if err != nil {
		return fmt.Errorf("check mobile: %w", err)
	}
	if used {
		return ErrNotEligible
	}
	return nil
}

// enqueue hands the committed transaction to the verifier. A failure leaves
// it PENDING for the reconciler.
func (o *Orchestrator) enqueue(ctx context.Context, log *zap.Logger, t *transaction.Transaction) {
	job, err := txtask.NewVerifyTask(t)
	if err == nil {
		_, err = o.queue.Enqueue(ctx, job)
	}
	if err != nil {
		o.metrics.ObserveEnqueueFailure()
		log.Error("failed to enqueue transaction verification",
			zap.String("transaction_id", t.ID),
			zap.Error(err),
		)
	}
}

func naturalKey(campaignID, userID string, claim int64) string {
	if userID == "" {
		userID = "-"
	}
	return fmt.Sprintf("%s:%s:%s:%d", campaignID, userID, transaction.TypeAirdrop, claim)
}
