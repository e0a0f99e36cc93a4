package airdrop

import "airdrop-ledger/pkg/errutil"

// Claim rejection reasons.
const (
	ReasonCampaignNotFound      = "CAMPAIGN_NOT_FOUND"
	ReasonRewardIsNotEnough     = "REWARD_IS_NOT_ENOUGH"
	ReasonReachedMaxClaims      = "REACHED_MAX_CLAIMS"
	ReasonCampaignHasNotStarted = "CAMPAIGN_HAS_NOT_STARTED"
	ReasonNotEligible           = "NOT_ELIGIBLE_FOR_CAMPAIGN"
	ReasonUserOrPageNotFound    = "USER_OR_PAGE_NOT_FOUND"
)

var (
	ErrCampaignNotFound      = errutil.NotFound("campaign not found", nil, errutil.WithReason(ReasonCampaignNotFound))
	ErrRewardIsNotEnough     = errutil.UnprocessableEntity("reward is not enough", nil, errutil.WithReason(ReasonRewardIsNotEnough))
	ErrReachedMaxClaims      = errutil.TooManyRequest("reached max claims", nil, errutil.WithReason(ReasonReachedMaxClaims))
	ErrCampaignHasNotStarted = errutil.UnprocessableEntity("campaign has not started", nil, errutil.WithReason(ReasonCampaignHasNotStarted))
	ErrNotEligible           = errutil.Forbidden("not eligible for campaign", nil, errutil.WithReason(ReasonNotEligible))
	ErrUserOrPageNotFound    = errutil.NotFound("user or page not found", nil, errutil.WithReason(ReasonUserOrPageNotFound))
)
