package airdrop

import (
	"strings"

	"airdrop-ledger/pkg/errutil"
	"airdrop-ledger/services/campaign"
)

type Kind string

const (
	KindContentReach Kind = "contentReach"
	KindReferral     Kind = "referral"
	KindVerifyMobile Kind = "verifyMobile"
)

// campaignType is the campaign type a request of this kind may claim.
func (k Kind) campaignType() (campaign.Type, bool) {
	switch k {
	case KindContentReach:
		return campaign.TypeContentReach, true
	case KindReferral:
		return campaign.TypeFriendReferral, true
	case KindVerifyMobile:
		return campaign.TypeVerifyMobile, true
	default:
		return "", false
	}
}

// ClaimRequest is a tagged union: User is required for referral and
// verifyMobile and ignored for contentReach.
type ClaimRequest struct {
	Kind     Kind   `json:"kind" binding:"required"`
	Campaign string `json:"campaign" binding:"required"`
	User     string `json:"user,omitempty"`
}

func ContentReach(campaignID string) ClaimRequest {
	return ClaimRequest{Kind: KindContentReach, Campaign: campaignID}
}

func Referral(campaignID, userID string) ClaimRequest {
	return ClaimRequest{Kind: KindReferral, Campaign: campaignID, User: userID}
}

func VerifyMobile(campaignID, userID string) ClaimRequest {
	return ClaimRequest{Kind: KindVerifyMobile, Campaign: campaignID, User: userID}
}

func (r ClaimRequest) validate() (ClaimRequest, error) {
	r.Campaign = strings.TrimSpace(r.Campaign)
	r.User = strings.TrimSpace(r.User)

	var details []errutil.Detail
	if _, ok := r.Kind.campaignType(); !ok {
		details = append(details, errutil.Detail{Field: "kind", Message: "must be contentReach, referral or verifyMobile"})
	}
	if r.Campaign == "" {
		details = append(details, errutil.Detail{Field: "campaign", Message: "is required"})
	}

	switch r.Kind {
	case KindContentReach:
		r.User = ""
	case KindReferral, KindVerifyMobile:
		if r.User == "" {
			details = append(details, errutil.Detail{Field: "user", Message: "is required"})
		}
	}

	if len(details) > 0 {
		return r, errutil.ValidationFailed("invalid claim request", nil, errutil.WithDetails(details...))
	}
	return r, nil
}
