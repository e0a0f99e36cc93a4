package campaign

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string
type Status string
type Visibility string

const (
	TypeContentReach   Type = "CONTENT_REACH"
	TypeFriendReferral Type = "FRIEND_REFERRAL"
	TypeVerifyMobile   Type = "VERIFY_MOBILE"

	StatusCalculating Status = "CALCULATING"
	StatusCompleted   Status = "COMPLETED"

	VisibilityDraft   Visibility = "DRAFT"
	VisibilityPublish Visibility = "PUBLISH"
)

func (t Type) Valid() bool {
	switch t {
	case TypeContentReach, TypeFriendReferral, TypeVerifyMobile:
		return true
	default:
		return false
	}
}

// PerUser reports whether claims of this type are made by a single user
// rather than distributed campaign-wide.
func (t Type) PerUser() bool {
	return t == TypeFriendReferral || t == TypeVerifyMobile
}

// Campaign is a time-boxed reward pool. RewardBalance is the remaining pool
// and never exceeds TotalRewards.
type Campaign struct {
	ID              string          `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Code            string          `gorm:"column:code;type:varchar(32);index" json:"code"`
	Name            string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Type            Type            `gorm:"column:type;type:varchar(32);not null;index:idx_campaign_sweep,priority:1" json:"type"`
	Status          Status          `gorm:"column:status;type:varchar(32);not null;default:'CALCULATING';index:idx_campaign_sweep,priority:2" json:"status"`
	Visibility      Visibility      `gorm:"column:visibility;type:varchar(32);not null;default:'DRAFT'" json:"visibility"`
	StartDate       time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	EndDate         time.Time       `gorm:"column:end_date;not null;index:idx_campaign_sweep,priority:3" json:"end_date"`
	MaxClaims       int             `gorm:"column:max_claims;not null;default:0" json:"max_claims"`
	RewardsPerClaim decimal.Decimal `gorm:"column:rewards_per_claim;type:numeric(36,18);not null" json:"rewards_per_claim"`
	RewardBalance   decimal.Decimal `gorm:"column:reward_balance;type:numeric(36,18);not null" json:"reward_balance"`
	TotalRewards    decimal.Decimal `gorm:"column:total_rewards;type:numeric(36,18);not null" json:"total_rewards"`
	EligibilityExpr string          `gorm:"column:eligibility_expr;type:text" json:"eligibility_expr,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

func (c *Campaign) IsPublished() bool {
	return c.Visibility == VisibilityPublish
}

func (c *Campaign) IsCompleted() bool {
	return c.Status == StatusCompleted
}

// IsOpen reports whether now falls inside (StartDate, EndDate].
func (c *Campaign) IsOpen(now time.Time) bool {
	return now.After(c.StartDate) && !now.After(c.EndDate)
}

// HasEnded reports whether the claim window closed strictly before now.
func (c *Campaign) HasEnded(now time.Time) bool {
	return now.After(c.EndDate)
}

// Attributes exposes the campaign to eligibility expressions.
func (c *Campaign) Attributes() map[string]any {
	return map[string]any{
		"id":                c.ID,
		"code":              c.Code,
		"type":              string(c.Type),
		"max_claims":        int64(c.MaxClaims),
		"rewards_per_claim": c.RewardsPerClaim.String(),
		"reward_balance":    c.RewardBalance.String(),
		"start_date":        c.StartDate,
		"end_date":          c.EndDate,
	}
}
