package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"airdrop-ledger/services/account"
	"airdrop-ledger/services/campaign"
)

// Fixture is a development data set: accounts with their users, and
// campaigns.
type Fixture struct {
	Accounts  []AccountFixture  `yaml:"accounts"`
	Campaigns []CampaignFixture `yaml:"campaigns"`
}

type AccountFixture struct {
	ID           string        `yaml:"id"`
	ReferralBy   string        `yaml:"referral_by"`
	MobileCode   string        `yaml:"mobile_country_code"`
	MobileNumber string        `yaml:"mobile_number"`
	Verified     bool          `yaml:"mobile_verified"`
	Users        []UserFixture `yaml:"users"`
}

type UserFixture struct {
	ID          string `yaml:"id"`
	Type        string `yaml:"type"`
	DisplayID   string `yaml:"display_id"`
	DisplayName string `yaml:"display_name"`
	Hidden      bool   `yaml:"hidden"`
}

type CampaignFixture struct {
	ID              string        `yaml:"id"`
	Code            string        `yaml:"code"`
	Name            string        `yaml:"name"`
	Type            string        `yaml:"type"`
	Draft           bool          `yaml:"draft"`
	StartsIn        time.Duration `yaml:"starts_in"`
	Duration        time.Duration `yaml:"duration"`
	MaxClaims       int           `yaml:"max_claims"`
	RewardsPerClaim string        `yaml:"rewards_per_claim"`
	TotalRewards    string        `yaml:"total_rewards"`
	EligibilityExpr string        `yaml:"eligibility_expr"`
}

func ParseFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &f, nil
}

func (c CampaignFixture) build(now time.Time) (*campaign.Campaign, error) {
	perClaim := decimal.Zero
	if c.RewardsPerClaim != "" {
		v, err := decimal.NewFromString(c.RewardsPerClaim)
		if err != nil {
			return nil, fmt.Errorf("campaign %s rewards_per_claim: %w", c.ID, err)
		}
		perClaim = v
	}

	total, err := decimal.NewFromString(c.TotalRewards)
	if err != nil {
		return nil, fmt.Errorf("campaign %s total_rewards: %w", c.ID, err)
	}

	typ := campaign.Type(c.Type)
	if !typ.Valid() {
		return nil, fmt.Errorf("campaign %s: unknown type %q", c.ID, c.Type)
	}

	duration := c.Duration
	if duration <= 0 {
		duration = 7 * 24 * time.Hour
	}

	visibility := campaign.VisibilityPublish
	if c.Draft {
		visibility = campaign.VisibilityDraft
	}

	start := now.Add(c.StartsIn)
	return &campaign.Campaign{
		ID:              c.ID,
		Code:            c.Code,
		Name:            c.Name,
		Type:            typ,
		Status:          campaign.StatusCalculating,
		Visibility:      visibility,
		StartDate:       start,
		EndDate:         start.Add(duration),
		MaxClaims:       c.MaxClaims,
		RewardsPerClaim: perClaim,
		RewardBalance:   total,
		TotalRewards:    total,
		EligibilityExpr: c.EligibilityExpr,
	}, nil
}

func (a AccountFixture) build(now time.Time) (*account.Account, []*account.User) {
	acct := &account.Account{
		ID:                a.ID,
		MobileCountryCode: a.MobileCode,
		MobileNumber:      a.MobileNumber,
	}
	if a.ReferralBy != "" {
		ref := a.ReferralBy
		acct.ReferralBy = &ref
	}
	if a.Verified {
		verified := now
		acct.MobileVerifiedAt = &verified
	}

	users := make([]*account.User, 0, len(a.Users))
	for _, u := range a.Users {
		typ := account.UserTypePeople
		if u.Type != "" {
			typ = account.UserType(u.Type)
		}
		visibility := account.VisibilityPublish
		if u.Hidden {
			visibility = account.VisibilityHidden
		}
		users = append(users, &account.User{
			ID:          u.ID,
			AccountID:   a.ID,
			Type:        typ,
			DisplayID:   u.DisplayID,
			DisplayName: u.DisplayName,
			Visibility:  visibility,
		})
	}
	return acct, users
}

// Apply upserts the fixture in one transaction. Campaign timestamps are
// relative to now.
func (f *Fixture) Apply(ctx context.Context, db *gorm.DB, now time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := tx.Clauses(clause.OnConflict{UpdateAll: true})

		for _, a := range f.Accounts {
			acct, users := a.build(now)
			if err := upsert.Create(acct).Error; err != nil {
				return fmt.Errorf("account %s: %w", a.ID, err)
			}
			for _, u := range users {
				if err := upsert.Create(u).Error; err != nil {
					return fmt.Errorf("user %s: %w", u.ID, err)
				}
			}
		}

		for _, c := range f.Campaigns {
			model, err := c.build(now)
			if err != nil {
				return err
			}
			if err := upsert.Create(model).Error; err != nil {
				return fmt.Errorf("campaign %s: %w", c.ID, err)
			}
		}

		return nil
	})
}
