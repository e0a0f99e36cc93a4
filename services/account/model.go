package account

import "time"

type UserType string
type Visibility string

const (
	UserTypePeople UserType = "PEOPLE"
	UserTypePage   UserType = "PAGE"

	VisibilityPublish Visibility = "PUBLISH"
	VisibilityHidden  Visibility = "HIDDEN"
)

// Account owns one PEOPLE user and any number of PAGE users. ReferralBy points
// at the account that referred this one.
type Account struct {
	ID                string     `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	ReferralBy        *string    `gorm:"column:referral_by;type:varchar(32);index" json:"referral_by,omitempty"`
	MobileCountryCode string     `gorm:"column:mobile_country_code;type:varchar(8)" json:"mobile_country_code,omitempty"`
	MobileNumber      string     `gorm:"column:mobile_number;type:varchar(32)" json:"mobile_number,omitempty"`
	MobileVerifiedAt  *time.Time `gorm:"column:mobile_verified_at" json:"mobile_verified_at,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) HasVerifiedMobile() bool {
	return a.MobileVerifiedAt != nil && a.MobileCountryCode != "" && a.MobileNumber != ""
}

func (a *Account) Attributes() map[string]any {
	return map[string]any{
		"id":                  a.ID,
		"referred":            a.ReferralBy != nil && *a.ReferralBy != "",
		"has_verified_mobile": a.HasVerifiedMobile(),
		"mobile_country_code": a.MobileCountryCode,
		"created_at":          a.CreatedAt,
	}
}

type User struct {
	ID          string     `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	AccountID   string     `gorm:"column:account_id;type:varchar(32);not null;index:idx_user_account_type,priority:1" json:"account_id"`
	Type        UserType   `gorm:"column:type;type:varchar(16);not null;index:idx_user_account_type,priority:2" json:"type"`
	DisplayID   string     `gorm:"column:display_id;type:varchar(64);uniqueIndex" json:"display_id"`
	DisplayName string     `gorm:"column:display_name;type:varchar(255)" json:"display_name"`
	Visibility  Visibility `gorm:"column:visibility;type:varchar(16);not null;default:'PUBLISH'" json:"visibility"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsPublished() bool {
	return u.Visibility == VisibilityPublish
}

func (u *User) Attributes() map[string]any {
	return map[string]any{
		"id":         u.ID,
		"type":       string(u.Type),
		"display_id": u.DisplayID,
		"created_at": u.CreatedAt,
	}
}
