package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Type string
type Status string
type WalletType string

const (
	TypeAirdrop Type = "AIRDROP"

	StatusPending  Status = "PENDING"
	StatusVerified Status = "VERIFIED"
	StatusFailed   Status = "FAILED"

	WalletTypeAds      WalletType = "ADS"
	WalletTypeFarm     WalletType = "FARM_LOCKED"
	WalletTypePersonal WalletType = "PERSONAL"
	WalletTypeAirdrop  WalletType = "CASTCLE_AIRDROP"
)

var (
	ErrNoRecipients     = errors.New("transaction requires at least one recipient")
	ErrChecksumMismatch = errors.New("transaction checksum mismatch")
	ErrNegativeValue    = errors.New("transaction value must not be negative")
	ErrMissingUser      = errors.New("recipient user is required")
)

// Source is the single debit side of a transaction.
type Source struct {
	WalletType WalletType      `gorm:"column:wallet_type;type:varchar(32);not null" json:"walletType"`
	Value      decimal.Decimal `gorm:"column:value;type:numeric(36,18);not null" json:"value"`
	User       string          `gorm:"column:user_id;type:varchar(32);index" json:"user,omitempty"`
}

// Recipient is one credit line. Position keeps the original order.
type Recipient struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	TransactionID string          `gorm:"column:transaction_id;type:varchar(32);not null;index" json:"-"`
	Position      int             `gorm:"column:position;not null" json:"-"`
	WalletType    WalletType      `gorm:"column:wallet_type;type:varchar(32);not null" json:"walletType"`
	Value         decimal.Decimal `gorm:"column:value;type:numeric(36,18);not null" json:"value"`
	User          string          `gorm:"column:user_id;type:varchar(32);not null;index" json:"user"`
}

func (Recipient) TableName() string {
	return "transaction_recipients"
}

// Data is the free-form claim context stored with the transaction.
type Data struct {
	Campaign          string `json:"campaign,omitempty"`
	MobileCountryCode string `json:"mobileCountryCode,omitempty"`
	MobileNumber      string `json:"mobileNumber,omitempty"`
}

// Transaction is an append-only ledger record. Only Status changes after
// creation. CampaignID and the mobile columns mirror Data for indexed lookups.
type Transaction struct {
	ID                string                    `gorm:"column:id;primaryKey;type:varchar(32)" json:"id"`
	Type              Type                      `gorm:"column:type;type:varchar(32);not null;index:idx_tx_campaign,priority:2" json:"type"`
	Status            Status                    `gorm:"column:status;type:varchar(16);not null;default:'PENDING';index" json:"status"`
	From              Source                    `gorm:"embedded;embeddedPrefix:from_" json:"from"`
	To                []Recipient               `gorm:"foreignKey:TransactionID;references:ID" json:"to"`
	Data              datatypes.JSONType[Data]  `gorm:"column:data" json:"data"`
	CampaignID        string                    `gorm:"column:campaign_id;type:varchar(32);index:idx_tx_campaign,priority:1" json:"-"`
	MobileCountryCode string                    `gorm:"column:mobile_country_code;type:varchar(8);index:idx_tx_mobile,priority:1" json:"-"`
	MobileNumber      string                    `gorm:"column:mobile_number;type:varchar(32);index:idx_tx_mobile,priority:2" json:"-"`
	NaturalKey        string                    `gorm:"column:natural_key;type:varchar(160);uniqueIndex" json:"-"`
	CreatedAt         time.Time                 `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time                 `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// NewAirdrop builds a PENDING airdrop transaction and rejects it unless the
// debit equals the sum of the credits.
func NewAirdrop(id string, from Source, to []Recipient, data Data) (*Transaction, error) {
	t := &Transaction{
		ID:     id,
		Type:   TypeAirdrop,
		Status: StatusPending,
		From:   from,
		To:     make([]Recipient, 0, len(to)),
	}

	for _, r := range to {
		t.To = append(t.To, Recipient{WalletType: r.WalletType, Value: r.Value, User: r.User})
	}

	t.SetData(data)
	t.renumber()

	if err := t.Checksum(); err != nil {
		return nil, err
	}

	return t, nil
}

// Extend appends a recipient and raises the debit by the same amount so the
// checksum keeps holding.
func (t *Transaction) Extend(r Recipient) error {
	if r.User == "" {
		return ErrMissingUser
	}
	if r.Value.IsNegative() {
		return ErrNegativeValue
	}

	t.To = append(t.To, Recipient{WalletType: r.WalletType, Value: r.Value, User: r.User})
	t.From.Value = t.From.Value.Add(r.Value)
	t.renumber()

	return t.Checksum()
}

func (t *Transaction) SetData(d Data) {
	t.Data = datatypes.NewJSONType(d)
	t.CampaignID = d.Campaign
	t.MobileCountryCode = d.MobileCountryCode
	t.MobileNumber = d.MobileNumber
}

func (t *Transaction) renumber() {
	for i := range t.To {
		t.To[i].TransactionID = t.ID
		t.To[i].Position = i
	}
}

// Total is the sum of all credits.
func (t *Transaction) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, r := range t.To {
		sum = sum.Add(r.Value)
	}
	return sum
}

// Checksum validates the structural invariants: at least one recipient, no
// negative amounts, every recipient named, and from.value == sum(to).
func (t *Transaction) Checksum() error {
	if len(t.To) == 0 {
		return ErrNoRecipients
	}
	if t.From.Value.IsNegative() {
		return ErrNegativeValue
	}

	for _, r := range t.To {
		if r.User == "" {
			return ErrMissingUser
		}
		if r.Value.IsNegative() {
			return ErrNegativeValue
		}
	}

	if total := t.Total(); !t.From.Value.Equal(total) {
		return fmt.Errorf("%w: from %s, to %s", ErrChecksumMismatch, t.From.Value, total)
	}

	return nil
}

func (t *Transaction) IsFinal() bool {
	return t.Status == StatusVerified || t.Status == StatusFailed
}
