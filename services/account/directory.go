package account

import (
	"context"

	"airdrop-ledger/pkg/repository"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Directory resolves claimants and their referrers.
type Directory interface {
	// FindUser returns the user and its owning account, or nils when the user
	// does not exist.
	FindUser(ctx context.Context, userID string) (*User, *Account, error)
	// FindReferrer returns the published PEOPLE user of accountID, or nil.
	FindReferrer(ctx context.Context, accountID string) (*User, error)
}

type Store struct {
	users    repository.Repository[User]
	accounts repository.Repository[Account]
}

type Params struct {
	fx.In

	DB *gorm.DB
}

func NewStore(p Params) *Store {
	return &Store{
		users:    repository.ProvideStore[User](p.DB),
		accounts: repository.ProvideStore[Account](p.DB),
	}
}

func (s *Store) FindUser(ctx context.Context, userID string) (*User, *Account, error) {
	if userID == "" {
		return nil, nil, nil
	}

	user, err := s.users.FindOne(ctx, &User{ID: userID})
	if err != nil || user == nil {
		return nil, nil, err
	}

	acct, err := s.accounts.FindOne(ctx, &Account{ID: user.AccountID})
	if err != nil {
		return nil, nil, err
	}
	if acct == nil {
		return nil, nil, nil
	}

	return user, acct, nil
}

func (s *Store) FindReferrer(ctx context.Context, accountID string) (*User, error) {
	if accountID == "" {
		return nil, nil
	}

	return s.users.FindOne(ctx, &User{
		AccountID:  accountID,
		Type:       UserTypePeople,
		Visibility: VisibilityPublish,
	})
}

func (s *Store) CreateAccount(ctx context.Context, a *Account) error {
	return s.accounts.Create(ctx, a)
}

func (s *Store) CreateUser(ctx context.Context, u *User) error {
	return s.users.Create(ctx, u)
}
