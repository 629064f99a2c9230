// Package accounts owns signup and account administration. Referral
// bonuses are not paid here; they trigger once, at approval, in the
// referral service.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	accountsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
)

// ReferralCodePrefix distinguishes referral codes from usernames when a
// transfer recipient is given as a single identifier.
const ReferralCodePrefix = "FBT"

var (
	ErrInvalidUsername = errors.New("invalid username")
)

type Service struct {
	accounts accountsrepo.Accounts
}

func New(accts accountsrepo.Accounts) *Service {
	return &Service{accounts: accts}
}

// Signup creates an account with zero balances. referrerCode is the
// code of whoever referred the account, or empty; it is stored as-is
// and only resolved when the account is approved.
func (s *Service) Signup(ctx context.Context, username, referrerCode string) (*accountsrepo.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > 64 {
		return nil, ErrInvalidUsername
	}
	// A username carrying the code prefix would be unreachable as a
	// transfer recipient, so reject it up front.
	if strings.HasPrefix(strings.ToUpper(username), ReferralCodePrefix) {
		return nil, ErrInvalidUsername
	}

	a := &accountsrepo.Account{
		ID:                 uuid.NewString(),
		Username:           username,
		ReferralCodeFriend: strings.TrimSpace(referrerCode),
	}

	// Codes are random, so retry a few times on the rare collision.
	const maxAttempts = 5
	for attempt := 1; ; attempt++ {
		a.ReferralCode = newReferralCode()

		err := s.accounts.Create(ctx, a)
		if err == nil {
			return a, nil
		}

		if errors.Is(err, accountsrepo.ErrReferralCodeTaken) && attempt < maxAttempts {
			continue
		}

		return nil, fmt.Errorf("create account: %w", err)
	}
}

func (s *Service) Get(ctx context.Context, id string) (*accountsrepo.Account, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return a, nil
}

func (s *Service) SetDisabled(ctx context.Context, id string, disabled bool) error {
	err := s.accounts.SetDisabled(ctx, id, disabled)
	if err != nil {
		return fmt.Errorf("set disabled: %w", err)
	}

	return nil
}

// Delete hard-deletes an account and its referral links. Ledger
// entries for the account are kept as history.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.accounts.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	return nil
}

func newReferralCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))

	return ReferralCodePrefix + raw[:8]
}
