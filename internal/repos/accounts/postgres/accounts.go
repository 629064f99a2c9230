package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/teDdyMucho/flowe-ledger/internal/infra/pgutils"
	"github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
)

func (r *accountsRepo) Create(ctx context.Context, a *accounts.Account) error {
	var friend *string
	if a.ReferralCodeFriend != "" {
		friend = &a.ReferralCodeFriend
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, username, points, cash, referral_code, referral_code_friend, level, approved, disabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, a.ID, a.Username, a.Points, a.Cash, a.ReferralCode, friend, a.Level, a.Approved, a.Disabled)
	if err != nil {
		if pgutils.IsUniqueViolation(err, "accounts_username_lower_key") {
			return accounts.ErrUsernameTaken
		}
		if pgutils.IsUniqueViolation(err, "accounts_referral_code_key") {
			return accounts.ErrReferralCodeTaken
		}

		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (*accounts.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("get account: %w", err)
	}

	return a, nil
}

func (r *accountsRepo) FindByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE lower(username) = lower($1)
	`, username)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("find account by username: %w", err)
	}

	return a, nil
}

func (r *accountsRepo) FindByReferralCode(ctx context.Context, code string) (*accounts.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE referral_code = $1
	`, code)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("find account by referral code: %w", err)
	}

	return a, nil
}
