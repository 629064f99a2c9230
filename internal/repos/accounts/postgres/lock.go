package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
)

func (r *accountsRepo) Lock(tx *sql.Tx, id string) (*accounts.Account, error) {
	row := tx.QueryRow(`
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, id)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("lock account: %w", err)
	}

	return a, nil
}

func (r *accountsRepo) LockByReferralCode(tx *sql.Tx, code string) (*accounts.Account, error) {
	row := tx.QueryRow(`
		SELECT `+accountColumns+`
		FROM accounts
		WHERE referral_code = $1
		FOR UPDATE
	`, code)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("lock account by referral code: %w", err)
	}

	return a, nil
}
