package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
)

func (r *accountsRepo) MarkApproved(tx *sql.Tx, id string) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET approved = TRUE
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark approved: %w", err)
	}

	return requireRow(res, accounts.ErrAccountNotFound)
}

func (r *accountsRepo) SetLevel(tx *sql.Tx, id string, level int) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET level = $2
		WHERE id = $1
	`, id, level)
	if err != nil {
		return fmt.Errorf("set level: %w", err)
	}

	return requireRow(res, accounts.ErrAccountNotFound)
}

func (r *accountsRepo) SetDisabled(ctx context.Context, id string, disabled bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET disabled = $2
		WHERE id = $1
	`, id, disabled)
	if err != nil {
		return fmt.Errorf("set disabled: %w", err)
	}

	return requireRow(res, accounts.ErrAccountNotFound)
}

func (r *accountsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM accounts
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	return requireRow(res, accounts.ErrAccountNotFound)
}

func (r *accountsRepo) AddReferral(tx *sql.Tx, referrerID, referredID string, level int) error {
	_, err := tx.Exec(`
		INSERT INTO referrals (referrer_id, referred_id, level)
		VALUES ($1, $2, $3)
		ON CONFLICT (referrer_id, referred_id) DO NOTHING
	`, referrerID, referredID, level)
	if err != nil {
		return fmt.Errorf("add referral: %w", err)
	}

	return nil
}
