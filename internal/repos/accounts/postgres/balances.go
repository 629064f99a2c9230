package accounts

import (
	"database/sql"
	"fmt"

	"github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
)

func (r *accountsRepo) Credit(tx *sql.Tx, id string, field accounts.BalanceField, amount int64) error {
	col, err := balanceColumn(field)
	if err != nil {
		return err
	}

	res, err := tx.Exec(`
		UPDATE accounts
		SET `+col+` = `+col+` + $2
		WHERE id = $1
	`, id, amount)
	if err != nil {
		return fmt.Errorf("credit %s: %w", col, err)
	}

	return requireRow(res, accounts.ErrAccountNotFound)
}

func (r *accountsRepo) Debit(tx *sql.Tx, id string, field accounts.BalanceField, amount int64) error {
	col, err := balanceColumn(field)
	if err != nil {
		return err
	}

	// The balance guard is in SQL so the non-negative invariant holds
	// even if a caller skips the locked pre-check.
	res, err := tx.Exec(`
		UPDATE accounts
		SET `+col+` = `+col+` - $2
		WHERE id = $1
		  AND `+col+` >= $2
	`, id, amount)
	if err != nil {
		return fmt.Errorf("debit %s: %w", col, err)
	}

	return requireRow(res, accounts.ErrInsufficientFunds)
}

func requireRow(res sql.Result, missing error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return missing
	}

	return nil
}
