package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/teDdyMucho/flowe-ledger/internal/repos/ledger"
)

var _ ledger.Ledger = (*ledgerRepo)(nil)

type ledgerRepo struct{ db *sql.DB }

func New(db *sql.DB) *ledgerRepo {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) Insert(tx *sql.Tx, e *ledger.Entry) error {
	_, err := tx.Exec(`
		INSERT INTO ledger_entries (id, account_id, amount, balance_field, entry_type, description, points_after, cash_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.AccountID, e.Amount, string(e.Field), e.Type, e.Description, e.PointsAfter, e.CashAfter)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	return nil
}

func (r *ledgerRepo) ListByAccount(ctx context.Context, accountID string, limit int) ([]ledger.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, amount, balance_field, entry_type, description, points_after, cash_after, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry

	for rows.Next() {
		var e ledger.Entry

		err = rows.Scan(
			&e.ID, &e.AccountID, &e.Amount, &e.Field, &e.Type,
			&e.Description, &e.PointsAfter, &e.CashAfter, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}

		entries = append(entries, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}

	return entries, nil
}
