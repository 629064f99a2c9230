package investments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/teDdyMucho/flowe-ledger/internal/repos/investments"
)

var _ investments.Investments = (*investmentsRepo)(nil)

type investmentsRepo struct{ db *sql.DB }

func New(db *sql.DB) *investmentsRepo {
	return &investmentsRepo{db: db}
}

const investmentColumns = `
	id, account_id, amount, status, COALESCE(interest_rate, 0),
	release_date, COALESCE(notes, ''), created_at, processed_at
`

func scanInvestment(row interface{ Scan(...any) error }) (*investments.Investment, error) {
	var inv investments.Investment

	err := row.Scan(
		&inv.ID, &inv.AccountID, &inv.Amount, &inv.Status, &inv.InterestRate,
		&inv.ReleaseDate, &inv.Notes, &inv.CreatedAt, &inv.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}

	return &inv, nil
}

// Create inserts the row inside tx so the principal debit and the
// pending record commit together.
func (r *investmentsRepo) Create(ctx context.Context, inv *investments.Investment, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO investments (id, account_id, amount, status)
		VALUES ($1, $2, $3, 'pending')
	`, inv.ID, inv.AccountID, inv.Amount)
	if err != nil {
		return fmt.Errorf("insert investment: %w", err)
	}

	return nil
}

func (r *investmentsRepo) GetByID(ctx context.Context, id string) (*investments.Investment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+investmentColumns+`
		FROM investments
		WHERE id = $1
	`, id)

	inv, err := scanInvestment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, investments.ErrInvestmentNotFound
		}

		return nil, fmt.Errorf("get investment: %w", err)
	}

	return inv, nil
}

func (r *investmentsRepo) ListByAccount(ctx context.Context, accountID string, limit int) ([]investments.Investment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+investmentColumns+`
		FROM investments
		WHERE account_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()

	var out []investments.Investment

	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}

		out = append(out, *inv)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate investments: %w", err)
	}

	return out, nil
}

func (r *investmentsRepo) Lock(tx *sql.Tx, id string) (*investments.Investment, error) {
	row := tx.QueryRow(`
		SELECT `+investmentColumns+`
		FROM investments
		WHERE id = $1
		FOR UPDATE
	`, id)

	inv, err := scanInvestment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, investments.ErrInvestmentNotFound
		}

		return nil, fmt.Errorf("lock investment: %w", err)
	}

	return inv, nil
}

func (r *investmentsRepo) Approve(tx *sql.Tx, id string, rate int64, releaseDate time.Time, notes string) error {
	var notesArg *string
	if notes != "" {
		notesArg = &notes
	}

	_, err := tx.Exec(`
		UPDATE investments
		SET status = 'approved', interest_rate = $2, release_date = $3, notes = $4, processed_at = now()
		WHERE id = $1
	`, id, rate, releaseDate, notesArg)
	if err != nil {
		return fmt.Errorf("approve investment: %w", err)
	}

	return nil
}

func (r *investmentsRepo) SetStatus(tx *sql.Tx, id string, status investments.Status) error {
	_, err := tx.Exec(`
		UPDATE investments
		SET status = $2, processed_at = now()
		WHERE id = $1
	`, id, string(status))
	if err != nil {
		return fmt.Errorf("set investment status: %w", err)
	}

	return nil
}
