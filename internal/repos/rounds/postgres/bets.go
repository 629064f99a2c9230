package rounds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/teDdyMucho/flowe-ledger/internal/repos/rounds"
)

const betColumns = `id, round_id, account_id, amount, choice, status, payout, created_at, resolved_at`

func scanBet(row interface{ Scan(...any) error }) (*rounds.Bet, error) {
	var b rounds.Bet

	err := row.Scan(
		&b.ID, &b.RoundID, &b.AccountID, &b.Amount, &b.Choice,
		&b.Status, &b.Payout, &b.CreatedAt, &b.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *roundsRepo) InsertBet(tx *sql.Tx, b *rounds.Bet) error {
	_, err := tx.Exec(`
		INSERT INTO dice_bets (id, round_id, account_id, amount, choice, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
	`, b.ID, b.RoundID, b.AccountID, b.Amount, b.Choice)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}

	return nil
}

func (r *roundsRepo) GetBet(ctx context.Context, id string) (*rounds.Bet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+betColumns+`
		FROM dice_bets
		WHERE id = $1
	`, id)

	b, err := scanBet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rounds.ErrBetNotFound
		}

		return nil, fmt.Errorf("get bet: %w", err)
	}

	return b, nil
}

func (r *roundsRepo) LockBet(tx *sql.Tx, id string) (*rounds.Bet, error) {
	row := tx.QueryRow(`
		SELECT `+betColumns+`
		FROM dice_bets
		WHERE id = $1
		FOR UPDATE
	`, id)

	b, err := scanBet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rounds.ErrBetNotFound
		}

		return nil, fmt.Errorf("lock bet: %w", err)
	}

	return b, nil
}

// ListPendingBets reads inside the resolving tx; the round row lock is
// what keeps the pending set stable, so no per-bet locks are taken.
func (r *roundsRepo) ListPendingBets(tx *sql.Tx, roundID string) ([]rounds.Bet, error) {
	rows, err := tx.Query(`
		SELECT `+betColumns+`
		FROM dice_bets
		WHERE round_id = $1
		  AND status = 'pending'
		ORDER BY created_at, id
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("list pending bets: %w", err)
	}
	defer rows.Close()

	return collectBets(rows)
}

func (r *roundsRepo) ListBetsByRound(ctx context.Context, roundID string) ([]rounds.Bet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+betColumns+`
		FROM dice_bets
		WHERE round_id = $1
		ORDER BY created_at, id
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	defer rows.Close()

	return collectBets(rows)
}

func collectBets(rows *sql.Rows) ([]rounds.Bet, error) {
	var out []rounds.Bet

	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}

		out = append(out, *b)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate bets: %w", err)
	}

	return out, nil
}

func (r *roundsRepo) ResolveBet(tx *sql.Tx, id string, status rounds.BetStatus, payout int64) error {
	res, err := tx.Exec(`
		UPDATE dice_bets
		SET status = $2, payout = $3, resolved_at = now()
		WHERE id = $1
		  AND status = 'pending'
	`, id, string(status), payout)
	if err != nil {
		return fmt.Errorf("resolve bet: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return rounds.ErrBetNotFound
	}

	return nil
}
