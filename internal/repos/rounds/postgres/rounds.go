package rounds

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/teDdyMucho/flowe-ledger/internal/repos/rounds"
)

var _ rounds.Rounds = (*roundsRepo)(nil)

type roundsRepo struct{ db *sql.DB }

func New(db *sql.DB) *roundsRepo {
	return &roundsRepo{db: db}
}

func scanRound(row interface{ Scan(...any) error }) (*rounds.Round, error) {
	var (
		r       rounds.Round
		outcome []byte
	)

	err := row.Scan(&r.ID, &r.Status, &outcome, &r.CreatedAt, &r.ClosedAt)
	if err != nil {
		return nil, err
	}

	if len(outcome) > 0 {
		err = json.Unmarshal(outcome, &r.Outcome)
		if err != nil {
			return nil, fmt.Errorf("decode outcome: %w", err)
		}
	}

	return &r, nil
}

func (r *roundsRepo) CreateRound(ctx context.Context, round *rounds.Round) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dice_rounds (id, status)
		VALUES ($1, 'open')
	`, round.ID)
	if err != nil {
		return fmt.Errorf("insert round: %w", err)
	}

	return nil
}

func (r *roundsRepo) GetRound(ctx context.Context, id string) (*rounds.Round, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, status, outcome, created_at, closed_at
		FROM dice_rounds
		WHERE id = $1
	`, id)

	round, err := scanRound(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rounds.ErrRoundNotFound
		}

		return nil, fmt.Errorf("get round: %w", err)
	}

	return round, nil
}

func (r *roundsRepo) LockRound(tx *sql.Tx, id string) (*rounds.Round, error) {
	row := tx.QueryRow(`
		SELECT id, status, outcome, created_at, closed_at
		FROM dice_rounds
		WHERE id = $1
		FOR UPDATE
	`, id)

	round, err := scanRound(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rounds.ErrRoundNotFound
		}

		return nil, fmt.Errorf("lock round: %w", err)
	}

	return round, nil
}

func (r *roundsRepo) CloseRound(tx *sql.Tx, id string, outcome rounds.Outcome) error {
	raw, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE dice_rounds
		SET status = 'closed', outcome = $2, closed_at = now()
		WHERE id = $1
	`, id, raw)
	if err != nil {
		return fmt.Errorf("close round: %w", err)
	}

	return nil
}
