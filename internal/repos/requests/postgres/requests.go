package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/teDdyMucho/flowe-ledger/internal/repos/requests"
)

var _ requests.Requests = (*requestsRepo)(nil)

type requestsRepo struct{ db *sql.DB }

func New(db *sql.DB) *requestsRepo {
	return &requestsRepo{db: db}
}

const requestColumns = `
	id, request_type, account_id, amount,
	COALESCE(recipient_id, ''), COALESCE(target_level, 0),
	status, COALESCE(reason, ''), created_at, processed_at
`

func scanRequest(row interface{ Scan(...any) error }) (*requests.Request, error) {
	var r requests.Request

	err := row.Scan(
		&r.ID, &r.Type, &r.AccountID, &r.Amount,
		&r.RecipientID, &r.TargetLevel,
		&r.Status, &r.Reason, &r.CreatedAt, &r.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func (r *requestsRepo) Create(ctx context.Context, req *requests.Request) error {
	var recipient *string
	if req.RecipientID != "" {
		recipient = &req.RecipientID
	}

	var level *int
	if req.TargetLevel != 0 {
		level = &req.TargetLevel
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO requests (id, request_type, account_id, amount, recipient_id, target_level, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
	`, req.ID, string(req.Type), req.AccountID, req.Amount, recipient, level)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}

	return nil
}

func (r *requestsRepo) GetByID(ctx context.Context, id string) (*requests.Request, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+`
		FROM requests
		WHERE id = $1
	`, id)

	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, requests.ErrRequestNotFound
		}

		return nil, fmt.Errorf("get request: %w", err)
	}

	return req, nil
}

func (r *requestsRepo) ListByStatus(ctx context.Context, status requests.Status, limit int) ([]requests.Request, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+requestColumns+`
		FROM requests
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var out []requests.Request

	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}

		out = append(out, *req)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return out, nil
}

func (r *requestsRepo) Lock(tx *sql.Tx, id string) (*requests.Request, error) {
	row := tx.QueryRow(`
		SELECT `+requestColumns+`
		FROM requests
		WHERE id = $1
		FOR UPDATE
	`, id)

	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, requests.ErrRequestNotFound
		}

		return nil, fmt.Errorf("lock request: %w", err)
	}

	return req, nil
}

func (r *requestsRepo) MarkProcessed(tx *sql.Tx, id string, status requests.Status, reason string) error {
	var reasonArg *string
	if reason != "" {
		reasonArg = &reason
	}

	res, err := tx.Exec(`
		UPDATE requests
		SET status = $2, reason = $3, processed_at = now()
		WHERE id = $1
		  AND status = 'pending'
	`, id, string(status), reasonArg)
	if err != nil {
		return fmt.Errorf("mark request processed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return requests.ErrRequestProcessed
	}

	return nil
}
