package investments

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrInvestmentNotFound = errors.New("investment not found")

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
	StatusDeclined  Status = "declined"
)

type Investment struct {
	ID           string
	AccountID    string
	Amount       int64
	Status       Status
	InterestRate int64 // percent, set on approval
	ReleaseDate  *time.Time
	Notes        string
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}

type Investments interface {
	Create(ctx context.Context, inv *Investment, tx *sql.Tx) error
	GetByID(ctx context.Context, id string) (*Investment, error)
	ListByAccount(ctx context.Context, accountID string, limit int) ([]Investment, error)

	Lock(tx *sql.Tx, id string) (*Investment, error)
	Approve(tx *sql.Tx, id string, rate int64, releaseDate time.Time, notes string) error
	SetStatus(tx *sql.Tx, id string, status Status) error
}
