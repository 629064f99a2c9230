package requests

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrRequestNotFound  = errors.New("request not found")
	ErrRequestProcessed = errors.New("request already processed")
)

type Type string

const (
	TypeUpgrade       Type = "upgrade"
	TypePointTransfer Type = "point_transfer"
	TypeWithdrawal    Type = "withdrawal"
	TypeLoan          Type = "loan"
)

func (t Type) Valid() bool {
	switch t {
	case TypeUpgrade, TypePointTransfer, TypeWithdrawal, TypeLoan:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Request is the generic approval-workflow record. The workflow owns
// only status and timestamps; the per-type business effects live in the
// approval service.
type Request struct {
	ID          string
	Type        Type
	AccountID   string
	Amount      int64
	RecipientID string // point_transfer only
	TargetLevel int    // upgrade only
	Status      Status
	Reason      string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type Requests interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]Request, error)

	// Lock reads the request FOR UPDATE so concurrent approvals of the
	// same request serialize; the loser then sees a terminal status.
	Lock(tx *sql.Tx, id string) (*Request, error)
	MarkProcessed(tx *sql.Tx, id string, status Status, reason string) error
}
