package rounds

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrRoundNotFound = errors.New("round not found")
	ErrBetNotFound   = errors.New("bet not found")
)

type RoundStatus string

const (
	RoundOpen   RoundStatus = "open"
	RoundClosed RoundStatus = "closed"
)

type BetStatus string

const (
	BetPending   BetStatus = "pending"
	BetWon       BetStatus = "won"
	BetLost      BetStatus = "lost"
	BetCancelled BetStatus = "cancelled"
)

// Outcome maps each dice number to the color it resolved to.
type Outcome map[int]string

type Round struct {
	ID        string
	Status    RoundStatus
	Outcome   Outcome // nil until the round is closed
	CreatedAt time.Time
	ClosedAt  *time.Time
}

type Bet struct {
	ID         string
	RoundID    string
	AccountID  string
	Amount     int64
	Choice     int
	Status     BetStatus
	Payout     int64
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

type Rounds interface {
	CreateRound(ctx context.Context, r *Round) error
	GetRound(ctx context.Context, id string) (*Round, error)

	// LockRound serializes placement, cancellation and resolution of a
	// round against each other.
	LockRound(tx *sql.Tx, id string) (*Round, error)
	CloseRound(tx *sql.Tx, id string, outcome Outcome) error

	InsertBet(tx *sql.Tx, b *Bet) error
	GetBet(ctx context.Context, id string) (*Bet, error)
	LockBet(tx *sql.Tx, id string) (*Bet, error)
	ListPendingBets(tx *sql.Tx, roundID string) ([]Bet, error)
	ListBetsByRound(ctx context.Context, roundID string) ([]Bet, error)
	ResolveBet(tx *sql.Tx, id string, status BetStatus, payout int64) error
}
