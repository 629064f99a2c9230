package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrReferralCodeTaken = errors.New("referral code already taken")
)

// BalanceField selects which of the two account balances an operation
// targets.
type BalanceField string

const (
	FieldPoints BalanceField = "points"
	FieldCash   BalanceField = "cash"
)

func (f BalanceField) Valid() bool {
	return f == FieldPoints || f == FieldCash
}

type Account struct {
	ID                 string
	Username           string
	Points             int64
	Cash               int64
	ReferralCode       string
	ReferralCodeFriend string // empty when the account was not referred
	Level              int
	Approved           bool
	Disabled           bool
	CreatedAt          time.Time
}

type Accounts interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByReferralCode(ctx context.Context, code string) (*Account, error)

	// Lock reads the full account row FOR UPDATE, serializing every
	// balance mutation on that account within the enclosing tx.
	Lock(tx *sql.Tx, id string) (*Account, error)
	LockByReferralCode(tx *sql.Tx, code string) (*Account, error)

	Credit(tx *sql.Tx, id string, field BalanceField, amount int64) error
	Debit(tx *sql.Tx, id string, field BalanceField, amount int64) error

	MarkApproved(tx *sql.Tx, id string) error
	SetLevel(tx *sql.Tx, id string, level int) error
	SetDisabled(ctx context.Context, id string, disabled bool) error
	AddReferral(tx *sql.Tx, referrerID, referredID string, level int) error

	// Delete removes the account and its referral links. Ledger entries
	// referencing the account are kept as history.
	Delete(ctx context.Context, id string) error
}
