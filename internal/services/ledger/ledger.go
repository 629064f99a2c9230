// Package ledger implements the ledger store: every balance mutation in
// the system funnels through Apply, which locks the account row, keeps
// both balances non-negative and appends the audit log entry in the
// same transaction.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/teDdyMucho/flowe-ledger/internal/infra/pgutils"
	"github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
	ledgerrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/ledger"
)

var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidField    = errors.New("unknown balance field")
	ErrSelfTransfer    = errors.New("cannot transfer to self")
	ErrAccountDisabled = errors.New("account is disabled")
)

type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	entries  ledgerrepo.Ledger
}

func New(db *sql.DB, accts accounts.Accounts, entries ledgerrepo.Ledger) *Service {
	return &Service{db: db, accounts: accts, entries: entries}
}

// Apply mutates one balance field inside tx and appends the matching
// log entry with post-mutation snapshots of both balances. A negative
// delta that would drive the balance below zero fails with
// ErrInsufficientFunds before any write. Debits from disabled accounts
// are rejected; credits (refunds, bonuses) still land.
func (s *Service) Apply(tx *sql.Tx, accountID string, field accounts.BalanceField, delta int64, entryType, desc string) error {
	if !field.Valid() {
		return ErrInvalidField
	}

	a, err := s.accounts.Lock(tx, accountID)
	if err != nil {
		return fmt.Errorf("lock account: %w", err)
	}

	if delta < 0 && a.Disabled {
		return ErrAccountDisabled
	}

	current := a.Points
	if field == accounts.FieldCash {
		current = a.Cash
	}

	if current+delta < 0 {
		return accounts.ErrInsufficientFunds
	}

	switch {
	case delta > 0:
		err = s.accounts.Credit(tx, accountID, field, delta)
	case delta < 0:
		err = s.accounts.Debit(tx, accountID, field, -delta)
	}
	if err != nil {
		return fmt.Errorf("apply delta: %w", err)
	}

	pointsAfter, cashAfter := a.Points, a.Cash
	if field == accounts.FieldPoints {
		pointsAfter += delta
	} else {
		cashAfter += delta
	}

	err = s.entries.Insert(tx, &ledgerrepo.Entry{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Amount:      delta,
		Field:       field,
		Type:        entryType,
		Description: desc,
		PointsAfter: pointsAfter,
		CashAfter:   cashAfter,
	})
	if err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}

	return nil
}

// AdjustBalance applies a single signed balance change as its own
// atomic unit.
func (s *Service) AdjustBalance(ctx context.Context, accountID string, field accounts.BalanceField, delta int64, entryType, desc string) error {
	if delta == 0 {
		return ErrInvalidAmount
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.Apply(tx, accountID, field, delta, entryType, desc)
	})
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}

	return nil
}

// TransferBetween moves amount between two accounts as one atomic unit:
// either the debit, the credit and both log entries commit, or nothing
// does. Rows are locked in ascending id order to avoid deadlocks
// between crossing transfers.
func (s *Service) TransferBetween(ctx context.Context, fromID, toID string, field accounts.BalanceField, amount int64, debitDesc, creditDesc string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return ErrSelfTransfer
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.TransferTx(tx, fromID, toID, field, amount, debitDesc, creditDesc)
	})
	if err != nil {
		return fmt.Errorf("transfer between: %w", err)
	}

	return nil
}

// TransferTx is the in-transaction body of TransferBetween, reused by
// the approval workflow so an approved transfer and its request status
// update commit together.
func (s *Service) TransferTx(tx *sql.Tx, fromID, toID string, field accounts.BalanceField, amount int64, debitDesc, creditDesc string) error {
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}

	_, err := s.accounts.Lock(tx, first)
	if err != nil {
		return fmt.Errorf("lock %s: %w", first, err)
	}

	_, err = s.accounts.Lock(tx, second)
	if err != nil {
		return fmt.Errorf("lock %s: %w", second, err)
	}

	err = s.Apply(tx, fromID, field, -amount, EntryTransferOut, debitDesc)
	if err != nil {
		return fmt.Errorf("debit sender: %w", err)
	}

	err = s.Apply(tx, toID, field, amount, EntryTransferIn, creditDesc)
	if err != nil {
		return fmt.Errorf("credit recipient: %w", err)
	}

	return nil
}

// History returns the newest limit log entries for an account.
func (s *Service) History(ctx context.Context, accountID string, limit int) ([]ledgerrepo.Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	entries, err := s.entries.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	return entries, nil
}
