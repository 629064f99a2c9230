// Package investment drives the investment state machine:
// pending -> approved -> completed, or pending -> declined. Every
// transition commits its status change and balance effect together.
package investment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teDdyMucho/flowe-ledger/internal/infra/pgutils"
	accountsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
	investmentsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/investments"
	ledgersvc "github.com/teDdyMucho/flowe-ledger/internal/services/ledger"
)

var (
	ErrNotPending     = errors.New("investment is not pending")
	ErrNotApproved    = errors.New("investment is not approved")
	ErrInvalidRate    = errors.New("interest rate must be positive")
	ErrReleaseNotDue  = errors.New("release date has not passed")
	ErrInvalidRelease = errors.New("release date must be in the future")
)

type Service struct {
	db          *sql.DB
	investments investmentsrepo.Investments
	ledger      *ledgersvc.Service
	now         func() time.Time
}

func New(db *sql.DB, invs investmentsrepo.Investments, ledger *ledgersvc.Service) *Service {
	return &Service{db: db, investments: invs, ledger: ledger, now: time.Now}
}

// Create debits the principal from points and records the pending
// investment atomically.
func (s *Service) Create(ctx context.Context, accountID string, amount int64) (*investmentsrepo.Investment, error) {
	if amount <= 0 {
		return nil, ledgersvc.ErrInvalidAmount
	}

	inv := &investmentsrepo.Investment{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Amount:    amount,
		Status:    investmentsrepo.StatusPending,
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.ledger.Apply(tx, accountID, accountsrepo.FieldPoints, -amount,
			ledgersvc.EntryInvestmentCreated, fmt.Sprintf("Investment of %d points", amount))
		if err != nil {
			return fmt.Errorf("debit principal: %w", err)
		}

		err = s.investments.Create(ctx, inv, tx)
		if err != nil {
			return fmt.Errorf("record investment: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create investment: %w", err)
	}

	return inv, nil
}

// Approve sets the interest rate and release date. No balance moves.
func (s *Service) Approve(ctx context.Context, id string, rate int64, releaseDate time.Time, notes string) error {
	if rate <= 0 {
		return ErrInvalidRate
	}
	if !releaseDate.After(s.now()) {
		return ErrInvalidRelease
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		inv, err := s.investments.Lock(tx, id)
		if err != nil {
			return fmt.Errorf("lock investment: %w", err)
		}

		if inv.Status != investmentsrepo.StatusPending {
			return ErrNotPending
		}

		err = s.investments.Approve(tx, id, rate, releaseDate, notes)
		if err != nil {
			return fmt.Errorf("approve: %w", err)
		}

		err = s.ledger.Apply(tx, inv.AccountID, accountsrepo.FieldPoints, 0,
			ledgersvc.EntryInvestmentApproved,
			fmt.Sprintf("Investment of %d approved at %d%%", inv.Amount, rate))
		if err != nil {
			return fmt.Errorf("log approval: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("approve investment: %w", err)
	}

	return nil
}

// Decline refunds the principal. Only pending investments can be
// declined; an approved one proceeds to completion.
func (s *Service) Decline(ctx context.Context, id, reason string) error {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		inv, err := s.investments.Lock(tx, id)
		if err != nil {
			return fmt.Errorf("lock investment: %w", err)
		}

		if inv.Status != investmentsrepo.StatusPending {
			return ErrNotPending
		}

		err = s.investments.SetStatus(tx, id, investmentsrepo.StatusDeclined)
		if err != nil {
			return fmt.Errorf("mark declined: %w", err)
		}

		desc := fmt.Sprintf("Investment of %d declined, principal refunded", inv.Amount)
		if reason != "" {
			desc += ": " + reason
		}

		err = s.ledger.Apply(tx, inv.AccountID, accountsrepo.FieldPoints, inv.Amount,
			ledgersvc.EntryInvestmentDeclined, desc)
		if err != nil {
			return fmt.Errorf("refund principal: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("decline investment: %w", err)
	}

	return nil
}

// Complete pays out principal plus interest to points. Completion
// before the release date needs the explicit force flag (administrator
// discretion); the date is otherwise enforced here, not by a scheduler.
func (s *Service) Complete(ctx context.Context, id string, force bool) error {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		inv, err := s.investments.Lock(tx, id)
		if err != nil {
			return fmt.Errorf("lock investment: %w", err)
		}

		if inv.Status != investmentsrepo.StatusApproved {
			return ErrNotApproved
		}

		if !force && inv.ReleaseDate != nil && s.now().Before(*inv.ReleaseDate) {
			return ErrReleaseNotDue
		}

		payout := Payout(inv.Amount, inv.InterestRate)
		profit := payout - inv.Amount

		err = s.investments.SetStatus(tx, id, investmentsrepo.StatusCompleted)
		if err != nil {
			return fmt.Errorf("mark completed: %w", err)
		}

		err = s.ledger.Apply(tx, inv.AccountID, accountsrepo.FieldPoints, payout,
			ledgersvc.EntryInvestmentCompleted,
			fmt.Sprintf("Investment of %d completed: %d principal + %d profit", inv.Amount, inv.Amount, profit))
		if err != nil {
			return fmt.Errorf("credit payout: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("complete investment: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*investmentsrepo.Investment, error) {
	inv, err := s.investments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get investment: %w", err)
	}

	return inv, nil
}

func (s *Service) ListByAccount(ctx context.Context, accountID string, limit int) ([]investmentsrepo.Investment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	out, err := s.investments.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}

	return out, nil
}

// Payout is floor(amount * (1 + rate/100)) in integer arithmetic.
func Payout(amount, rate int64) int64 {
	return amount * (100 + rate) / 100
}
