// Package approval is the administrator sign-off workflow. It owns the
// pending -> approved|declined status machine; the per-type business
// effect runs inside the same transaction as the status change, so a
// request can never be approved without its effect or vice versa.
package approval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/teDdyMucho/flowe-ledger/internal/infra/pgutils"
	accountsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
	requestsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/requests"
	ledgersvc "github.com/teDdyMucho/flowe-ledger/internal/services/ledger"
	transfersvc "github.com/teDdyMucho/flowe-ledger/internal/services/transfer"
)

var (
	ErrUnknownType    = errors.New("unknown request type")
	ErrInvalidRequest = errors.New("invalid request parameters")
)

type Service struct {
	db        *sql.DB
	requests  requestsrepo.Requests
	accounts  accountsrepo.Accounts
	ledger    *ledgersvc.Service
	transfers *transfersvc.Service
}

func New(db *sql.DB, reqs requestsrepo.Requests, accts accountsrepo.Accounts, ledger *ledgersvc.Service, transfers *transfersvc.Service) *Service {
	return &Service{db: db, requests: reqs, accounts: accts, ledger: ledger, transfers: transfers}
}

// Submit files a pending withdrawal, loan or upgrade request. Transfer
// requests are filed by the transfer engine. No funds move here: a
// pending request holds no escrow, so the amount stays spendable until
// approval, where sufficiency is re-checked under lock.
func (s *Service) Submit(ctx context.Context, accountID string, typ requestsrepo.Type, amount int64, targetLevel int) (*requestsrepo.Request, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	if account.Disabled {
		return nil, ledgersvc.ErrAccountDisabled
	}

	switch typ {
	case requestsrepo.TypeWithdrawal, requestsrepo.TypeLoan:
		if amount <= 0 {
			return nil, ledgersvc.ErrInvalidAmount
		}
	case requestsrepo.TypeUpgrade:
		if targetLevel <= account.Level {
			return nil, ErrInvalidRequest
		}
	case requestsrepo.TypePointTransfer:
		return nil, fmt.Errorf("%w: transfers are filed via the transfer engine", ErrInvalidRequest)
	default:
		return nil, ErrUnknownType
	}

	req := &requestsrepo.Request{
		ID:          uuid.NewString(),
		Type:        typ,
		AccountID:   accountID,
		Amount:      amount,
		TargetLevel: targetLevel,
	}

	err = s.requests.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return req, nil
}

// Approve applies the request's effect and marks it approved. Checks
// that depend on the balance run under the account row lock at approval
// time; a shortfall auto-declines the request with a recorded reason
// instead of failing the call.
func (s *Service) Approve(ctx context.Context, requestID string) (*requestsrepo.Request, error) {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		req, err := s.requests.Lock(tx, requestID)
		if err != nil {
			return fmt.Errorf("lock request: %w", err)
		}

		if req.Status != requestsrepo.StatusPending {
			return requestsrepo.ErrRequestProcessed
		}

		declineReason, err := s.applyEffect(tx, req)
		if err != nil {
			return err
		}

		if declineReason != "" {
			slog.Info("request auto-declined",
				"request_id", req.ID,
				"request_type", string(req.Type),
				"reason", declineReason,
			)

			return s.requests.MarkProcessed(tx, req.ID, requestsrepo.StatusDeclined, declineReason)
		}

		return s.requests.MarkProcessed(tx, req.ID, requestsrepo.StatusApproved, "")
	})
	if err != nil {
		return nil, fmt.Errorf("approve request: %w", err)
	}

	return s.Get(ctx, requestID)
}

func (s *Service) applyEffect(tx *sql.Tx, req *requestsrepo.Request) (declineReason string, err error) {
	switch req.Type {
	case requestsrepo.TypePointTransfer:
		return s.transfers.ApproveTx(tx, req)

	case requestsrepo.TypeWithdrawal:
		account, err := s.accounts.Lock(tx, req.AccountID)
		if err != nil {
			return "", fmt.Errorf("lock account: %w", err)
		}

		if account.Disabled {
			return "account is disabled", nil
		}
		if account.Cash < req.Amount {
			return "insufficient cash at approval time", nil
		}

		err = s.ledger.Apply(tx, req.AccountID, accountsrepo.FieldCash, -req.Amount,
			ledgersvc.EntryWithdrawalCompleted, fmt.Sprintf("Withdrawal of %d cash", req.Amount))
		if err != nil {
			return "", fmt.Errorf("debit withdrawal: %w", err)
		}

		return "", nil

	case requestsrepo.TypeLoan:
		account, err := s.accounts.Lock(tx, req.AccountID)
		if err != nil {
			return "", fmt.Errorf("lock account: %w", err)
		}

		if account.Disabled {
			return "account is disabled", nil
		}

		err = s.ledger.Apply(tx, req.AccountID, accountsrepo.FieldPoints, req.Amount,
			ledgersvc.EntryLoanGranted, fmt.Sprintf("Loan of %d points granted", req.Amount))
		if err != nil {
			return "", fmt.Errorf("credit loan: %w", err)
		}

		return "", nil

	case requestsrepo.TypeUpgrade:
		account, err := s.accounts.Lock(tx, req.AccountID)
		if err != nil {
			return "", fmt.Errorf("lock account: %w", err)
		}

		if account.Disabled {
			return "account is disabled", nil
		}
		if req.TargetLevel <= account.Level {
			return fmt.Sprintf("account already at level %d", account.Level), nil
		}

		err = s.accounts.SetLevel(tx, req.AccountID, req.TargetLevel)
		if err != nil {
			return "", fmt.Errorf("set level: %w", err)
		}

		err = s.ledger.Apply(tx, req.AccountID, accountsrepo.FieldPoints, 0,
			ledgersvc.EntryUpgradeApproved, fmt.Sprintf("Upgraded to level %d", req.TargetLevel))
		if err != nil {
			return "", fmt.Errorf("log upgrade: %w", err)
		}

		return "", nil

	default:
		return "", ErrUnknownType
	}
}

// Decline marks a pending request declined. None of the workflow types
// pre-debit funds, so there is nothing to compensate.
func (s *Service) Decline(ctx context.Context, requestID, reason string) (*requestsrepo.Request, error) {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		req, err := s.requests.Lock(tx, requestID)
		if err != nil {
			return fmt.Errorf("lock request: %w", err)
		}

		if req.Status != requestsrepo.StatusPending {
			return requestsrepo.ErrRequestProcessed
		}

		return s.requests.MarkProcessed(tx, req.ID, requestsrepo.StatusDeclined, reason)
	})
	if err != nil {
		return nil, fmt.Errorf("decline request: %w", err)
	}

	return s.Get(ctx, requestID)
}

func (s *Service) Get(ctx context.Context, requestID string) (*requestsrepo.Request, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}

	return req, nil
}

func (s *Service) List(ctx context.Context, status requestsrepo.Status, limit int) ([]requestsrepo.Request, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	out, err := s.requests.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}

	return out, nil
}
