// Package transfer validates and moves points between accounts, either
// immediately when the direct-transfer toggle allows it, or through a
// pending request that an administrator approves.
package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	accountsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
	requestsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/requests"
	accountssvc "github.com/teDdyMucho/flowe-ledger/internal/services/accounts"
	ledgersvc "github.com/teDdyMucho/flowe-ledger/internal/services/ledger"
	settingssvc "github.com/teDdyMucho/flowe-ledger/internal/services/settings"
)

type Service struct {
	accounts accountsrepo.Accounts
	ledger   *ledgersvc.Service
	requests requestsrepo.Requests
	settings *settingssvc.Service
}

func New(accts accountsrepo.Accounts, ledger *ledgersvc.Service, reqs requestsrepo.Requests, settings *settingssvc.Service) *Service {
	return &Service{accounts: accts, ledger: ledger, requests: reqs, settings: settings}
}

// Result reports how a transfer request was handled.
type Result struct {
	Applied   bool   // moved immediately via the direct path
	RequestID string // set when a pending request was created instead
}

// Request validates a transfer and either applies it directly (when
// requested and the global toggle allows) or files a pending request.
// The pending path moves no funds and writes no log entries; the
// sufficiency check here is advisory only and is repeated under lock at
// approval time.
func (s *Service) Request(ctx context.Context, senderID, recipientIdentifier string, amount int64, direct bool) (*Result, error) {
	if amount <= 0 {
		return nil, ledgersvc.ErrInvalidAmount
	}

	sender, err := s.accounts.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("resolve sender: %w", err)
	}

	if sender.Disabled {
		return nil, ledgersvc.ErrAccountDisabled
	}

	recipient, err := s.ResolveRecipient(ctx, recipientIdentifier)
	if err != nil {
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}

	if recipient.ID == sender.ID {
		return nil, ledgersvc.ErrSelfTransfer
	}

	if sender.Points < amount {
		return nil, accountsrepo.ErrInsufficientFunds
	}

	if direct && s.settings.DirectTransfersAllowed() {
		err = s.ledger.TransferBetween(ctx, sender.ID, recipient.ID, accountsrepo.FieldPoints, amount,
			fmt.Sprintf("Transfer to %s", recipient.Username),
			fmt.Sprintf("Transfer from %s", sender.Username),
		)
		if err != nil {
			return nil, fmt.Errorf("direct transfer: %w", err)
		}

		return &Result{Applied: true}, nil
	}

	req := &requestsrepo.Request{
		ID:          uuid.NewString(),
		Type:        requestsrepo.TypePointTransfer,
		AccountID:   sender.ID,
		Amount:      amount,
		RecipientID: recipient.ID,
	}

	err = s.requests.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create transfer request: %w", err)
	}

	return &Result{RequestID: req.ID}, nil
}

// ResolveRecipient maps a user-supplied identifier to an account: a
// code-prefixed identifier is looked up as a referral code, anything
// else as a case-insensitive username.
func (s *Service) ResolveRecipient(ctx context.Context, identifier string) (*accountsrepo.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, accountsrepo.ErrAccountNotFound
	}

	if strings.HasPrefix(strings.ToUpper(identifier), accountssvc.ReferralCodePrefix) {
		return s.accounts.FindByReferralCode(ctx, strings.ToUpper(identifier))
	}

	return s.accounts.FindByUsername(ctx, identifier)
}

// ApproveTx applies an approved transfer request inside the approval
// transaction. Balances may have drifted since the request was filed,
// so sufficiency is re-checked against the locked sender row; on
// shortfall it returns a non-empty decline reason and moves nothing.
func (s *Service) ApproveTx(tx *sql.Tx, req *requestsrepo.Request) (declineReason string, err error) {
	first, second := req.AccountID, req.RecipientID
	if second < first {
		first, second = second, first
	}

	locked := make(map[string]*accountsrepo.Account, 2)

	for _, id := range []string{first, second} {
		a, err := s.accounts.Lock(tx, id)
		if err != nil {
			return "", fmt.Errorf("lock %s: %w", id, err)
		}

		locked[id] = a
	}

	sender := locked[req.AccountID]
	recipient := locked[req.RecipientID]

	if sender.Points < req.Amount {
		return "insufficient points at approval time", nil
	}

	err = s.ledger.TransferTx(tx, sender.ID, recipient.ID, accountsrepo.FieldPoints, req.Amount,
		fmt.Sprintf("Transfer to %s (approved)", recipient.Username),
		fmt.Sprintf("Transfer from %s (approved)", sender.Username),
	)
	if err != nil {
		return "", fmt.Errorf("apply approved transfer: %w", err)
	}

	return "", nil
}
