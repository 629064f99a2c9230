// Package referral settles multi-level referral bonuses when an
// account is approved. The walk climbs at most five ancestors through
// referral codes, credits each distinct ancestor exactly once and
// commits the whole fan-out as one transaction.
package referral

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teDdyMucho/flowe-ledger/internal/infra/pgutils"
	accountsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
	ledgersvc "github.com/teDdyMucho/flowe-ledger/internal/services/ledger"
)

var ErrAlreadyApproved = errors.New("account already approved")

// MaxLevels bounds the ancestor walk.
const MaxLevels = 5

// LevelBonus is one rung of the bonus schedule.
type LevelBonus struct {
	Field  accountsrepo.BalanceField
	Amount int64
}

// DefaultSchedule pays the direct referrer in points and deeper
// ancestors in cash.
var DefaultSchedule = [MaxLevels]LevelBonus{
	{Field: accountsrepo.FieldPoints, Amount: 100},
	{Field: accountsrepo.FieldCash, Amount: 5},
	{Field: accountsrepo.FieldCash, Amount: 5},
	{Field: accountsrepo.FieldCash, Amount: 10},
	{Field: accountsrepo.FieldCash, Amount: 30},
}

type Service struct {
	db       *sql.DB
	accounts accountsrepo.Accounts
	ledger   *ledgersvc.Service
	schedule [MaxLevels]LevelBonus
}

func New(db *sql.DB, accts accountsrepo.Accounts, ledger *ledgersvc.Service) *Service {
	return &Service{
		db:       db,
		accounts: accts,
		ledger:   ledger,
		schedule: DefaultSchedule,
	}
}

// SettleOnApproval marks the account approved and pays the referral
// chain. Approval is rejected for already-approved accounts, which is
// what guarantees the bonuses can never fan out twice for one signup.
func (s *Service) SettleOnApproval(ctx context.Context, accountID string) error {
	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		a, err := s.accounts.Lock(tx, accountID)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		if a.Approved {
			return ErrAlreadyApproved
		}

		err = s.accounts.MarkApproved(tx, a.ID)
		if err != nil {
			return fmt.Errorf("mark approved: %w", err)
		}

		return s.walk(tx, a)
	})
	if err != nil {
		return fmt.Errorf("settle on approval: %w", err)
	}

	return nil
}

// walk climbs the referral chain crediting one bonus per level. The
// visited set guards against a cycle in the chain: a legitimate graph
// is acyclic, so a repeat ancestor means corrupted data and the rest of
// the walk is silently dropped rather than credited twice.
func (s *Service) walk(tx *sql.Tx, approved *accountsrepo.Account) error {
	visited := map[string]bool{approved.ID: true}
	code := approved.ReferralCodeFriend

	for level := 1; level <= MaxLevels && code != ""; level++ {
		ancestor, err := s.accounts.LockByReferralCode(tx, code)
		if err != nil {
			if errors.Is(err, accountsrepo.ErrAccountNotFound) {
				return nil // chain ends
			}

			return fmt.Errorf("resolve level %d: %w", level, err)
		}

		if visited[ancestor.ID] {
			slog.Warn("referral chain cycle detected, truncating walk",
				"account_id", approved.ID,
				"ancestor_id", ancestor.ID,
				"level", level,
			)

			return nil
		}
		visited[ancestor.ID] = true

		bonus := s.schedule[level-1]

		err = s.ledger.Apply(tx, ancestor.ID, bonus.Field, bonus.Amount,
			ledgersvc.ReferralBonusEntry(level),
			fmt.Sprintf("Referral bonus for %s (level %d)", approved.Username, level),
		)
		if err != nil {
			return fmt.Errorf("credit level %d bonus: %w", level, err)
		}

		err = s.accounts.AddReferral(tx, ancestor.ID, approved.ID, level)
		if err != nil {
			return fmt.Errorf("record referral at level %d: %w", level, err)
		}

		code = ancestor.ReferralCodeFriend
	}

	return nil
}
