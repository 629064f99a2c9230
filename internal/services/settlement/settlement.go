// Package settlement runs dice rounds: bet placement, cancellation and
// the atomic round resolution that pays every bet against a single
// admin-supplied outcome mapping.
package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/teDdyMucho/flowe-ledger/internal/infra/pgutils"
	accountsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
	roundsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/rounds"
	ledgersvc "github.com/teDdyMucho/flowe-ledger/internal/services/ledger"
)

var (
	ErrRoundClosed      = errors.New("round already closed")
	ErrInvalidChoice    = errors.New("choice out of range")
	ErrInvalidOutcome   = errors.New("outcome mapping is invalid")
	ErrNoWinningOutcome = errors.New("outcome must name at least one winning color")
	ErrBetNotPending    = errors.New("bet is not pending")
)

type Service struct {
	db     *sql.DB
	rounds roundsrepo.Rounds
	ledger *ledgersvc.Service
}

func New(db *sql.DB, rounds roundsrepo.Rounds, ledger *ledgersvc.Service) *Service {
	return &Service{db: db, rounds: rounds, ledger: ledger}
}

func (s *Service) CreateRound(ctx context.Context) (*roundsrepo.Round, error) {
	round := &roundsrepo.Round{ID: uuid.NewString(), Status: roundsrepo.RoundOpen}

	err := s.rounds.CreateRound(ctx, round)
	if err != nil {
		return nil, fmt.Errorf("create round: %w", err)
	}

	return round, nil
}

func (s *Service) GetRound(ctx context.Context, id string) (*roundsrepo.Round, []roundsrepo.Bet, error) {
	round, err := s.rounds.GetRound(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("get round: %w", err)
	}

	bets, err := s.rounds.ListBetsByRound(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list round bets: %w", err)
	}

	return round, bets, nil
}

// PlaceBet debits the wager and records the pending bet in one
// transaction. The round row lock serializes placement against a
// concurrent resolution, so a bet can never land on a closed round.
func (s *Service) PlaceBet(ctx context.Context, roundID, accountID string, amount int64, choice int) (*roundsrepo.Bet, error) {
	if amount <= 0 {
		return nil, ledgersvc.ErrInvalidAmount
	}
	if choice < MinChoice || choice > MaxChoice {
		return nil, ErrInvalidChoice
	}

	bet := &roundsrepo.Bet{
		ID:        uuid.NewString(),
		RoundID:   roundID,
		AccountID: accountID,
		Amount:    amount,
		Choice:    choice,
		Status:    roundsrepo.BetPending,
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		round, err := s.rounds.LockRound(tx, roundID)
		if err != nil {
			return fmt.Errorf("lock round: %w", err)
		}

		if round.Status != roundsrepo.RoundOpen {
			return ErrRoundClosed
		}

		err = s.ledger.Apply(tx, accountID, accountsrepo.FieldPoints, -amount,
			ledgersvc.EntryBetPlaced, fmt.Sprintf("Dice bet on %d", choice))
		if err != nil {
			return fmt.Errorf("debit wager: %w", err)
		}

		err = s.rounds.InsertBet(tx, bet)
		if err != nil {
			return fmt.Errorf("insert bet: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("place bet: %w", err)
	}

	return bet, nil
}

// CancelBet voids a pending bet on a still-open round and refunds the
// wager in full.
func (s *Service) CancelBet(ctx context.Context, betID string) error {
	bet, err := s.rounds.GetBet(ctx, betID)
	if err != nil {
		return fmt.Errorf("get bet: %w", err)
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		// Round before bet, same order as resolution.
		round, err := s.rounds.LockRound(tx, bet.RoundID)
		if err != nil {
			return fmt.Errorf("lock round: %w", err)
		}

		if round.Status != roundsrepo.RoundOpen {
			return ErrRoundClosed
		}

		locked, err := s.rounds.LockBet(tx, betID)
		if err != nil {
			return fmt.Errorf("lock bet: %w", err)
		}

		if locked.Status != roundsrepo.BetPending {
			return ErrBetNotPending
		}

		err = s.rounds.ResolveBet(tx, betID, roundsrepo.BetCancelled, 0)
		if err != nil {
			return fmt.Errorf("mark cancelled: %w", err)
		}

		err = s.ledger.Apply(tx, locked.AccountID, accountsrepo.FieldPoints, locked.Amount,
			ledgersvc.EntryBetCancelled, "Dice bet cancelled, wager refunded")
		if err != nil {
			return fmt.Errorf("refund wager: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("cancel bet: %w", err)
	}

	return nil
}

// Summary reports what a resolution did.
type Summary struct {
	Resolved     int
	Won          int
	Lost         int
	PointsPayout int64
	CashPayout   int64
}

// ResolveRound settles every pending bet against the outcome mapping
// and closes the round, all in one transaction: bet statuses, winner
// credits with their log entries, and the round closure commit together
// or not at all. A closed round rejects re-resolution.
func (s *Service) ResolveRound(ctx context.Context, roundID string, outcome roundsrepo.Outcome) (*Summary, error) {
	err := validateOutcome(outcome)
	if err != nil {
		return nil, err
	}

	var sum Summary

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		round, err := s.rounds.LockRound(tx, roundID)
		if err != nil {
			return fmt.Errorf("lock round: %w", err)
		}

		if round.Status != roundsrepo.RoundOpen {
			return ErrRoundClosed
		}

		bets, err := s.rounds.ListPendingBets(tx, roundID)
		if err != nil {
			return fmt.Errorf("list pending bets: %w", err)
		}

		for i := range bets {
			err = s.resolveBet(tx, &bets[i], outcome, &sum)
			if err != nil {
				return err
			}
		}

		err = s.rounds.CloseRound(tx, roundID, outcome)
		if err != nil {
			return fmt.Errorf("close round: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve round: %w", err)
	}

	return &sum, nil
}

func (s *Service) resolveBet(tx *sql.Tx, bet *roundsrepo.Bet, outcome roundsrepo.Outcome, sum *Summary) error {
	sum.Resolved++

	color, mapped := outcome[bet.Choice]
	if !mapped {
		color = ColorGray
	}

	field, payout, won := PayoutFor(color, bet.Amount)
	if !won {
		sum.Lost++

		err := s.rounds.ResolveBet(tx, bet.ID, roundsrepo.BetLost, 0)
		if err != nil {
			return fmt.Errorf("mark bet %s lost: %w", bet.ID, err)
		}

		return nil
	}

	err := s.rounds.ResolveBet(tx, bet.ID, roundsrepo.BetWon, payout)
	if err != nil {
		return fmt.Errorf("mark bet %s won: %w", bet.ID, err)
	}

	// A sub-10 wager on a winning color rounds down to a zero payout;
	// the bet still counts as won, there is just nothing to credit.
	if payout > 0 {
		err = s.ledger.Apply(tx, bet.AccountID, field, payout,
			ledgersvc.EntryBetWon, fmt.Sprintf("Dice bet on %d won (%s)", bet.Choice, color))
		if err != nil {
			return fmt.Errorf("credit bet %s payout: %w", bet.ID, err)
		}
	}

	sum.Won++
	if field == accountsrepo.FieldPoints {
		sum.PointsPayout += payout
	} else {
		sum.CashPayout += payout
	}

	return nil
}

func validateOutcome(outcome roundsrepo.Outcome) error {
	if len(outcome) == 0 {
		return ErrInvalidOutcome
	}

	winning := false

	for number, color := range outcome {
		if number < MinChoice || number > MaxChoice {
			return ErrInvalidOutcome
		}
		if !knownColor(color) {
			return ErrInvalidOutcome
		}
		if color != ColorGray {
			winning = true
		}
	}

	if !winning {
		return ErrNoWinningOutcome
	}

	return nil
}
