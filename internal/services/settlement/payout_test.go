package settlement

import (
	"errors"
	"testing"

	accountsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
	roundsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/rounds"
)

func TestPayoutFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		color      string
		amount     int64
		wantField  accountsrepo.BalanceField
		wantPayout int64
		wantOK     bool
	}{
		{name: "blue pays cash per ten", color: ColorBlue, amount: 100, wantField: accountsrepo.FieldCash, wantPayout: 50, wantOK: true},
		{name: "yellow pays points per ten", color: ColorYellow, amount: 100, wantField: accountsrepo.FieldPoints, wantPayout: 200, wantOK: true},
		{name: "partial tens round down", color: ColorBlue, amount: 39, wantField: accountsrepo.FieldCash, wantPayout: 15, wantOK: true},
		{name: "sub-ten wager wins nothing", color: ColorYellow, amount: 9, wantField: accountsrepo.FieldPoints, wantPayout: 0, wantOK: true},
		{name: "gray loses", color: ColorGray, amount: 100, wantOK: false},
		{name: "unknown color loses", color: "purple", amount: 100, wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			field, payout, ok := PayoutFor(tt.color, tt.amount)
			if ok != tt.wantOK {
				t.Fatalf("ok: want %v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if field != tt.wantField || payout != tt.wantPayout {
				t.Fatalf("want %s/%d, got %s/%d", tt.wantField, tt.wantPayout, field, payout)
			}
		})
	}
}

func TestValidateOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome roundsrepo.Outcome
		wantErr error
	}{
		{name: "valid mixed outcome", outcome: roundsrepo.Outcome{1: ColorBlue, 2: ColorGray, 3: ColorYellow}},
		{name: "single winning color", outcome: roundsrepo.Outcome{4: ColorBlue}},
		{name: "empty", outcome: roundsrepo.Outcome{}, wantErr: ErrInvalidOutcome},
		{name: "number out of range", outcome: roundsrepo.Outcome{7: ColorBlue}, wantErr: ErrInvalidOutcome},
		{name: "unknown color", outcome: roundsrepo.Outcome{1: "purple"}, wantErr: ErrInvalidOutcome},
		{name: "all gray", outcome: roundsrepo.Outcome{1: ColorGray, 2: ColorGray}, wantErr: ErrNoWinningOutcome},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateOutcome(tt.outcome)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
		})
	}
}
