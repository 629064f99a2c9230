package settlement

import (
	accountsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
)

// Dice outcome colors. Gray is the no-win sentinel: a number mapped to
// gray loses, so an all-losing round is still closable by supplying an
// all-gray mapping with one winning color somewhere in the choice space.
const (
	ColorGray   = "gray"
	ColorBlue   = "blue"
	ColorYellow = "yellow"
)

// Dice numbers run 1..6.
const (
	MinChoice = 1
	MaxChoice = 6
)

// PayoutRule pays PerTen units of Field per full 10 points wagered.
type PayoutRule struct {
	Field  accountsrepo.BalanceField
	PerTen int64
}

var payoutRules = map[string]PayoutRule{
	ColorBlue:   {Field: accountsrepo.FieldCash, PerTen: 5},
	ColorYellow: {Field: accountsrepo.FieldPoints, PerTen: 20},
}

// PayoutFor computes the payout for a bet amount resolving to color.
// ok is false when the color pays nothing.
func PayoutFor(color string, amount int64) (field accountsrepo.BalanceField, payout int64, ok bool) {
	rule, ok := payoutRules[color]
	if !ok {
		return "", 0, false
	}

	return rule.Field, amount / 10 * rule.PerTen, true
}

func knownColor(color string) bool {
	if color == ColorGray {
		return true
	}

	_, ok := payoutRules[color]

	return ok
}
