package ledger

import "fmt"

// Entry type tags recorded in the transaction log. The log is the audit
// trail only; balances on the account row are the source of truth.
const (
	EntryTransferOut         = "transfer_out"
	EntryTransferIn          = "transfer_in"
	EntryBetPlaced           = "bet_placed"
	EntryBetWon              = "bet_won"
	EntryBetCancelled        = "bet_cancelled"
	EntryInvestmentCreated   = "investment_created"
	EntryInvestmentApproved  = "investment_approved"
	EntryInvestmentDeclined  = "investment_declined"
	EntryInvestmentCompleted = "investment_completed"
	EntryWithdrawalCompleted = "withdrawal_completed"
	EntryLoanGranted         = "loan_granted"
	EntryUpgradeApproved     = "upgrade_approved"
)

// ReferralBonusEntry returns the level-tagged entry type for a referral
// bonus credit, e.g. "referral_bonus_level_1".
func ReferralBonusEntry(level int) string {
	return fmt.Sprintf("referral_bonus_level_%d", level)
}
