package accounts

import (
	"database/sql"
	"fmt"

	"github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

type accountsRepo struct{ db *sql.DB }

func New(db *sql.DB) *accountsRepo {
	return &accountsRepo{db: db}
}

const accountColumns = `
	id, username, points, cash, referral_code,
	COALESCE(referral_code_friend, ''), level, approved, disabled, created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*accounts.Account, error) {
	var a accounts.Account

	err := row.Scan(
		&a.ID, &a.Username, &a.Points, &a.Cash, &a.ReferralCode,
		&a.ReferralCodeFriend, &a.Level, &a.Approved, &a.Disabled, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func balanceColumn(field accounts.BalanceField) (string, error) {
	switch field {
	case accounts.FieldPoints:
		return "points", nil
	case accounts.FieldCash:
		return "cash", nil
	default:
		return "", fmt.Errorf("unknown balance field: %q", field)
	}
}
