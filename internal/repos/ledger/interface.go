package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
)

// Entry is one immutable row of the transaction log. Entries are only
// ever inserted; no update or delete path exists.
type Entry struct {
	ID          string
	AccountID   string
	Amount      int64 // negative = debit
	Field       accounts.BalanceField
	Type        string
	Description string
	PointsAfter int64
	CashAfter   int64
	CreatedAt   time.Time
}

type Ledger interface {
	Insert(tx *sql.Tx, e *Entry) error
	ListByAccount(ctx context.Context, accountID string, limit int) ([]Entry, error)
}
