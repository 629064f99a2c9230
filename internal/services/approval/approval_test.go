package approval

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/teDdyMucho/flowe-ledger/internal/infra/pgtestutil"
	accountspg "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts/postgres"
	ledgerpg "github.com/teDdyMucho/flowe-ledger/internal/repos/ledger/postgres"
	requestsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/requests"
	requestspg "github.com/teDdyMucho/flowe-ledger/internal/repos/requests/postgres"
	settingspg "github.com/teDdyMucho/flowe-ledger/internal/repos/settings/postgres"
	ledgersvc "github.com/teDdyMucho/flowe-ledger/internal/services/ledger"
	settingssvc "github.com/teDdyMucho/flowe-ledger/internal/services/settings"
	transfersvc "github.com/teDdyMucho/flowe-ledger/internal/services/transfer"
)

type fixture struct {
	svc       *Service
	transfers *transfersvc.Service
	db        *sql.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	accts := accountspg.New(db)
	reqs := requestspg.New(db)
	ledger := ledgersvc.New(db, accts, ledgerpg.New(db))
	settings := settingssvc.New(settingspg.New(db))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := settings.Load(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}

	transfers := transfersvc.New(accts, ledger, reqs, settings)

	return &fixture{
		svc:       New(db, reqs, accts, ledger, transfers),
		transfers: transfers,
		db:        db,
	}
}

func (f *fixture) seedAccount(t *testing.T, id, username, code string, points, cash int64) {
	t.Helper()

	_, err := f.db.Exec(`
		INSERT INTO accounts (id, username, points, cash, referral_code)
		VALUES ($1, $2, $3, $4, $5)
	`, id, username, points, cash, code)
	if err != nil {
		t.Fatalf("seed account %s: %v", id, err)
	}
}

func (f *fixture) balances(t *testing.T, id string) (points, cash int64) {
	t.Helper()

	err := f.db.QueryRow(`SELECT points, cash FROM accounts WHERE id = $1`, id).Scan(&points, &cash)
	if err != nil {
		t.Fatalf("read balances for %s: %v", id, err)
	}

	return points, cash
}

func TestWithdrawal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedAccount(t, "u1", "alice", "FBT100", 0, 80)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := f.svc.Submit(ctx, "u1", requestsrepo.TypeWithdrawal, 50, 0)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// No escrow: the cash stays spendable until approval.
	if _, cash := f.balances(t, "u1"); cash != 80 {
		t.Fatalf("submit must not move funds, got %d cash", cash)
	}

	got, err := f.svc.Approve(ctx, req.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != requestsrepo.StatusApproved {
		t.Fatalf("want approved, got %s (%s)", got.Status, got.Reason)
	}

	if _, cash := f.balances(t, "u1"); cash != 30 {
		t.Fatalf("want 30 cash after withdrawal, got %d", cash)
	}

	t.Run("double approve rejected", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, req.ID)
		if !errors.Is(err, requestsrepo.ErrRequestProcessed) {
			t.Fatalf("want ErrRequestProcessed, got %v", err)
		}
	})
}

func TestWithdrawal_ShortfallAutoDeclines(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedAccount(t, "u1", "alice", "FBT100", 0, 80)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := f.svc.Submit(ctx, "u1", requestsrepo.TypeWithdrawal, 50, 0)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The balance drifts below the requested amount before approval.
	_, err = f.db.Exec(`UPDATE accounts SET cash = 40 WHERE id = 'u1'`)
	if err != nil {
		t.Fatalf("drain cash: %v", err)
	}

	got, err := f.svc.Approve(ctx, req.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != requestsrepo.StatusDeclined || got.Reason == "" {
		t.Fatalf("want auto-decline with reason, got %s (%q)", got.Status, got.Reason)
	}

	if _, cash := f.balances(t, "u1"); cash != 40 {
		t.Fatalf("auto-decline must move nothing, got %d cash", cash)
	}
}

func TestLoan(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedAccount(t, "u1", "alice", "FBT100", 10, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := f.svc.Submit(ctx, "u1", requestsrepo.TypeLoan, 500, 0)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	got, err := f.svc.Approve(ctx, req.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != requestsrepo.StatusApproved {
		t.Fatalf("want approved, got %s (%s)", got.Status, got.Reason)
	}

	if points, _ := f.balances(t, "u1"); points != 510 {
		t.Fatalf("want 510 points after loan, got %d", points)
	}

	var entryType string

	err = f.db.QueryRow(`SELECT entry_type FROM ledger_entries WHERE account_id = 'u1'`).Scan(&entryType)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if entryType != ledgersvc.EntryLoanGranted {
		t.Fatalf("want %s entry, got %s", ledgersvc.EntryLoanGranted, entryType)
	}
}

func TestUpgrade(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedAccount(t, "u1", "alice", "FBT100", 0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := f.svc.Submit(ctx, "u1", requestsrepo.TypeUpgrade, 0, 2)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	got, err := f.svc.Approve(ctx, req.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != requestsrepo.StatusApproved {
		t.Fatalf("want approved, got %s (%s)", got.Status, got.Reason)
	}

	var level int

	err = f.db.QueryRow(`SELECT level FROM accounts WHERE id = 'u1'`).Scan(&level)
	if err != nil {
		t.Fatalf("read level: %v", err)
	}
	if level != 2 {
		t.Fatalf("want level 2, got %d", level)
	}

	t.Run("non-increasing target rejected at submit", func(t *testing.T) {
		_, err := f.svc.Submit(ctx, "u1", requestsrepo.TypeUpgrade, 0, 2)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("want ErrInvalidRequest, got %v", err)
		}
	})
}

func TestTransferApproval(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedAccount(t, "u1", "alice", "FBT100", 100, 0)
	f.seedAccount(t, "u2", "bob", "FBT200", 0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := f.transfers.Request(ctx, "u1", "bob", 60, false)
	if err != nil {
		t.Fatalf("file transfer request: %v", err)
	}

	got, err := f.svc.Approve(ctx, res.RequestID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != requestsrepo.StatusApproved {
		t.Fatalf("want approved, got %s (%s)", got.Status, got.Reason)
	}

	p1, _ := f.balances(t, "u1")
	p2, _ := f.balances(t, "u2")
	if p1 != 40 || p2 != 60 {
		t.Fatalf("want 40/60 after approved transfer, got %d/%d", p1, p2)
	}
}

func TestTransferApproval_ShortfallAutoDeclines(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedAccount(t, "u1", "alice", "FBT100", 100, 0)
	f.seedAccount(t, "u2", "bob", "FBT200", 0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := f.transfers.Request(ctx, "u1", "bob", 60, false)
	if err != nil {
		t.Fatalf("file transfer request: %v", err)
	}

	// Sender spends the points while the request sits pending.
	_, err = f.db.Exec(`UPDATE accounts SET points = 10 WHERE id = 'u1'`)
	if err != nil {
		t.Fatalf("drain points: %v", err)
	}

	got, err := f.svc.Approve(ctx, res.RequestID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != requestsrepo.StatusDeclined || got.Reason == "" {
		t.Fatalf("want auto-decline with reason, got %s (%q)", got.Status, got.Reason)
	}

	p1, _ := f.balances(t, "u1")
	p2, _ := f.balances(t, "u2")
	if p1 != 10 || p2 != 0 {
		t.Fatalf("auto-decline must move nothing, got %d/%d", p1, p2)
	}
}

func TestDecline(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedAccount(t, "u1", "alice", "FBT100", 0, 80)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := f.svc.Submit(ctx, "u1", requestsrepo.TypeWithdrawal, 50, 0)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	got, err := f.svc.Decline(ctx, req.ID, "payout channel unavailable")
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if got.Status != requestsrepo.StatusDeclined || got.Reason != "payout channel unavailable" {
		t.Fatalf("unexpected request: %+v", got)
	}

	if _, cash := f.balances(t, "u1"); cash != 80 {
		t.Fatalf("decline must move nothing, got %d cash", cash)
	}

	t.Run("approve after decline rejected", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, req.ID)
		if !errors.Is(err, requestsrepo.ErrRequestProcessed) {
			t.Fatalf("want ErrRequestProcessed, got %v", err)
		}
	})
}

func TestSubmit_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedAccount(t, "u1", "alice", "FBT100", 0, 0)
	f.seedAccount(t, "u2", "bob", "FBT200", 0, 0)

	_, err := f.db.Exec(`UPDATE accounts SET disabled = TRUE WHERE id = 'u2'`)
	if err != nil {
		t.Fatalf("disable u2: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tests := []struct {
		name        string
		accountID   string
		typ         requestsrepo.Type
		amount      int64
		targetLevel int
		wantErr     error
	}{
		{name: "withdrawal needs positive amount", accountID: "u1", typ: requestsrepo.TypeWithdrawal, amount: 0, wantErr: ledgersvc.ErrInvalidAmount},
		{name: "loan needs positive amount", accountID: "u1", typ: requestsrepo.TypeLoan, amount: -5, wantErr: ledgersvc.ErrInvalidAmount},
		{name: "upgrade must increase level", accountID: "u1", typ: requestsrepo.TypeUpgrade, targetLevel: 0, wantErr: ErrInvalidRequest},
		{name: "transfers go through the transfer engine", accountID: "u1", typ: requestsrepo.TypePointTransfer, amount: 10, wantErr: ErrInvalidRequest},
		{name: "unknown type", accountID: "u1", typ: "bonus", wantErr: ErrUnknownType},
		{name: "disabled account", accountID: "u2", typ: requestsrepo.TypeLoan, amount: 10, wantErr: ledgersvc.ErrAccountDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, tt.accountID, tt.typ, tt.amount, tt.targetLevel)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
		})
	}
}
