package investment

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/teDdyMucho/flowe-ledger/internal/infra/pgtestutil"
	accountsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
	accountspg "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts/postgres"
	investmentsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/investments"
	investmentspg "github.com/teDdyMucho/flowe-ledger/internal/repos/investments/postgres"
	ledgerpg "github.com/teDdyMucho/flowe-ledger/internal/repos/ledger/postgres"
	ledgersvc "github.com/teDdyMucho/flowe-ledger/internal/services/ledger"
)

func newService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	accts := accountspg.New(db)
	ledger := ledgersvc.New(db, accts, ledgerpg.New(db))

	return New(db, investmentspg.New(db), ledger), db
}

func seedAccount(t *testing.T, db *sql.DB, id, username, code string, points int64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO accounts (id, username, points, referral_code)
		VALUES ($1, $2, $3, $4)
	`, id, username, points, code)
	if err != nil {
		t.Fatalf("seed account %s: %v", id, err)
	}
}

func getPoints(t *testing.T, db *sql.DB, id string) int64 {
	t.Helper()

	var points int64

	err := db.QueryRow(`SELECT points FROM accounts WHERE id = $1`, id).Scan(&points)
	if err != nil {
		t.Fatalf("read points for %s: %v", id, err)
	}

	return points
}

func TestPayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount int64
		rate   int64
		want   int64
	}{
		{amount: 1000, rate: 5, want: 1050},
		{amount: 1000, rate: 100, want: 2000},
		{amount: 99, rate: 5, want: 103}, // floor(99 * 1.05)
		{amount: 1, rate: 5, want: 1},
	}

	for _, tt := range tests {
		got := Payout(tt.amount, tt.rate)
		if got != tt.want {
			t.Errorf("Payout(%d, %d): want %d, got %d", tt.amount, tt.rate, tt.want, got)
		}
	}
}

func TestCreate_DebitsPrincipal(t *testing.T) {
	t.Parallel()

	svc, db := newService(t)
	seedAccount(t, db, "u1", "alice", "FBT100", 1500)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inv, err := svc.Create(ctx, "u1", 1000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inv.Status != investmentsrepo.StatusPending {
		t.Fatalf("want pending, got %s", inv.Status)
	}

	if p := getPoints(t, db, "u1"); p != 500 {
		t.Fatalf("principal must be debited, got %d points", p)
	}

	t.Run("insufficient points", func(t *testing.T) {
		_, err := svc.Create(ctx, "u1", 501)
		if !errors.Is(err, accountsrepo.ErrInsufficientFunds) {
			t.Fatalf("want ErrInsufficientFunds, got %v", err)
		}

		// Neither the debit nor the record survive the rollback.
		if p := getPoints(t, db, "u1"); p != 500 {
			t.Fatalf("balance must be untouched, got %d", p)
		}
	})
}

func TestLifecycle_ApproveAndComplete(t *testing.T) {
	t.Parallel()

	svc, db := newService(t)
	seedAccount(t, db, "u1", "alice", "FBT100", 1000)

	now := time.Now()
	svc.now = func() time.Time { return now }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inv, err := svc.Create(ctx, "u1", 1000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	release := now.Add(30 * 24 * time.Hour)

	err = svc.Approve(ctx, inv.ID, 5, release, "standard term")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	got, err := svc.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != investmentsrepo.StatusApproved || got.InterestRate != 5 {
		t.Fatalf("unexpected investment: %+v", got)
	}

	// Approval moves no funds.
	if p := getPoints(t, db, "u1"); p != 0 {
		t.Fatalf("approval must not move funds, got %d points", p)
	}

	t.Run("double approve rejected", func(t *testing.T) {
		err := svc.Approve(ctx, inv.ID, 5, release, "")
		if !errors.Is(err, ErrNotPending) {
			t.Fatalf("want ErrNotPending, got %v", err)
		}
	})

	t.Run("complete before release needs force", func(t *testing.T) {
		err := svc.Complete(ctx, inv.ID, false)
		if !errors.Is(err, ErrReleaseNotDue) {
			t.Fatalf("want ErrReleaseNotDue, got %v", err)
		}
	})

	// Past the release date: principal plus 5% lands back in points.
	svc.now = func() time.Time { return release.Add(time.Hour) }

	err = svc.Complete(ctx, inv.ID, false)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if p := getPoints(t, db, "u1"); p != 1050 {
		t.Fatalf("want 1050 points after completion, got %d", p)
	}

	t.Run("double complete rejected", func(t *testing.T) {
		err := svc.Complete(ctx, inv.ID, false)
		if !errors.Is(err, ErrNotApproved) {
			t.Fatalf("want ErrNotApproved, got %v", err)
		}
	})
}

func TestComplete_ForceOverridesReleaseDate(t *testing.T) {
	t.Parallel()

	svc, db := newService(t)
	seedAccount(t, db, "u1", "alice", "FBT100", 1000)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inv, err := svc.Create(ctx, "u1", 1000)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.Approve(ctx, inv.ID, 10, time.Now().Add(24*time.Hour), "")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	err = svc.Complete(ctx, inv.ID, true)
	if err != nil {
		t.Fatalf("forced complete: %v", err)
	}

	if p := getPoints(t, db, "u1"); p != 1100 {
		t.Fatalf("want 1100 points, got %d", p)
	}
}

func TestDecline_RefundsPrincipal(t *testing.T) {
	t.Parallel()

	svc, db := newService(t)
	seedAccount(t, db, "u1", "alice", "FBT100", 1000)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inv, err := svc.Create(ctx, "u1", 400)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.Decline(ctx, inv.ID, "over exposure")
	if err != nil {
		t.Fatalf("decline: %v", err)
	}

	if p := getPoints(t, db, "u1"); p != 1000 {
		t.Fatalf("principal must be refunded, got %d points", p)
	}

	got, err := svc.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != investmentsrepo.StatusDeclined {
		t.Fatalf("want declined, got %s", got.Status)
	}

	t.Run("decline after decline rejected", func(t *testing.T) {
		err := svc.Decline(ctx, inv.ID, "")
		if !errors.Is(err, ErrNotPending) {
			t.Fatalf("want ErrNotPending, got %v", err)
		}
	})
}

func TestApprove_Validation(t *testing.T) {
	t.Parallel()

	svc, db := newService(t)
	seedAccount(t, db, "u1", "alice", "FBT100", 1000)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inv, err := svc.Create(ctx, "u1", 100)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.Approve(ctx, inv.ID, 0, time.Now().Add(time.Hour), "")
	if !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("zero rate: want ErrInvalidRate, got %v", err)
	}

	err = svc.Approve(ctx, inv.ID, 5, time.Now().Add(-time.Hour), "")
	if !errors.Is(err, ErrInvalidRelease) {
		t.Fatalf("past release: want ErrInvalidRelease, got %v", err)
	}

	_, err = svc.Create(ctx, "u1", 0)
	if !errors.Is(err, ledgersvc.ErrInvalidAmount) {
		t.Fatalf("zero amount: want ErrInvalidAmount, got %v", err)
	}
}
