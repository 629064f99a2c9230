package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teDdyMucho/flowe-ledger/internal/infra/pgtestutil"
	settingsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/settings"
	settingspg "github.com/teDdyMucho/flowe-ledger/internal/repos/settings/postgres"
)

func TestDirectTransferToggle(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	svc := New(settingspg.New(db))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Migrations seed the toggle off.
	if svc.DirectTransfersAllowed() {
		t.Fatal("toggle must default to off")
	}

	g, err := svc.SetDirectTransfers(ctx, true)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !g.AllowDirectTransfer || g.Version != 2 {
		t.Fatalf("unexpected settings after update: %+v", g)
	}
	if !svc.DirectTransfersAllowed() {
		t.Fatal("cache must reflect the update")
	}
}

func TestSetDirectTransfers_VersionConflict(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	t.Cleanup(cleanup)

	// Two service instances sharing the row, as two API replicas would.
	a := New(settingspg.New(db))
	b := New(settingspg.New(db))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, svc := range []*Service{a, b} {
		err := svc.Load(ctx)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
	}

	_, err := a.SetDirectTransfers(ctx, true)
	if err != nil {
		t.Fatalf("first update: %v", err)
	}

	// b still holds the old version and must not overwrite blindly.
	_, err = b.SetDirectTransfers(ctx, false)
	if !errors.Is(err, settingsrepo.ErrVersionConflict) {
		t.Fatalf("want ErrVersionConflict, got %v", err)
	}

	err = b.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	_, err = b.SetDirectTransfers(ctx, false)
	if err != nil {
		t.Fatalf("retry after refresh: %v", err)
	}

	if b.DirectTransfersAllowed() {
		t.Fatal("toggle must be off after the retried update")
	}
}
