package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/teDdyMucho/flowe-ledger/internal/api"
	"github.com/teDdyMucho/flowe-ledger/internal/infra/logging"
	"github.com/teDdyMucho/flowe-ledger/internal/infra/pgutils"
	pgaccounts "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts/postgres"
	pginvestments "github.com/teDdyMucho/flowe-ledger/internal/repos/investments/postgres"
	pgledger "github.com/teDdyMucho/flowe-ledger/internal/repos/ledger/postgres"
	pgrequests "github.com/teDdyMucho/flowe-ledger/internal/repos/requests/postgres"
	pgrounds "github.com/teDdyMucho/flowe-ledger/internal/repos/rounds/postgres"
	pgsettings "github.com/teDdyMucho/flowe-ledger/internal/repos/settings/postgres"
	accountssvc "github.com/teDdyMucho/flowe-ledger/internal/services/accounts"
	approvalsvc "github.com/teDdyMucho/flowe-ledger/internal/services/approval"
	investmentsvc "github.com/teDdyMucho/flowe-ledger/internal/services/investment"
	ledgersvc "github.com/teDdyMucho/flowe-ledger/internal/services/ledger"
	referralsvc "github.com/teDdyMucho/flowe-ledger/internal/services/referral"
	settingssvc "github.com/teDdyMucho/flowe-ledger/internal/services/settings"
	settlementsvc "github.com/teDdyMucho/flowe-ledger/internal/services/settlement"
	transfersvc "github.com/teDdyMucho/flowe-ledger/internal/services/transfer"
	"github.com/teDdyMucho/flowe-ledger/pkg/envconf"
	"github.com/teDdyMucho/flowe-ledger/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		return db.Close()
	})

	// --- Repos ---
	accountsRepo := pgaccounts.New(db)
	ledgerRepo := pgledger.New(db)
	requestsRepo := pgrequests.New(db)
	investmentsRepo := pginvestments.New(db)
	roundsRepo := pgrounds.New(db)
	settingsRepo := pgsettings.New(db)

	// --- Services ---
	settings := settingssvc.New(settingsRepo)

	err = settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	ledger := ledgersvc.New(db, accountsRepo, ledgerRepo)
	accounts := accountssvc.New(accountsRepo)
	referrals := referralsvc.New(db, accountsRepo, ledger)
	transfers := transfersvc.New(accountsRepo, ledger, requestsRepo, settings)
	approvals := approvalsvc.New(db, requestsRepo, accountsRepo, ledger, transfers)
	settlement := settlementsvc.New(db, roundsRepo, ledger)
	investments := investmentsvc.New(db, investmentsRepo, ledger)

	// --- HTTP server ---
	handler := api.NewHandler(accounts, ledger, referrals, transfers, approvals, settlement, investments, settings)
	srv := api.NewServer(cfg.Port, api.NewRouter(handler))

	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port)

	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
