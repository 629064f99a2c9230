package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	accountsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
	investmentsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/investments"
	requestsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/requests"
	roundsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/rounds"
	settingsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/settings"
	accountssvc "github.com/teDdyMucho/flowe-ledger/internal/services/accounts"
	approvalsvc "github.com/teDdyMucho/flowe-ledger/internal/services/approval"
	investmentsvc "github.com/teDdyMucho/flowe-ledger/internal/services/investment"
	ledgersvc "github.com/teDdyMucho/flowe-ledger/internal/services/ledger"
	referralsvc "github.com/teDdyMucho/flowe-ledger/internal/services/referral"
	settingssvc "github.com/teDdyMucho/flowe-ledger/internal/services/settings"
	settlementsvc "github.com/teDdyMucho/flowe-ledger/internal/services/settlement"
	transfersvc "github.com/teDdyMucho/flowe-ledger/internal/services/transfer"
)

// HandlerProvider bundles the services and exposes HTTP handlers.
type HandlerProvider struct {
	accounts    *accountssvc.Service
	ledger      *ledgersvc.Service
	referrals   *referralsvc.Service
	transfers   *transfersvc.Service
	approvals   *approvalsvc.Service
	settlement  *settlementsvc.Service
	investments *investmentsvc.Service
	settings    *settingssvc.Service
}

func NewHandler(
	accounts *accountssvc.Service,
	ledger *ledgersvc.Service,
	referrals *referralsvc.Service,
	transfers *transfersvc.Service,
	approvals *approvalsvc.Service,
	settlement *settlementsvc.Service,
	investments *investmentsvc.Service,
	settings *settingssvc.Service,
) *HandlerProvider {
	return &HandlerProvider{
		accounts:    accounts,
		ledger:      ledger,
		referrals:   referrals,
		transfers:   transfers,
		approvals:   approvals,
		settlement:  settlement,
		investments: investments,
		settings:    settings,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinels onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accountsrepo.ErrAccountNotFound),
		errors.Is(err, requestsrepo.ErrRequestNotFound),
		errors.Is(err, roundsrepo.ErrRoundNotFound),
		errors.Is(err, roundsrepo.ErrBetNotFound),
		errors.Is(err, investmentsrepo.ErrInvestmentNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, accountsrepo.ErrInsufficientFunds),
		errors.Is(err, accountsrepo.ErrUsernameTaken),
		errors.Is(err, requestsrepo.ErrRequestProcessed),
		errors.Is(err, referralsvc.ErrAlreadyApproved),
		errors.Is(err, settlementsvc.ErrRoundClosed),
		errors.Is(err, settlementsvc.ErrBetNotPending),
		errors.Is(err, investmentsvc.ErrNotPending),
		errors.Is(err, investmentsvc.ErrNotApproved),
		errors.Is(err, investmentsvc.ErrReleaseNotDue),
		errors.Is(err, settingsrepo.ErrVersionConflict):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, ledgersvc.ErrAccountDisabled):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, ledgersvc.ErrInvalidAmount),
		errors.Is(err, ledgersvc.ErrInvalidField),
		errors.Is(err, ledgersvc.ErrSelfTransfer),
		errors.Is(err, accountssvc.ErrInvalidUsername),
		errors.Is(err, settlementsvc.ErrInvalidChoice),
		errors.Is(err, settlementsvc.ErrInvalidOutcome),
		errors.Is(err, settlementsvc.ErrNoWinningOutcome),
		errors.Is(err, investmentsvc.ErrInvalidRate),
		errors.Is(err, investmentsvc.ErrInvalidRelease),
		errors.Is(err, approvalsvc.ErrInvalidRequest),
		errors.Is(err, approvalsvc.ErrUnknownType):
		writeError(w, http.StatusBadRequest, err.Error())

	default:
		slog.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody parses a JSON request body into dst with a size cap and
// unknown fields rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return false
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}

	return true
}
