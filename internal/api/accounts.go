package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	accountsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/accounts"
)

type accountResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Points       int64  `json:"points"`
	Cash         int64  `json:"cash"`
	ReferralCode string `json:"referralCode"`
	Level        int    `json:"level"`
	Approved     bool   `json:"approved"`
	Disabled     bool   `json:"disabled"`
}

func toAccountResponse(a *accountsrepo.Account) accountResponse {
	return accountResponse{
		ID:           a.ID,
		Username:     a.Username,
		Points:       a.Points,
		Cash:         a.Cash,
		ReferralCode: a.ReferralCode,
		Level:        a.Level,
		Approved:     a.Approved,
		Disabled:     a.Disabled,
	}
}

// SignupHandler handles POST /accounts.
func (h *HandlerProvider) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username     string `json:"username"`
		ReferrerCode string `json:"referrerCode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	account, err := h.accounts.Signup(r.Context(), req.Username, req.ReferrerCode)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

// GetAccountHandler handles GET /accounts/{accountId}.
func (h *HandlerProvider) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.Get(r.Context(), chi.URLParam(r, "accountId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// LedgerHistoryHandler handles GET /accounts/{accountId}/ledger.
func (h *HandlerProvider) LedgerHistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.ledger.History(r.Context(), chi.URLParam(r, "accountId"), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	type entryResponse struct {
		ID          string `json:"id"`
		Amount      int64  `json:"amount"`
		Field       string `json:"field"`
		Type        string `json:"type"`
		Description string `json:"description"`
		PointsAfter int64  `json:"pointsAfter"`
		CashAfter   int64  `json:"cashAfter"`
		CreatedAt   string `json:"createdAt"`
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:          e.ID,
			Amount:      e.Amount,
			Field:       string(e.Field),
			Type:        e.Type,
			Description: e.Description,
			PointsAfter: e.PointsAfter,
			CashAfter:   e.CashAfter,
			CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// ApproveAccountHandler handles POST /accounts/{accountId}/approve.
// Approval triggers the referral bonus fan-out.
func (h *HandlerProvider) ApproveAccountHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "accountId")

	err := h.referrals.SettleOnApproval(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	account, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

// DisableAccountHandler handles POST /accounts/{accountId}/disable.
func (h *HandlerProvider) DisableAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Disabled bool `json:"disabled"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.accounts.SetDisabled(r.Context(), chi.URLParam(r, "accountId"), req.Disabled)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteAccountHandler handles DELETE /accounts/{accountId}.
func (h *HandlerProvider) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	err := h.accounts.Delete(r.Context(), chi.URLParam(r, "accountId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
