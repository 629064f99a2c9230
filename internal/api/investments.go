package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	investmentsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/investments"
)

type investmentResponse struct {
	ID           string `json:"id"`
	AccountID    string `json:"accountId"`
	Amount       int64  `json:"amount"`
	Status       string `json:"status"`
	InterestRate int64  `json:"interestRate,omitempty"`
	ReleaseDate  string `json:"releaseDate,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func toInvestmentResponse(inv *investmentsrepo.Investment) investmentResponse {
	out := investmentResponse{
		ID:           inv.ID,
		AccountID:    inv.AccountID,
		Amount:       inv.Amount,
		Status:       string(inv.Status),
		InterestRate: inv.InterestRate,
		Notes:        inv.Notes,
	}

	if inv.ReleaseDate != nil {
		out.ReleaseDate = inv.ReleaseDate.Format(time.RFC3339)
	}

	return out
}

// CreateInvestmentHandler handles POST /investments.
func (h *HandlerProvider) CreateInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"accountId"`
		Amount    int64  `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	inv, err := h.investments.Create(r.Context(), req.AccountID, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toInvestmentResponse(inv))
}

// GetInvestmentHandler handles GET /investments/{investmentId}.
func (h *HandlerProvider) GetInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	inv, err := h.investments.Get(r.Context(), chi.URLParam(r, "investmentId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toInvestmentResponse(inv))
}

// ApproveInvestmentHandler handles POST /investments/{investmentId}/approve.
func (h *HandlerProvider) ApproveInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InterestRate int64  `json:"interestRate"`
		ReleaseDate  string `json:"releaseDate"`
		Notes        string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	releaseDate, err := time.Parse(time.RFC3339, req.ReleaseDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "releaseDate must be RFC3339")
		return
	}

	id := chi.URLParam(r, "investmentId")

	err = h.investments.Approve(r.Context(), id, req.InterestRate, releaseDate, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.respondInvestment(w, r, id)
}

// DeclineInvestmentHandler handles POST /investments/{investmentId}/decline.
func (h *HandlerProvider) DeclineInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "investmentId")

	err := h.investments.Decline(r.Context(), id, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.respondInvestment(w, r, id)
}

// CompleteInvestmentHandler handles POST /investments/{investmentId}/complete.
func (h *HandlerProvider) CompleteInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Force bool `json:"force"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "investmentId")

	err := h.investments.Complete(r.Context(), id, req.Force)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.respondInvestment(w, r, id)
}

func (h *HandlerProvider) respondInvestment(w http.ResponseWriter, r *http.Request, id string) {
	inv, err := h.investments.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toInvestmentResponse(inv))
}
