package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	roundsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/rounds"
)

type betResponse struct {
	ID        string `json:"id"`
	RoundID   string `json:"roundId"`
	AccountID string `json:"accountId"`
	Amount    int64  `json:"amount"`
	Choice    int    `json:"choice"`
	Status    string `json:"status"`
	Payout    int64  `json:"payout"`
}

func toBetResponse(b *roundsrepo.Bet) betResponse {
	return betResponse{
		ID:        b.ID,
		RoundID:   b.RoundID,
		AccountID: b.AccountID,
		Amount:    b.Amount,
		Choice:    b.Choice,
		Status:    string(b.Status),
		Payout:    b.Payout,
	}
}

// CreateRoundHandler handles POST /rounds.
func (h *HandlerProvider) CreateRoundHandler(w http.ResponseWriter, r *http.Request) {
	round, err := h.settlement.CreateRound(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": round.ID, "status": string(round.Status)})
}

// GetRoundHandler handles GET /rounds/{roundId}.
func (h *HandlerProvider) GetRoundHandler(w http.ResponseWriter, r *http.Request) {
	round, bets, err := h.settlement.GetRound(r.Context(), chi.URLParam(r, "roundId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]betResponse, 0, len(bets))
	for i := range bets {
		out = append(out, toBetResponse(&bets[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":      round.ID,
		"status":  string(round.Status),
		"outcome": round.Outcome,
		"bets":    out,
	})
}

// PlaceBetHandler handles POST /rounds/{roundId}/bets.
func (h *HandlerProvider) PlaceBetHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"accountId"`
		Amount    int64  `json:"amount"`
		Choice    int    `json:"choice"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	bet, err := h.settlement.PlaceBet(r.Context(), chi.URLParam(r, "roundId"), req.AccountID, req.Amount, req.Choice)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBetResponse(bet))
}

// ResolveRoundHandler handles POST /rounds/{roundId}/resolve.
func (h *HandlerProvider) ResolveRoundHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Outcome map[int]string `json:"outcome"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	sum, err := h.settlement.ResolveRound(r.Context(), chi.URLParam(r, "roundId"), roundsrepo.Outcome(req.Outcome))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"resolved":     sum.Resolved,
		"won":          sum.Won,
		"lost":         sum.Lost,
		"pointsPayout": sum.PointsPayout,
		"cashPayout":   sum.CashPayout,
	})
}

// CancelBetHandler handles POST /bets/{betId}/cancel.
func (h *HandlerProvider) CancelBetHandler(w http.ResponseWriter, r *http.Request) {
	err := h.settlement.CancelBet(r.Context(), chi.URLParam(r, "betId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
