package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers every API endpoint on a chi router.
func NewRouter(h *HandlerProvider) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/accounts", h.SignupHandler)
	r.Get("/accounts/{accountId}", h.GetAccountHandler)
	r.Get("/accounts/{accountId}/ledger", h.LedgerHistoryHandler)
	r.Post("/accounts/{accountId}/approve", h.ApproveAccountHandler)
	r.Post("/accounts/{accountId}/disable", h.DisableAccountHandler)
	r.Delete("/accounts/{accountId}", h.DeleteAccountHandler)

	r.Post("/transfers", h.TransferHandler)

	r.Get("/requests", h.ListRequestsHandler)
	r.Post("/requests", h.SubmitRequestHandler)
	r.Post("/requests/{requestId}/approve", h.ApproveRequestHandler)
	r.Post("/requests/{requestId}/decline", h.DeclineRequestHandler)

	r.Post("/investments", h.CreateInvestmentHandler)
	r.Get("/investments/{investmentId}", h.GetInvestmentHandler)
	r.Post("/investments/{investmentId}/approve", h.ApproveInvestmentHandler)
	r.Post("/investments/{investmentId}/decline", h.DeclineInvestmentHandler)
	r.Post("/investments/{investmentId}/complete", h.CompleteInvestmentHandler)

	r.Post("/rounds", h.CreateRoundHandler)
	r.Get("/rounds/{roundId}", h.GetRoundHandler)
	r.Post("/rounds/{roundId}/bets", h.PlaceBetHandler)
	r.Post("/rounds/{roundId}/resolve", h.ResolveRoundHandler)
	r.Post("/bets/{betId}/cancel", h.CancelBetHandler)

	r.Get("/settings", h.GetSettingsHandler)
	r.Put("/settings/direct-transfers", h.SetDirectTransfersHandler)

	return r
}
