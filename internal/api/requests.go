package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestsrepo "github.com/teDdyMucho/flowe-ledger/internal/repos/requests"
)

type requestResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	AccountID   string `json:"accountId"`
	Amount      int64  `json:"amount,omitempty"`
	RecipientID string `json:"recipientId,omitempty"`
	TargetLevel int    `json:"targetLevel,omitempty"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
}

func toRequestResponse(req *requestsrepo.Request) requestResponse {
	return requestResponse{
		ID:          req.ID,
		Type:        string(req.Type),
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		RecipientID: req.RecipientID,
		TargetLevel: req.TargetLevel,
		Status:      string(req.Status),
		Reason:      req.Reason,
	}
}

// TransferHandler handles POST /transfers.
func (h *HandlerProvider) TransferHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SenderID  string `json:"senderId"`
		Recipient string `json:"recipient"`
		Amount    int64  `json:"amount"`
		Direct    bool   `json:"direct"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.transfers.Request(r.Context(), req.SenderID, req.Recipient, req.Amount, req.Direct)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if result.Applied {
		writeJSON(w, http.StatusOK, map[string]any{"status": "transferred"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"status": "pending", "requestId": result.RequestID})
}

// SubmitRequestHandler handles POST /requests (withdrawal, loan, upgrade).
func (h *HandlerProvider) SubmitRequestHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID   string `json:"accountId"`
		Type        string `json:"type"`
		Amount      int64  `json:"amount"`
		TargetLevel int    `json:"targetLevel"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	typ := requestsrepo.Type(req.Type)
	if !typ.Valid() {
		writeError(w, http.StatusBadRequest, "invalid request type")
		return
	}

	created, err := h.approvals.Submit(r.Context(), req.AccountID, typ, req.Amount, req.TargetLevel)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRequestResponse(created))
}

// ListRequestsHandler handles GET /requests?status=pending&limit=50.
func (h *HandlerProvider) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	status := requestsrepo.Status(r.URL.Query().Get("status"))
	if status == "" {
		status = requestsrepo.StatusPending
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	reqs, err := h.approvals.List(r.Context(), status, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]requestResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, toRequestResponse(&reqs[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

// ApproveRequestHandler handles POST /requests/{requestId}/approve.
func (h *HandlerProvider) ApproveRequestHandler(w http.ResponseWriter, r *http.Request) {
	req, err := h.approvals.Approve(r.Context(), chi.URLParam(r, "requestId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestResponse(req))
}

// DeclineRequestHandler handles POST /requests/{requestId}/decline.
func (h *HandlerProvider) DeclineRequestHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	req, err := h.approvals.Decline(r.Context(), chi.URLParam(r, "requestId"), body.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRequestResponse(req))
}
