package api

import "net/http"

// GetSettingsHandler handles GET /settings.
func (h *HandlerProvider) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	g := h.settings.Current()

	writeJSON(w, http.StatusOK, map[string]any{
		"allowDirectTransfer": g.AllowDirectTransfer,
		"version":             g.Version,
	})
}

// SetDirectTransfersHandler handles PUT /settings/direct-transfers.
func (h *HandlerProvider) SetDirectTransfersHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Allow bool `json:"allow"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	g, err := h.settings.SetDirectTransfers(r.Context(), req.Allow)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"allowDirectTransfer": g.AllowDirectTransfer,
		"version":             g.Version,
	})
}
