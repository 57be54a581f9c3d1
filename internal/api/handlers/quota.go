package handlers

import (
	"net/http"

	"marketfetch/internal/api/response"
	"marketfetch/internal/model"
	"marketfetch/internal/service"
)

// QuotaHandler exposes today's quota usage and the state of every
// provider's account pool.
type QuotaHandler struct {
	fetchService *service.FetchService
}

// NewQuotaHandler creates a new QuotaHandler
func NewQuotaHandler(fetchService *service.FetchService) *QuotaHandler {
	return &QuotaHandler{
		fetchService: fetchService,
	}
}

// Usage handles GET requests for today's per-provider/endpoint call
// counters.
//
// Endpoint: GET /api/quota
func (h *QuotaHandler) Usage(w http.ResponseWriter, r *http.Request) {
	records, err := h.fetchService.Limiter().Usage()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve quota usage", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}

// Accounts handles GET requests for per-account counter snapshots,
// grouped by provider. Credentials are never included.
//
// Endpoint: GET /api/accounts
func (h *QuotaHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	usage := map[string][]model.Account{}
	for providerID, p := range h.fetchService.Pools() {
		usage[providerID] = p.Usage()
	}

	response.RespondJSON(w, http.StatusOK, usage)
}
