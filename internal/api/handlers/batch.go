package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"marketfetch/internal/api/response"
	"marketfetch/internal/model"
	"marketfetch/internal/service"
)

// BatchHandler triggers batch fetches and reports the last run.
type BatchHandler struct {
	batchService *service.BatchService
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(batchService *service.BatchService) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
	}
}

// TriggerRequest is the body for starting a batch run.
type TriggerRequest struct {
	Tickers []string `json:"tickers"`
	Kind    string   `json:"kind"`
}

// Trigger handles POST requests that start a batch in the background.
// The batch identifier comes back immediately; progress is visible via
// the quota endpoints and the final outcome via GET /api/batch/last.
//
// Endpoint: POST /api/batch
func (h *BatchHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if len(req.Tickers) == 0 {
		response.RespondError(w, http.StatusBadRequest, "tickers are required", nil)
		return
	}

	kind, err := model.ParseDataKind(req.Kind)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid data kind", err.Error())
		return
	}

	go func() {
		summary := h.batchService.Run(context.Background(), req.Tickers, kind)
		log.Printf("Batch %s (%s): %d/%d succeeded", summary.ID, kind, summary.Succeeded, summary.Total)
	}()

	response.RespondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"kind":   string(kind),
	})
}

// Last handles GET requests for the most recent batch summary.
//
// Endpoint: GET /api/batch/last
func (h *BatchHandler) Last(w http.ResponseWriter, r *http.Request) {
	summary := h.batchService.LastSummary()
	if summary == nil {
		response.RespondError(w, http.StatusNotFound, "no batch has run yet", nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
