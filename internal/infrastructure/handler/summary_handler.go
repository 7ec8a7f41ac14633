package handler

import (
	"net/http"

	"github.com/damon-houk/donation-ledger/internal/application/service"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/logger"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// SummaryPath serves the donation summary
const SummaryPath = "/donations/summary"

// SummaryHandler renders the donation summary
type SummaryHandler struct {
	ledger *service.LedgerService
	logger logger.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(ledger *service.LedgerService, log logger.Logger) *SummaryHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &SummaryHandler{
		ledger: ledger,
		logger: log,
	}
}

// GetSummary handles GET /donations/summary?currency=EUR
func (h *SummaryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	currency := r.URL.Query().Get("currency")

	view, err := h.ledger.Snapshot(r.Context(), currency)
	if err != nil {
		h.logger.Error("Unexpected error in get summary", map[string]interface{}{
			"request_id": requestID,
			"currency":   currency,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, err.Error(), "", http.StatusInternalServerError, requestID)
		return
	}

	resp := SummaryResponse{
		Currency:         view.Currency,
		TotalAmount:      view.TotalAmount,
		SupportersCount:  view.SupportersCount,
		RecentSupporters: make([]SupporterResponse, 0, len(view.RecentSupporters)),
		LastUpdatedIso:   view.LastUpdatedIso,
	}
	for _, s := range view.RecentSupporters {
		resp.RecentSupporters = append(resp.RecentSupporters, SupporterResponse{
			Name:      s.Name,
			Amount:    s.Amount,
			Currency:  s.Currency,
			Message:   s.Message,
			Timestamp: s.Timestamp,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// RegisterRoutes registers the summary handler routes
func (h *SummaryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(SummaryPath, h.GetSummary).Methods(http.MethodGet)

	h.logger.Info("Summary routes registered", map[string]interface{}{
		"routes": []string{"GET " + SummaryPath},
	})
}
