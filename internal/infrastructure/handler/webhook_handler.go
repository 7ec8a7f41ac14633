package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/damon-houk/donation-ledger/internal/application/service"
	"github.com/damon-houk/donation-ledger/internal/domain/entity"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/logger"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

const maxWebhookBody = 1 << 20

// WebhookPath is where Ko-fi delivers donation notifications
const WebhookPath = "/webhooks/kofi"

// WebhookHandler receives donation notifications
type WebhookHandler struct {
	ledger *service.LedgerService
	logger logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(ledger *service.LedgerService, log logger.Logger) *WebhookHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &WebhookHandler{
		ledger: ledger,
		logger: log,
	}
}

// HandleWebhook authenticates and records one delivery
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		sendErrorResponse(w, h.logger, "Method not allowed",
			"Webhook deliveries must use POST", http.StatusMethodNotAllowed, requestID)
		return
	}

	payload, err := decodeWebhook(w, r)
	if err != nil {
		h.logger.Warn("Invalid webhook body", map[string]interface{}{
			"request_id":   requestID,
			"content_type": r.Header.Get("Content-Type"),
			"error":        err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The body must be a JSON object or a form with a JSON data field", http.StatusBadRequest, requestID)
		return
	}

	result, err := h.ledger.Ingest(r.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrUnauthorized):
			sendErrorResponse(w, h.logger, "Invalid verification token", "", http.StatusUnauthorized, requestID)
		case errors.Is(err, entity.ErrConfig):
			sendErrorResponse(w, h.logger, "KOFI_VERIFICATION_TOKEN missing", "", http.StatusInternalServerError, requestID)
		case errors.Is(err, entity.ErrInvalidPayload):
			sendErrorResponse(w, h.logger, "Invalid request body", err.Error(), http.StatusBadRequest, requestID)
		default:
			h.logger.Error("Unexpected error in webhook", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, err.Error(), "", http.StatusInternalServerError, requestID)
		}
		return
	}

	writeJSON(w, http.StatusOK, WebhookResponse{OK: true, Ignored: result.Ignored})
}

// decodeWebhook accepts a JSON object body, or a form whose data field holds one
func decodeWebhook(w http.ResponseWriter, r *http.Request) (service.WebhookPayload, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
		}
		data := form.Get("data")
		if data == "" {
			return nil, fmt.Errorf("%w: form has no data field", entity.ErrInvalidPayload)
		}
		body = []byte(data)
	}

	// An empty delivery is an empty object, so it fails on the token
	if len(bytes.TrimSpace(body)) == 0 {
		return service.WebhookPayload{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload service.WebhookPayload
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidPayload, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: body is not an object", entity.ErrInvalidPayload)
	}
	return payload, nil
}

// RegisterRoutes registers the webhook route for every method so other
// methods get a JSON 405
func (h *WebhookHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(WebhookPath, h.HandleWebhook)

	h.logger.Info("Webhook routes registered", map[string]interface{}{
		"routes": []string{"POST " + WebhookPath},
	})
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	resp := ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}

	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	writeJSON(w, statusCode, resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
