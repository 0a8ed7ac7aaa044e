package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-migrate/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
	"github.com/ekaya-inc/ekaya-migrate/pkg/services"
)

// TestRulesRequest is the body of POST /api/validation/test.
// When Rules is omitted the configured rule set is used.
type TestRulesRequest struct {
	Rules   []models.ValidationRule `json:"rules"`
	Records models.Dataset          `json:"records"`
}

// ValidationHandler handles validation rule requests.
type ValidationHandler struct {
	validation services.ValidationService
	maxBytes   int64
	logger     *zap.Logger
}

// NewValidationHandler creates a new validation handler.
func NewValidationHandler(validation services.ValidationService, maxBytes int64, logger *zap.Logger) *ValidationHandler {
	return &ValidationHandler{
		validation: validation,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// RegisterRoutes registers the validation handler's routes on the given mux.
func (h *ValidationHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/validation"

	mux.HandleFunc("GET "+base+"/rules", h.ListRules)
	mux.HandleFunc("POST "+base+"/test", h.TestRules)
}

// ListRules handles GET /api/validation/rules
func (h *ValidationHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: h.validation.DefaultRules()}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// TestRules handles POST /api/validation/test
func (h *ValidationHandler) TestRules(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	var req TestRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status, code := errorStatus(fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err))
		if err := ErrorResponse(w, status, code, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	rules := req.Rules
	if rules == nil {
		rules = h.validation.DefaultRules()
	}

	results := h.validation.TestRules(rules, req.Records)

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: results}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
