package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
	"github.com/ekaya-inc/ekaya-migrate/pkg/services"
)

// SuggestMappingsRequest is the body of POST /api/mappings/suggest.
type SuggestMappingsRequest struct {
	SourceFields []models.FieldInfo `json:"source_fields"`
	TargetFields []models.FieldInfo `json:"target_fields"`
}

// SuggestMappingsResponse carries the suggested pairs and how many required
// target fields they cover.
type SuggestMappingsResponse struct {
	Mappings     []models.MappingSuggestion `json:"mappings"`
	Completeness int                        `json:"completeness"`
}

// MappingsHandler handles field mapping requests.
type MappingsHandler struct {
	mapping services.MappingService
	logger  *zap.Logger
}

// NewMappingsHandler creates a new mappings handler.
func NewMappingsHandler(mapping services.MappingService, logger *zap.Logger) *MappingsHandler {
	return &MappingsHandler{
		mapping: mapping,
		logger:  logger,
	}
}

// RegisterRoutes registers the mappings handler's routes on the given mux.
func (h *MappingsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/mappings/suggest", h.Suggest)
}

// Suggest handles POST /api/mappings/suggest
func (h *MappingsHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestMappingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if len(req.TargetFields) == 0 {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "target_fields is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	mappings := h.mapping.SuggestMappings(req.SourceFields, req.TargetFields)
	response := SuggestMappingsResponse{
		Mappings:     mappings,
		Completeness: h.mapping.Completeness(mappings, req.TargetFields),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
