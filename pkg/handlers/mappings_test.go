package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
	"github.com/ekaya-inc/ekaya-migrate/pkg/services"
)

func newMappingsMux() *http.ServeMux {
	logger := zap.NewNop()
	handler := NewMappingsHandler(services.NewMappingService(logger), logger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func TestMappingsHandler_Suggest(t *testing.T) {
	body := `{
		"source_fields": [
			{"name": "IncidentDate", "type": "Date", "sample": "2023-05-01"},
			{"name": "lat", "type": "Number", "sample": 39.29}
		],
		"target_fields": [
			{"name": "incident_date", "required": true},
			{"name": "latitude", "required": true},
			{"name": "city", "required": true},
			{"name": "notes"}
		]
	}`

	rec := httptest.NewRecorder()
	newMappingsMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/mappings/suggest", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var data SuggestMappingsResponse
	require.NoError(t, json.Unmarshal(decodeResponse(t, rec).Data, &data))

	require.Len(t, data.Mappings, 2)
	assert.Equal(t, "incident_date", data.Mappings[0].TargetField)
	assert.Equal(t, models.ConfidenceHigh, data.Mappings[0].Confidence)
	assert.Equal(t, "latitude", data.Mappings[1].TargetField)
	assert.Equal(t, models.ConfidenceMedium, data.Mappings[1].Confidence)
	assert.Equal(t, 67, data.Completeness)
}

func TestMappingsHandler_Suggest_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"source_fields": [`},
		{"no targets", `{"source_fields": [{"name": "a"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newMappingsMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/mappings/suggest", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_request", decodeResponse(t, rec).Error)
		})
	}
}
