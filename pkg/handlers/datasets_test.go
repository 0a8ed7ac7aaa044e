package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "github.com/ekaya-inc/ekaya-migrate/pkg/adapters/fileparser/csvfile"
	_ "github.com/ekaya-inc/ekaya-migrate/pkg/adapters/fileparser/excel"
	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
	"github.com/ekaya-inc/ekaya-migrate/pkg/services"
)

// rawResponse mirrors ApiResponse with Data left undecoded.
type rawResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) rawResponse {
	t.Helper()
	var resp rawResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func uploadRequest(t *testing.T, path, field, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newDatasetsMux(maxBytes int64, samplePath string) *http.ServeMux {
	logger := zap.NewNop()
	handler := NewDatasetsHandler(
		services.NewProfilerService(models.KeyPolicyLoose, logger),
		services.NewMappingService(logger),
		maxBytes,
		samplePath,
		logger,
	)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

const incidentsCSV = "id,lat,lon,type,address\n" +
	"A1,39.29,-76.61,Fire,1 Main St\n" +
	"A2,95,-76.62,Flood,2 Elm St\n"

func TestDatasetsHandler_Profile(t *testing.T) {
	mux := newDatasetsMux(1<<20, "")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, uploadRequest(t, "/api/datasets/profile", "file", "incidents.csv", incidentsCSV))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	var data struct {
		FileName string `json:"file_name"`
		FileType string `json:"file_type"`
		Profile  struct {
			RowCount            int               `json:"row_count"`
			Columns             []string          `json:"columns"`
			DataTypes           map[string]string `json:"data_types"`
			HasGISData          bool              `json:"has_gis_data"`
			PossiblePrimaryKeys []string          `json:"possible_primary_keys"`
			Sample              []map[string]any  `json:"sample"`
		} `json:"profile"`
		GeoPoints []struct {
			ID   string  `json:"id"`
			Lat  float64 `json:"lat"`
			Name string  `json:"name"`
			Type string  `json:"type"`
		} `json:"geo_points"`
		SourceFields []struct {
			Name   string `json:"name"`
			Type   string `json:"type"`
			Sample any    `json:"sample"`
		} `json:"source_fields"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))

	assert.Equal(t, "incidents.csv", data.FileName)
	assert.Equal(t, "csv", data.FileType)
	assert.Equal(t, 2, data.Profile.RowCount)
	assert.Equal(t, []string{"id", "lat", "lon", "type", "address"}, data.Profile.Columns)
	assert.Equal(t, "Number", data.Profile.DataTypes["lat"])
	assert.Equal(t, "String", data.Profile.DataTypes["id"])
	assert.True(t, data.Profile.HasGISData)
	assert.Equal(t, []string{"id"}, data.Profile.PossiblePrimaryKeys)
	assert.Len(t, data.Profile.Sample, 2)

	// The second row has an out-of-range latitude.
	require.Len(t, data.GeoPoints, 1)
	assert.Equal(t, "A1", data.GeoPoints[0].ID)
	assert.Equal(t, "Fire", data.GeoPoints[0].Type)
	assert.Equal(t, "1 Main St", data.GeoPoints[0].Name)

	require.Len(t, data.SourceFields, 5)
	assert.Equal(t, "lat", data.SourceFields[1].Name)
	assert.Equal(t, 39.29, data.SourceFields[1].Sample)
}

func TestDatasetsHandler_Profile_NoGeoColumns(t *testing.T) {
	mux := newDatasetsMux(1<<20, "")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, uploadRequest(t, "/api/datasets/profile", "file", "orders.csv",
		"customer_id,order_id,amount\n1,10,5\n2,10,6\n3,11,7\n"))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.NotContains(t, string(resp.Data), "geo_points")
	assert.Contains(t, string(resp.Data), `"possible_foreign_keys":["order_id"]`)
}

func TestDatasetsHandler_Profile_RaggedFirstRow(t *testing.T) {
	mux := newDatasetsMux(1<<20, "")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, uploadRequest(t, "/api/datasets/profile", "file", "ragged.csv", "a,b\n1,2,3\n4,5\n"))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	var data struct {
		Profile struct {
			Columns     []string          `json:"columns"`
			ColumnCount int               `json:"column_count"`
			DataTypes   map[string]string `json:"data_types"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, []string{"a", "b"}, data.Profile.Columns)
	assert.Equal(t, 2, data.Profile.ColumnCount)
	assert.NotContains(t, data.Profile.DataTypes, "__parsed_extra")
}

func TestDatasetsHandler_Profile_Errors(t *testing.T) {
	tests := []struct {
		name       string
		maxBytes   int64
		req        func(t *testing.T) *http.Request
		statusCode int
		errorCode  string
		message    string
	}{
		{
			name:     "unsupported format",
			maxBytes: 1 << 20,
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/datasets/profile", "file", "report.pdf", "%PDF")
			},
			statusCode: http.StatusBadRequest,
			errorCode:  "unsupported_format",
			message:    "unsupported file format: .pdf",
		},
		{
			name:     "unsupported format upper case",
			maxBytes: 1 << 20,
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/datasets/geo-points", "file", "NOTES.TXT", "hello")
			},
			statusCode: http.StatusBadRequest,
			errorCode:  "unsupported_format",
			message:    "unsupported file format: .txt",
		},
		{
			name:     "header only",
			maxBytes: 1 << 20,
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/datasets/profile", "file", "empty.csv", "a,b\n")
			},
			statusCode: http.StatusBadRequest,
			errorCode:  "no_data",
			message:    "no data to analyze",
		},
		{
			name:     "missing file field",
			maxBytes: 1 << 20,
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/datasets/profile", "upload", "a.csv", "a\n1\n")
			},
			statusCode: http.StatusBadRequest,
			errorCode:  "invalid_request",
		},
		{
			name:     "not multipart",
			maxBytes: 1 << 20,
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/datasets/profile", strings.NewReader("a,b"))
			},
			statusCode: http.StatusBadRequest,
			errorCode:  "invalid_request",
		},
		{
			name:     "too large",
			maxBytes: 64,
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/datasets/profile", "file", "big.csv", "a\n"+strings.Repeat("1\n", 200))
			},
			statusCode: http.StatusRequestEntityTooLarge,
			errorCode:  "file_too_large",
		},
		{
			name:     "corrupt workbook",
			maxBytes: 1 << 20,
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/datasets/profile", "file", "book.xlsx", "not a zip")
			},
			statusCode: http.StatusBadRequest,
			errorCode:  "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newDatasetsMux(tt.maxBytes, "")
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, tt.req(t))

			assert.Equal(t, tt.statusCode, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.errorCode, resp.Error)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Message)
			}
		})
	}
}

func TestDatasetsHandler_GeoPoints(t *testing.T) {
	mux := newDatasetsMux(1<<20, "")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, uploadRequest(t, "/api/datasets/geo-points", "file", "incidents.csv", incidentsCSV))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	var data GeoPointsResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "incidents.csv", data.FileName)
	assert.Equal(t, 1, data.Total)
	require.Len(t, data.GeoPoints, 1)
	assert.Equal(t, -76.61, data.GeoPoints[0].Lon)
}

func TestDatasetsHandler_Sample(t *testing.T) {
	samplePath := filepath.Join(t.TempDir(), "baltimore_incidents.csv")
	require.NoError(t, os.WriteFile(samplePath, []byte(incidentsCSV), 0o600))

	mux := newDatasetsMux(1<<20, samplePath)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/sample", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Sample data loaded successfully", resp.Message)

	var data DatasetProfileResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "baltimore_incidents.csv", data.FileName)
	assert.Equal(t, "csv", data.FileType)
	require.NotNil(t, data.Profile)
	assert.Equal(t, 2, data.Profile.RowCount)
}

func TestDatasetsHandler_Sample_Missing(t *testing.T) {
	mux := newDatasetsMux(1<<20, filepath.Join(t.TempDir(), "missing.csv"))
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/sample", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeResponse(t, rec).Error)
}

func TestDatasetsHandler_Formats(t *testing.T) {
	mux := newDatasetsMux(1<<20, "")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets/formats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Contains(t, string(resp.Data), `"format":"csv"`)
	assert.Contains(t, string(resp.Data), `"format":"excel"`)
}
