package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-migrate/pkg/adapters/fileparser"
	"github.com/ekaya-inc/ekaya-migrate/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
	"github.com/ekaya-inc/ekaya-migrate/pkg/services"
)

// uploadFormField is the multipart field carrying the uploaded file.
const uploadFormField = "file"

// multipartMemory is how much of an upload is kept in memory before spilling
// to temporary files.
const multipartMemory = 8 << 20

// DatasetProfileResponse is returned by the profile and sample endpoints.
type DatasetProfileResponse struct {
	FileName     string                 `json:"file_name"`
	FileType     string                 `json:"file_type"`
	Profile      *models.DatasetProfile `json:"profile"`
	GeoPoints    []models.GeoPoint      `json:"geo_points,omitempty"`
	SourceFields []models.FieldInfo     `json:"source_fields"`
}

// GeoPointsResponse is returned by the geo-points endpoint.
type GeoPointsResponse struct {
	FileName  string            `json:"file_name"`
	Total     int               `json:"total"`
	GeoPoints []models.GeoPoint `json:"geo_points"`
}

// DatasetsHandler handles file upload and profiling requests.
type DatasetsHandler struct {
	profiler   services.ProfilerService
	mapping    services.MappingService
	maxBytes   int64
	samplePath string
	logger     *zap.Logger
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(
	profiler services.ProfilerService,
	mapping services.MappingService,
	maxBytes int64,
	samplePath string,
	logger *zap.Logger,
) *DatasetsHandler {
	return &DatasetsHandler{
		profiler:   profiler,
		mapping:    mapping,
		maxBytes:   maxBytes,
		samplePath: samplePath,
		logger:     logger,
	}
}

// RegisterRoutes registers the datasets handler's routes on the given mux.
func (h *DatasetsHandler) RegisterRoutes(mux *http.ServeMux) {
	base := "/api/datasets"

	mux.HandleFunc("POST "+base+"/profile", h.Profile)
	mux.HandleFunc("POST "+base+"/geo-points", h.GeoPoints)
	mux.HandleFunc("GET "+base+"/sample", h.Sample)
	mux.HandleFunc("GET "+base+"/formats", h.Formats)
}

// Profile handles POST /api/datasets/profile
func (h *DatasetsHandler) Profile(w http.ResponseWriter, r *http.Request) {
	fileName, data, info, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, "Failed to read upload", fileName, err)
		return
	}

	response, err := h.profile(fileName, info.Format, data)
	if err != nil {
		h.writeError(w, "Failed to profile dataset", fileName, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GeoPoints handles POST /api/datasets/geo-points
func (h *DatasetsHandler) GeoPoints(w http.ResponseWriter, r *http.Request) {
	fileName, data, _, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, "Failed to read upload", fileName, err)
		return
	}
	if len(data) == 0 {
		h.writeError(w, "Failed to extract geo points", fileName, apperrors.ErrNoData)
		return
	}

	points := h.profiler.ExtractGeoPoints(data)
	response := GeoPointsResponse{
		FileName:  fileName,
		Total:     len(points),
		GeoPoints: points,
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Sample handles GET /api/datasets/sample
// Profiles the bundled demonstration dataset.
func (h *DatasetsHandler) Sample(w http.ResponseWriter, r *http.Request) {
	fileName := filepath.Base(h.samplePath)

	data, info, err := h.parseSample(r.Context())
	if err != nil {
		h.writeError(w, "Failed to load sample data", fileName, err)
		return
	}

	response, err := h.profile(fileName, info.Format, data)
	if err != nil {
		h.writeError(w, "Failed to profile sample data", fileName, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    response,
		Message: "Sample data loaded successfully",
	}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Formats handles GET /api/datasets/formats
func (h *DatasetsHandler) Formats(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: fileparser.RegisteredParsers()}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *DatasetsHandler) profile(fileName, fileType string, data models.Dataset) (*DatasetProfileResponse, error) {
	profile, err := h.profiler.Profile(data)
	if err != nil {
		return nil, err
	}

	response := &DatasetProfileResponse{
		FileName:     fileName,
		FileType:     fileType,
		Profile:      profile,
		SourceFields: h.mapping.SourceFields(profile),
	}
	if profile.HasGISData {
		response.GeoPoints = h.profiler.ExtractGeoPoints(data)
	}

	h.logger.Info("Profiled dataset",
		zap.String("file_name", fileName),
		zap.String("file_type", fileType),
		zap.Int("rows", profile.RowCount),
		zap.Int("columns", profile.ColumnCount),
		zap.Int("geo_points", len(response.GeoPoints)))

	return response, nil
}

// readUpload parses the multipart body and the file it carries.
func (h *DatasetsHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, models.Dataset, fileparser.ParserInfo, error) {
	if r.ContentLength > h.maxBytes {
		return "", nil, fileparser.ParserInfo{}, fmt.Errorf("%w: %d bytes", apperrors.ErrFileTooLarge, r.ContentLength)
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return "", nil, fileparser.ParserInfo{}, fmt.Errorf("%w: multipart form: %w", apperrors.ErrInvalidInput, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		return "", nil, fileparser.ParserInfo{}, fmt.Errorf("%w: missing %q form field: %w", apperrors.ErrInvalidInput, uploadFormField, err)
	}
	defer func() { _ = file.Close() }()

	if !fileparser.IsSupported(header.Filename) {
		return header.Filename, nil, fileparser.ParserInfo{}, fmt.Errorf("%w: %s",
			apperrors.ErrUnsupportedFormat, strings.ToLower(filepath.Ext(header.Filename)))
	}

	data, info, err := fileparser.ParseFile(r.Context(), header.Filename, file)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUnsupportedFormat), errors.Is(err, apperrors.ErrNoData):
		return header.Filename, nil, info, err
	default:
		return header.Filename, nil, info, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	return header.Filename, data, info, nil
}

func (h *DatasetsHandler) parseSample(ctx context.Context) (models.Dataset, fileparser.ParserInfo, error) {
	f, err := os.Open(h.samplePath)
	if err != nil {
		return nil, fileparser.ParserInfo{}, fmt.Errorf("failed to open sample data: %w", err)
	}
	defer func() { _ = f.Close() }()

	return fileparser.ParseFile(ctx, h.samplePath, f)
}

func (h *DatasetsHandler) writeError(w http.ResponseWriter, msg, fileName string, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.String("file_name", fileName), zap.Error(err))
	} else {
		h.logger.Warn(msg, zap.String("file_name", fileName), zap.Error(err))
	}

	if err := ErrorResponse(w, status, code, err.Error()); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
