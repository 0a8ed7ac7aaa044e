package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-migrate/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// ProfilerService builds a DatasetProfile from a parsed tabular dataset.
//
// Profiling is a synchronous, pure computation over the in-memory records:
// every call is independent and the returned profile is never mutated
// afterwards. For each column it runs type inference, statistics collection
// and key-candidate detection; geo-column detection runs once over the column
// list.
type ProfilerService interface {
	// Profile analyzes the dataset. Returns apperrors.ErrNoData when the
	// dataset is nil or empty.
	Profile(data models.Dataset) (*models.DatasetProfile, error)

	// ExtractGeoPoints returns the valid geographic points in the dataset.
	ExtractGeoPoints(data models.Dataset) []models.GeoPoint
}

type profilerService struct {
	keys   KeyDetector
	logger *zap.Logger
}

// NewProfilerService creates a profiler using the given key naming policy.
func NewProfilerService(policy models.KeyPolicy, logger *zap.Logger) ProfilerService {
	return &profilerService{
		keys:   NewKeyDetector(policy),
		logger: logger.Named("profiler"),
	}
}

var _ ProfilerService = (*profilerService)(nil)

// Profile analyzes the dataset.
func (s *profilerService) Profile(data models.Dataset) (*models.DatasetProfile, error) {
	if len(data) == 0 {
		return nil, apperrors.ErrNoData
	}
	if data[0] == nil {
		return nil, fmt.Errorf("first record is empty: %w", apperrors.ErrNoData)
	}

	columns := data.DataColumns()
	rowCount := len(data)

	sampleEnd := min(models.SampleSize, rowCount)
	profile := &models.DatasetProfile{
		RowCount:            rowCount,
		ColumnCount:         len(columns),
		Columns:             columns,
		DataTypes:           make(map[string]models.DataType, len(columns)),
		NullValueCounts:     make(map[string]int, len(columns)),
		UniqueValueCounts:   make(map[string]int, len(columns)),
		Ranges:              make(map[string]models.Range),
		PossiblePrimaryKeys: make([]string, 0),
		PossibleForeignKeys: make([]string, 0),
		Sample:              data[:sampleEnd],
		ColumnProfiles:      make([]models.ColumnProfile, 0, len(columns)),
	}

	for _, column := range columns {
		col := s.profileColumn(column, data.ColumnValues(column), rowCount)

		profile.DataTypes[column] = col.DataType
		profile.NullValueCounts[column] = col.NullCount
		profile.UniqueValueCounts[column] = col.UniqueCount
		if col.Range != nil {
			profile.Ranges[column] = *col.Range
		}
		if col.IsPrimaryKeyCandidate {
			profile.PossiblePrimaryKeys = append(profile.PossiblePrimaryKeys, column)
		}
		if col.IsForeignKeyCandidate {
			profile.PossibleForeignKeys = append(profile.PossibleForeignKeys, column)
		}
		profile.ColumnProfiles = append(profile.ColumnProfiles, col)
	}

	profile.HasGISData = HasGeoColumns(columns)

	s.logger.Debug("Profiled dataset",
		zap.Int("rows", rowCount),
		zap.Int("columns", len(columns)),
		zap.Bool("has_gis_data", profile.HasGISData),
		zap.Strings("primary_key_candidates", profile.PossiblePrimaryKeys),
		zap.Strings("foreign_key_candidates", profile.PossibleForeignKeys),
		zap.String("key_policy", string(s.keys.Policy())))

	return profile, nil
}

func (s *profilerService) profileColumn(column string, values []models.Value, rowCount int) models.ColumnProfile {
	dataType := InferDataType(values)
	stats := CollectColumnStats(values, dataType)
	primary, foreign := s.keys.Classify(column, stats.UniqueCount, rowCount)

	return models.ColumnProfile{
		Name:                  column,
		DataType:              dataType,
		NullCount:             stats.NullCount,
		UniqueCount:           stats.UniqueCount,
		Range:                 stats.Range,
		IsPrimaryKeyCandidate: primary,
		IsForeignKeyCandidate: foreign,
	}
}

// ExtractGeoPoints returns the valid geographic points in the dataset.
func (s *profilerService) ExtractGeoPoints(data models.Dataset) []models.GeoPoint {
	points := ExtractGeoPoints(data)
	if dropped := len(data) - len(points); dropped > 0 {
		s.logger.Debug("Dropped records without valid coordinates",
			zap.Int("records", len(data)),
			zap.Int("points", len(points)),
			zap.Int("dropped", dropped))
	}
	return points
}
