package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

func TestNormalizeFieldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"IncidentDates", "incident_date"},
		{"incident dates", "incident_date"},
		{"incident-date", "incident_date"},
		{"  Latitude ", "latitude"},
		{"__", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeFieldName(tt.in))
		})
	}
}

func TestMatchFieldNames(t *testing.T) {
	c, ok := matchFieldNames("incident_date", "incident_date")
	require.True(t, ok)
	assert.Equal(t, models.ConfidenceHigh, c)

	c, ok = matchFieldNames("lat", "latitude")
	require.True(t, ok)
	assert.Equal(t, models.ConfidenceMedium, c)

	c, ok = matchFieldNames("first_name", "name_last")
	require.True(t, ok)
	assert.Equal(t, models.ConfidenceLow, c)

	_, ok = matchFieldNames("amount", "city")
	assert.False(t, ok)
}

func TestMappingService_SuggestMappings(t *testing.T) {
	svc := NewMappingService(zap.NewNop())
	source := []models.FieldInfo{
		{Name: "IncidentDates"},
		{Name: "lat"},
		{Name: "full_name"},
		{Name: "foo"},
	}
	target := []models.FieldInfo{
		{Name: "incident_date"},
		{Name: "latitude", Required: true},
		{Name: "name", Required: true},
		{Name: "city", Required: true},
	}

	got := svc.SuggestMappings(source, target)

	require.Len(t, got, 3)
	assert.Equal(t, models.MappingSuggestion{ID: 1, SourceField: "IncidentDates", TargetField: "incident_date", Transform: "direct", Confidence: models.ConfidenceHigh}, got[0])
	assert.Equal(t, "latitude", got[1].TargetField)
	assert.Equal(t, models.ConfidenceMedium, got[1].Confidence)
	assert.Equal(t, "name", got[2].TargetField)
	assert.Equal(t, 3, got[2].ID)

	assert.Equal(t, 67, svc.Completeness(got, target))
}

func TestMappingService_SuggestMappings_TargetUsedOnce(t *testing.T) {
	svc := NewMappingService(zap.NewNop())
	source := []models.FieldInfo{{Name: "Status"}, {Name: "status"}}
	target := []models.FieldInfo{{Name: "status"}}

	got := svc.SuggestMappings(source, target)

	require.Len(t, got, 1)
	assert.Equal(t, "Status", got[0].SourceField)
}

func TestMappingService_SuggestMappings_PrefersBetterTarget(t *testing.T) {
	svc := NewMappingService(zap.NewNop())
	source := []models.FieldInfo{{Name: "latitude"}}
	target := []models.FieldInfo{{Name: "lat"}, {Name: "latitude"}}

	got := svc.SuggestMappings(source, target)

	require.Len(t, got, 1)
	assert.Equal(t, "latitude", got[0].TargetField)
	assert.Equal(t, models.ConfidenceHigh, got[0].Confidence)
}

func TestMappingService_Completeness_NoRequired(t *testing.T) {
	svc := NewMappingService(zap.NewNop())

	assert.Equal(t, 100, svc.Completeness(nil, []models.FieldInfo{{Name: "a"}}))
	assert.Equal(t, 0, svc.Completeness(nil, []models.FieldInfo{{Name: "a", Required: true}}))
}

func TestMappingService_SourceFields(t *testing.T) {
	profiler := NewProfilerService(models.KeyPolicyLoose, zap.NewNop())
	profile, err := profiler.Profile(models.Dataset{
		models.RecordOf("id", 1, "name", "Main St"),
		models.RecordOf("id", 2, "name", "Elm St"),
	})
	require.NoError(t, err)

	fields := NewMappingService(zap.NewNop()).SourceFields(profile)

	require.Len(t, fields, 2)
	assert.Equal(t, models.FieldInfo{Name: "id", Type: models.DataTypeNumber, Sample: models.NumberValue(1)}, fields[0])
	assert.Equal(t, models.FieldInfo{Name: "name", Type: models.DataTypeString, Sample: models.StringValue("Main St")}, fields[1])

	assert.Empty(t, NewMappingService(zap.NewNop()).SourceFields(nil))
}
