package models

// ============================================================================
// Data Types
// ============================================================================

// DataType is the semantic type inferred for a column.
type DataType string

const (
	DataTypeNumber         DataType = "Number"
	DataTypeBoolean        DataType = "Boolean"
	DataTypeDate           DataType = "Date"
	DataTypeNumberAsString DataType = "Number (as string)"
	DataTypeString         DataType = "String"
	DataTypeUnknown        DataType = "Unknown"
)

// SampleSize is the number of leading records kept in a profile for preview.
const SampleSize = 5

// ============================================================================
// Column Profile
// ============================================================================

// Range holds the numeric bounds of a Number column.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ColumnStats is the output of the column statistics pass.
type ColumnStats struct {
	NullCount   int    `json:"null_count"`
	UniqueCount int    `json:"unique_count"`
	Range       *Range `json:"range,omitempty"`
}

// ColumnProfile is the per-column result of profiling.
type ColumnProfile struct {
	Name        string   `json:"name"`
	DataType    DataType `json:"data_type"`
	NullCount   int      `json:"null_count"`
	UniqueCount int      `json:"unique_count"`
	Range       *Range   `json:"range,omitempty"`

	IsPrimaryKeyCandidate bool `json:"is_primary_key_candidate"`
	IsForeignKeyCandidate bool `json:"is_foreign_key_candidate"`
}

// ============================================================================
// Dataset Profile
// ============================================================================

// DatasetProfile is the aggregate analysis of a tabular dataset. It is built
// once per upload and never mutated afterwards.
type DatasetProfile struct {
	RowCount    int      `json:"row_count"`
	ColumnCount int      `json:"column_count"`
	Columns     []string `json:"columns"`

	DataTypes         map[string]DataType `json:"data_types"`
	NullValueCounts   map[string]int      `json:"null_value_counts"`
	UniqueValueCounts map[string]int      `json:"unique_value_counts"`
	Ranges            map[string]Range    `json:"ranges"`

	HasGISData          bool     `json:"has_gis_data"`
	PossiblePrimaryKeys []string `json:"possible_primary_keys"`
	PossibleForeignKeys []string `json:"possible_foreign_keys"`

	// Sample holds the first SampleSize records as given, not copies.
	Sample Dataset `json:"sample"`

	// ColumnProfiles lists the per-column results in column order.
	ColumnProfiles []ColumnProfile `json:"column_profiles"`
}

// Column returns the profile for the named column.
func (p *DatasetProfile) Column(name string) (*ColumnProfile, bool) {
	for i := range p.ColumnProfiles {
		if p.ColumnProfiles[i].Name == name {
			return &p.ColumnProfiles[i], true
		}
	}
	return nil, false
}
