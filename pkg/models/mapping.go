package models

// FieldInfo describes a source or target field on the mapping surface.
type FieldInfo struct {
	Name        string   `json:"name"`
	Type        DataType `json:"type"`
	Sample      Value    `json:"sample"`
	Required    bool     `json:"required,omitempty"`
	Description string   `json:"description,omitempty"`
}

// MappingConfidence grades a suggested source-to-target pairing.
type MappingConfidence string

const (
	ConfidenceHigh   MappingConfidence = "high"
	ConfidenceMedium MappingConfidence = "medium"
	ConfidenceLow    MappingConfidence = "low"
	ConfidenceManual MappingConfidence = "manual"
)

// MappingSuggestion pairs one source field with one target field.
type MappingSuggestion struct {
	ID          int               `json:"id"`
	SourceField string            `json:"source_field"`
	TargetField string            `json:"target_field"`
	Transform   string            `json:"transform"`
	Confidence  MappingConfidence `json:"confidence"`
}
