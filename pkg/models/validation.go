package models

import (
	"encoding/json"
	"slices"
)

// ============================================================================
// Validation Rules
// ============================================================================

// RuleKind identifies the predicate a validation rule applies.
type RuleKind string

const (
	RuleRequired      RuleKind = "required"
	RuleLength        RuleKind = "length"
	RuleRange         RuleKind = "range"
	RuleRegex         RuleKind = "regex"
	RuleDateFormat    RuleKind = "date_format"
	RuleAllowedValues RuleKind = "allowed_values"
	RuleUnique        RuleKind = "unique"
	RuleDataType      RuleKind = "data_type"
	RuleSQLInjection  RuleKind = "sql_injection"
)

// ValidRuleKinds contains all supported rule kinds.
var ValidRuleKinds = []RuleKind{
	RuleRequired,
	RuleLength,
	RuleRange,
	RuleRegex,
	RuleDateFormat,
	RuleAllowedValues,
	RuleUnique,
	RuleDataType,
	RuleSQLInjection,
}

// IsValidRuleKind checks if the given kind is supported.
func IsValidRuleKind(k RuleKind) bool {
	return slices.Contains(ValidRuleKinds, k)
}

// RuleStatus controls whether a rule runs.
type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "active"
	RuleStatusDraft    RuleStatus = "draft"
	RuleStatusDisabled RuleStatus = "disabled"
)

// ValidationRule is a single field-level predicate.
//
// Params is kept raw because its shape depends on the kind: a string
// ("5,100", "YYYY-MM-DD", "open,closed"), an object ({"min":-90,"max":90})
// or an array of allowed values.
type ValidationRule struct {
	ID      int             `json:"id" yaml:"id"`
	Field   string          `json:"field" yaml:"field"`
	Rule    RuleKind        `json:"rule" yaml:"rule"`
	Params  json.RawMessage `json:"params,omitempty" yaml:"-"`
	Message string          `json:"message" yaml:"message"`
	Status  RuleStatus      `json:"status" yaml:"status"`
}

// IsActive reports whether the rule participates in a test run.
func (r *ValidationRule) IsActive() bool {
	return r.Status == RuleStatusActive
}

// ============================================================================
// Validation Results
// ============================================================================

// FieldError describes one failed rule for one record.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   Value  `json:"value"`
}

// RecordResult is the outcome for a single record.
type RecordResult struct {
	ID     Value        `json:"id"`
	Errors []FieldError `json:"errors"`
	Passed bool         `json:"passed"`
}

// ValidationResults summarizes a test run over a dataset.
type ValidationResults struct {
	Total   int            `json:"total"`
	Passed  int            `json:"passed"`
	Failed  int            `json:"failed"`
	Records []RecordResult `json:"records"`
}
