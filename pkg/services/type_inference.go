package services

import (
	"math"
	"strconv"

	"github.com/araddon/dateparse"

	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// RepresentativeSample returns the first non-null, non-empty value in the
// column and whether one exists.
func RepresentativeSample(values []models.Value) (models.Value, bool) {
	for _, v := range values {
		if !v.IsEmpty() {
			return v, true
		}
	}
	return models.Null(), false
}

// InferDataType classifies a column from its representative sample.
//
// Only the first non-empty value is inspected; mixed-type columns are not
// reconciled. For strings, date parsing is tried before the numeric
// round-trip check so that compact dates like "20230501" classify as Date.
func InferDataType(values []models.Value) models.DataType {
	sample, ok := RepresentativeSample(values)
	if !ok {
		return models.DataTypeUnknown
	}

	switch sample.Kind() {
	case models.KindNumber:
		return models.DataTypeNumber
	case models.KindBoolean:
		return models.DataTypeBoolean
	case models.KindString:
		s, _ := sample.Str()
		if IsDateString(s) {
			return models.DataTypeDate
		}
		if IsNumericString(s) {
			return models.DataTypeNumberAsString
		}
		return models.DataTypeString
	}

	return models.DataType(sample.Kind().String())
}

// IsDateString reports whether s parses as a calendar date or timestamp.
func IsDateString(s string) bool {
	_, err := dateparse.ParseAny(s)
	return err == nil
}

// IsNumericString reports whether s is a number written in canonical form:
// parsing it and formatting the result gives back exactly s. "42" and "3.5"
// qualify, "007", "1.50" and "+3" do not.
func IsNumericString(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return false
	}
	return models.FormatNumber(f) == s
}
