package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// FlexibleStringValue converts a json.RawMessage to a string, accepting
// numbers and booleans where a string is expected. Returns empty string for
// null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}

	var v models.Value
	if err := v.UnmarshalJSON(raw); err != nil {
		// Objects and arrays: return raw string representation
		return string(raw)
	}
	return v.String()
}

// FlexibleFloat reads a number given either as a JSON number or as a numeric
// string ("-90", " 12.5 ").
func FlexibleFloat(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FlexibleStringList reads either a JSON array of scalars or a single
// comma-separated string. Items are trimmed; empty items are dropped.
func FlexibleStringList(raw json.RawMessage) ([]string, error) {
	if isNull(raw) {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := strings.TrimSpace(FlexibleStringValue(item)); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("expected array or comma-separated string: %w", err)
	}
	return splitList(s), nil
}

// Bounds is an optional inclusive [Min, Max] interval.
type Bounds struct {
	Min *float64
	Max *float64
}

// Contains reports whether f lies within the bounds. Missing ends are open.
func (b Bounds) Contains(f float64) bool {
	if b.Min != nil && f < *b.Min {
		return false
	}
	if b.Max != nil && f > *b.Max {
		return false
	}
	return true
}

// FlexibleBounds reads an interval written as an object ({"min":-90,"max":90}),
// a "min,max" string, a single "max" string, or a bare number (max only).
func FlexibleBounds(raw json.RawMessage) (Bounds, error) {
	if isNull(raw) {
		return Bounds{}, fmt.Errorf("missing bounds")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		var b Bounds
		if v, ok := obj["min"]; ok && !isNull(v) {
			f, ok := FlexibleFloat(v)
			if !ok {
				return Bounds{}, fmt.Errorf("invalid min %s", v)
			}
			b.Min = &f
		}
		if v, ok := obj["max"]; ok && !isNull(v) {
			f, ok := FlexibleFloat(v)
			if !ok {
				return Bounds{}, fmt.Errorf("invalid max %s", v)
			}
			b.Max = &f
		}
		return b, nil
	}

	if f, ok := FlexibleFloat(raw); ok {
		return Bounds{Max: &f}, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return Bounds{}, fmt.Errorf("unsupported bounds %s", raw)
	}
	lo, hi, found := strings.Cut(s, ",")
	if !found {
		return Bounds{}, fmt.Errorf("invalid bounds %q", s)
	}

	var b Bounds
	if lo = strings.TrimSpace(lo); lo != "" {
		f, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("invalid min %q", lo)
		}
		b.Min = &f
	}
	if hi = strings.TrimSpace(hi); hi != "" {
		f, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("invalid max %q", hi)
		}
		b.Max = &f
	}
	return b, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || strings.TrimSpace(string(raw)) == "null"
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
