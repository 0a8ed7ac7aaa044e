package services

import (
	"strings"
)

// geoColumnPatterns is the single detection policy for geographic columns.
// It is the union of the dataset-level and record-level pattern sets.
var geoColumnPatterns = []string{
	"lat", "latitude",
	"lon", "longitude", "lng",
	"coord", "coordinates", "x_coord", "y_coord",
	"location",
	"geom", "geometry",
	"x_", "y_",
	"x", "y",
}

// Field patterns for geo-point extraction, tried in priority order.
var (
	latitudeFieldPatterns  = []string{"lat", "latitude", "y", "y_coord"}
	longitudeFieldPatterns = []string{"lon", "longitude", "lng", "x", "x_coord"}
	nameFieldPatterns      = []string{"name", "title", "address", "location", "id", "incident_id"}
	typeFieldPatterns      = []string{"type", "category", "incident_type", "class"}
)

// NameMatchesPattern reports whether the lowercased column name contains the
// lowercased pattern. Short patterns match loosely: "city" contains "y" and
// "taxi" contains "x".
func NameMatchesPattern(name, pattern string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}

// HasGeoColumns reports whether any column name looks geographic. It does not
// look at values; ExtractGeoPoints validates coordinates.
func HasGeoColumns(columns []string) bool {
	for _, col := range columns {
		for _, p := range geoColumnPatterns {
			if NameMatchesPattern(col, p) {
				return true
			}
		}
	}
	return false
}

// FindFieldByPattern returns the first key, in key order, matching the first
// pattern (in priority order) that matches any key.
func FindFieldByPattern(keys []string, patterns []string) (string, bool) {
	for _, p := range patterns {
		for _, k := range keys {
			if NameMatchesPattern(k, p) {
				return k, true
			}
		}
	}
	return "", false
}
