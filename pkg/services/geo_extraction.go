package services

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// leadingFloat matches the longest numeric prefix of a string.
var leadingFloat = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// geoFields are the columns controlling one record's point.
type geoFields struct {
	lat, lon, name, kind string
	hasLat, hasLon       bool
	hasName, hasKind     bool
}

func discoverGeoFields(all []string) geoFields {
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if k != models.ExtraColumn {
			keys = append(keys, k)
		}
	}

	var f geoFields
	f.lat, f.hasLat = FindFieldByPattern(keys, latitudeFieldPatterns)
	f.lon, f.hasLon = FindFieldByPattern(keys, longitudeFieldPatterns)
	f.name, f.hasName = FindFieldByPattern(keys, nameFieldPatterns)
	f.kind, f.hasKind = FindFieldByPattern(keys, typeFieldPatterns)
	return f
}

// ExtractGeoPoints returns one point per record with a parseable, in-range
// latitude and longitude. Records without such coordinates are dropped, so
// the result never has more points than the input has records.
//
// Fields are discovered against each record's own keys, so datasets whose
// rows carry different columns are handled; discovery is cached per distinct
// key layout.
func ExtractGeoPoints(data models.Dataset) []models.GeoPoint {
	points := make([]models.GeoPoint, 0, len(data))
	if len(data) == 0 {
		return points
	}

	cache := make(map[string]geoFields)
	for _, rec := range data {
		if rec == nil {
			continue
		}

		sig := rec.Signature()
		fields, ok := cache[sig]
		if !ok {
			fields = discoverGeoFields(rec.Keys())
			cache[sig] = fields
		}

		if p, ok := buildGeoPoint(rec, fields); ok {
			points = append(points, p)
		}
	}
	return points
}

func buildGeoPoint(rec *models.Record, f geoFields) (models.GeoPoint, bool) {
	if !f.hasLat || !f.hasLon {
		return models.GeoPoint{}, false
	}

	lat := ParseFloatPrefix(rec.Value(f.lat))
	lon := ParseFloatPrefix(rec.Value(f.lon))
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return models.GeoPoint{}, false
	}
	if !models.ValidCoordinates(lat, lon) {
		return models.GeoPoint{}, false
	}

	name := models.DefaultGeoPointName
	if f.hasName {
		if v := rec.Value(f.name); v.Truthy() {
			name = v.String()
		}
	}

	kind := models.DefaultGeoPointType
	if f.hasKind {
		if v := rec.Value(f.kind); v.Truthy() {
			kind = v.String()
		}
	}

	return models.GeoPoint{
		ID:   geoPointID(rec),
		Lat:  lat,
		Lon:  lon,
		Name: name,
		Type: kind,
	}, true
}

// geoPointID prefers the record's "id", then "incident_id", and falls back to
// a random UUID when neither holds a truthy value.
func geoPointID(rec *models.Record) models.Value {
	for _, key := range []string{"id", "incident_id"} {
		if v := rec.Value(key); v.Truthy() {
			return v
		}
	}
	return models.StringValue(uuid.NewString())
}

// ParseFloatPrefix converts a cell to a float the lenient way: numbers pass
// through, strings are read up to the end of their leading numeric prefix
// ("39.29N" gives 39.29), and anything else is NaN.
func ParseFloatPrefix(v models.Value) float64 {
	if f, ok := v.Number(); ok {
		return f
	}
	s, ok := v.Str()
	if !ok {
		return math.NaN()
	}

	m := leadingFloat.FindString(strings.TrimLeftFunc(s, isLeadingSpace))
	if m == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}

func isLeadingSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
