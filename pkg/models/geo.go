package models

// Coordinate bounds for a valid geographic point.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Defaults applied when a record has no usable name or category.
const (
	DefaultGeoPointName = "Location"
	DefaultGeoPointType = "Unknown"
)

// GeoPoint is a validated coordinate plus display metadata derived from one
// record.
type GeoPoint struct {
	// ID is the record's own id (string or number) or a generated token.
	ID   Value   `json:"id"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
	Type string  `json:"type"`
}

// ValidCoordinates reports whether lat/lon fall inside the inclusive bounds.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= MinLatitude && lat <= MaxLatitude &&
		lon >= MinLongitude && lon <= MaxLongitude
}
