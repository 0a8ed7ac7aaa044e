package services

import (
	"math"

	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// CollectColumnStats computes null count, distinct non-empty value count and,
// for Number columns, the numeric range in a single pass.
//
// Null and empty-string values count as null and are excluded from the
// distinct set. The range only considers number-kind, non-NaN values and is
// nil when there are none or dataType is not Number.
func CollectColumnStats(values []models.Value, dataType models.DataType) models.ColumnStats {
	stats := models.ColumnStats{}
	seen := make(map[models.ValueKey]struct{}, len(values))

	var (
		min, max   float64
		hasNumeric bool
	)

	for _, v := range values {
		if v.IsEmpty() {
			stats.NullCount++
			continue
		}
		seen[v.Key()] = struct{}{}

		f, ok := v.Number()
		if !ok || math.IsNaN(f) {
			continue
		}
		if !hasNumeric {
			min, max = f, f
			hasNumeric = true
			continue
		}
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}

	stats.UniqueCount = len(seen)
	if dataType == models.DataTypeNumber && hasNumeric {
		stats.Range = &models.Range{Min: min, Max: max}
	}
	return stats
}
