package services

import (
	"math"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// MappingService proposes how profiled source columns line up with the
// fields of a target schema.
type MappingService interface {
	// SourceFields describes each profiled column as a mappable field.
	SourceFields(profile *models.DatasetProfile) []models.FieldInfo

	// SuggestMappings pairs source fields with target fields by name.
	SuggestMappings(source, target []models.FieldInfo) []models.MappingSuggestion

	// Completeness returns the rounded percentage of required target fields
	// covered by mappings. With no required fields it is 100.
	Completeness(mappings []models.MappingSuggestion, target []models.FieldInfo) int
}

type mappingService struct {
	logger *zap.Logger
}

// NewMappingService creates a mapping service.
func NewMappingService(logger *zap.Logger) MappingService {
	return &mappingService{logger: logger.Named("mapping")}
}

var _ MappingService = (*mappingService)(nil)

func (s *mappingService) SourceFields(profile *models.DatasetProfile) []models.FieldInfo {
	if profile == nil {
		return []models.FieldInfo{}
	}

	var first *models.Record
	if len(profile.Sample) > 0 {
		first = profile.Sample[0]
	}

	fields := make([]models.FieldInfo, 0, len(profile.Columns))
	for _, col := range profile.Columns {
		fields = append(fields, models.FieldInfo{
			Name:   col,
			Type:   profile.DataTypes[col],
			Sample: first.Value(col),
		})
	}
	return fields
}

func (s *mappingService) SuggestMappings(source, target []models.FieldInfo) []models.MappingSuggestion {
	suggestions := make([]models.MappingSuggestion, 0, len(source))
	used := make(map[string]bool, len(target))

	for _, src := range source {
		srcNorm := normalizeFieldName(src.Name)
		if srcNorm == "" {
			continue
		}

		best, bestConf := "", models.MappingConfidence("")
		for _, tgt := range target {
			if used[tgt.Name] {
				continue
			}
			conf, ok := matchFieldNames(srcNorm, normalizeFieldName(tgt.Name))
			if !ok {
				continue
			}
			if best == "" || confidenceRank(conf) > confidenceRank(bestConf) {
				best, bestConf = tgt.Name, conf
			}
			if conf == models.ConfidenceHigh {
				break
			}
		}
		if best == "" {
			continue
		}

		used[best] = true
		suggestions = append(suggestions, models.MappingSuggestion{
			ID:          len(suggestions) + 1,
			SourceField: src.Name,
			TargetField: best,
			Transform:   "direct",
			Confidence:  bestConf,
		})
	}

	s.logger.Debug("Suggested field mappings",
		zap.Int("source_fields", len(source)),
		zap.Int("target_fields", len(target)),
		zap.Int("suggestions", len(suggestions)))

	return suggestions
}

func (s *mappingService) Completeness(mappings []models.MappingSuggestion, target []models.FieldInfo) int {
	mapped := make(map[string]bool, len(mappings))
	for _, m := range mappings {
		mapped[m.TargetField] = true
	}

	required, covered := 0, 0
	for _, t := range target {
		if !t.Required {
			continue
		}
		required++
		if mapped[t.Name] {
			covered++
		}
	}
	if required == 0 {
		return 100
	}
	return int(math.Round(float64(covered) * 100 / float64(required)))
}

func confidenceRank(c models.MappingConfidence) int {
	switch c {
	case models.ConfidenceHigh:
		return 3
	case models.ConfidenceMedium:
		return 2
	case models.ConfidenceLow:
		return 1
	}
	return 0
}

// matchFieldNames grades two normalized names.
func matchFieldNames(a, b string) (models.MappingConfidence, bool) {
	if a == "" || b == "" {
		return "", false
	}
	if a == b {
		return models.ConfidenceHigh, true
	}
	ja, jb := strings.ReplaceAll(a, "_", ""), strings.ReplaceAll(b, "_", "")
	if strings.Contains(ja, jb) || strings.Contains(jb, ja) {
		return models.ConfidenceMedium, true
	}
	ta := strings.Split(a, "_")
	for _, tb := range strings.Split(b, "_") {
		for _, t := range ta {
			if t == tb {
				return models.ConfidenceLow, true
			}
		}
	}
	return "", false
}

// normalizeFieldName lowercases a name, splits camelCase and separators into
// "_" joined tokens, and singularizes each token ("IncidentDates" becomes
// "incident_date").
func normalizeFieldName(name string) string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, inflection.Singular(strings.ToLower(string(cur))))
			cur = cur[:0]
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return strings.Join(tokens, "_")
}
