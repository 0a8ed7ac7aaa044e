package services

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	libinjection "github.com/corazawaf/libinjection-go"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-migrate/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-migrate/pkg/jsonutil"
	"github.com/ekaya-inc/ekaya-migrate/pkg/logging"
	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// isoDatePattern backs the "YYYY-MM-DD" date_format rule.
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidationService evaluates field-level validation rules against records.
//
// Rules are checked one field at a time. A rule that cannot be evaluated
// (bad regex, unreadable params, unknown kind) fails the record it is applied
// to rather than aborting the run.
type ValidationService interface {
	// TestRules runs every active rule against every record.
	TestRules(rules []models.ValidationRule, data models.Dataset) *models.ValidationResults

	// DefaultRules returns the rule set used when a caller supplies none.
	DefaultRules() []models.ValidationRule

	// LoadRules reads a YAML rule file.
	LoadRules(path string) ([]models.ValidationRule, error)
}

type validationService struct {
	defaults []models.ValidationRule
	logger   *zap.Logger
}

// NewValidationService creates a validation service. When defaults is empty
// the built-in demonstration rules are used.
func NewValidationService(defaults []models.ValidationRule, logger *zap.Logger) ValidationService {
	if len(defaults) == 0 {
		defaults = BuiltinValidationRules()
	}
	return &validationService{
		defaults: defaults,
		logger:   logger.Named("validation"),
	}
}

var _ ValidationService = (*validationService)(nil)

// BuiltinValidationRules is the demonstration rule set for incident data.
func BuiltinValidationRules() []models.ValidationRule {
	return []models.ValidationRule{
		{ID: 1, Field: "address", Rule: models.RuleRequired, Message: "Address is required", Status: models.RuleStatusActive},
		{ID: 2, Field: "incident_date", Rule: models.RuleDateFormat, Params: json.RawMessage(`"YYYY-MM-DD"`), Message: "Invalid date format", Status: models.RuleStatusActive},
		{ID: 3, Field: "latitude", Rule: models.RuleRange, Params: json.RawMessage(`{"min":-90,"max":90}`), Message: "Latitude must be between -90 and 90", Status: models.RuleStatusActive},
		{ID: 4, Field: "longitude", Rule: models.RuleRange, Params: json.RawMessage(`{"min":-180,"max":180}`), Message: "Longitude must be between -180 and 180", Status: models.RuleStatusActive},
		{ID: 5, Field: "status", Rule: models.RuleAllowedValues, Params: json.RawMessage(`["open","closed","in-progress"]`), Message: "Invalid status value", Status: models.RuleStatusActive},
		{ID: 6, Field: "email", Rule: models.RuleRegex, Params: json.RawMessage(`"^[\\w.-]+@([\\w-]+\\.)+[\\w-]{2,4}$"`), Message: "Invalid email format", Status: models.RuleStatusDraft},
	}
}

func (s *validationService) DefaultRules() []models.ValidationRule {
	out := make([]models.ValidationRule, len(s.defaults))
	copy(out, s.defaults)
	return out
}

// ruleFile is the on-disk YAML layout.
type ruleFile struct {
	Rules []ruleFileEntry `yaml:"rules"`
}

type ruleFileEntry struct {
	ID      int               `yaml:"id"`
	Field   string            `yaml:"field"`
	Rule    models.RuleKind   `yaml:"rule"`
	Params  any               `yaml:"params"`
	Message string            `yaml:"message"`
	Status  models.RuleStatus `yaml:"status"`
}

func (s *validationService) LoadRules(path string) ([]models.ValidationRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rules, err := ParseRulesYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	s.logger.Info("Loaded validation rules",
		zap.String("path", path),
		zap.Int("rules", len(rules)))
	return rules, nil
}

// ParseRulesYAML decodes and checks a YAML rule document.
func ParseRulesYAML(data []byte) ([]models.ValidationRule, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	rules := make([]models.ValidationRule, 0, len(file.Rules))
	for i, e := range file.Rules {
		rule := models.ValidationRule{
			ID:      e.ID,
			Field:   e.Field,
			Rule:    e.Rule,
			Message: e.Message,
			Status:  e.Status,
		}
		if rule.ID == 0 {
			rule.ID = i + 1
		}
		if rule.Status == "" {
			rule.Status = models.RuleStatusActive
		}
		if e.Params != nil {
			raw, err := json.Marshal(e.Params)
			if err != nil {
				return nil, fmt.Errorf("rule %d: params: %w", rule.ID, err)
			}
			rule.Params = raw
		}
		if err := CheckRule(rule); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// CheckRule verifies that a rule names a field, a message and a known kind.
func CheckRule(rule models.ValidationRule) error {
	switch {
	case strings.TrimSpace(rule.Field) == "":
		return fmt.Errorf("%w: rule %d has no field", apperrors.ErrInvalidRule, rule.ID)
	case strings.TrimSpace(rule.Message) == "":
		return fmt.Errorf("%w: rule %d has no message", apperrors.ErrInvalidRule, rule.ID)
	case !models.IsValidRuleKind(rule.Rule):
		return fmt.Errorf("%w: rule %d has unknown kind %q", apperrors.ErrInvalidRule, rule.ID, rule.Rule)
	}
	return nil
}

func (s *validationService) TestRules(rules []models.ValidationRule, data models.Dataset) *models.ValidationResults {
	results := &models.ValidationResults{
		Total:   len(data),
		Records: make([]models.RecordResult, 0, len(data)),
	}

	active := make([]*compiledRule, 0, len(rules))
	for i := range rules {
		if !rules[i].IsActive() {
			continue
		}
		cr := compileRule(rules[i], data)
		if cr.err != nil {
			s.logger.Warn("Validation rule cannot be evaluated",
				zap.Int("rule_id", cr.rule.ID),
				zap.String("field", cr.rule.Field),
				zap.String("rule", string(cr.rule.Rule)),
				zap.Error(cr.err))
		}
		active = append(active, cr)
	}

	for i, rec := range data {
		rr := models.RecordResult{
			ID:     recordID(rec, i),
			Errors: make([]models.FieldError, 0),
			Passed: true,
		}

		for _, cr := range active {
			if !rec.Has(cr.rule.Field) {
				continue
			}
			value := rec.Value(cr.rule.Field)
			if cr.check(value) {
				continue
			}
			rr.Errors = append(rr.Errors, models.FieldError{
				Field:   cr.rule.Field,
				Message: cr.rule.Message,
				Value:   value,
			})
			rr.Passed = false

			s.logger.Debug("Record failed validation rule",
				zap.Int("row", i+1),
				zap.Int("rule_id", cr.rule.ID),
				zap.String("field", cr.rule.Field),
				zap.String("value", logging.SanitizeValue(value.String())))
		}

		if rr.Passed {
			results.Passed++
		} else {
			results.Failed++
		}
		results.Records = append(results.Records, rr)
	}

	s.logger.Debug("Validation run complete",
		zap.Int("rules", len(active)),
		zap.Int("total", results.Total),
		zap.Int("passed", results.Passed),
		zap.Int("failed", results.Failed))

	return results
}

func recordID(rec *models.Record, index int) models.Value {
	if v, ok := rec.Get("id"); ok && !v.IsNull() {
		return v
	}
	return models.NumberValue(float64(index + 1))
}

// compiledRule is a rule with its params decoded once per run.
type compiledRule struct {
	rule  models.ValidationRule
	err   error
	check func(models.Value) bool
}

func compileRule(rule models.ValidationRule, data models.Dataset) *compiledRule {
	cr := &compiledRule{rule: rule}
	check, err := buildCheck(rule, data)
	if err != nil {
		cr.err = err
		cr.check = func(models.Value) bool { return false }
		return cr
	}
	cr.check = check
	return cr
}

func buildCheck(rule models.ValidationRule, data models.Dataset) (func(models.Value) bool, error) {
	switch rule.Rule {
	case models.RuleRequired:
		return func(v models.Value) bool { return !v.IsEmpty() }, nil

	case models.RuleLength:
		bounds, err := jsonutil.FlexibleBounds(rule.Params)
		if err != nil {
			return nil, fmt.Errorf("%w: length params: %v", apperrors.ErrInvalidRule, err)
		}
		// A zero max length means no upper limit.
		if bounds.Max != nil && *bounds.Max == 0 {
			bounds.Max = nil
		}
		return func(v models.Value) bool {
			s, ok := v.Str()
			if !ok {
				return false
			}
			return bounds.Contains(float64(utf8.RuneCountInString(s)))
		}, nil

	case models.RuleRange:
		bounds, err := jsonutil.FlexibleBounds(rule.Params)
		if err != nil {
			return nil, fmt.Errorf("%w: range params: %v", apperrors.ErrInvalidRule, err)
		}
		return func(v models.Value) bool {
			f, ok := v.Number()
			if !ok {
				return false
			}
			return bounds.Contains(f)
		}, nil

	case models.RuleRegex:
		pattern := jsonutil.FlexibleStringValue(rule.Params)
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: regex %s: %v", apperrors.ErrInvalidRule, logging.TruncateString(pattern, 64), err)
		}
		return func(v models.Value) bool { return re.MatchString(v.String()) }, nil

	case models.RuleDateFormat:
		if jsonutil.FlexibleStringValue(rule.Params) == "YYYY-MM-DD" {
			return func(v models.Value) bool { return isoDatePattern.MatchString(v.String()) }, nil
		}
		return func(v models.Value) bool { return IsDateString(v.String()) }, nil

	case models.RuleAllowedValues:
		allowed, err := jsonutil.FlexibleStringList(rule.Params)
		if err != nil {
			return nil, fmt.Errorf("%w: allowed_values params: %v", apperrors.ErrInvalidRule, err)
		}
		set := make(map[string]struct{}, len(allowed))
		for _, a := range allowed {
			set[strings.ToLower(a)] = struct{}{}
		}
		return func(v models.Value) bool {
			_, ok := set[strings.ToLower(v.String())]
			return ok
		}, nil

	case models.RuleUnique:
		counts := make(map[models.ValueKey]int, len(data))
		for _, rec := range data {
			if v, ok := rec.Get(rule.Field); ok && !v.IsEmpty() {
				counts[v.Key()]++
			}
		}
		return func(v models.Value) bool {
			return v.IsEmpty() || counts[v.Key()] <= 1
		}, nil

	case models.RuleDataType:
		want := strings.ToLower(jsonutil.FlexibleStringValue(rule.Params))
		return func(v models.Value) bool {
			switch want {
			case "number":
				return v.Kind() == models.KindNumber
			case "string":
				return v.Kind() == models.KindString
			case "boolean":
				return v.Kind() == models.KindBoolean
			}
			return true
		}, nil

	case models.RuleSQLInjection:
		return func(v models.Value) bool {
			s, ok := v.Str()
			if !ok {
				return true
			}
			isSQLi, _ := libinjection.IsSQLi(s)
			return !isSQLi
		}, nil
	}

	return nil, fmt.Errorf("%w: unknown kind %q", apperrors.ErrInvalidRule, rule.Rule)
}
