package services

import (
	"strings"

	"github.com/ekaya-inc/ekaya-migrate/pkg/models"
)

// KeyDetector flags primary-key and foreign-key candidate columns.
type KeyDetector struct {
	policy models.KeyPolicy
}

// NewKeyDetector creates a detector for the given policy.
func NewKeyDetector(policy models.KeyPolicy) KeyDetector {
	if policy == "" {
		policy = models.KeyPolicyLoose
	}
	return KeyDetector{policy: policy}
}

// Policy returns the active naming policy.
func (d KeyDetector) Policy() models.KeyPolicy {
	return d.policy
}

// LooksLikeKey reports whether the column name suggests an identifier.
func (d KeyDetector) LooksLikeKey(column string) bool {
	name := strings.ToLower(column)
	if strings.Contains(name, "key") {
		return true
	}
	if d.policy == models.KeyPolicyStrict {
		return name == "id" || strings.HasSuffix(name, "_id")
	}
	return strings.Contains(name, "id")
}

// Classify decides primary-key status first, then foreign-key status. A
// column is never both.
func (d KeyDetector) Classify(column string, uniqueCount, rowCount int) (primary, foreign bool) {
	if !d.LooksLikeKey(column) {
		return false, false
	}
	if uniqueCount == rowCount {
		return true, false
	}
	return false, true
}
