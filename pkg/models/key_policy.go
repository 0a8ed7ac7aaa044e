package models

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-migrate/pkg/apperrors"
)

// KeyPolicy selects how column names are matched against identifier patterns.
type KeyPolicy string

const (
	// KeyPolicyLoose matches any name containing "id" or "key". This is the
	// historical behavior and also matches names like "width" or "valid".
	KeyPolicyLoose KeyPolicy = "loose"
	// KeyPolicyStrict matches names equal to "id", ending in "_id", or
	// containing "key".
	KeyPolicyStrict KeyPolicy = "strict"
)

// ParseKeyPolicy validates and normalizes a policy name. An empty name
// selects the loose policy.
func ParseKeyPolicy(s string) (KeyPolicy, error) {
	switch KeyPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", KeyPolicyLoose:
		return KeyPolicyLoose, nil
	case KeyPolicyStrict:
		return KeyPolicyStrict, nil
	}
	return "", fmt.Errorf("%w: %q (want %q or %q)", apperrors.ErrInvalidKeyPolicy, s, KeyPolicyLoose, KeyPolicyStrict)
}
