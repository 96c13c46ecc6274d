// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reconcile

import (
	"fmt"

	"github.com/danielhkuo/votematch/models"
)

// Policy decides whether a preference vector matches a score vector.
type Policy struct {
	// MinAgreement is how many positions must hold equal answers.
	MinAgreement int
}

// StrictPolicy requires every answer to agree.
func StrictPolicy() Policy {
	return Policy{MinAgreement: models.VectorLen}
}

// NewPolicy returns a policy requiring threshold equal positions, 1..3.
func NewPolicy(threshold int) (Policy, error) {
	if threshold < 1 || threshold > models.VectorLen {
		return Policy{}, fmt.Errorf("match threshold must be between 1 and %d, got %d", models.VectorLen, threshold)
	}
	return Policy{MinAgreement: threshold}, nil
}

// Matches reports whether pref agrees with score. Invalid vectors never
// match, and neither does anything under a policy with MinAgreement below 1.
func (p Policy) Matches(score, pref models.Vector) bool {
	if p.MinAgreement < 1 {
		return false
	}
	if score.Validate() != nil || pref.Validate() != nil {
		return false
	}
	return score.Agreement(pref) >= p.MinAgreement
}
