// Package rubric defines the canonical scoring rubric and the mapping of
// assessor-local category labels onto it.
package rubric

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/concord/internal/domain/model"
)

// weightEpsilon is the tolerance for the weight-sum invariant.
const weightEpsilon = 1e-6

// Rubric is the fixed, weighted set of canonical scoring categories.
type Rubric struct {
	Categories []model.RubricCategory `koanf:"categories"`
}

// Validate enforces the rubric invariants: non-empty unique keys, weights
// in [0,1], and weights summing to 1 within epsilon.
func (r Rubric) Validate() error {
	if len(r.Categories) == 0 {
		return fmt.Errorf("%w: no categories defined", ErrInvalidRubric)
	}

	seen := make(map[string]bool, len(r.Categories))
	sum := 0.0
	for _, c := range r.Categories {
		if c.Key == "" {
			return fmt.Errorf("%w: category with empty key", ErrInvalidRubric)
		}
		if seen[c.Key] {
			return fmt.Errorf("%w: duplicate category key %q", ErrInvalidRubric, c.Key)
		}
		seen[c.Key] = true
		if c.Weight < 0 || c.Weight > 1 {
			return fmt.Errorf("%w: category %q weight %v outside [0,1]", ErrInvalidRubric, c.Key, c.Weight)
		}
		sum += c.Weight
	}

	if math.Abs(sum-1) > weightEpsilon {
		return fmt.Errorf("%w: category weights sum to %v, want 1", ErrInvalidRubric, sum)
	}
	return nil
}

// Has reports whether key is a canonical category of this rubric.
func (r Rubric) Has(key string) bool {
	for _, c := range r.Categories {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Weight returns the weight of the given canonical key, or 0 if absent.
func (r Rubric) Weight(key string) float64 {
	for _, c := range r.Categories {
		if c.Key == key {
			return c.Weight
		}
	}
	return 0
}

// Keys returns the canonical category keys in sorted order. All
// reductions iterate categories in this order so results never depend on
// declaration order.
func (r Rubric) Keys() []string {
	keys := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		keys[i] = c.Key
	}
	sort.Strings(keys)
	return keys
}
