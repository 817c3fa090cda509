// Package aggregate computes per-category and overall consensus scores
// from the normalized, validated assessment set.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/okian/concord/internal/domain/model"
	"github.com/okian/concord/internal/domain/rubric"
)

// Contribution is one assessor's weighted score in one category.
type Contribution struct {
	SourceID string  `json:"source_id"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
}

// CategoryConsensus is the aggregate outcome for one canonical category.
// A category nobody rated carries a nil Consensus and the
// InsufficientData marker; it is never reported as zero.
type CategoryConsensus struct {
	Key              string         `json:"key"`
	Consensus        *float64       `json:"consensus"`
	InsufficientData bool           `json:"insufficient_data"`
	Contributions    []Contribution `json:"contributions,omitempty"`
}

// Result holds consensus scores for every rubric category plus the
// weight-renormalized overall score.
type Result struct {
	Categories []CategoryConsensus `json:"categories"`
	Overall    *float64            `json:"overall"`
}

// Category returns the consensus entry for a key, or nil.
func (r Result) Category(key string) *CategoryConsensus {
	for i := range r.Categories {
		if r.Categories[i].Key == key {
			return &r.Categories[i]
		}
	}
	return nil
}

// Aggregator reduces canonical assessments into a Result. All iteration
// is over sorted keys and sorted assessor ids, so the outcome is
// identical for every permutation of the input.
type Aggregator struct {
	rubric        rubric.Rubric
	weights       map[string]float64
	defaultWeight float64
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithAssessorWeights configures per-assessor aggregation weights.
// Assessors not listed get the default weight.
func WithAssessorWeights(weights map[string]float64, defaultWeight float64) Option {
	return func(g *Aggregator) {
		g.weights = make(map[string]float64, len(weights))
		for id, w := range weights {
			if w > 0 {
				g.weights[id] = w
			}
		}
		if defaultWeight > 0 {
			g.defaultWeight = defaultWeight
		}
	}
}

// NewAggregator creates an Aggregator over the canonical rubric.
func NewAggregator(r rubric.Rubric, opts ...Option) *Aggregator {
	g := &Aggregator{
		rubric:        r,
		weights:       make(map[string]float64),
		defaultWeight: 1.0,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Aggregate computes the consensus for every rubric category. Abstaining
// assessors are excluded from both numerator and denominator, so adding
// an abstainer never moves a category's consensus.
func (g *Aggregator) Aggregate(cas []model.CanonicalAssessment) (Result, error) {
	// A score keyed outside the rubric means the mapping table points at
	// a category with no canonical definition.
	for _, ca := range cas {
		for key := range ca.Scores {
			if !g.rubric.Has(key) {
				return Result{}, fmt.Errorf("%w: assessor %s scored unknown category %q", ErrInvariantViolation, ca.SourceID, key)
			}
		}
	}

	ordered := make([]model.CanonicalAssessment, len(cas))
	copy(ordered, cas)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].SourceID < ordered[j].SourceID })

	res := Result{}
	var overallNum, overallDen float64
	for _, key := range g.rubric.Keys() {
		cc := CategoryConsensus{Key: key}

		var num, den float64
		for _, ca := range ordered {
			score, ok := ca.Scores[key]
			if !ok {
				continue
			}
			w := g.assessorWeight(ca.SourceID)
			cc.Contributions = append(cc.Contributions, Contribution{
				SourceID: ca.SourceID,
				Score:    score,
				Weight:   w,
			})
			num += w * score
			den += w
		}

		if den == 0 {
			cc.InsufficientData = true
		} else {
			v := num / den
			cc.Consensus = &v
			overallNum += g.rubric.Weight(key) * v
			overallDen += g.rubric.Weight(key)
		}

		res.Categories = append(res.Categories, cc)
	}

	// Re-normalize over the categories that were actually judged, so
	// insufficient-data categories never drag the overall score down.
	if overallDen > 0 {
		v := overallNum / overallDen
		res.Overall = &v
	}

	return res, nil
}

func (g *Aggregator) assessorWeight(id string) float64 {
	if w, ok := g.weights[id]; ok {
		return w
	}
	return g.defaultWeight
}
