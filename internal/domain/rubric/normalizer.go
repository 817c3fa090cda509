package rubric

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/concord/internal/domain/model"
	"github.com/okian/concord/pkg/logger"
)

// Normalizer re-keys raw assessments onto the canonical rubric. It is a
// pure function over (mapping table, assessment); the same inputs always
// produce the same CanonicalAssessment.
type Normalizer struct {
	mapping *Mapping
	log     logger.Logger
}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithLogger sets a custom logger for the normalizer.
func WithLogger(log logger.Logger) Option {
	return func(n *Normalizer) {
		if log != nil {
			n.log = log
		}
	}
}

// NewNormalizer creates a Normalizer over the given mapping table.
func NewNormalizer(mapping *Mapping, opts ...Option) *Normalizer {
	n := &Normalizer{mapping: mapping}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize maps a raw assessment's category labels onto canonical keys.
// Labels with no mapping entry are dropped with a recorded warning, never
// silently merged elsewhere. A label resolving to two canonical keys is
// an ambiguity error, fatal for this assessment alone. Categories the
// assessor never rated stay absent: an abstention, not a zero.
func (n *Normalizer) Normalize(ctx context.Context, a model.Assessment) (model.CanonicalAssessment, error) {
	ca := model.CanonicalAssessment{
		SourceID:  a.SourceID,
		Cost:      a.Cost,
		Scores:    make(map[string]float64, len(a.CategoryScores)),
		Timestamp: a.Timestamp,
	}

	// Sorted label order keeps warning order and many-to-one merging
	// independent of map iteration.
	labels := make([]string, 0, len(a.CategoryScores))
	for label := range a.CategoryScores {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, label := range labels {
		key, ok, err := n.mapping.Resolve(a.SourceID, label)
		if err != nil {
			return model.CanonicalAssessment{}, err
		}
		if !ok {
			ca.Warnings = append(ca.Warnings, fmt.Sprintf("assessor %s: score label %q dropped: no mapping entry", a.SourceID, label))
			continue
		}
		sums[key] += a.CategoryScores[label]
		counts[key]++
	}
	// Several local labels may map onto one canonical key; their scores
	// are averaged.
	for key, sum := range sums {
		ca.Scores[key] = sum / float64(counts[key])
	}

	for _, f := range a.Findings {
		key, ok, err := n.mapping.Resolve(a.SourceID, f.Category)
		if err != nil {
			return model.CanonicalAssessment{}, err
		}
		if !ok {
			ca.Warnings = append(ca.Warnings, fmt.Sprintf("assessor %s: finding %q dropped: no mapping entry for category %q", a.SourceID, truncate(f.Description), f.Category))
			continue
		}
		nf := f
		nf.Category = key
		if f.Citation != nil {
			c := *f.Citation
			nf.Citation = &c
		}
		ca.Findings = append(ca.Findings, nf)
	}

	if n.log != nil && len(ca.Warnings) > 0 {
		n.log.Warn(ctx, "labels dropped during normalization",
			logger.String("source", a.SourceID),
			logger.Int("dropped", len(ca.Warnings)),
		)
	}

	return ca, nil
}

const truncateLen = 60

func truncate(s string) string {
	if len(s) <= truncateLen {
		return s
	}
	return s[:truncateLen] + "..."
}
