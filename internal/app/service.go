// Package app wires the pipeline stages into a single reconciliation
// run: ingest, normalize, verify evidence, aggregate, detect
// discrepancies, rank cost efficiency, synthesize.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/concord/internal/domain/aggregate"
	"github.com/okian/concord/internal/domain/costquality"
	"github.com/okian/concord/internal/domain/discrepancy"
	"github.com/okian/concord/internal/domain/evidence"
	"github.com/okian/concord/internal/domain/model"
	"github.com/okian/concord/internal/domain/rubric"
	"github.com/okian/concord/internal/ingest"
	"github.com/okian/concord/internal/report"
	"github.com/okian/concord/pkg/logger"
	"github.com/okian/concord/pkg/metrics"
)

// Service runs the full reconciliation pipeline over one directory of
// assessment records.
type Service struct {
	rubric  rubric.Rubric
	mapping *rubric.Mapping
	snap    evidence.Snapshot

	workerCount     int
	citationTimeout time.Duration
	maxScore        float64

	contestedVariance   float64
	confidenceThreshold float64
	similarity          float64

	assessorWeights map[string]float64
	defaultWeight   float64

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSnapshot sets the artifact snapshot citations are verified
// against. Without one, every citation stays unknown.
func WithSnapshot(snap evidence.Snapshot) Option {
	return func(s *Service) {
		s.snap = snap
	}
}

// WithWorkerCount sets the number of goroutines used for normalization
// fan-out and citation verification.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithCitationTimeout bounds each single citation lookup.
func WithCitationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.citationTimeout = d
		}
	}
}

// WithMaxScore sets the top of the scoring scale.
func WithMaxScore(maxScore float64) Option {
	return func(s *Service) {
		if maxScore > 0 {
			s.maxScore = maxScore
		}
	}
}

// WithContestedVariance overrides the derived contested-variance
// threshold.
func WithContestedVariance(v float64) Option {
	return func(s *Service) {
		if v > 0 {
			s.contestedVariance = v
		}
	}
}

// WithConfidenceThreshold overrides the derived high-confidence
// threshold.
func WithConfidenceThreshold(v float64) Option {
	return func(s *Service) {
		if v > 0 {
			s.confidenceThreshold = v
		}
	}
}

// WithSimilarityThreshold sets the minimum Jaccard similarity for two
// findings to cluster.
func WithSimilarityThreshold(v float64) Option {
	return func(s *Service) {
		if v > 0 && v <= 1 {
			s.similarity = v
		}
	}
}

// WithAssessorWeights sets per-assessor aggregation weights; assessors
// not listed get the default weight.
func WithAssessorWeights(weights map[string]float64, defaultWeight float64) Option {
	return func(s *Service) {
		s.assessorWeights = weights
		if defaultWeight > 0 {
			s.defaultWeight = defaultWeight
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service over a validated rubric and mapping.
func New(r rubric.Rubric, mapping *rubric.Mapping, opts ...Option) *Service {
	s := &Service{
		rubric:          r,
		mapping:         mapping,
		workerCount:     runtime.NumCPU(),
		citationTimeout: 2 * time.Second,
		maxScore:        5,
		similarity:      0.5,
		defaultWeight:   1.0,
		log:             logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the pipeline over every *.json record in inputDir and
// returns the consensus report. ErrNoAssessments means every record was
// excluded; callers treat that differently from an unreadable input.
func (s *Service) Run(ctx context.Context, inputDir string) (*report.ConsensusReport, error) {
	loader := ingest.NewLoader(ingest.WithMaxScore(s.maxScore), ingest.WithLogger(s.log))
	assessments, exclusions, err := loader.Load(ctx, inputDir)
	if err != nil {
		return nil, err
	}
	considered := len(assessments) + len(exclusions)

	canonical, normExclusions := s.normalize(ctx, assessments)
	exclusions = append(exclusions, normExclusions...)
	if len(canonical) == 0 {
		return nil, fmt.Errorf("%w: %d records considered, all excluded", ErrNoAssessments, considered)
	}

	validator := evidence.NewValidator(s.snap,
		evidence.WithWorkers(s.workerCount),
		evidence.WithTimeout(s.citationTimeout),
		evidence.WithLogger(s.log),
	)
	canonical = validator.Annotate(ctx, canonical)

	aggregator := aggregate.NewAggregator(s.rubric,
		aggregate.WithAssessorWeights(s.assessorWeights, s.defaultWeight),
	)
	scores, err := aggregator.Aggregate(canonical)
	if err != nil {
		return nil, err
	}

	detector := discrepancy.NewDetector(
		discrepancy.WithMaxScore(s.maxScore),
		discrepancy.WithVarianceThreshold(s.contestedVariance),
		discrepancy.WithHighConfidenceThreshold(s.confidenceThreshold),
		discrepancy.WithSimilarityThreshold(s.similarity),
		discrepancy.WithLogger(s.log),
	)
	signals := detector.Detect(ctx, canonical, scores)

	ranking := costquality.Rank(canonical)

	r := report.Synthesize(report.Inputs{
		Considered:  considered,
		Canonical:   canonical,
		Scores:      scores,
		Discrepancy: signals,
		Efficiency:  ranking,
		Exclusions:  exclusions,
	})

	s.log.Info(ctx, "run complete",
		logger.Int("considered", considered),
		logger.Int("included", len(canonical)),
		logger.Int("excluded", len(exclusions)),
		logger.Int("clusters", len(signals.Clusters)),
		logger.Int("false_confidence", len(signals.FalseConfidence)),
	)
	return r, nil
}

// normalize fans assessments out across workers. A normalization error
// excludes that assessment only; the rest of the run proceeds.
func (s *Service) normalize(ctx context.Context, assessments []model.Assessment) ([]model.CanonicalAssessment, []model.Exclusion) {
	normalizer := rubric.NewNormalizer(s.mapping, rubric.WithLogger(s.log))

	var (
		mu         sync.Mutex
		canonical  []model.CanonicalAssessment
		exclusions []model.Exclusion
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount)
	for _, a := range assessments {
		a := a
		g.Go(func() error {
			ca, err := normalizer.Normalize(gctx, a)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				exclusions = append(exclusions, model.Exclusion{
					SourceID: a.SourceID,
					Stage:    "normalize",
					Reason:   err.Error(),
				})
				metrics.RecordAssessmentExcluded("normalize")
				return nil
			}
			canonical = append(canonical, ca)
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	sort.Slice(canonical, func(i, j int) bool {
		return canonical[i].SourceID < canonical[j].SourceID
	})
	sort.Slice(exclusions, func(i, j int) bool {
		return exclusions[i].SourceID < exclusions[j].SourceID
	})
	return canonical, exclusions
}
