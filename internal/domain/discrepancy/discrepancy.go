// Package discrepancy quantifies inter-assessor disagreement: variance
// per category, contested flags, false-confidence detection, and the
// merging of similar findings into corroborated clusters.
package discrepancy

import (
	"context"
	"sort"

	"github.com/okian/concord/internal/domain/aggregate"
	"github.com/okian/concord/internal/domain/model"
	"github.com/okian/concord/pkg/logger"
	"github.com/okian/concord/pkg/metrics"
)

// Default detector configuration constants.
const (
	defaultMaxScore   = 5.0
	defaultSimilarity = 0.5
	// contestedSpanFraction is the share of the scoring range two scores
	// must span for their variance to count as contested.
	contestedSpanFraction = 0.4
	// highConfidenceFraction is the share of the max score at or above
	// which a consensus counts as high-confidence.
	highConfidenceFraction = 0.8
)

// CategorySignal is the disagreement signal for one canonical category.
type CategorySignal struct {
	Key          string  `json:"key"`
	Variance     float64 `json:"variance"`
	Contributors int     `json:"contributors"`
	Contested    bool    `json:"contested"`
}

// FalseConfidenceFlag names a category whose high consensus score
// co-occurs with a verified major or critical finding — the central
// anti-pattern this engine surfaces.
type FalseConfidenceFlag struct {
	Category   string        `json:"category"`
	Consensus  float64       `json:"consensus"`
	Finding    model.Finding `json:"finding"`
	ReportedBy string        `json:"reported_by"`
	Inflators  []string      `json:"inflators"`
}

// Result holds every discrepancy signal for a run.
type Result struct {
	Signals         []CategorySignal      `json:"signals"`
	FalseConfidence []FalseConfidenceFlag `json:"false_confidence,omitempty"`
	Clusters        []Cluster             `json:"clusters,omitempty"`
}

// Signal returns the entry for a category key, or nil.
func (r Result) Signal(key string) *CategorySignal {
	for i := range r.Signals {
		if r.Signals[i].Key == key {
			return &r.Signals[i]
		}
	}
	return nil
}

// Detector computes disagreement signals over the validated canonical
// assessment set. Pure; the same inputs always yield the same Result.
type Detector struct {
	maxScore          float64
	varianceThreshold float64
	highThreshold     float64
	similarity        float64
	log               logger.Logger
}

// NewDetector creates a Detector. Thresholds left unset derive from the
// scoring range: contested when scores span more than 40% of it, high
// confidence at 80% of the max score.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		maxScore:   defaultMaxScore,
		similarity: defaultSimilarity,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.varianceThreshold == 0 {
		// Sample variance of two scores spanning fraction f of the
		// range R is (f*R)^2 / 2.
		span := contestedSpanFraction * d.maxScore
		d.varianceThreshold = span * span / 2
	}
	if d.highThreshold == 0 {
		d.highThreshold = highConfidenceFraction * d.maxScore
	}
	return d
}

// Detect computes variance, contested flags, false-confidence flags and
// finding clusters. The aggregate result supplies per-category
// contributions and consensus so both views stay consistent.
func (d *Detector) Detect(ctx context.Context, cas []model.CanonicalAssessment, agg aggregate.Result) Result {
	res := Result{}

	for _, cc := range agg.Categories {
		sig := CategorySignal{
			Key:          cc.Key,
			Contributors: len(cc.Contributions),
		}
		sig.Variance = sampleVariance(cc.Contributions)
		// One contributing assessor has nobody to disagree with.
		sig.Contested = sig.Contributors >= 2 && sig.Variance > d.varianceThreshold
		if sig.Contested {
			metrics.RecordContestedCategory()
		}
		res.Signals = append(res.Signals, sig)
	}

	res.Clusters = clusterFindings(cas, d.similarity)
	metrics.RecordFindingClusters(len(res.Clusters))

	res.FalseConfidence = d.detectFalseConfidence(cas, agg)
	for range res.FalseConfidence {
		metrics.RecordFalseConfidenceFlag()
	}

	if d.log != nil && len(res.FalseConfidence) > 0 {
		for _, fc := range res.FalseConfidence {
			d.log.Warn(ctx, "false confidence detected",
				logger.String("category", fc.Category),
				logger.Float64("consensus", fc.Consensus),
				logger.String("reported_by", fc.ReportedBy),
			)
		}
	}

	return res
}

// detectFalseConfidence flags categories whose consensus is at or above
// the high-confidence threshold while a valid major or critical finding
// exists there. Only validity=valid findings can trigger it; unknown and
// invalid evidence never does.
func (d *Detector) detectFalseConfidence(cas []model.CanonicalAssessment, agg aggregate.Result) []FalseConfidenceFlag {
	type offender struct {
		sourceID string
		finding  model.Finding
	}
	byCategory := make(map[string][]offender)
	for _, ca := range cas {
		for _, f := range ca.Findings {
			if !f.Severity.Actionable() {
				continue
			}
			if citationValidity(f) != model.ValidityValid {
				continue
			}
			byCategory[f.Category] = append(byCategory[f.Category], offender{sourceID: ca.SourceID, finding: f})
		}
	}

	var flags []FalseConfidenceFlag
	for _, cc := range agg.Categories {
		if cc.Consensus == nil || *cc.Consensus < d.highThreshold {
			continue
		}
		offenders := byCategory[cc.Key]
		if len(offenders) == 0 {
			continue
		}
		// Most severe first; ties broken on description then source so
		// the named offender is stable across runs.
		sort.Slice(offenders, func(i, j int) bool {
			a, b := offenders[i], offenders[j]
			if ra, rb := model.SeverityRank(a.finding.Severity), model.SeverityRank(b.finding.Severity); ra != rb {
				return ra > rb
			}
			if a.finding.Description != b.finding.Description {
				return a.finding.Description < b.finding.Description
			}
			return a.sourceID < b.sourceID
		})

		var inflators []string
		for _, con := range cc.Contributions {
			if con.Score >= d.highThreshold {
				inflators = append(inflators, con.SourceID)
			}
		}

		flags = append(flags, FalseConfidenceFlag{
			Category:   cc.Key,
			Consensus:  *cc.Consensus,
			Finding:    offenders[0].finding,
			ReportedBy: offenders[0].sourceID,
			Inflators:  inflators,
		})
	}

	return flags
}

// sampleVariance computes the unweighted sample variance of the
// contributing scores. Fewer than two contributors yield 0.
func sampleVariance(cons []aggregate.Contribution) float64 {
	n := len(cons)
	if n < 2 {
		return 0
	}
	var mean float64
	for _, c := range cons {
		mean += c.Score
	}
	mean /= float64(n)

	var sum float64
	for _, c := range cons {
		d := c.Score - mean
		sum += d * d
	}
	return sum / float64(n-1)
}
