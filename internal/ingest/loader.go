// Package ingest reads raw assessment records from disk and screens
// them field by field before they enter the engine.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/okian/concord/internal/domain/model"
	"github.com/okian/concord/pkg/logger"
	"github.com/okian/concord/pkg/metrics"
)

// rawCitation is the wire form of a citation: a flat line/end_line pair
// reads more naturally in hand-written records than a nested range.
type rawCitation struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	EndLine int    `json:"end_line,omitempty"`
	Quote   string `json:"quote,omitempty"`
}

type rawFinding struct {
	Description string       `json:"description"`
	Severity    string       `json:"severity"`
	Category    string       `json:"category"`
	Citation    *rawCitation `json:"citation,omitempty"`
}

type rawAssessment struct {
	SourceID       string             `json:"source_id"`
	Cost           *float64           `json:"cost"`
	CategoryScores map[string]float64 `json:"category_scores"`
	Findings       []rawFinding       `json:"findings"`
	Timestamp      time.Time          `json:"timestamp"`
}

// Loader reads one JSON assessment record per *.json file in a
// directory. Malformed records are excluded and recorded, never fatal;
// only an unreadable directory aborts the run.
type Loader struct {
	maxScore float64
	log      logger.Logger
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithMaxScore sets the top of the accepted score range.
func WithMaxScore(maxScore float64) Option {
	return func(l *Loader) {
		if maxScore > 0 {
			l.maxScore = maxScore
		}
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

const defaultMaxScore = 5

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{maxScore: defaultMaxScore}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every *.json file under dir, sorted by name so the same
// directory always yields the same assessment order and the same
// duplicate-source resolution.
func (l *Loader) Load(ctx context.Context, dir string) ([]model.Assessment, []model.Exclusion, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrInputDir, dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var (
		assessments []model.Assessment
		exclusions  []model.Exclusion
		seen        = make(map[string]string) // source id -> file
	)
	for _, name := range names {
		path := filepath.Join(dir, name)
		a, err := l.loadFile(path)
		if err != nil {
			exclusions = append(exclusions, model.Exclusion{
				File:   name,
				Stage:  "ingest",
				Reason: err.Error(),
			})
			metrics.RecordAssessmentExcluded("ingest")
			if l.log != nil {
				l.log.Warn(ctx, "assessment excluded", logger.String("file", name), logger.Error(err))
			}
			continue
		}
		if prev, dup := seen[a.SourceID]; dup {
			exclusions = append(exclusions, model.Exclusion{
				SourceID: a.SourceID,
				File:     name,
				Stage:    "ingest",
				Reason:   fmt.Sprintf("duplicate source_id %q (already ingested from %s)", a.SourceID, prev),
			})
			metrics.RecordAssessmentExcluded("ingest")
			continue
		}
		seen[a.SourceID] = name
		assessments = append(assessments, a)
		metrics.RecordAssessmentIngested()
	}

	return assessments, exclusions, nil
}

func (l *Loader) loadFile(path string) (model.Assessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Assessment{}, fmt.Errorf("%w: %v", ErrMalformedAssessment, err)
	}

	var raw rawAssessment
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return model.Assessment{}, fmt.Errorf("%w: %v", ErrMalformedAssessment, err)
	}

	return l.validate(raw)
}

func (l *Loader) validate(raw rawAssessment) (model.Assessment, error) {
	if raw.SourceID == "" {
		return model.Assessment{}, fmt.Errorf("%w: missing source_id", ErrMalformedAssessment)
	}
	if raw.Cost == nil {
		return model.Assessment{}, fmt.Errorf("%w: %s: missing cost", ErrMalformedAssessment, raw.SourceID)
	}
	if *raw.Cost < 0 {
		return model.Assessment{}, fmt.Errorf("%w: %s: negative cost %v", ErrMalformedAssessment, raw.SourceID, *raw.Cost)
	}
	for label, score := range raw.CategoryScores {
		if score < 0 || score > l.maxScore {
			return model.Assessment{}, fmt.Errorf("%w: %s: score %v for %q outside [0, %v]", ErrMalformedAssessment, raw.SourceID, score, label, l.maxScore)
		}
	}

	a := model.Assessment{
		SourceID:       raw.SourceID,
		Cost:           *raw.Cost,
		CategoryScores: raw.CategoryScores,
		Timestamp:      raw.Timestamp,
	}

	for i, rf := range raw.Findings {
		if rf.Description == "" {
			return model.Assessment{}, fmt.Errorf("%w: %s: finding %d has no description", ErrMalformedAssessment, raw.SourceID, i)
		}
		if rf.Category == "" {
			return model.Assessment{}, fmt.Errorf("%w: %s: finding %d has no category", ErrMalformedAssessment, raw.SourceID, i)
		}
		sev := model.Severity(rf.Severity)
		if !model.KnownSeverity(sev) {
			return model.Assessment{}, fmt.Errorf("%w: %s: finding %d has unknown severity %q", ErrMalformedAssessment, raw.SourceID, i, rf.Severity)
		}

		f := model.Finding{
			Description: rf.Description,
			Severity:    sev,
			Category:    rf.Category,
		}
		if rc := rf.Citation; rc != nil {
			if rc.Path == "" {
				return model.Assessment{}, fmt.Errorf("%w: %s: finding %d cites an empty path", ErrMalformedAssessment, raw.SourceID, i)
			}
			if rc.Line < 1 {
				return model.Assessment{}, fmt.Errorf("%w: %s: finding %d cites line %d", ErrMalformedAssessment, raw.SourceID, i, rc.Line)
			}
			if rc.EndLine != 0 && rc.EndLine < rc.Line {
				return model.Assessment{}, fmt.Errorf("%w: %s: finding %d cites inverted range %d-%d", ErrMalformedAssessment, raw.SourceID, i, rc.Line, rc.EndLine)
			}
			f.Citation = &model.Citation{
				Path:  rc.Path,
				Lines: model.LineRange{Start: rc.Line, End: rc.EndLine},
				Quote: rc.Quote,
			}
		}
		a.Findings = append(a.Findings, f)
	}

	return a, nil
}
