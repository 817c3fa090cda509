package evidence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/okian/concord/internal/domain/model"
	"github.com/okian/concord/pkg/logger"
	"github.com/okian/concord/pkg/metrics"
)

// Default validator configuration constants.
const (
	defaultWorkers         = 8
	defaultCitationTimeout = 2 * time.Second
)

// Validator annotates citations with derived validity. Each resolution
// is independent and side-effect-free beyond read access to the
// snapshot, so citations are fanned out across a bounded worker pool.
type Validator struct {
	snap    Snapshot
	workers int
	timeout time.Duration
	log     logger.Logger
}

// NewValidator creates a Validator. A nil snapshot
// is allowed: every citation then resolves to unknown, never invalid —
// absence of ground truth is not a false claim.
func NewValidator(snap Snapshot, opts ...Option) *Validator {
	v := &Validator{
		snap:    snap,
		workers: defaultWorkers,
		timeout: defaultCitationTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// task addresses one citation inside the copied assessment set.
type task struct {
	assessment int
	finding    int
}

// Annotate returns a copy of the assessment set with every citation's
// Validity populated. The input is never mutated. Results are written to
// fixed positions, so worker scheduling order cannot affect the output.
func (v *Validator) Annotate(ctx context.Context, cas []model.CanonicalAssessment) []model.CanonicalAssessment {
	out := make([]model.CanonicalAssessment, len(cas))
	var tasks []task
	for i, ca := range cas {
		out[i] = ca
		if len(ca.Findings) == 0 {
			continue
		}
		out[i].Findings = make([]model.Finding, len(ca.Findings))
		for j, f := range ca.Findings {
			out[i].Findings[j] = f
			if f.Citation != nil {
				c := *f.Citation
				out[i].Findings[j].Citation = &c
				tasks = append(tasks, task{assessment: i, finding: j})
			}
		}
	}

	if len(tasks) == 0 {
		return out
	}

	workers := v.workers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	taskCh := make(chan task)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskCh {
				c := out[t.assessment].Findings[t.finding].Citation
				start := time.Now()
				c.Validity = v.resolve(ctx, c)
				metrics.RecordCitationLatency(time.Since(start).Seconds())
				metrics.RecordCitationResolved(string(c.Validity))
			}
		}()
	}

feed:
	for _, t := range tasks {
		select {
		case taskCh <- t:
		case <-ctx.Done():
			break feed
		}
	}
	close(taskCh)
	wg.Wait()

	// A canceled run leaves unresolved citations; they degrade to
	// unknown so the report completes with lowered confidence.
	for i := range out {
		for j := range out[i].Findings {
			if c := out[i].Findings[j].Citation; c != nil && c.Validity == "" {
				c.Validity = model.ValidityUnknown
			}
		}
	}

	return out
}

// resolve classifies a single citation against the snapshot.
func (v *Validator) resolve(ctx context.Context, c *model.Citation) model.Validity {
	if v.snap == nil {
		return model.ValidityUnknown
	}

	cctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	// Snapshot reads can block uninterruptibly (hung filesystem), so the
	// lookup runs aside and the timeout is enforced here. A late result
	// from an expired lookup is discarded.
	type lookup struct {
		lines []string
		err   error
	}
	done := make(chan lookup, 1)
	go func() {
		lines, err := v.snap.Lines(cctx, c.Path)
		done <- lookup{lines: lines, err: err}
	}()

	var lines []string
	var err error
	select {
	case res := <-done:
		lines, err = res.lines, res.err
	case <-cctx.Done():
		if v.log != nil {
			v.log.Debug(ctx, "citation resolution timed out",
				logger.String("path", c.Path),
			)
		}
		return model.ValidityUnknown
	}
	if err != nil {
		if errors.Is(err, ErrPathNotFound) {
			return model.ValidityInvalid
		}
		// I/O failure, timeout, cancellation: ground truth is missing,
		// not contradicted.
		if v.log != nil {
			v.log.Debug(ctx, "citation degraded to unknown",
				logger.String("path", c.Path),
				logger.Error(err),
			)
		}
		return model.ValidityUnknown
	}

	start, end := c.Lines.Start, c.Lines.End
	if end == 0 {
		end = start
	}
	if start < 1 || end < start || end > len(lines) {
		return model.ValidityInvalid
	}

	if c.Quote == "" {
		// Location exists but there is nothing to confirm against.
		return model.ValidityUnknown
	}

	region := normalizeWhitespace(strings.Join(lines[start-1:end], " "))
	if strings.Contains(region, normalizeWhitespace(c.Quote)) {
		return model.ValidityValid
	}
	return model.ValidityUnknown
}

// normalizeWhitespace collapses all whitespace runs to single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
