package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/okian/concord/internal/app"
	"github.com/okian/concord/internal/config"
	"github.com/okian/concord/internal/domain/evidence"
	"github.com/okian/concord/internal/ingest"
	"github.com/okian/concord/internal/output"
	"github.com/okian/concord/pkg/logger"
	"github.com/okian/concord/pkg/metrics"
)

var (
	flagInputs     string
	flagRubric     string
	flagMapping    string
	flagSnapshot   string
	flagFormat     string
	flagOut        string
	flagLogLevel   string
	flagMaxScore   float64
	flagContested  float64
	flagConfidence float64
	flagSimilarity float64
	flagMetrics    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile a directory of assessment records into one report",
	Run: func(cmd *cobra.Command, args []string) {
		exitCode = runReconciliation(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVar(&flagInputs, "inputs", "", "Directory of assessment JSON records (required)")
	runCmd.Flags().StringVar(&flagRubric, "rubric", "", "Canonical rubric YAML (required)")
	runCmd.Flags().StringVar(&flagMapping, "mapping", "", "Category mapping YAML (required)")
	runCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "Artifact snapshot root for citation verification")
	runCmd.Flags().StringVar(&flagFormat, "format", "json", "Output format (json, markdown)")
	runCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	runCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	runCmd.Flags().Float64Var(&flagMaxScore, "max-score", 0, "Top of the scoring scale")
	runCmd.Flags().Float64Var(&flagContested, "contested-variance", 0, "Variance above which a category is contested")
	runCmd.Flags().Float64Var(&flagConfidence, "confidence-threshold", 0, "Consensus score that counts as high confidence")
	runCmd.Flags().Float64Var(&flagSimilarity, "similarity-threshold", 0, "Jaccard similarity for finding clustering")
	runCmd.Flags().StringVar(&flagMetrics, "metrics-addr", "", "Serve Prometheus metrics on this address during the run")

	for _, name := range []string{"inputs", "rubric", "mapping"} {
		_ = runCmd.MarkFlagRequired(name)
	}
}

func runReconciliation(ctx context.Context) int {
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return ExitConfigError
	}
	log := logger.Get()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "configuration rejected", logger.Error(err))
		return ExitConfigError
	}
	applyFlags(cfg)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Error(ctx, "bad log level", logger.Error(err))
		return ExitConfigError
	}

	r, err := config.LoadRubric(flagRubric)
	if err != nil {
		log.Error(ctx, "rubric rejected", logger.String("path", flagRubric), logger.Error(err))
		return ExitConfigError
	}
	mapping, err := config.LoadMapping(flagMapping, r)
	if err != nil {
		log.Error(ctx, "mapping rejected", logger.String("path", flagMapping), logger.Error(err))
		return ExitConfigError
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithCitationTimeout(time.Duration(cfg.CitationTimeoutMS) * time.Millisecond),
		app.WithMaxScore(cfg.MaxScore),
		app.WithContestedVariance(cfg.ContestedVariance),
		app.WithConfidenceThreshold(cfg.ConfidenceThreshold),
		app.WithSimilarityThreshold(cfg.SimilarityThreshold),
		app.WithAssessorWeights(cfg.AssessorWeights, cfg.DefaultAssessorWeight),
	}
	if flagSnapshot != "" {
		snap, err := evidence.NewDirSnapshot(flagSnapshot)
		if err != nil {
			log.Error(ctx, "snapshot unusable", logger.String("path", flagSnapshot), logger.Error(err))
			return ExitIOError
		}
		opts = append(opts, app.WithSnapshot(snap))
	}

	if flagMetrics != "" {
		go serveMetrics(ctx, flagMetrics, log)
	}

	runID := uuid.New().String()
	log.Info(ctx, "run starting",
		logger.String("run_id", runID),
		logger.String("inputs", flagInputs),
		logger.Bool("snapshot", flagSnapshot != ""),
	)

	report, err := app.New(r, mapping, opts...).Run(ctx, flagInputs)
	switch {
	case errors.Is(err, app.ErrNoAssessments):
		log.Error(ctx, "nothing to reconcile", logger.String("run_id", runID), logger.Error(err))
		return ExitNoAssessments
	case errors.Is(err, ingest.ErrInputDir):
		log.Error(ctx, "inputs unreadable", logger.String("run_id", runID), logger.Error(err))
		return ExitIOError
	case err != nil:
		log.Error(ctx, "run failed", logger.String("run_id", runID), logger.Error(err))
		return ExitConfigError
	}

	if err := output.WriteReport(report, flagFormat, flagOut); err != nil {
		log.Error(ctx, "report not written", logger.String("run_id", runID), logger.Error(err))
		return ExitIOError
	}
	return ExitSuccess
}

// applyFlags lets command-line flags override file and env config.
func applyFlags(cfg *config.Config) {
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagMaxScore > 0 {
		cfg.MaxScore = flagMaxScore
	}
	if flagContested > 0 {
		cfg.ContestedVariance = flagContested
	}
	if flagConfidence > 0 {
		cfg.ConfidenceThreshold = flagConfidence
	}
	if flagSimilarity > 0 {
		cfg.SimilarityThreshold = flagSimilarity
	}
}

func serveMetrics(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Info(ctx, "metrics listening", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn(ctx, "metrics server stopped", logger.Error(err))
	}
}
