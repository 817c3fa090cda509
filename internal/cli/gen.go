package cli

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/okian/concord/pkg/logger"
)

var (
	flagGenOut   string
	flagGenCount int
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a synthetic fixture set for trying out the pipeline",
	Long: "Writes a rubric, a mapping, and a directory of synthetic assessment records.\n" +
		"Assessors are drawn from personas (generous, harsh, thorough, silent) so the\n" +
		"generated set exercises contested categories and cost rankings.",
	Run: func(cmd *cobra.Command, args []string) {
		exitCode = runGenerate(cmd.Context())
	},
}

func init() {
	genCmd.Flags().StringVar(&flagGenOut, "out", "fixtures", "Directory to write the fixture set into")
	genCmd.Flags().IntVar(&flagGenCount, "count", 5, "Number of assessment records")
}

const fixtureRubric = `categories:
  - key: security
    weight: 0.3
  - key: correctness
    weight: 0.3
  - key: performance
    weight: 0.2
  - key: maintainability
    weight: 0.2
`

const fixtureMapping = `entries:
  - from: Security
    to: security
  - from: AppSec
    to: security
  - from: Correctness
    to: correctness
  - from: Performance
    to: performance
  - from: Maintainability
    to: maintainability
  - from: Code Quality
    to: maintainability
`

// Persona score bands, top of a 0-5 scale.
const (
	generousMin = 4.0
	generousSpn = 1.0
	harshMin    = 1.0
	harshSpn    = 2.0
	balancedMin = 2.5
	balancedSpn = 2.0
)

const (
	caseGenerous = 0
	caseHarsh    = 1
	caseThorough = 2
	caseSilent   = 3
	personaCount = 4
)

// randFloat returns a float64 in [0, 1) from crypto/rand.
func randFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(1_000_000))
	return float64(n.Int64()) / 1_000_000
}

func randCase() int {
	n, _ := rand.Int(rand.Reader, big.NewInt(personaCount))
	return int(n.Int64())
}

type genCitation struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	EndLine int    `json:"end_line,omitempty"`
	Quote   string `json:"quote,omitempty"`
}

type genFinding struct {
	Description string       `json:"description"`
	Severity    string       `json:"severity"`
	Category    string       `json:"category"`
	Citation    *genCitation `json:"citation,omitempty"`
}

type genAssessment struct {
	SourceID       string             `json:"source_id"`
	Cost           float64            `json:"cost"`
	CategoryScores map[string]float64 `json:"category_scores"`
	Findings       []genFinding       `json:"findings,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
}

func runGenerate(ctx context.Context) int {
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return ExitConfigError
	}
	log := logger.Get()

	inputDir := filepath.Join(flagGenOut, "assessments")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		log.Error(ctx, "fixture directory", logger.Error(err))
		return ExitIOError
	}
	if err := os.WriteFile(filepath.Join(flagGenOut, "rubric.yaml"), []byte(fixtureRubric), 0o600); err != nil {
		log.Error(ctx, "rubric fixture", logger.Error(err))
		return ExitIOError
	}
	if err := os.WriteFile(filepath.Join(flagGenOut, "mapping.yaml"), []byte(fixtureMapping), 0o600); err != nil {
		log.Error(ctx, "mapping fixture", logger.Error(err))
		return ExitIOError
	}

	for i := 0; i < flagGenCount; i++ {
		a := generateAssessment(i)
		data, err := json.MarshalIndent(a, "", "  ")
		if err != nil {
			log.Error(ctx, "fixture record", logger.Error(err))
			return ExitIOError
		}
		name := fmt.Sprintf("assessor-%02d.json", i)
		if err := os.WriteFile(filepath.Join(inputDir, name), data, 0o600); err != nil {
			log.Error(ctx, "fixture record", logger.Error(err))
			return ExitIOError
		}
	}

	log.Info(ctx, "fixture set written",
		logger.String("dir", flagGenOut),
		logger.Int("records", flagGenCount),
	)
	fmt.Fprintf(os.Stdout, "concord run --inputs %s --rubric %s --mapping %s\n",
		inputDir,
		filepath.Join(flagGenOut, "rubric.yaml"),
		filepath.Join(flagGenOut, "mapping.yaml"),
	)
	return ExitSuccess
}

func generateAssessment(index int) genAssessment {
	labels := []string{"Security", "Correctness", "Performance", "Maintainability"}

	a := genAssessment{
		SourceID:       fmt.Sprintf("assessor-%02d-%s", index, uuid.New().String()[:8]),
		Cost:           0.05 + randFloat()*9,
		CategoryScores: make(map[string]float64, len(labels)),
		Timestamp:      time.Now().UTC(),
	}

	persona := randCase()
	for _, label := range labels {
		switch persona {
		case caseGenerous:
			a.CategoryScores[label] = generousMin + randFloat()*generousSpn
		case caseHarsh:
			a.CategoryScores[label] = harshMin + randFloat()*harshSpn
		case caseSilent:
			// Abstains from half the rubric.
			if randFloat() < 0.5 {
				a.CategoryScores[label] = balancedMin + randFloat()*balancedSpn
			}
		default:
			a.CategoryScores[label] = balancedMin + randFloat()*balancedSpn
		}
	}

	if persona == caseThorough || persona == caseHarsh {
		a.Findings = append(a.Findings, genFinding{
			Description: "sql query built by string concatenation from request input",
			Severity:    "critical",
			Category:    "Security",
			Citation: &genCitation{
				Path:  "auth/login.go",
				Line:  42,
				Quote: "SELECT * FROM users WHERE name='",
			},
		})
	}
	if persona == caseThorough {
		a.Findings = append(a.Findings, genFinding{
			Description: "error from Close ignored in hot path",
			Severity:    "minor",
			Category:    "Code Quality",
			Citation:    &genCitation{Path: "store/writer.go", Line: 18},
		})
	}

	return a
}
