package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if CONCORD_CONFIG is set
//  3. env (prefix CONCORD_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("CONCORD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: CONCORD_MAX_SCORE, CONCORD_WORKER_COUNT, ...
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("CONCORD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "concord_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MaxScore <= 0 {
		return fmt.Errorf("%w: max_score must be positive", ErrInvalidConfig)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be at least 1", ErrInvalidConfig)
	}
	if c.CitationTimeoutMS < 1 {
		return fmt.Errorf("%w: citation_timeout_ms must be at least 1", ErrInvalidConfig)
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity_threshold must be in (0, 1]", ErrInvalidConfig)
	}
	if c.ContestedVariance < 0 {
		return fmt.Errorf("%w: contested_variance must not be negative", ErrInvalidConfig)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > c.MaxScore {
		return fmt.Errorf("%w: confidence_threshold must be within the scoring range", ErrInvalidConfig)
	}
	return nil
}
