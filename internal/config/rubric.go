package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/concord/internal/domain/rubric"
)

// LoadRubric reads the canonical rubric (weights file) from a YAML
// document:
//
//	categories:
//	  - key: security
//	    weight: 0.4
//
// A rubric whose weights do not sum to 1 is a configuration error;
// scores must never be skewed silently.
func LoadRubric(path string) (rubric.Rubric, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return rubric.Rubric{}, fmt.Errorf("%w: rubric %s: %v", ErrLoadConfig, path, err)
	}

	var r rubric.Rubric
	if err := k.UnmarshalWithConf("", &r, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return rubric.Rubric{}, fmt.Errorf("%w: rubric %s: %v", ErrLoadConfig, path, err)
	}

	if err := r.Validate(); err != nil {
		return rubric.Rubric{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return r, nil
}

// mappingDoc mirrors the YAML layout of a mapping file:
//
//	entries:
//	  - from: Security
//	    to: security
//	  - from: AppSec
//	    to: security
//	    source: assessor-2
type mappingDoc struct {
	Entries []rubric.MappingEntry `koanf:"entries"`
}

// LoadMapping reads the label mapping table. Entries whose targets are
// not rubric categories are rejected here so the defect surfaces before
// any assessment is touched.
func LoadMapping(path string, r rubric.Rubric) (*rubric.Mapping, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: mapping %s: %v", ErrLoadConfig, path, err)
	}

	var doc mappingDoc
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: mapping %s: %v", ErrLoadConfig, path, err)
	}

	m, err := rubric.NewMapping(doc.Entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for _, target := range m.Targets() {
		if !r.Has(target) {
			return nil, fmt.Errorf("%w: mapping targets %q which is not a rubric category", ErrInvalidConfig, target)
		}
	}
	return m, nil
}
