package rubric

import (
	"fmt"
	"sort"
)

// MappingEntry maps one assessor-local label to one canonical key. An
// entry with an empty Source applies to every assessor; a scoped entry
// applies only to the named one. Many labels may map to one key.
type MappingEntry struct {
	From   string `koanf:"from"`
	To     string `koanf:"to"`
	Source string `koanf:"source"`
}

// Mapping is the lookup table used during normalization.
type Mapping struct {
	entries []MappingEntry
}

// NewMapping builds a Mapping, rejecting tables that are ambiguous for
// every assessor: two unscoped entries sharing a label but naming
// different canonical keys. Scoped conflicts are left in place and
// surface later as per-assessment ambiguity.
func NewMapping(entries []MappingEntry) (*Mapping, error) {
	global := make(map[string]string)
	for _, e := range entries {
		if e.From == "" || e.To == "" {
			return nil, fmt.Errorf("%w: entry with empty from/to (%q -> %q)", ErrInvalidMapping, e.From, e.To)
		}
		if e.Source != "" {
			continue
		}
		if to, ok := global[e.From]; ok && to != e.To {
			return nil, fmt.Errorf("%w: label %q maps to both %q and %q", ErrInvalidMapping, e.From, to, e.To)
		}
		global[e.From] = e.To
	}
	return &Mapping{entries: entries}, nil
}

// Targets returns the distinct canonical keys every entry maps to, in
// sorted order. Used to cross-check the mapping against the rubric.
func (m *Mapping) Targets() []string {
	seen := make(map[string]bool)
	for _, e := range m.entries {
		seen[e.To] = true
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Resolve looks up the canonical key for an assessor-local label.
// Returns ok=false when no entry applies (the label is dropped by the
// caller, with a warning). A label applicable to the assessor through
// entries naming distinct canonical keys is an ambiguity error.
func (m *Mapping) Resolve(sourceID, label string) (string, bool, error) {
	targets := make(map[string]bool)
	for _, e := range m.entries {
		if e.From != label {
			continue
		}
		if e.Source != "" && e.Source != sourceID {
			continue
		}
		targets[e.To] = true
	}

	switch len(targets) {
	case 0:
		return "", false, nil
	case 1:
		for t := range targets {
			return t, true, nil
		}
	}

	keys := make([]string, 0, len(targets))
	for t := range targets {
		keys = append(keys, t)
	}
	sort.Strings(keys)
	return "", false, fmt.Errorf("%w: label %q for assessor %q maps to %v", ErrAmbiguousMapping, label, sourceID, keys)
}
