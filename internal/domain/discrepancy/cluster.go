package discrepancy

import (
	"sort"
	"strings"

	"github.com/okian/concord/internal/domain/model"
)

// ClusterMember is one assessor's finding inside a merged cluster.
type ClusterMember struct {
	SourceID string        `json:"source_id"`
	Finding  model.Finding `json:"finding"`
}

// Cluster is a group of findings raised independently by one or more
// assessors that describe the same issue in the same canonical category.
type Cluster struct {
	Category       string          `json:"category"`
	Representative model.Finding   `json:"representative"`
	Members        []ClusterMember `json:"members"`
	Sources        []string        `json:"sources"`
	Corroboration  int             `json:"corroboration_count"`
	Severity       model.Severity  `json:"severity"`
	Validity       model.Validity  `json:"validity"`
}

// sourcedFinding pairs a finding with its assessor for clustering.
type sourcedFinding struct {
	sourceID string
	finding  model.Finding
}

// clusterFindings merges similar findings per canonical category using
// the transitive closure of pairwise similarity: if A~B and B~C then
// A, B, C form one cluster, whatever order they arrived in. Inputs are
// sorted on stable keys first so cluster identity and member order never
// depend on input order.
func clusterFindings(cas []model.CanonicalAssessment, threshold float64) []Cluster {
	var all []sourcedFinding
	for _, ca := range cas {
		for _, f := range ca.Findings {
			all = append(all, sourcedFinding{sourceID: ca.SourceID, finding: f})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.finding.Category != b.finding.Category {
			return a.finding.Category < b.finding.Category
		}
		if a.finding.Description != b.finding.Description {
			return a.finding.Description < b.finding.Description
		}
		return a.sourceID < b.sourceID
	})

	tokens := make([][]string, len(all))
	for i, sf := range all {
		tokens[i] = tokenize(sf.finding.Description)
	}

	parent := make([]int, len(all))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			if rj < ri {
				ri, rj = rj, ri
			}
			parent[rj] = ri
		}
	}

	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[i].finding.Category != all[j].finding.Category {
				continue
			}
			if jaccard(tokens[i], tokens[j]) >= threshold {
				union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	var roots []int
	for i := range all {
		r := find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], i)
	}
	sort.Ints(roots)

	clusters := make([]Cluster, 0, len(roots))
	for _, r := range roots {
		members := groups[r]
		c := Cluster{
			Category:       all[r].finding.Category,
			Representative: all[r].finding,
			Validity:       model.ValidityUnknown,
		}
		seenSources := make(map[string]bool)
		for _, idx := range members {
			sf := all[idx]
			c.Members = append(c.Members, ClusterMember{SourceID: sf.sourceID, Finding: sf.finding})
			if !seenSources[sf.sourceID] {
				seenSources[sf.sourceID] = true
				c.Sources = append(c.Sources, sf.sourceID)
			}
			if model.SeverityRank(sf.finding.Severity) > model.SeverityRank(c.Severity) {
				c.Severity = sf.finding.Severity
			}
			c.Validity = mergeValidity(c.Validity, citationValidity(sf.finding))
		}
		sort.Strings(c.Sources)
		c.Corroboration = len(c.Sources)
		clusters = append(clusters, c)
	}

	return clusters
}

// citationValidity returns the derived validity of a finding's citation,
// or unknown for findings cited nowhere.
func citationValidity(f model.Finding) model.Validity {
	if f.Citation == nil || f.Citation.Validity == "" {
		return model.ValidityUnknown
	}
	return f.Citation.Validity
}

// mergeValidity keeps the strongest signal for a cluster: one verified
// member makes the merged finding verified; otherwise one refuted member
// makes it refuted; otherwise it stays unknown.
func mergeValidity(a, b model.Validity) model.Validity {
	if a == model.ValidityValid || b == model.ValidityValid {
		return model.ValidityValid
	}
	if a == model.ValidityInvalid || b == model.ValidityInvalid {
		return model.ValidityInvalid
	}
	return model.ValidityUnknown
}

// tokenize splits text into lowercase word tokens.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?()[]{}\"'`")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// jaccard computes the Jaccard coefficient between two token sets.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}

	intersection := 0
	for s := range setA {
		if setB[s] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 1.0
	}
	return float64(intersection) / float64(union)
}
