// Package steps wires the leaf analysis and mux packages into concrete
// pipeline.Step implementations: probe, analyze, project, build plan,
// shift chapters, and mux.
package steps

import (
	"sort"
	"strings"
)

// normalizeMode rewrites hyphenated config values ("mode-clustered") into
// the underscored mode names the selector and delay packages key their
// switches on ("mode_clustered"). Settings is authored for readability in
// YAML; the domain packages were ported as leaf libraries with their own
// naming convention.
func normalizeMode(raw string) string {
	return strings.ReplaceAll(raw, "-", "_")
}

// sortedKeys returns m's keys in ascending order, for deterministic
// iteration over a job's source set.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
