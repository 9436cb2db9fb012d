package lineage

import (
	"sort"
	"strings"
)

// NoSourcesFound is returned in place of an empty source list so that
// callers always have a non-blank value to display.
const NoSourcesFound = "no_snowflake_sources_found"

// triggerKeywords are the keywords whose following token is treated as an
// object reference. CALL is included alongside FROM/JOIN, so invoked
// procedures land in the same undifferentiated list as read sources.
var triggerKeywords = []string{"FROM", "JOIN", "CALL"}

// ExtractSources scans a raw SQL statement and returns the best-effort set of
// object names it references: the first whitespace-delimited token after each
// occurrence of FROM, JOIN, or CALL, uppercased, deduplicated, and sorted.
// When no references are found the result is a single-element slice holding
// NoSourcesFound, never an empty slice.
//
// The scan is a heuristic tokenizer, not a parser. Keywords are matched as
// raw substrings without word-boundary checks, so an identifier that contains
// FROM, JOIN, or CALL as a substring produces a spurious split point. Only
// the single token immediately following each keyword is captured; quoted
// identifiers with embedded whitespace are not specially handled. Callers
// depend on this exact behavior, so it is preserved rather than fixed.
//
// ExtractSources is pure: no I/O, no mutation of the input, deterministic,
// and safe for concurrent use. It never fails for any input, including the
// empty string.
func ExtractSources(stmt string) []string {
	upper := strings.ToUpper(stmt)
	seen := make(map[string]struct{})

	for _, kw := range triggerKeywords {
		if !strings.Contains(upper, kw) {
			continue
		}
		fragments := strings.Split(upper, kw)
		// The text before the first keyword occurrence contributes nothing.
		for _, frag := range fragments[1:] {
			fields := strings.Fields(frag)
			if len(fields) == 0 {
				// Trailing keyword with nothing after it: no reference.
				continue
			}
			seen[fields[0]] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return []string{NoSourcesFound}
	}

	sources := make([]string, 0, len(seen))
	for s := range seen {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	return sources
}

// Join renders a source list as the comma-joined metadata value attached to
// query results.
func Join(sources []string) string {
	return strings.Join(sources, ",")
}
