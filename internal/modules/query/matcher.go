package query

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// fuzzyThreshold is the minimum partial-ratio score (exclusive) for a
// collection name to be considered a match against the query text.
const fuzzyThreshold = 50

// collectionKeywords maps query keywords to collection names. Iteration
// order is fixed so matches come out deterministic.
var collectionKeywords = []struct {
	keyword    string
	collection string
}{
	{"alarm", "alarmHistory"},
	{"oee", "oeelog1"},
	{"downtime", "downtimes"},
	{"maintenance", "maintenanceschedules"},
	{"alert", "alerts"},
	{"total parts are produced", "oeelog1"},
	{"production data for cn15", "ORG001_CN15_productionData"},
	{"production data for cn14", "ORG001_CN14_productionData"},
	{"quality", "oeelog1"},
	{"availability", "oeelog1"},
	{"performance", "oeelog1"},
	{"task", "maintenanceschedules"},
	{"parameter", "pmc_parameters"},
	{"bit position", "pmc_parameters"},
	{"tool", "tooldetails"},
	{"set life", "tooldetails"},
	{"threshold", "diagnostics"},
	{"planned quantity", "oeelog1"},
	{"defective parts", "oeelog1"},
	{"downtime duration", "oeelog1"},
	{"cycle time", "oeelog1"},
}

// MatchCollections resolves the query text to the set of relevant
// collections: every keyword-table hit, unioned with every known collection
// whose name scores above the fuzzy threshold against the query.
// Keyword matches come first; duplicates are suppressed. Returns nil when
// nothing matches.
func MatchCollections(queryText string, known []string) []string {
	q := strings.ToLower(strings.TrimSpace(queryText))
	if q == "" {
		return nil
	}

	var matched []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		matched = append(matched, name)
	}

	for _, entry := range collectionKeywords {
		if strings.Contains(q, entry.keyword) {
			add(entry.collection)
		}
	}

	for _, name := range known {
		if fuzzy.PartialRatio(strings.ToLower(name), q) > fuzzyThreshold {
			add(name)
		}
	}

	return matched
}
