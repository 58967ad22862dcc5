package index

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// minSimilarity is the trigram Jaccard floor below which a record is not
// offered as a fuzzy suggestion.
const minSimilarity = 0.25

// Suggest returns up to limit type-ahead suggestions for a prefix: records
// whose label starts with the prefix first (label ascending), then
// typo-tolerant matches ranked by trigram similarity with label ascending as
// the final tie-break. Prefixes shorter than two characters yield nothing.
func (s *Snapshot) Suggest(prefix string, limit int) []SearchableRecord {
	prefix = strings.TrimSpace(prefix)
	if len([]rune(prefix)) < 2 || limit <= 0 {
		return nil
	}
	lp := strings.ToLower(prefix)

	var exact []SearchableRecord
	type fuzzyHit struct {
		rec SearchableRecord
		sim float64
	}
	var fuzzy []fuzzyHit

	for i := range s.records {
		ir := &s.records[i]
		if strings.HasPrefix(ir.lowerLabel, lp) {
			exact = append(exact, ir.rec)
			continue
		}
		sim := float64(edlib.JaccardSimilarity(ir.lowerLabel, lp, 3))
		if sim >= minSimilarity {
			fuzzy = append(fuzzy, fuzzyHit{rec: ir.rec, sim: sim})
		}
	}

	sort.Slice(exact, func(i, j int) bool {
		return labelLess(exact[i], exact[j])
	})
	sort.Slice(fuzzy, func(i, j int) bool {
		if fuzzy[i].sim != fuzzy[j].sim {
			return fuzzy[i].sim > fuzzy[j].sim
		}
		return labelLess(fuzzy[i].rec, fuzzy[j].rec)
	})

	out := make([]SearchableRecord, 0, limit)
	for _, r := range exact {
		if len(out) == limit {
			return out
		}
		out = append(out, r)
	}
	for _, f := range fuzzy {
		if len(out) == limit {
			return out
		}
		out = append(out, f.rec)
	}
	return out
}

func labelLess(a, b SearchableRecord) bool {
	la, lb := strings.ToLower(a.Label), strings.ToLower(b.Label)
	if la != lb {
		return la < lb
	}
	return a.ID < b.ID
}
