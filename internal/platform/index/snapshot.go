package index

import (
	"sort"
	"strings"
	"time"
)

// Kind identifies the entity type a record was projected from.
type Kind string

const (
	KindPhenopacket Kind = "phenopacket"
	KindVariant     Kind = "variant"
	KindPublication Kind = "publication"
	KindGeneFeature Kind = "gene_feature"
)

// SearchableRecord is one entity projected into the uniform cross-entity
// shape. Records are immutable once a snapshot is built.
type SearchableRecord struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Kind       Kind              `json:"kind"`
	Subkind    string            `json:"subkind,omitempty"`
	SearchText string            `json:"-"`
	Extra      map[string]string `json:"-"`
	CreatedAt  time.Time         `json:"-"`
}

// indexedRecord caches the derived matching state for one record.
type indexedRecord struct {
	rec         SearchableRecord
	lowerLabel  string
	labelTokens []string
	textTokens  map[string]struct{}
	identifiers []string // lowercased exact-match identifiers (label + extras)
}

// Snapshot is the materialized state of the global index at a point in time.
// It is built in one pass, never patched afterward, and replaced wholesale on
// refresh. Records are held in (kind, id) order so two builds over identical
// data answer every query identically.
type Snapshot struct {
	records []indexedRecord
	totals  map[Kind]int
	builtAt time.Time
}

// NewSnapshot builds a snapshot from projected records.
func NewSnapshot(records []SearchableRecord, builtAt time.Time) *Snapshot {
	sorted := make([]SearchableRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		return sorted[i].ID < sorted[j].ID
	})

	s := &Snapshot{
		records: make([]indexedRecord, 0, len(sorted)),
		totals:  make(map[Kind]int),
		builtAt: builtAt,
	}
	for _, rec := range sorted {
		lower := strings.ToLower(rec.Label)
		ir := indexedRecord{
			rec:         rec,
			lowerLabel:  lower,
			labelTokens: tokenize(rec.Label),
			textTokens:  tokenSet(rec.SearchText),
			identifiers: []string{lower},
		}
		for _, v := range rec.Extra {
			if v != "" {
				ir.identifiers = append(ir.identifiers, strings.ToLower(v))
			}
		}
		s.records = append(s.records, ir)
		s.totals[rec.Kind]++
	}
	return s
}

// BuiltAt returns when the snapshot was materialized.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Len returns the number of indexed records.
func (s *Snapshot) Len() int { return len(s.records) }

// IsStale reports whether the snapshot is older than maxAge.
func (s *Snapshot) IsStale(maxAge time.Duration) bool {
	return time.Since(s.builtAt) > maxAge
}

// TotalsByKind returns the record count per entity kind.
func (s *Snapshot) TotalsByKind() map[Kind]int {
	out := make(map[Kind]int, len(s.totals))
	for k, v := range s.totals {
		out[k] = v
	}
	return out
}

// Scored pairs a record with its relevance score for one query.
type Scored struct {
	Record SearchableRecord `json:"record"`
	Score  float64          `json:"score"`
}

// Scoring weights. An exact identifier match dominates token matches so a
// gene-feature record for a queried symbol outranks free-text mentions of
// the same string.
const (
	scoreExactIdentifier = 10.0
	scoreLabelToken      = 3.0
	scoreTextToken       = 1.0
)

// Search scores all records (optionally restricted to one kind) against the
// query and returns matches ordered by score descending, most recent first,
// then id ascending. Queries shorter than the minimum length return nothing.
func (s *Snapshot) Search(query string, kind Kind) []Scored {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return nil
	}
	lq := strings.ToLower(query)
	qTokens := tokenize(lq)

	var out []Scored
	for i := range s.records {
		ir := &s.records[i]
		if kind != "" && ir.rec.Kind != kind {
			continue
		}
		score := ir.score(lq, qTokens)
		if score <= 0 {
			continue
		}
		out = append(out, Scored{Record: ir.rec, Score: score})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].Record.CreatedAt.Equal(out[j].Record.CreatedAt) {
			return out[i].Record.CreatedAt.After(out[j].Record.CreatedAt)
		}
		return out[i].Record.ID < out[j].Record.ID
	})
	return out
}

func (ir *indexedRecord) score(lowerQuery string, qTokens []string) float64 {
	var score float64
	for _, id := range ir.identifiers {
		if id == lowerQuery {
			score += scoreExactIdentifier
			break
		}
	}
	for _, qt := range qTokens {
		matched := false
		for _, lt := range ir.labelTokens {
			if lt == qt || strings.HasPrefix(lt, qt) {
				score += scoreLabelToken
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if _, ok := ir.textTokens[qt]; ok {
			score += scoreTextToken
		}
	}
	return score
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isTokenRune(r)
	})
}

func tokenSet(s string) map[string]struct{} {
	tokens := tokenize(s)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '>', r == '_', r == '-', r == ':':
		// keep HGVS notation and ontology terms intact as single tokens
		return true
	}
	return false
}
