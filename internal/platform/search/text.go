package search

import (
	"regexp"
	"strings"
)

// MinQueryLength is the minimum free-text query length. Shorter queries
// return an empty result set rather than triggering a full scan.
const MinQueryLength = 2

// NormalizeQuery trims surrounding whitespace. An empty or whitespace-only
// query normalizes to "" and compiles to no text predicate at all.
func NormalizeQuery(q string) string {
	return strings.TrimSpace(q)
}

// TooShort reports whether a non-empty query is below MinQueryLength.
func TooShort(q string) bool {
	q = NormalizeQuery(q)
	return q != "" && len([]rune(q)) < MinQueryLength
}

// hgvsPattern recognizes HGVS-style variant notation such as "c.544C>T" or
// "p.Arg181Ter". Notation queries match structured notation columns exactly,
// never as substrings.
var hgvsPattern = regexp.MustCompile(`^[cgmnpr]\.\S+$`)

// IsNotation reports whether the query looks like HGVS variant notation.
func IsNotation(q string) bool {
	return hgvsPattern.MatchString(NormalizeQuery(q))
}

// WeightedColumn assigns a tsvector weight class (A highest .. D lowest) to
// a text column. Label and symbol columns carry A; free-text bodies C or D.
type WeightedColumn struct {
	Column string
	Weight string
}

// TextConfig describes how free-text search ranks one entity kind.
type TextConfig struct {
	Columns           []WeightedColumn
	Language          string
	IdentifierColumns []string // exact, case-insensitive identifier match boosts rank
	NotationColumns   []string // HGVS notation columns, matched by equality only
}

const exactMatchBoost = "10.0"

func (tc TextConfig) language() string {
	if tc.Language == "" {
		return "simple"
	}
	return tc.Language
}

// vector renders the weighted tsvector expression. It contains only
// code-authored column names and weight letters.
func (tc TextConfig) vector() string {
	lang := tc.language()
	parts := make([]string, 0, len(tc.Columns))
	for _, wc := range tc.Columns {
		parts = append(parts,
			"setweight(to_tsvector('"+lang+"', coalesce("+wc.Column+", '')), '"+wc.Weight+"')")
	}
	return strings.Join(parts, " || ")
}

// MatchPredicate builds the text-match predicate for a normalized query. For
// HGVS notation queries it matches the notation columns by equality only;
// otherwise it matches the weighted tsvector against a tsquery built from
// the bound raw query. Returns nil for an empty query.
func (tc TextConfig) MatchPredicate(q string) *Predicate {
	q = NormalizeQuery(q)
	if q == "" {
		return nil
	}
	if IsNotation(q) && len(tc.NotationColumns) > 0 {
		eqs := make([]*Predicate, 0, len(tc.NotationColumns))
		for _, col := range tc.NotationColumns {
			eqs = append(eqs, Leaf(col+" = ?", q))
		}
		return Or(eqs...)
	}
	if len(tc.Columns) == 0 {
		return nil
	}
	return Leaf("("+tc.vector()+") @@ plainto_tsquery('"+tc.language()+"', ?)", q)
}

// RankExpr renders the relevance score expression for a normalized query:
// weighted ts_rank_cd plus an exact-identifier boost. The query value is
// bound, never inlined. Callers reuse the rendered string wherever the score
// is needed (SELECT, ORDER BY, keyset comparison) so the binding happens
// exactly once.
func (tc TextConfig) RankExpr(b *Binder, q string) string {
	q = NormalizeQuery(q)
	if q == "" {
		return "0"
	}

	var terms []string
	if !IsNotation(q) && len(tc.Columns) > 0 {
		terms = append(terms,
			"ts_rank_cd("+tc.vector()+", plainto_tsquery('"+tc.language()+"', "+b.Bind(q)+"))")
	}
	for _, col := range tc.IdentifierColumns {
		terms = append(terms,
			"(CASE WHEN lower("+col+") = lower("+b.Bind(q)+") THEN "+exactMatchBoost+" ELSE 0 END)")
	}
	if IsNotation(q) {
		for _, col := range tc.NotationColumns {
			terms = append(terms,
				"(CASE WHEN "+col+" = "+b.Bind(q)+" THEN "+exactMatchBoost+" ELSE 0 END)")
		}
	}
	if len(terms) == 0 {
		return "0"
	}
	return "(" + strings.Join(terms, " + ") + ")"
}
