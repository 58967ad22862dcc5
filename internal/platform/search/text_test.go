package search

import (
	"strings"
	"testing"
)

func TestIsNotation(t *testing.T) {
	cases := []struct {
		q    string
		want bool
	}{
		{"c.544C>T", true},
		{"p.Arg181Ter", true},
		{"g.37741C>A", true},
		{"  c.544C>T  ", true},
		{"HNF1B", false},
		{"kidney cysts", false},
		{"c.", false},
		{"x.544C>T", false},
	}
	for _, tc := range cases {
		if got := IsNotation(tc.q); got != tc.want {
			t.Errorf("IsNotation(%q) = %v, want %v", tc.q, got, tc.want)
		}
	}
}

func TestTooShort(t *testing.T) {
	if !TooShort("a") {
		t.Error("single character query should be too short")
	}
	if TooShort("ab") {
		t.Error("two character query is long enough")
	}
	if TooShort("") {
		t.Error("empty query is not too short, it is absent")
	}
	if TooShort("  x  ") != true {
		t.Error("whitespace does not count toward query length")
	}
}

func testTextConfig() TextConfig {
	return TextConfig{
		Columns: []WeightedColumn{
			{Column: "gene_symbol", Weight: "A"},
			{Column: "description", Weight: "C"},
		},
		IdentifierColumns: []string{"gene_symbol"},
		NotationColumns:   []string{"hgvs_c", "hgvs_p"},
	}
}

func TestMatchPredicate_FreeText(t *testing.T) {
	b := NewBinder()
	p := testTextConfig().MatchPredicate("kidney cysts")
	if p == nil {
		t.Fatal("expected a predicate for a free-text query")
	}

	got := p.Render(b)
	if !strings.Contains(got, "plainto_tsquery('simple', $1)") {
		t.Errorf("expected bound tsquery, got %q", got)
	}
	if strings.Contains(got, "kidney") {
		t.Errorf("query text leaked into SQL: %q", got)
	}
	if b.Args()[0] != "kidney cysts" {
		t.Errorf("expected raw query as bind arg, got %v", b.Args()[0])
	}
}

func TestMatchPredicate_NotationMatchesEqualityOnly(t *testing.T) {
	b := NewBinder()
	p := testTextConfig().MatchPredicate("c.544C>T")
	if p == nil {
		t.Fatal("expected a predicate for a notation query")
	}

	got := p.Render(b)
	want := "(hgvs_c = $1 OR hgvs_p = $2)"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if strings.Contains(got, "tsquery") {
		t.Errorf("notation query must not hit the fulltext vector: %q", got)
	}
}

func TestMatchPredicate_EmptyQuery(t *testing.T) {
	if p := testTextConfig().MatchPredicate("   "); p != nil {
		t.Error("expected nil predicate for a blank query")
	}
}

func TestRankExpr_BindsQueryNeverInlines(t *testing.T) {
	b := NewBinder()
	expr := testTextConfig().RankExpr(b, "HNF1B")

	if strings.Contains(expr, "HNF1B") {
		t.Errorf("query text leaked into rank expression: %q", expr)
	}
	if !strings.Contains(expr, "ts_rank_cd") {
		t.Errorf("expected rank term, got %q", expr)
	}
	if !strings.Contains(expr, "lower(gene_symbol) = lower(") {
		t.Errorf("expected exact-identifier boost, got %q", expr)
	}
	for _, a := range b.Args() {
		if a != "HNF1B" {
			t.Errorf("unexpected bind arg %v", a)
		}
	}
}

func TestRankExpr_NotationSkipsFulltextRank(t *testing.T) {
	b := NewBinder()
	expr := testTextConfig().RankExpr(b, "c.544C>T")

	if strings.Contains(expr, "ts_rank_cd") {
		t.Errorf("notation query should not carry a fulltext rank: %q", expr)
	}
	if !strings.Contains(expr, "hgvs_c = ") {
		t.Errorf("expected notation boost terms, got %q", expr)
	}
}

func TestRankExpr_EmptyQuery(t *testing.T) {
	if got := testTextConfig().RankExpr(NewBinder(), ""); got != "0" {
		t.Errorf("expected constant 0 for empty query, got %q", got)
	}
}
