package search

import (
	"strings"
	"testing"
	"time"
)

func testEntityConfig() EntityConfig {
	return EntityConfig{
		Kind:          "variant",
		Table:         "variants",
		SelectColumns: "id, gene_symbol, created_at",
		Fields:        testFieldSet(),
		Text:          testTextConfig(),
		Facets: []FacetDim{
			{Param: "sex", Column: "sex", Labels: map[string]string{"FEMALE": "Female"}},
			{Param: "gene", Column: "gene_symbol"},
		},
	}
}

func TestBuildSearch_UnrankedListing(t *testing.T) {
	cfg := testEntityConfig()
	sql, args, ranked, err := cfg.BuildSearch("", nil, nil, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ranked {
		t.Error("expected unranked ordering without a query")
	}
	if !strings.Contains(sql, "ORDER BY created_at DESC, id ASC") {
		t.Errorf("expected recency ordering, got %q", sql)
	}
	if !strings.HasSuffix(sql, "LIMIT 21") {
		t.Errorf("expected LIMIT pageSize+1, got %q", sql)
	}
	if len(args) != 0 {
		t.Errorf("expected no bind args, got %v", args)
	}
}

func TestBuildSearch_RankedWithFiltersAndCursor(t *testing.T) {
	cfg := testEntityConfig()
	filters := FilterSpec{{Field: "sex", Value: "FEMALE"}}
	cur := NewRowKey(true, 0.9, time.Now().UTC(), "row-3").Cursor(Forward)

	sql, args, ranked, err := cfg.BuildSearch("HNF1B", filters, cur, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ranked {
		t.Error("expected ranked ordering with a query")
	}
	if !strings.Contains(sql, "AS sort_score") {
		t.Errorf("expected score column, got %q", sql)
	}
	if !strings.Contains(sql, "sex = $") {
		t.Errorf("expected compiled filter, got %q", sql)
	}
	if !strings.HasSuffix(sql, "LIMIT 11") {
		t.Errorf("expected LIMIT 11, got %q", sql)
	}
	if strings.Contains(sql, "HNF1B") || strings.Contains(sql, "FEMALE") {
		t.Errorf("user values leaked into SQL: %q", sql)
	}
	if len(args) == 0 {
		t.Fatal("expected bind args")
	}
}

func TestBuildSearch_InvalidFilterRejected(t *testing.T) {
	cfg := testEntityConfig()
	filters := FilterSpec{{Field: "nope", Value: "x"}}

	_, _, _, err := cfg.BuildSearch("", filters, nil, 10)
	if err == nil {
		t.Fatal("expected error for unknown filter field")
	}
}

func TestBuildFacet_ExcludesOwnDimension(t *testing.T) {
	cfg := testEntityConfig()
	filters := FilterSpec{
		{Field: "sex", Value: "FEMALE"},
		{Field: "gene", Value: "HNF1B"},
	}
	dim, _ := cfg.FacetDim("sex")

	sql, args, err := cfg.BuildFacet(filters, dim)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The sex filter is removed; only the gene filter constrains the counts.
	if strings.Contains(sql, "sex = $") {
		t.Errorf("facet must not be constrained by its own dimension: %q", sql)
	}
	if !strings.Contains(sql, "lower(gene_symbol) = lower($1)") {
		t.Errorf("expected the gene filter to remain, got %q", sql)
	}
	if len(args) != 1 || args[0] != "HNF1B" {
		t.Errorf("expected single bind arg HNF1B, got %v", args)
	}
	if !strings.Contains(sql, "COALESCE(sex::text, 'not_reported')") {
		t.Errorf("expected null bucket grouping, got %q", sql)
	}
}

func TestBuildCount(t *testing.T) {
	cfg := testEntityConfig()
	sql, args, err := cfg.BuildCount(FilterSpec{{Field: "sex", Value: "MALE"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(sql, "SELECT COUNT(*) FROM variants") {
		t.Errorf("unexpected count statement: %q", sql)
	}
	if len(args) != 1 {
		t.Errorf("expected 1 bind arg, got %v", args)
	}
}

func TestFacetDim_LabelFor(t *testing.T) {
	dim := FacetDim{Param: "sex", Column: "sex", Labels: map[string]string{"FEMALE": "Female"}}
	if got := dim.LabelFor("FEMALE"); got != "Female" {
		t.Errorf("expected mapped label, got %q", got)
	}
	if got := dim.LabelFor(NotReported); got != "Not reported" {
		t.Errorf("expected Not reported, got %q", got)
	}
	if got := dim.LabelFor("HNF1B"); got != "HNF1B" {
		t.Errorf("expected pass-through label, got %q", got)
	}
}
