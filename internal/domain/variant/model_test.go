package variant

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/phenobase/phenobase/internal/platform/index"
)

func strPtr(s string) *string { return &s }

func TestVariantLabel(t *testing.T) {
	tests := []struct {
		name string
		v    Variant
		want string
	}{
		{"gene and cDNA", Variant{GeneSymbol: "HNF1B", HGVSc: strPtr("c.544C>T")}, "HNF1B c.544C>T"},
		{"protein fallback", Variant{GeneSymbol: "HNF1B", HGVSp: strPtr("p.Arg182Ter")}, "HNF1B p.Arg182Ter"},
		{"cDNA preferred over protein", Variant{GeneSymbol: "PKD1", HGVSc: strPtr("c.1A>G"), HGVSp: strPtr("p.Met1?")}, "PKD1 c.1A>G"},
		{"gene only", Variant{GeneSymbol: "PKD1"}, "PKD1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchConfig_NotationQueryMatchesExactly(t *testing.T) {
	cfg := SearchConfig()

	sql, args, ranked, err := cfg.BuildSearch("c.544C>T", nil, nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ranked {
		t.Error("expected ranked ordering for a notation query")
	}
	if !strings.Contains(sql, "hgvs_c = $") || !strings.Contains(sql, "hgvs_p = $") {
		t.Errorf("expected equality match on notation columns, got %q", sql)
	}
	if strings.Contains(sql, "tsquery") {
		t.Errorf("a notation query must not hit the text index: %q", sql)
	}
	if strings.Contains(sql, "c.544C>T") {
		t.Errorf("query value leaked into SQL: %q", sql)
	}
	if len(args) == 0 {
		t.Fatal("expected the notation bound as a parameter")
	}
}

func TestSearchConfig_FreeTextQueryRanks(t *testing.T) {
	cfg := SearchConfig()

	sql, _, ranked, err := cfg.BuildSearch("nonsense mutation", nil, nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ranked {
		t.Error("expected ranked ordering")
	}
	if !strings.Contains(sql, "plainto_tsquery") {
		t.Errorf("expected full-text matching, got %q", sql)
	}
	if !strings.Contains(sql, "lower(gene_symbol)") {
		t.Errorf("expected the exact-symbol boost, got %q", sql)
	}
}

func TestSearchConfig_FilterValidation(t *testing.T) {
	fields := SearchConfig().Fields

	tests := []struct {
		param string
		value string
		ok    bool
	}{
		{"zygosity", "HETEROZYGOUS", true},
		{"zygosity", "heterozygous", false},
		{"zygosity", "'; DROP TABLE variants; --", false},
		{"gene", "HNF1B", true},
		{"gene", "TRB-J2-7", true},
		{"gene", "HNF1B OR 1=1", false},
		{"gene", "", false},
		{"variant_type", "SNV", true},
		{"variant_type", "UNKNOWN", false},
		{"pmid", "31230720", true},
		{"pmid", "123456789", false},
	}
	for _, tt := range tests {
		t.Run(tt.param+"/"+tt.value, func(t *testing.T) {
			err := fields[tt.param].Validate(tt.value)
			if tt.ok && err != nil {
				t.Errorf("expected %q to validate, got %v", tt.value, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("expected %q to be rejected", tt.value)
			}
		})
	}
}

type fakeRepo struct {
	Repository
	created *Variant
}

func (f *fakeRepo) Create(ctx context.Context, v *Variant) error {
	f.created = v
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeRepo) IndexRecords(ctx context.Context) ([]index.SearchableRecord, error) {
	return nil, nil
}

type fakeNotifier struct{ dirty int }

func (f *fakeNotifier) MarkDirty() { f.dirty++ }

func TestService_WritesMarkIndexDirty(t *testing.T) {
	repo := &fakeRepo{}
	n := &fakeNotifier{}
	svc := NewService(repo, n)

	v := &Variant{GeneSymbol: "HNF1B", HGVSc: strPtr("c.544C>T")}
	if err := svc.CreateVariant(context.Background(), v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.created != v {
		t.Error("expected the variant to reach the repository")
	}
	if err := svc.DeleteVariant(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.dirty != 2 {
		t.Errorf("expected 2 dirty marks, got %d", n.dirty)
	}
}

func TestService_CreateRequiresGeneSymbol(t *testing.T) {
	n := &fakeNotifier{}
	svc := NewService(&fakeRepo{}, n)

	if err := svc.CreateVariant(context.Background(), &Variant{}); err == nil {
		t.Fatal("expected an error for a variant without a gene symbol")
	}
	if n.dirty != 0 {
		t.Error("a rejected write must not dirty the index")
	}
}
