package index

import (
	"testing"
	"time"
)

func suggestRecords() []SearchableRecord {
	at := time.Now().UTC()
	return []SearchableRecord{
		{ID: "1", Label: "HNF1A", Kind: KindGeneFeature, CreatedAt: at},
		{ID: "2", Label: "HNF1B", Kind: KindGeneFeature, CreatedAt: at},
		{ID: "3", Label: "HNF4A", Kind: KindGeneFeature, CreatedAt: at},
		{ID: "4", Label: "PKD1", Kind: KindGeneFeature, CreatedAt: at},
		{ID: "5", Label: "Renal cysts and diabetes syndrome", Kind: KindPublication, CreatedAt: at},
	}
}

func TestSuggest_PrefixMatchesFirstInLabelOrder(t *testing.T) {
	snap := NewSnapshot(suggestRecords(), time.Now().UTC())

	got := snap.Suggest("HNF", 10)
	if len(got) < 3 {
		t.Fatalf("expected at least the 3 prefix matches, got %d", len(got))
	}
	if got[0].Label != "HNF1A" || got[1].Label != "HNF1B" || got[2].Label != "HNF4A" {
		t.Errorf("expected prefix matches in label order, got %v %v %v",
			got[0].Label, got[1].Label, got[2].Label)
	}
}

func TestSuggest_FuzzyToleratesTypo(t *testing.T) {
	snap := NewSnapshot(suggestRecords(), time.Now().UTC())

	// "HNF1BB" is not a prefix of any label but shares trigrams with HNF1B.
	got := snap.Suggest("HNF1BB", 10)
	found := false
	for _, r := range got {
		if r.Label == "HNF1B" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected HNF1B among fuzzy suggestions, got %v", got)
	}
}

func TestSuggest_ShortPrefixReturnsNothing(t *testing.T) {
	snap := NewSnapshot(suggestRecords(), time.Now().UTC())
	if got := snap.Suggest("H", 10); got != nil {
		t.Errorf("expected no suggestions for a one-character prefix, got %d", len(got))
	}
}

func TestSuggest_LimitHonored(t *testing.T) {
	snap := NewSnapshot(suggestRecords(), time.Now().UTC())
	got := snap.Suggest("HNF", 2)
	if len(got) != 2 {
		t.Errorf("expected exactly 2 suggestions, got %d", len(got))
	}
}

func TestSuggest_CaseInsensitive(t *testing.T) {
	snap := NewSnapshot(suggestRecords(), time.Now().UTC())
	got := snap.Suggest("hnf1b", 10)
	if len(got) == 0 || got[0].Label != "HNF1B" {
		t.Errorf("expected case-insensitive prefix match for HNF1B, got %v", got)
	}
}
