package index

import (
	"testing"
	"time"
)

func testRecords() []SearchableRecord {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return []SearchableRecord{
		{
			ID: "gf-1", Label: "HNF1B", Kind: KindGeneFeature, Subkind: "GENE",
			SearchText: "HNF1B HNF1 homeobox B transcription factor",
			Extra:      map[string]string{"symbol": "HNF1B"},
			CreatedAt:  base,
		},
		{
			ID: "pp-1", Label: "PKT-000123", Kind: KindPhenopacket, Subkind: "FEMALE",
			SearchText: "PKT-000123 subject-9 HNF1B renal cysts HP:0000107",
			Extra:      map[string]string{"packet_id": "PKT-000123", "gene": "HNF1B"},
			CreatedAt:  base.Add(time.Hour),
		},
		{
			ID: "pub-1", Label: "Renal cysts and diabetes syndrome", Kind: KindPublication,
			SearchText: "31230720 Renal cysts and diabetes syndrome HNF1B mutations",
			Extra:      map[string]string{"pmid": "31230720"},
			CreatedAt:  base.Add(2 * time.Hour),
		},
		{
			ID: "var-1", Label: "HNF1B c.544C>T", Kind: KindVariant, Subkind: "HETEROZYGOUS",
			SearchText: "HNF1B c.544C>T p.Arg182Ter nonsense",
			Extra:      map[string]string{"hgvs_c": "c.544C>T"},
			CreatedAt:  base.Add(3 * time.Hour),
		},
	}
}

func TestSnapshot_TotalsByKind(t *testing.T) {
	snap := NewSnapshot(testRecords(), time.Now().UTC())

	if snap.Len() != 4 {
		t.Fatalf("expected 4 records, got %d", snap.Len())
	}
	totals := snap.TotalsByKind()
	for _, kind := range []Kind{KindPhenopacket, KindVariant, KindPublication, KindGeneFeature} {
		if totals[kind] != 1 {
			t.Errorf("expected 1 record for %s, got %d", kind, totals[kind])
		}
	}
}

func TestSnapshot_ExactIdentifierOutranksFreeText(t *testing.T) {
	snap := NewSnapshot(testRecords(), time.Now().UTC())

	got := snap.Search("HNF1B", "")
	if len(got) == 0 {
		t.Fatal("expected matches for HNF1B")
	}
	// Records whose identifier is exactly the query outrank records that
	// merely mention it in their text. The gene feature's label is the
	// symbol itself.
	if got[0].Record.ID != "gf-1" {
		t.Errorf("expected gene feature first, got %s (score %v)", got[0].Record.ID, got[0].Score)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[0].Score {
			t.Errorf("result %d outranks the exact identifier match", i)
		}
	}
}

func TestSnapshot_KindRestriction(t *testing.T) {
	snap := NewSnapshot(testRecords(), time.Now().UTC())

	got := snap.Search("HNF1B", KindPublication)
	if len(got) != 1 {
		t.Fatalf("expected 1 publication match, got %d", len(got))
	}
	if got[0].Record.Kind != KindPublication {
		t.Errorf("expected publication kind, got %s", got[0].Record.Kind)
	}
}

func TestSnapshot_ShortQueryReturnsNothing(t *testing.T) {
	snap := NewSnapshot(testRecords(), time.Now().UTC())
	if got := snap.Search("H", ""); got != nil {
		t.Errorf("expected no results for a one-character query, got %d", len(got))
	}
	if got := snap.Search("  ", ""); got != nil {
		t.Errorf("expected no results for whitespace, got %d", len(got))
	}
}

func TestSnapshot_RebuildOverSameDataIsIdentical(t *testing.T) {
	at := time.Now().UTC()
	a := NewSnapshot(testRecords(), at)

	// Same data, different input order.
	recs := testRecords()
	recs[0], recs[3] = recs[3], recs[0]
	b := NewSnapshot(recs, at)

	for _, q := range []string{"HNF1B", "renal cysts", "c.544C>T", "PKT-000123"} {
		ra, rb := a.Search(q, ""), b.Search(q, "")
		if len(ra) != len(rb) {
			t.Fatalf("query %q: result counts differ (%d vs %d)", q, len(ra), len(rb))
		}
		for i := range ra {
			if ra[i].Record.ID != rb[i].Record.ID || ra[i].Score != rb[i].Score {
				t.Errorf("query %q: result %d differs across rebuilds", q, i)
			}
		}
	}
}

func TestSnapshot_NotationTokenSurvivesTokenizer(t *testing.T) {
	snap := NewSnapshot(testRecords(), time.Now().UTC())

	got := snap.Search("c.544C>T", "")
	if len(got) == 0 {
		t.Fatal("expected the variant record to match its HGVS notation")
	}
	if got[0].Record.ID != "var-1" {
		t.Errorf("expected var-1 first, got %s", got[0].Record.ID)
	}
}

func TestSnapshot_IsStale(t *testing.T) {
	snap := NewSnapshot(nil, time.Now().UTC().Add(-10*time.Minute))
	if !snap.IsStale(5 * time.Minute) {
		t.Error("expected 10-minute-old snapshot to be stale at 5m")
	}
	if snap.IsStale(time.Hour) {
		t.Error("expected 10-minute-old snapshot to be fresh at 1h")
	}
}
