package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/phenobase/phenobase/internal/platform/index"
	"github.com/phenobase/phenobase/internal/platform/search"
	"github.com/phenobase/phenobase/pkg/pagination"
)

type fakeItem struct {
	ID        string    `json:"id"`
	Gene      string    `json:"gene"`
	CreatedAt time.Time `json:"created_at"`
}

// fakeSearcher is an in-memory Searcher honoring the unranked keyset
// contract: canonical order (created_at DESC, id ASC), strict resumption
// after or before the cursor position.
type fakeSearcher struct {
	kind  string
	items []fakeItem
	err   error
}

func (f *fakeSearcher) Kind() string { return f.kind }

func (f *fakeSearcher) Config() search.EntityConfig {
	return search.EntityConfig{
		Kind:          f.kind,
		Table:         f.kind,
		SelectColumns: "id, gene, created_at",
		Fields: search.FieldSet{
			"gene": {Param: "gene", Column: "gene", CaseFold: true},
		},
		Facets: []search.FacetDim{
			{Param: "gene", Column: "gene"},
		},
	}
}

// canonical returns items sorted by (created_at DESC, id ASC).
func (f *fakeSearcher) canonical() []fakeItem {
	out := make([]fakeItem, len(f.items))
	copy(out, f.items)
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			a, b := out[i], out[j]
			swap := false
			if !a.CreatedAt.Equal(b.CreatedAt) {
				swap = a.CreatedAt.Before(b.CreatedAt)
			} else {
				swap = a.ID > b.ID
			}
			if swap {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

// after reports whether item sits strictly after the cursor position in
// canonical order.
func after(it fakeItem, ts time.Time, id string) bool {
	if !it.CreatedAt.Equal(ts) {
		return it.CreatedAt.Before(ts)
	}
	return it.ID > id
}

func (f *fakeSearcher) Search(ctx context.Context, q string, filters search.FilterSpec, cur *search.Cursor, pageSize int) ([]interface{}, []search.RowKey, bool, error) {
	if f.err != nil {
		return nil, nil, false, f.err
	}

	ordered := f.canonical()
	if gene, ok := filters.Get("gene"); ok {
		kept := ordered[:0]
		for _, it := range ordered {
			if it.Gene == gene {
				kept = append(kept, it)
			}
		}
		ordered = kept
	}

	var window []fakeItem
	var hasMore bool
	if cur == nil {
		window = ordered
		if len(window) > pageSize {
			window, hasMore = window[:pageSize], true
		}
	} else {
		ts, err := time.Parse(time.RFC3339Nano, cur.SortValues[0].(string))
		if err != nil {
			return nil, nil, false, fmt.Errorf("bad cursor timestamp: %w", err)
		}
		if cur.Direction == search.Backward {
			var before []fakeItem
			for _, it := range ordered {
				if !after(it, ts, cur.TieBreakID) && !(it.CreatedAt.Equal(ts) && it.ID == cur.TieBreakID) {
					before = append(before, it)
				}
			}
			if len(before) > pageSize {
				before, hasMore = before[len(before)-pageSize:], true
			}
			window = before
		} else {
			for _, it := range ordered {
				if after(it, ts, cur.TieBreakID) {
					window = append(window, it)
				}
			}
			if len(window) > pageSize {
				window, hasMore = window[:pageSize], true
			}
		}
	}

	out := make([]interface{}, len(window))
	keys := make([]search.RowKey, len(window))
	for i, it := range window {
		out[i] = it
		keys[i] = search.NewRowKey(false, 0, it.CreatedAt, it.ID)
	}
	return out, keys, hasMore, nil
}

func (f *fakeSearcher) FacetCounts(ctx context.Context, filters search.FilterSpec, dim search.FacetDim) ([]search.FacetBucket, error) {
	if f.err != nil {
		return nil, f.err
	}
	counts := map[string]int{}
	for _, it := range f.items {
		counts[it.Gene]++
	}
	var out []search.FacetBucket
	for v, n := range counts {
		out = append(out, search.FacetBucket{Value: v, Label: v, Count: n})
	}
	return out, nil
}

type stubIndexSource struct {
	records []index.SearchableRecord
}

func (s *stubIndexSource) IndexRecords(ctx context.Context) ([]index.SearchableRecord, error) {
	return s.records, nil
}

func builtRefresher(t *testing.T, records []index.SearchableRecord) *index.Refresher {
	t.Helper()
	r := index.NewRefresher(zerolog.Nop(), time.Hour, time.Second, &stubIndexSource{records: records})
	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	return r
}

func emptyRefresher() *index.Refresher {
	return index.NewRefresher(zerolog.Nop(), time.Hour, time.Second)
}

func fiveItems() []fakeItem {
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	items := make([]fakeItem, 5)
	for i := range items {
		items[i] = fakeItem{
			ID:        fmt.Sprintf("id-%d", i),
			Gene:      "HNF1B",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return items
}

func testOrchestrator(f *fakeSearcher) *Orchestrator {
	codec := search.NewCursorCodec([]byte("test-secret"))
	return NewOrchestrator(zerolog.Nop(), codec, emptyRefresher(), 5*time.Second, f)
}

func pageIDs(page *ScopedPage) []string {
	ids := make([]string, len(page.Data))
	for i, d := range page.Data {
		ids[i] = d.(fakeItem).ID
	}
	return ids
}

func TestScopedSearch_ForwardPaging(t *testing.T) {
	f := &fakeSearcher{kind: "variants", items: fiveItems()}
	o := testOrchestrator(f)
	ctx := context.Background()

	// Canonical order is newest first: id-4, id-3, id-2, id-1, id-0.
	p1, err := o.ScopedSearch(ctx, "variants", "", url.Values{}, pagination.CursorParams{Size: 2})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if got := pageIDs(p1); got[0] != "id-4" || got[1] != "id-3" {
		t.Fatalf("page 1: expected [id-4 id-3], got %v", got)
	}
	if !p1.Meta.Page.HasNextPage || p1.Meta.Page.HasPreviousPage {
		t.Errorf("page 1: expected next only, got %+v", p1.Meta.Page)
	}

	p2, err := o.ScopedSearch(ctx, "variants", "", url.Values{},
		pagination.CursorParams{Size: 2, After: p1.Meta.Page.EndCursor})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if got := pageIDs(p2); got[0] != "id-2" || got[1] != "id-1" {
		t.Fatalf("page 2: expected [id-2 id-1], got %v", got)
	}
	if !p2.Meta.Page.HasNextPage || !p2.Meta.Page.HasPreviousPage {
		t.Errorf("page 2: expected next and previous, got %+v", p2.Meta.Page)
	}

	p3, err := o.ScopedSearch(ctx, "variants", "", url.Values{},
		pagination.CursorParams{Size: 2, After: p2.Meta.Page.EndCursor})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if got := pageIDs(p3); len(got) != 1 || got[0] != "id-0" {
		t.Fatalf("page 3: expected [id-0], got %v", got)
	}
	if p3.Meta.Page.HasNextPage {
		t.Error("page 3: expected no next page")
	}
}

func TestScopedSearch_BackwardReproducesPreviousPage(t *testing.T) {
	f := &fakeSearcher{kind: "variants", items: fiveItems()}
	o := testOrchestrator(f)
	ctx := context.Background()

	p1, err := o.ScopedSearch(ctx, "variants", "", url.Values{}, pagination.CursorParams{Size: 2})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	p2, err := o.ScopedSearch(ctx, "variants", "", url.Values{},
		pagination.CursorParams{Size: 2, After: p1.Meta.Page.EndCursor})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}

	back, err := o.ScopedSearch(ctx, "variants", "", url.Values{},
		pagination.CursorParams{Size: 2, Before: p2.Meta.Page.StartCursor})
	if err != nil {
		t.Fatalf("backward page: %v", err)
	}
	want := pageIDs(p1)
	got := pageIDs(back)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("backward page should reproduce page 1: want %v, got %v", want, got)
	}
}

func TestScopedSearch_StableUnderConcurrentInsert(t *testing.T) {
	f := &fakeSearcher{kind: "variants", items: fiveItems()}
	o := testOrchestrator(f)
	ctx := context.Background()

	p1, err := o.ScopedSearch(ctx, "variants", "", url.Values{}, pagination.CursorParams{Size: 2})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}

	// A newer row arrives between page fetches. It sorts before the cursor
	// position, so the next page must not shift or duplicate.
	f.items = append(f.items, fakeItem{
		ID: "id-new", Gene: "HNF1B",
		CreatedAt: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
	})

	p2, err := o.ScopedSearch(ctx, "variants", "", url.Values{},
		pagination.CursorParams{Size: 2, After: p1.Meta.Page.EndCursor})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if got := pageIDs(p2); got[0] != "id-2" || got[1] != "id-1" {
		t.Errorf("page 2 shifted after insert: got %v", got)
	}
}

func TestScopedSearch_BothCursorsRejected(t *testing.T) {
	o := testOrchestrator(&fakeSearcher{kind: "variants"})

	_, err := o.ScopedSearch(context.Background(), "variants", "", url.Values{},
		pagination.CursorParams{Size: 2, After: "a", Before: "b"})
	var ve *search.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestScopedSearch_GarbageCursorRejected(t *testing.T) {
	o := testOrchestrator(&fakeSearcher{kind: "variants"})

	_, err := o.ScopedSearch(context.Background(), "variants", "", url.Values{},
		pagination.CursorParams{Size: 2, After: "not-a-cursor"})
	var ice *search.InvalidCursorError
	if !errors.As(err, &ice) {
		t.Fatalf("expected InvalidCursorError, got %v", err)
	}
}

func TestScopedSearch_UnknownFilterRejected(t *testing.T) {
	o := testOrchestrator(&fakeSearcher{kind: "variants", items: fiveItems()})

	params := url.Values{}
	params.Set("zygosity", "HOMOZYGOUS")
	_, err := o.ScopedSearch(context.Background(), "variants", "", params, pagination.CursorParams{Size: 2})
	var ve *search.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Param != "zygosity" {
		t.Errorf("expected error to name zygosity, got %q", ve.Param)
	}
}

func TestScopedSearch_ShortQueryEmptyPage(t *testing.T) {
	o := testOrchestrator(&fakeSearcher{kind: "variants", items: fiveItems()})

	page, err := o.ScopedSearch(context.Background(), "variants", "x", url.Values{}, pagination.CursorParams{Size: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Data) != 0 {
		t.Errorf("expected empty page for a one-character query, got %d items", len(page.Data))
	}
	if page.Meta.Page.HasNextPage {
		t.Error("expected no next page")
	}
}

func TestScopedSearch_TimeoutMapped(t *testing.T) {
	o := testOrchestrator(&fakeSearcher{kind: "variants", err: context.DeadlineExceeded})

	_, err := o.ScopedSearch(context.Background(), "variants", "", url.Values{}, pagination.CursorParams{Size: 2})
	var te *search.QueryTimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected QueryTimeoutError, got %v", err)
	}
}

func TestGlobalSearch_TotalsAndPaging(t *testing.T) {
	records := []index.SearchableRecord{
		{ID: "g1", Label: "HNF1B", Kind: index.KindGeneFeature, CreatedAt: time.Now().UTC()},
		{ID: "v1", Label: "HNF1B c.544C>T", Kind: index.KindVariant, SearchText: "HNF1B", CreatedAt: time.Now().UTC()},
	}
	codec := search.NewCursorCodec([]byte("test-secret"))
	o := NewOrchestrator(zerolog.Nop(), codec, builtRefresher(t, records), 5*time.Second)

	res, err := o.GlobalSearch("HNF1B", "", pagination.Params{Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("expected total 2, got %d", res.Total)
	}
	if res.TotalsByKind[index.KindGeneFeature] != 1 || res.TotalsByKind[index.KindVariant] != 1 {
		t.Errorf("unexpected per-kind totals: %v", res.TotalsByKind)
	}
	// Totals describe the whole match set even though the page holds one.
	if len(res.Results) != 1 {
		t.Errorf("expected 1 result on the page, got %d", len(res.Results))
	}

	page2, err := o.GlobalSearch("HNF1B", "", pagination.Params{Page: 2, PageSize: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page2.Results) != 1 || page2.Results[0].Record.ID == res.Results[0].Record.ID {
		t.Errorf("expected a different record on page 2")
	}
}

func TestGlobalSearch_UnknownTypeRejected(t *testing.T) {
	codec := search.NewCursorCodec([]byte("test-secret"))
	o := NewOrchestrator(zerolog.Nop(), codec, builtRefresher(t, nil), 5*time.Second)

	_, err := o.GlobalSearch("HNF1B", "nonsense", pagination.Params{Page: 1, PageSize: 10})
	var ve *search.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestGlobalSearch_IndexUnavailable(t *testing.T) {
	codec := search.NewCursorCodec([]byte("test-secret"))
	o := NewOrchestrator(zerolog.Nop(), codec, emptyRefresher(), 5*time.Second)

	_, err := o.GlobalSearch("HNF1B", "", pagination.Params{Page: 1, PageSize: 10})
	if !errors.Is(err, index.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestAutocomplete_DegradesWithoutIndex(t *testing.T) {
	codec := search.NewCursorCodec([]byte("test-secret"))
	o := NewOrchestrator(zerolog.Nop(), codec, emptyRefresher(), 5*time.Second)

	got := o.Autocomplete("HNF", 10)
	if len(got) != 0 {
		t.Errorf("expected no suggestions without an index, got %d", len(got))
	}
}

func TestFacets_AllDimensionsReported(t *testing.T) {
	f := &fakeSearcher{kind: "variants", items: fiveItems()}
	o := testOrchestrator(f)

	got, err := o.Facets(context.Background(), "variants", url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	buckets, ok := got.Facets["gene"]
	if !ok {
		t.Fatal("expected the gene dimension to be reported")
	}
	if len(buckets) != 1 || buckets[0].Count != 5 {
		t.Errorf("expected one bucket counting all 5 items, got %v", buckets)
	}
}
