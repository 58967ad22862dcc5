package search

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/phenobase/phenobase/internal/platform/index"
	"github.com/phenobase/phenobase/internal/platform/search"
	"github.com/phenobase/phenobase/pkg/pagination"
)

// Searcher is one entity kind plugged into the orchestrator. Each domain
// service implements it against its own table and search configuration.
type Searcher interface {
	Kind() string
	Config() search.EntityConfig
	Search(ctx context.Context, q string, filters search.FilterSpec, cur *search.Cursor, pageSize int) ([]interface{}, []search.RowKey, bool, error)
	FacetCounts(ctx context.Context, filters search.FilterSpec, dim search.FacetDim) ([]search.FacetBucket, error)
}

// reservedParams are query parameters with engine-level meaning. They are
// never interpreted as structured filters.
var reservedParams = map[string]bool{
	"q":            true,
	"type":         true,
	"page":         true,
	"page_size":    true,
	"page[size]":   true,
	"page[after]":  true,
	"page[before]": true,
}

// Orchestrator routes search requests: global queries against the in-memory
// snapshot, scoped queries against the owning entity's store. All parameter
// validation happens here, before anything touches a store.
type Orchestrator struct {
	searchers    map[string]Searcher
	kinds        []string
	codec        *search.CursorCodec
	idx          *index.Refresher
	queryTimeout time.Duration
	log          zerolog.Logger
}

func NewOrchestrator(log zerolog.Logger, codec *search.CursorCodec, idx *index.Refresher, queryTimeout time.Duration, searchers ...Searcher) *Orchestrator {
	o := &Orchestrator{
		searchers:    make(map[string]Searcher, len(searchers)),
		codec:        codec,
		idx:          idx,
		queryTimeout: queryTimeout,
		log:          log.With().Str("component", "search").Logger(),
	}
	for _, s := range searchers {
		o.searchers[s.Kind()] = s
		o.kinds = append(o.kinds, s.Kind())
	}
	return o
}

// Kinds returns the registered entity kinds in registration order.
func (o *Orchestrator) Kinds() []string { return o.kinds }

// Suggestion is one autocomplete entry.
type Suggestion struct {
	ID      string     `json:"id"`
	Label   string     `json:"label"`
	Kind    index.Kind `json:"kind"`
	Subkind string     `json:"subkind,omitempty"`
}

// Autocomplete returns type-ahead suggestions from the snapshot. An index
// that has never been built degrades to no suggestions rather than an error.
func (o *Orchestrator) Autocomplete(q string, limit int) []Suggestion {
	snap, err := o.idx.Current()
	if err != nil {
		return []Suggestion{}
	}
	recs := snap.Suggest(q, limit)
	out := make([]Suggestion, 0, len(recs))
	for _, r := range recs {
		out = append(out, Suggestion{ID: r.ID, Label: r.Label, Kind: r.Kind, Subkind: r.Subkind})
	}
	return out
}

// GlobalResult is one page of cross-entity results plus the per-kind totals
// for the whole match set.
type GlobalResult struct {
	Query        string             `json:"query"`
	Total        int                `json:"total"`
	TotalsByKind map[index.Kind]int `json:"total_by_kind"`
	Results      []index.Scored     `json:"results"`
	Page         int                `json:"page"`
	PageSize     int                `json:"page_size"`
}

// GlobalSearch queries the snapshot across every entity kind, optionally
// restricted to one, and pages the scored results by offset. Offset paging is
// sound here because a snapshot is immutable for its lifetime.
func (o *Orchestrator) GlobalSearch(q, kindParam string, pp pagination.Params) (*GlobalResult, error) {
	var kind index.Kind
	if kindParam != "" {
		switch index.Kind(kindParam) {
		case index.KindPhenopacket, index.KindVariant, index.KindPublication, index.KindGeneFeature:
			kind = index.Kind(kindParam)
		default:
			return nil, &search.ValidationError{Param: "type", Reason: "unknown entity type"}
		}
	}

	res := &GlobalResult{
		Query:        search.NormalizeQuery(q),
		TotalsByKind: map[index.Kind]int{},
		Results:      []index.Scored{},
		Page:         pp.Page,
		PageSize:     pp.PageSize,
	}
	if search.TooShort(q) || res.Query == "" {
		return res, nil
	}

	snap, err := o.idx.Current()
	if err != nil {
		return nil, err
	}

	matches := snap.Search(res.Query, kind)
	res.Total = len(matches)
	for _, m := range matches {
		res.TotalsByKind[m.Record.Kind]++
	}

	offset := pp.Offset()
	if offset < len(matches) {
		end := offset + pp.PageSize
		if end > len(matches) {
			end = len(matches)
		}
		res.Results = matches[offset:end]
	}
	return res, nil
}

// ScopedPage is one page of a scoped search: the typed records and the
// cursor metadata needed to continue in either direction.
type ScopedPage struct {
	Data []interface{}   `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// ScopedSearch runs a filtered, ranked, cursor-paged search against one
// entity kind. Every parameter is validated before the store is touched, and
// a store that exceeds the query deadline yields a retryable timeout rather
// than a hung request.
func (o *Orchestrator) ScopedSearch(ctx context.Context, kind, q string, params url.Values, pp pagination.CursorParams) (*ScopedPage, error) {
	s, ok := o.searchers[kind]
	if !ok {
		return nil, &search.ValidationError{Param: "entity", Reason: "unknown entity kind"}
	}
	cfg := s.Config()

	filters, err := search.ParseFilterSpec(cfg.Fields, params, reservedParams)
	if err != nil {
		return nil, err
	}

	empty := &ScopedPage{Data: []interface{}{}}
	if search.TooShort(q) {
		return empty, nil
	}

	cur, err := o.decodeCursor(pp)
	if err != nil {
		return nil, err
	}

	qctx, cancel := context.WithTimeout(ctx, o.queryTimeout)
	defer cancel()

	start := time.Now()
	items, keys, hasMore, err := s.Search(qctx, q, filters, cur, pp.Size)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			o.log.Warn().Str("kind", kind).Dur("elapsed", time.Since(start)).Msg("scoped search timed out")
			return nil, &search.QueryTimeoutError{Elapsed: time.Since(start)}
		}
		return nil, err
	}
	if items == nil {
		items = []interface{}{}
	}

	page := pagination.Page{}
	if cur != nil && cur.Direction == search.Backward {
		page.HasPreviousPage = hasMore
		page.HasNextPage = true
	} else {
		page.HasNextPage = hasMore
		page.HasPreviousPage = cur != nil
	}
	if len(keys) > 0 {
		if page.StartCursor, err = o.codec.Encode(keys[0].Cursor(search.Backward)); err != nil {
			return nil, err
		}
		if page.EndCursor, err = o.codec.Encode(keys[len(keys)-1].Cursor(search.Forward)); err != nil {
			return nil, err
		}
	}

	return &ScopedPage{Data: items, Meta: pagination.Meta{Page: page}}, nil
}

func (o *Orchestrator) decodeCursor(pp pagination.CursorParams) (*search.Cursor, error) {
	if pp.After != "" && pp.Before != "" {
		return nil, &search.ValidationError{Param: "page[before]", Reason: "cannot be combined with page[after]"}
	}
	switch {
	case pp.After != "":
		cur, err := o.codec.Decode(pp.After)
		if err != nil {
			return nil, err
		}
		cur.Direction = search.Forward
		return cur, nil
	case pp.Before != "":
		cur, err := o.codec.Decode(pp.Before)
		if err != nil {
			return nil, err
		}
		cur.Direction = search.Backward
		return cur, nil
	}
	return nil, nil
}

// FacetSet maps each facet dimension of a kind to its counted buckets under
// the current filters, each dimension excluding its own filter.
type FacetSet struct {
	Facets map[string][]search.FacetBucket `json:"facets"`
}

// Facets computes every declared facet dimension for one entity kind.
func (o *Orchestrator) Facets(ctx context.Context, kind string, params url.Values) (*FacetSet, error) {
	s, ok := o.searchers[kind]
	if !ok {
		return nil, &search.ValidationError{Param: "entity", Reason: "unknown entity kind"}
	}
	cfg := s.Config()

	filters, err := search.ParseFilterSpec(cfg.Fields, params, reservedParams)
	if err != nil {
		return nil, err
	}

	qctx, cancel := context.WithTimeout(ctx, o.queryTimeout)
	defer cancel()

	start := time.Now()
	out := &FacetSet{Facets: make(map[string][]search.FacetBucket, len(cfg.Facets))}
	for _, dim := range cfg.Facets {
		buckets, err := s.FacetCounts(qctx, filters, dim)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, &search.QueryTimeoutError{Elapsed: time.Since(start)}
			}
			return nil, err
		}
		if buckets == nil {
			buckets = []search.FacetBucket{}
		}
		out.Facets[dim.Param] = buckets
	}
	return out, nil
}
