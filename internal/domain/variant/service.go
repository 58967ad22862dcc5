package variant

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/phenobase/phenobase/internal/platform/search"
)

// indexNotifier receives a signal after every successful write so the global
// index can be rebuilt off the request path.
type indexNotifier interface {
	MarkDirty()
}

type Service struct {
	repo Repository
	idx  indexNotifier
}

func NewService(repo Repository, idx indexNotifier) *Service {
	return &Service{repo: repo, idx: idx}
}

func (s *Service) CreateVariant(ctx context.Context, v *Variant) error {
	if v.GeneSymbol == "" {
		return fmt.Errorf("gene_symbol is required")
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return err
	}
	s.idx.MarkDirty()
	return nil
}

func (s *Service) GetVariant(ctx context.Context, id uuid.UUID) (*Variant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateVariant(ctx context.Context, v *Variant) error {
	if err := s.repo.Update(ctx, v); err != nil {
		return err
	}
	s.idx.MarkDirty()
	return nil
}

func (s *Service) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.idx.MarkDirty()
	return nil
}

// Kind is the URL entity segment variants are searched under.
func (s *Service) Kind() string { return "variants" }

// Config exposes the search configuration to the orchestrator.
func (s *Service) Config() search.EntityConfig { return SearchConfig() }

// Search runs a scoped search and adapts the typed page to the orchestrator.
func (s *Service) Search(ctx context.Context, q string, filters search.FilterSpec, cur *search.Cursor, pageSize int) ([]interface{}, []search.RowKey, bool, error) {
	items, keys, hasMore, err := s.repo.Search(ctx, q, filters, cur, pageSize)
	if err != nil {
		return nil, nil, false, err
	}
	out := make([]interface{}, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out, keys, hasMore, nil
}

func (s *Service) FacetCounts(ctx context.Context, filters search.FilterSpec, dim search.FacetDim) ([]search.FacetBucket, error) {
	return s.repo.FacetCounts(ctx, filters, dim)
}
