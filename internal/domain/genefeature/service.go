package genefeature

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/phenobase/phenobase/internal/platform/search"
)

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

func (s *Service) CreateGeneFeature(ctx context.Context, f *GeneFeature) error {
	if !symbolPattern.MatchString(f.Symbol) {
		return fmt.Errorf("invalid symbol %q", f.Symbol)
	}
	f.FeatureType = strings.ToUpper(f.FeatureType)
	if !slices.Contains(featureTypes, f.FeatureType) {
		return fmt.Errorf("invalid feature_type %q", f.FeatureType)
	}
	if f.Label == "" {
		f.Label = f.Symbol
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return err
	}
	s.idx.MarkDirty()
	return nil
}

func (s *Service) GetGeneFeature(ctx context.Context, id uuid.UUID) (*GeneFeature, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListBySymbol(ctx context.Context, symbol string) ([]*GeneFeature, error) {
	return s.repo.ListBySymbol(ctx, symbol)
}

func (s *Service) UpdateGeneFeature(ctx context.Context, f *GeneFeature) error {
	if err := s.repo.Update(ctx, f); err != nil {
		return err
	}
	s.idx.MarkDirty()
	return nil
}

func (s *Service) DeleteGeneFeature(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.idx.MarkDirty()
	return nil
}

// Kind is the URL entity segment gene features are searched under.
func (s *Service) Kind() string { return "gene-features" }

// Config exposes the search configuration to the orchestrator.
func (s *Service) Config() search.EntityConfig { return SearchConfig() }

func (s *Service) Search(ctx context.Context, q string, filters search.FilterSpec, cur *search.Cursor, pageSize int) ([]interface{}, []search.RowKey, bool, error) {
	items, keys, hasMore, err := s.repo.Search(ctx, q, filters, cur, pageSize)
	if err != nil {
		return nil, nil, false, err
	}
	out := make([]interface{}, len(items))
	for i, f := range items {
		out[i] = f
	}
	return out, keys, hasMore, nil
}

func (s *Service) FacetCounts(ctx context.Context, filters search.FilterSpec, dim search.FacetDim) ([]search.FacetBucket, error) {
	return s.repo.FacetCounts(ctx, filters, dim)
}
