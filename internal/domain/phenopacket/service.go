package phenopacket

import (
	"context"
	"fmt"

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

func (s *Service) CreatePhenopacket(ctx context.Context, p *Phenopacket) error {
	if p.SubjectID == "" {
		return fmt.Errorf("subject_id is required")
	}
	for _, term := range p.HPOTerms {
		if !hpoPattern.MatchString(term) {
			return fmt.Errorf("invalid HPO term %q", term)
		}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.idx.MarkDirty()
	return nil
}

func (s *Service) GetPhenopacket(ctx context.Context, id uuid.UUID) (*Phenopacket, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByPacketID(ctx context.Context, packetID string) (*Phenopacket, error) {
	return s.repo.GetByPacketID(ctx, packetID)
}

func (s *Service) UpdatePhenopacket(ctx context.Context, p *Phenopacket) error {
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.idx.MarkDirty()
	return nil
}

func (s *Service) DeletePhenopacket(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.idx.MarkDirty()
	return nil
}

// Kind is the URL entity segment phenopackets are searched under.
func (s *Service) Kind() string { return "phenopackets" }

// Config exposes the search configuration to the orchestrator.
func (s *Service) Config() search.EntityConfig { return SearchConfig() }

func (s *Service) Search(ctx context.Context, q string, filters search.FilterSpec, cur *search.Cursor, pageSize int) ([]interface{}, []search.RowKey, bool, error) {
	items, keys, hasMore, err := s.repo.Search(ctx, q, filters, cur, pageSize)
	if err != nil {
		return nil, nil, false, err
	}
	out := make([]interface{}, len(items))
	for i, p := range items {
		out[i] = p
	}
	return out, keys, hasMore, nil
}

func (s *Service) FacetCounts(ctx context.Context, filters search.FilterSpec, dim search.FacetDim) ([]search.FacetBucket, error) {
	return s.repo.FacetCounts(ctx, filters, dim)
}
