package genefeature

import (
	"context"

	"github.com/google/uuid"

	"github.com/phenobase/phenobase/internal/platform/index"
	"github.com/phenobase/phenobase/internal/platform/search"
)

type Repository interface {
	Create(ctx context.Context, f *GeneFeature) error
	GetByID(ctx context.Context, id uuid.UUID) (*GeneFeature, error)
	ListBySymbol(ctx context.Context, symbol string) ([]*GeneFeature, error)
	Update(ctx context.Context, f *GeneFeature) error
	Delete(ctx context.Context, id uuid.UUID) error

	Search(ctx context.Context, q string, filters search.FilterSpec, cur *search.Cursor, pageSize int) ([]*GeneFeature, []search.RowKey, bool, error)
	FacetCounts(ctx context.Context, filters search.FilterSpec, dim search.FacetDim) ([]search.FacetBucket, error)
	Count(ctx context.Context, filters search.FilterSpec) (int, error)
	IndexRecords(ctx context.Context) ([]index.SearchableRecord, error)
}
