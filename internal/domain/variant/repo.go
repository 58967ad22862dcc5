package variant

import (
	"context"

	"github.com/google/uuid"

	"github.com/phenobase/phenobase/internal/platform/index"
	"github.com/phenobase/phenobase/internal/platform/search"
)

type Repository interface {
	Create(ctx context.Context, v *Variant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Variant, error)
	Update(ctx context.Context, v *Variant) error
	Delete(ctx context.Context, id uuid.UUID) error

	Search(ctx context.Context, q string, filters search.FilterSpec, cur *search.Cursor, pageSize int) ([]*Variant, []search.RowKey, bool, error)
	FacetCounts(ctx context.Context, filters search.FilterSpec, dim search.FacetDim) ([]search.FacetBucket, error)
	Count(ctx context.Context, filters search.FilterSpec) (int, error)
	IndexRecords(ctx context.Context) ([]index.SearchableRecord, error)
}
