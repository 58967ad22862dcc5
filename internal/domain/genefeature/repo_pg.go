package genefeature

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phenobase/phenobase/internal/platform/index"
	"github.com/phenobase/phenobase/internal/platform/search"
)

type geneFeatureRepoPG struct{ pool *pgxpool.Pool }

func NewGeneFeatureRepoPG(pool *pgxpool.Pool) Repository {
	return &geneFeatureRepoPG{pool: pool}
}

const geneFeatureCols = `id, symbol, label, feature_type, chromosome, start_pos, end_pos,
	description, created_at, updated_at`

func (r *geneFeatureRepoPG) scanRow(row pgx.Row) (*GeneFeature, error) {
	var f GeneFeature
	err := row.Scan(&f.ID, &f.Symbol, &f.Label, &f.FeatureType, &f.Chromosome, &f.StartPos, &f.EndPos,
		&f.Description, &f.CreatedAt, &f.UpdatedAt)
	return &f, err
}

func (r *geneFeatureRepoPG) scanSearchRow(row pgx.Row) (*GeneFeature, float64, error) {
	var f GeneFeature
	var score float64
	err := row.Scan(&f.ID, &f.Symbol, &f.Label, &f.FeatureType, &f.Chromosome, &f.StartPos, &f.EndPos,
		&f.Description, &f.CreatedAt, &f.UpdatedAt, &score)
	return &f, score, err
}

func (r *geneFeatureRepoPG) Create(ctx context.Context, f *GeneFeature) error {
	f.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO gene_features (id, symbol, label, feature_type, chromosome, start_pos,
			end_pos, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		f.ID, f.Symbol, f.Label, f.FeatureType, f.Chromosome, f.StartPos,
		f.EndPos, f.Description)
	return err
}

func (r *geneFeatureRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*GeneFeature, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+geneFeatureCols+` FROM gene_features WHERE id = $1`, id))
}

func (r *geneFeatureRepoPG) ListBySymbol(ctx context.Context, symbol string) ([]*GeneFeature, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+geneFeatureCols+` FROM gene_features
		WHERE lower(symbol) = lower($1)
		ORDER BY feature_type, label`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*GeneFeature
	for rows.Next() {
		f, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

func (r *geneFeatureRepoPG) Update(ctx context.Context, f *GeneFeature) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE gene_features SET symbol=$2, label=$3, feature_type=$4, chromosome=$5,
			start_pos=$6, end_pos=$7, description=$8, updated_at=NOW()
		WHERE id = $1`,
		f.ID, f.Symbol, f.Label, f.FeatureType, f.Chromosome,
		f.StartPos, f.EndPos, f.Description)
	return err
}

func (r *geneFeatureRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM gene_features WHERE id = $1`, id)
	return err
}

func (r *geneFeatureRepoPG) Search(ctx context.Context, q string, filters search.FilterSpec, cur *search.Cursor, pageSize int) ([]*GeneFeature, []search.RowKey, bool, error) {
	cfg := SearchConfig()
	sqlStr, args, ranked, err := cfg.BuildSearch(q, filters, cur, pageSize)
	if err != nil {
		return nil, nil, false, err
	}

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, nil, false, err
	}
	defer rows.Close()

	var items []*GeneFeature
	var keys []search.RowKey
	for rows.Next() {
		f, score, err := r.scanSearchRow(rows)
		if err != nil {
			return nil, nil, false, err
		}
		items = append(items, f)
		keys = append(keys, search.NewRowKey(ranked, score, f.CreatedAt, f.ID.String()))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, false, err
	}

	hasMore := len(items) > pageSize
	if hasMore {
		items = items[:pageSize]
		keys = keys[:pageSize]
	}
	if cur != nil && cur.Direction == search.Backward {
		slices.Reverse(items)
		slices.Reverse(keys)
	}
	return items, keys, hasMore, nil
}

func (r *geneFeatureRepoPG) FacetCounts(ctx context.Context, filters search.FilterSpec, dim search.FacetDim) ([]search.FacetBucket, error) {
	sqlStr, args, err := SearchConfig().BuildFacet(filters, dim)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []search.FacetBucket
	for rows.Next() {
		var value string
		var n int
		if err := rows.Scan(&value, &n); err != nil {
			return nil, err
		}
		buckets = append(buckets, search.FacetBucket{Value: value, Label: dim.LabelFor(value), Count: n})
	}
	return buckets, rows.Err()
}

func (r *geneFeatureRepoPG) Count(ctx context.Context, filters search.FilterSpec) (int, error) {
	sqlStr, args, err := SearchConfig().BuildCount(filters)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.pool.QueryRow(ctx, sqlStr, args...).Scan(&n)
	return n, err
}

func (r *geneFeatureRepoPG) IndexRecords(ctx context.Context) ([]index.SearchableRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+geneFeatureCols+` FROM gene_features`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []index.SearchableRecord
	for rows.Next() {
		f, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, f.toIndexRecord())
	}
	return records, rows.Err()
}

func (f *GeneFeature) toIndexRecord() index.SearchableRecord {
	extra := map[string]string{"symbol": f.Symbol}
	textParts := []string{f.Symbol, f.Label}
	if f.Chromosome != nil {
		extra["chromosome"] = *f.Chromosome
	}
	if f.Description != nil {
		textParts = append(textParts, *f.Description)
	}
	return index.SearchableRecord{
		ID:         f.ID.String(),
		Label:      f.Label,
		Kind:       index.KindGeneFeature,
		Subkind:    f.FeatureType,
		SearchText: strings.Join(textParts, " "),
		Extra:      extra,
		CreatedAt:  f.CreatedAt,
	}
}
