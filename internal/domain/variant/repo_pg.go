package variant

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

type variantRepoPG struct{ pool *pgxpool.Pool }

func NewVariantRepoPG(pool *pgxpool.Pool) Repository {
	return &variantRepoPG{pool: pool}
}

const variantCols = `id, gene_symbol, hgvs_c, hgvs_p, zygosity, variant_type,
	description, pmid, created_at, updated_at`

func (r *variantRepoPG) scanRow(row pgx.Row) (*Variant, error) {
	var v Variant
	err := row.Scan(&v.ID, &v.GeneSymbol, &v.HGVSc, &v.HGVSp, &v.Zygosity, &v.VariantType,
		&v.Description, &v.PMID, &v.CreatedAt, &v.UpdatedAt)
	return &v, err
}

func (r *variantRepoPG) scanSearchRow(row pgx.Row) (*Variant, float64, error) {
	var v Variant
	var score float64
	err := row.Scan(&v.ID, &v.GeneSymbol, &v.HGVSc, &v.HGVSp, &v.Zygosity, &v.VariantType,
		&v.Description, &v.PMID, &v.CreatedAt, &v.UpdatedAt, &score)
	return &v, score, err
}

func (r *variantRepoPG) Create(ctx context.Context, v *Variant) error {
	v.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO variants (id, gene_symbol, hgvs_c, hgvs_p, zygosity, variant_type,
			description, pmid)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		v.ID, v.GeneSymbol, v.HGVSc, v.HGVSp, v.Zygosity, v.VariantType,
		v.Description, v.PMID)
	return err
}

func (r *variantRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Variant, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+variantCols+` FROM variants WHERE id = $1`, id))
}

func (r *variantRepoPG) Update(ctx context.Context, v *Variant) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE variants SET gene_symbol=$2, hgvs_c=$3, hgvs_p=$4, zygosity=$5,
			variant_type=$6, description=$7, pmid=$8, updated_at=NOW()
		WHERE id = $1`,
		v.ID, v.GeneSymbol, v.HGVSc, v.HGVSp, v.Zygosity,
		v.VariantType, v.Description, v.PMID)
	return err
}

func (r *variantRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM variants WHERE id = $1`, id)
	return err
}

func (r *variantRepoPG) Search(ctx context.Context, q string, filters search.FilterSpec, cur *search.Cursor, pageSize int) ([]*Variant, []search.RowKey, bool, error) {
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

	var items []*Variant
	var keys []search.RowKey
	for rows.Next() {
		v, score, err := r.scanSearchRow(rows)
		if err != nil {
			return nil, nil, false, err
		}
		items = append(items, v)
		keys = append(keys, search.NewRowKey(ranked, score, v.CreatedAt, v.ID.String()))
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

func (r *variantRepoPG) FacetCounts(ctx context.Context, filters search.FilterSpec, dim search.FacetDim) ([]search.FacetBucket, error) {
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

func (r *variantRepoPG) Count(ctx context.Context, filters search.FilterSpec) (int, error) {
	sqlStr, args, err := SearchConfig().BuildCount(filters)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.pool.QueryRow(ctx, sqlStr, args...).Scan(&n)
	return n, err
}

func (r *variantRepoPG) IndexRecords(ctx context.Context) ([]index.SearchableRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+variantCols+` FROM variants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []index.SearchableRecord
	for rows.Next() {
		v, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, v.toIndexRecord())
	}
	return records, rows.Err()
}

func (v *Variant) toIndexRecord() index.SearchableRecord {
	extra := map[string]string{"gene": v.GeneSymbol}
	textParts := []string{v.GeneSymbol}
	if v.HGVSc != nil {
		extra["hgvs_c"] = *v.HGVSc
		textParts = append(textParts, *v.HGVSc)
	}
	if v.HGVSp != nil {
		extra["hgvs_p"] = *v.HGVSp
		textParts = append(textParts, *v.HGVSp)
	}
	if v.Description != nil {
		textParts = append(textParts, *v.Description)
	}
	subkind := ""
	if v.VariantType != nil {
		subkind = *v.VariantType
	}
	return index.SearchableRecord{
		ID:         v.ID.String(),
		Label:      v.Label(),
		Kind:       index.KindVariant,
		Subkind:    subkind,
		SearchText: strings.Join(textParts, " "),
		Extra:      extra,
		CreatedAt:  v.CreatedAt,
	}
}
