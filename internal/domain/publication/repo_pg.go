package publication

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phenobase/phenobase/internal/platform/index"
	"github.com/phenobase/phenobase/internal/platform/search"
)

type publicationRepoPG struct{ pool *pgxpool.Pool }

func NewPublicationRepoPG(pool *pgxpool.Pool) Repository {
	return &publicationRepoPG{pool: pool}
}

const publicationCols = `id, pmid, title, first_author, journal, year, abstract,
	created_at, updated_at`

func (r *publicationRepoPG) scanRow(row pgx.Row) (*Publication, error) {
	var p Publication
	err := row.Scan(&p.ID, &p.PMID, &p.Title, &p.FirstAuthor, &p.Journal, &p.Year, &p.Abstract,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *publicationRepoPG) scanSearchRow(row pgx.Row) (*Publication, float64, error) {
	var p Publication
	var score float64
	err := row.Scan(&p.ID, &p.PMID, &p.Title, &p.FirstAuthor, &p.Journal, &p.Year, &p.Abstract,
		&p.CreatedAt, &p.UpdatedAt, &score)
	return &p, score, err
}

func (r *publicationRepoPG) Create(ctx context.Context, p *Publication) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO publications (id, pmid, title, first_author, journal, year, abstract)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.PMID, p.Title, p.FirstAuthor, p.Journal, p.Year, p.Abstract)
	return err
}

func (r *publicationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Publication, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+publicationCols+` FROM publications WHERE id = $1`, id))
}

func (r *publicationRepoPG) GetByPMID(ctx context.Context, pmid string) (*Publication, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+publicationCols+` FROM publications WHERE pmid = $1`, pmid))
}

func (r *publicationRepoPG) Update(ctx context.Context, p *Publication) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE publications SET title=$2, first_author=$3, journal=$4, year=$5, abstract=$6,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Title, p.FirstAuthor, p.Journal, p.Year, p.Abstract)
	return err
}

func (r *publicationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM publications WHERE id = $1`, id)
	return err
}

func (r *publicationRepoPG) Search(ctx context.Context, q string, filters search.FilterSpec, cur *search.Cursor, pageSize int) ([]*Publication, []search.RowKey, bool, error) {
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

	var items []*Publication
	var keys []search.RowKey
	for rows.Next() {
		p, score, err := r.scanSearchRow(rows)
		if err != nil {
			return nil, nil, false, err
		}
		items = append(items, p)
		keys = append(keys, search.NewRowKey(ranked, score, p.CreatedAt, p.ID.String()))
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

func (r *publicationRepoPG) FacetCounts(ctx context.Context, filters search.FilterSpec, dim search.FacetDim) ([]search.FacetBucket, error) {
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

func (r *publicationRepoPG) Count(ctx context.Context, filters search.FilterSpec) (int, error) {
	sqlStr, args, err := SearchConfig().BuildCount(filters)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.pool.QueryRow(ctx, sqlStr, args...).Scan(&n)
	return n, err
}

func (r *publicationRepoPG) IndexRecords(ctx context.Context) ([]index.SearchableRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+publicationCols+` FROM publications`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []index.SearchableRecord
	for rows.Next() {
		p, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, p.toIndexRecord())
	}
	return records, rows.Err()
}

func (p *Publication) toIndexRecord() index.SearchableRecord {
	extra := map[string]string{"pmid": p.PMID}
	textParts := []string{p.PMID, p.Title}
	if p.FirstAuthor != nil {
		extra["first_author"] = *p.FirstAuthor
		textParts = append(textParts, *p.FirstAuthor)
	}
	if p.Journal != nil {
		extra["journal"] = *p.Journal
	}
	if p.Year != nil {
		extra["year"] = strconv.Itoa(*p.Year)
	}
	if p.Abstract != nil {
		textParts = append(textParts, *p.Abstract)
	}
	subkind := ""
	if p.Journal != nil {
		subkind = *p.Journal
	}
	return index.SearchableRecord{
		ID:         p.ID.String(),
		Label:      p.Title,
		Kind:       index.KindPublication,
		Subkind:    subkind,
		SearchText: strings.Join(textParts, " "),
		Extra:      extra,
		CreatedAt:  p.CreatedAt,
	}
}
