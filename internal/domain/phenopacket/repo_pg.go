package phenopacket

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

type phenopacketRepoPG struct{ pool *pgxpool.Pool }

func NewPhenopacketRepoPG(pool *pgxpool.Pool) Repository {
	return &phenopacketRepoPG{pool: pool}
}

const phenopacketCols = `id, packet_id, subject_id, sex, gene_symbol, hpo_terms,
	summary, pmid, created_at, updated_at`

func (r *phenopacketRepoPG) scanRow(row pgx.Row) (*Phenopacket, error) {
	var p Phenopacket
	err := row.Scan(&p.ID, &p.PacketID, &p.SubjectID, &p.Sex, &p.GeneSymbol, &p.HPOTerms,
		&p.Summary, &p.PMID, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *phenopacketRepoPG) scanSearchRow(row pgx.Row) (*Phenopacket, float64, error) {
	var p Phenopacket
	var score float64
	err := row.Scan(&p.ID, &p.PacketID, &p.SubjectID, &p.Sex, &p.GeneSymbol, &p.HPOTerms,
		&p.Summary, &p.PMID, &p.CreatedAt, &p.UpdatedAt, &score)
	return &p, score, err
}

func (r *phenopacketRepoPG) Create(ctx context.Context, p *Phenopacket) error {
	p.ID = uuid.New()
	if p.PacketID == "" {
		p.PacketID = p.ID.String()
	}
	if p.HPOTerms == nil {
		p.HPOTerms = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO phenopackets (id, packet_id, subject_id, sex, gene_symbol, hpo_terms,
			summary, pmid)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.PacketID, p.SubjectID, p.Sex, p.GeneSymbol, p.HPOTerms,
		p.Summary, p.PMID)
	return err
}

func (r *phenopacketRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Phenopacket, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+phenopacketCols+` FROM phenopackets WHERE id = $1`, id))
}

func (r *phenopacketRepoPG) GetByPacketID(ctx context.Context, packetID string) (*Phenopacket, error) {
	return r.scanRow(r.pool.QueryRow(ctx, `SELECT `+phenopacketCols+` FROM phenopackets WHERE packet_id = $1`, packetID))
}

func (r *phenopacketRepoPG) Update(ctx context.Context, p *Phenopacket) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE phenopackets SET subject_id=$2, sex=$3, gene_symbol=$4, hpo_terms=$5,
			summary=$6, pmid=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.SubjectID, p.Sex, p.GeneSymbol, p.HPOTerms, p.Summary, p.PMID)
	return err
}

func (r *phenopacketRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM phenopackets WHERE id = $1`, id)
	return err
}

func (r *phenopacketRepoPG) Search(ctx context.Context, q string, filters search.FilterSpec, cur *search.Cursor, pageSize int) ([]*Phenopacket, []search.RowKey, bool, error) {
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

	var items []*Phenopacket
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

func (r *phenopacketRepoPG) FacetCounts(ctx context.Context, filters search.FilterSpec, dim search.FacetDim) ([]search.FacetBucket, error) {
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

func (r *phenopacketRepoPG) Count(ctx context.Context, filters search.FilterSpec) (int, error) {
	sqlStr, args, err := SearchConfig().BuildCount(filters)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.pool.QueryRow(ctx, sqlStr, args...).Scan(&n)
	return n, err
}

func (r *phenopacketRepoPG) IndexRecords(ctx context.Context) ([]index.SearchableRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+phenopacketCols+` FROM phenopackets`)
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

func (p *Phenopacket) toIndexRecord() index.SearchableRecord {
	extra := map[string]string{"packet_id": p.PacketID}
	textParts := []string{p.PacketID, p.SubjectID}
	if p.GeneSymbol != nil {
		extra["gene"] = *p.GeneSymbol
		textParts = append(textParts, *p.GeneSymbol)
	}
	if p.Summary != nil {
		textParts = append(textParts, *p.Summary)
	}
	textParts = append(textParts, p.HPOTerms...)
	subkind := ""
	if p.Sex != nil {
		subkind = *p.Sex
	}
	return index.SearchableRecord{
		ID:         p.ID.String(),
		Label:      p.PacketID,
		Kind:       index.KindPhenopacket,
		Subkind:    subkind,
		SearchText: strings.Join(textParts, " "),
		Extra:      extra,
		CreatedAt:  p.CreatedAt,
	}
}
