package search

import (
	"strconv"
	"strings"
)

// FacetDim is one facet dimension an entity kind reports: the filter
// parameter it corresponds to, the column counts are grouped by, and
// optional display labels per value.
type FacetDim struct {
	Param  string
	Column string
	Labels map[string]string
}

// LabelFor returns the display label for a facet value.
func (d FacetDim) LabelFor(value string) string {
	if l, ok := d.Labels[value]; ok {
		return l
	}
	if value == NotReported {
		return "Not reported"
	}
	return value
}

// NotReported is the facet bucket for rows where the dimension is null.
// Absent values are reported explicitly rather than silently dropped.
const NotReported = "not_reported"

// FacetBucket is one counted value within a facet dimension.
type FacetBucket struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// EntityConfig declares how one entity kind is searched: its table, the
// columns a search returns, the filterable field allow-list, the text
// ranking configuration, and the facet dimensions it reports.
type EntityConfig struct {
	Kind          string
	Table         string
	SelectColumns string
	Fields        FieldSet
	Text          TextConfig
	Facets        []FacetDim
}

// FacetDim returns the named facet dimension, if declared.
func (cfg EntityConfig) FacetDim(param string) (FacetDim, bool) {
	for _, d := range cfg.Facets {
		if d.Param == param {
			return d, true
		}
	}
	return FacetDim{}, false
}

// BuildSearch assembles the scoped-search statement: compiled filters, the
// text-match predicate, the keyset comparison derived from the cursor, the
// ordering, and a LIMIT of pageSize+1 so the executor can detect a further
// page without a count query. Returns the SQL, its bound arguments, and
// whether the ordering is rank-led.
func (cfg EntityConfig) BuildSearch(q string, filters FilterSpec, cur *Cursor, pageSize int) (string, []interface{}, bool, error) {
	base, err := cfg.Fields.Compile(filters)
	if err != nil {
		return "", nil, false, err
	}

	q = NormalizeQuery(q)
	ranked := q != ""

	b := NewBinder()

	scoreExpr := "0"
	if ranked {
		scoreExpr = cfg.Text.RankExpr(b, q)
	}

	sortCols := []SortColumn{{Expr: "created_at", Ascending: false}}
	if ranked {
		sortCols = []SortColumn{
			{Expr: scoreExpr, Ascending: false},
			{Expr: "created_at", Ascending: false},
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cfg.SelectColumns)
	sb.WriteString(", ")
	sb.WriteString(scoreExpr)
	sb.WriteString(" AS sort_score FROM ")
	sb.WriteString(cfg.Table)
	sb.WriteString(" WHERE 1=1")

	if clause := base.Render(b); clause != "" {
		sb.WriteString(" AND ")
		sb.WriteString(clause)
	}
	if ranked {
		if match := cfg.Text.MatchPredicate(q); match != nil {
			sb.WriteString(" AND ")
			sb.WriteString(match.Render(b))
		}
	}
	if cur != nil {
		keyset, err := KeysetPredicate(b, sortCols, cur)
		if err != nil {
			return "", nil, false, err
		}
		sb.WriteString(" AND ")
		sb.WriteString(keyset)
	}

	backward := cur != nil && cur.Direction == Backward
	sb.WriteString(" ")
	sb.WriteString(OrderClause(sortCols, backward))
	sb.WriteString(" LIMIT ")
	sb.WriteString(strconv.Itoa(pageSize + 1))

	return sb.String(), b.Args(), ranked, nil
}

// BuildFacet assembles the count statement for one dimension. The base
// predicate is the filter spec with the dimension's own filter removed, so a
// facet always reports what the result set would look like without that one
// restriction. Null values group under the NotReported bucket.
func (cfg EntityConfig) BuildFacet(filters FilterSpec, dim FacetDim) (string, []interface{}, error) {
	base, err := cfg.Fields.Compile(filters.Without(dim.Param))
	if err != nil {
		return "", nil, err
	}

	b := NewBinder()
	var sb strings.Builder
	sb.WriteString("SELECT COALESCE(")
	sb.WriteString(dim.Column)
	sb.WriteString("::text, '")
	sb.WriteString(NotReported)
	sb.WriteString("') AS value, COUNT(*) AS n FROM ")
	sb.WriteString(cfg.Table)
	sb.WriteString(" WHERE 1=1")
	if clause := base.Render(b); clause != "" {
		sb.WriteString(" AND ")
		sb.WriteString(clause)
	}
	sb.WriteString(" GROUP BY 1 ORDER BY n DESC, value ASC")

	return sb.String(), b.Args(), nil
}

// BuildCount assembles the total count under the given filters, used to
// check facet-sum consistency and to report scoped totals.
func (cfg EntityConfig) BuildCount(filters FilterSpec) (string, []interface{}, error) {
	base, err := cfg.Fields.Compile(filters)
	if err != nil {
		return "", nil, err
	}
	b := NewBinder()
	sql := "SELECT COUNT(*) FROM " + cfg.Table + " WHERE 1=1"
	if clause := base.Render(b); clause != "" {
		sql += " AND " + clause
	}
	return sql, b.Args(), nil
}
