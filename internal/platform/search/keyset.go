package search

import (
	"strings"
	"time"
)

// SortColumn is one component of the search ordering. Expr is a rendered SQL
// expression (a column name, or a rank expression whose arguments were
// already bound), never user input.
type SortColumn struct {
	Expr      string
	Ascending bool
}

const tieBreakColumn = "id"

// RowKey captures a row's position in the ordering: its sort-column values
// plus the tie-break identifier. Cursors are minted from row keys.
type RowKey struct {
	SortValues []interface{}
	ID         string
}

// NewRowKey builds the key for a row under the standard orderings: ranked
// results sort by (score DESC, created_at DESC, id ASC), unranked by
// (created_at DESC, id ASC). Timestamps are carried as RFC 3339 strings so a
// cursor survives its JSON round-trip byte-exactly.
func NewRowKey(ranked bool, score float64, createdAt time.Time, id string) RowKey {
	ts := createdAt.UTC().Format(time.RFC3339Nano)
	if ranked {
		return RowKey{SortValues: []interface{}{score, ts}, ID: id}
	}
	return RowKey{SortValues: []interface{}{ts}, ID: id}
}

// Cursor mints a cursor at this row key.
func (k RowKey) Cursor(dir Direction) *Cursor {
	return &Cursor{
		SortValues: k.SortValues,
		TieBreakID: k.ID,
		Direction:  dir,
		IssuedAt:   time.Now().UTC(),
	}
}

// KeysetPredicate renders the strict keyset comparison for resuming after
// (or, paging backward, before) the cursor position. For ORDER BY a DESC,
// b DESC, id ASC at cursor (a0, b0, id0) it expands to
//
//	(a < a0) OR (a = a0 AND b < b0) OR (a = a0 AND b = b0 AND id > id0)
//
// with every comparison reversed for backward paging. The expansion is
// strictly greater/less than the cursor tuple, never offset-based, so pages
// are stable under concurrent inserts elsewhere in the ordering.
func KeysetPredicate(b *Binder, cols []SortColumn, cur *Cursor) (string, error) {
	if cur == nil {
		return "", nil
	}
	if len(cur.SortValues) != len(cols) {
		return "", &InvalidCursorError{Reason: "cursor does not match the requested ordering"}
	}

	backward := cur.Direction == Backward

	type part struct {
		expr      string
		value     interface{}
		ascending bool
	}
	parts := make([]part, 0, len(cols)+1)
	for i, col := range cols {
		parts = append(parts, part{expr: col.Expr, value: cur.SortValues[i], ascending: col.Ascending})
	}
	parts = append(parts, part{expr: tieBreakColumn, value: cur.TieBreakID, ascending: true})

	var ors []string
	for i := range parts {
		var ands []string
		for j := 0; j < i; j++ {
			ands = append(ands, parts[j].expr+" = "+b.Bind(parts[j].value))
		}
		op := keysetOp(parts[i].ascending, backward)
		ands = append(ands, parts[i].expr+" "+op+" "+b.Bind(parts[i].value))
		if len(ands) == 1 {
			ors = append(ors, ands[0])
		} else {
			ors = append(ors, "("+strings.Join(ands, " AND ")+")")
		}
	}

	return "(" + strings.Join(ors, " OR ") + ")", nil
}

func keysetOp(ascending, backward bool) string {
	if ascending != backward {
		return ">"
	}
	return "<"
}

// OrderClause renders the ORDER BY list for the sort columns plus the id
// tie-break. Backward pages reverse every direction; callers re-reverse the
// fetched rows so the page reads in canonical order.
func OrderClause(cols []SortColumn, backward bool) string {
	parts := make([]string, 0, len(cols)+1)
	for _, col := range cols {
		parts = append(parts, col.Expr+" "+keysetDir(col.Ascending, backward))
	}
	parts = append(parts, tieBreakColumn+" "+keysetDir(true, backward))
	return "ORDER BY " + strings.Join(parts, ", ")
}

func keysetDir(ascending, backward bool) string {
	if ascending != backward {
		return "ASC"
	}
	return "DESC"
}
