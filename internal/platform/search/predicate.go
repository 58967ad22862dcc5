package search

import (
	"strconv"
	"strings"
)

// Binder accumulates positional bind arguments while a statement is rendered.
// Every user-supplied value flows through Bind; rendered SQL only ever
// contains $n placeholders.
type Binder struct {
	args []interface{}
}

func NewBinder() *Binder {
	return &Binder{}
}

// Bind registers a value and returns its placeholder, e.g. "$3".
func (b *Binder) Bind(v interface{}) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// Args returns the accumulated bind arguments in placeholder order.
func (b *Binder) Args() []interface{} {
	return b.args
}

type predicateKind int

const (
	predicateLeaf predicateKind = iota
	predicateAnd
	predicateOr
)

// Predicate is a composable, parameter-bound filter expression tree. A leaf
// carries a clause template with one "?" marker per bound value; the marker
// is replaced by a $n placeholder at render time. Clause templates are
// code-authored constants, so user input can never reach the SQL text.
type Predicate struct {
	kind   predicateKind
	clause string
	binds  []interface{}
	subs   []*Predicate
}

// Leaf creates a predicate from a clause template and its bound values. The
// template must contain exactly one "?" per value.
func Leaf(clause string, binds ...interface{}) *Predicate {
	return &Predicate{kind: predicateLeaf, clause: clause, binds: binds}
}

// And combines predicates conjunctively. Nil members are skipped; an empty
// combination renders to nothing. Composition is associative and
// order-independent for correctness.
func And(subs ...*Predicate) *Predicate {
	return combine(predicateAnd, subs)
}

// Or combines predicates disjunctively. Nil members are skipped.
func Or(subs ...*Predicate) *Predicate {
	return combine(predicateOr, subs)
}

func combine(kind predicateKind, subs []*Predicate) *Predicate {
	kept := make([]*Predicate, 0, len(subs))
	for _, s := range subs {
		if s != nil {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &Predicate{kind: kind, subs: kept}
}

// Render writes the predicate as SQL, registering every bound value with the
// binder. Rendering a nil predicate yields the empty string.
func (p *Predicate) Render(b *Binder) string {
	if p == nil {
		return ""
	}
	switch p.kind {
	case predicateLeaf:
		return p.renderLeaf(b)
	case predicateOr:
		return p.renderGroup(b, " OR ")
	default:
		return p.renderGroup(b, " AND ")
	}
}

func (p *Predicate) renderLeaf(b *Binder) string {
	parts := strings.Split(p.clause, "?")
	var sb strings.Builder
	sb.WriteString(parts[0])
	for i := 1; i < len(parts); i++ {
		if i-1 < len(p.binds) {
			sb.WriteString(b.Bind(p.binds[i-1]))
		}
		sb.WriteString(parts[i])
	}
	return sb.String()
}

func (p *Predicate) renderGroup(b *Binder, sep string) string {
	rendered := make([]string, 0, len(p.subs))
	for _, s := range p.subs {
		if r := s.Render(b); r != "" {
			rendered = append(rendered, r)
		}
	}
	if len(rendered) == 0 {
		return ""
	}
	if len(rendered) == 1 {
		return rendered[0]
	}
	return "(" + strings.Join(rendered, sep) + ")"
}
