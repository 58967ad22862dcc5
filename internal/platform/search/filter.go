package search

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Filter is a single structured filter as it arrived from the caller.
type Filter struct {
	Field string
	Value string
}

// FilterSpec is the ordered, validated set of structured filters for one
// request. It is constructed once and never mutated; Without returns a copy.
type FilterSpec []Filter

// Get returns the value for a field, if present.
func (fs FilterSpec) Get(field string) (string, bool) {
	for _, f := range fs {
		if f.Field == field {
			return f.Value, true
		}
	}
	return "", false
}

// Without returns a copy of the spec with the named field removed. Used by
// facet aggregation, where each dimension is counted against the base filter
// set minus its own filter.
func (fs FilterSpec) Without(field string) FilterSpec {
	out := make(FilterSpec, 0, len(fs))
	for _, f := range fs {
		if f.Field != field {
			out = append(out, f)
		}
	}
	return out
}

const defaultMaxFilterLen = 120

// FieldSpec declares one filterable field for an entity kind: the query
// parameter it answers to, the column it binds against, and the validation
// applied to raw values before they become bound parameters.
type FieldSpec struct {
	Param    string
	Column   string
	Enum     []string       // allowed values, exact match
	Pattern  *regexp.Regexp // character/format allow-list
	MaxLen   int            // defaults to 120
	CaseFold bool           // compare lower(column) = lower(value)
	Clause   string         // optional clause template override, one "?" marker
}

// Validate checks a raw value against the field's declared constraints.
func (f FieldSpec) Validate(raw string) error {
	v := strings.TrimSpace(raw)
	if v == "" {
		return fmt.Errorf("value must not be empty")
	}
	maxLen := f.MaxLen
	if maxLen == 0 {
		maxLen = defaultMaxFilterLen
	}
	if len(v) > maxLen {
		return fmt.Errorf("value exceeds %d characters", maxLen)
	}
	if len(f.Enum) > 0 {
		for _, e := range f.Enum {
			if v == e {
				return nil
			}
		}
		return fmt.Errorf("must be one of %s", strings.Join(f.Enum, ", "))
	}
	if f.Pattern != nil && !f.Pattern.MatchString(v) {
		return fmt.Errorf("does not match the allowed format")
	}
	return nil
}

func (f FieldSpec) predicate(value string) *Predicate {
	if f.Clause != "" {
		return Leaf(f.Clause, value)
	}
	if f.CaseFold {
		return Leaf("lower("+f.Column+") = lower(?)", value)
	}
	return Leaf(f.Column+" = ?", value)
}

// FieldSet is the allow-list of filterable fields for one entity kind,
// keyed by query parameter name.
type FieldSet map[string]FieldSpec

// Params returns the declared parameter names, sorted.
func (set FieldSet) Params() []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseFilterSpec extracts structured filters from query parameters,
// validating each against the field set. Parameters outside the allow-list
// (and not in reserved) are rejected with a field-attributable error, as is
// any value that fails its declared validator. Fields are collected in
// sorted parameter order so an identical request always yields an identical
// spec.
func ParseFilterSpec(set FieldSet, params url.Values, reserved map[string]bool) (FilterSpec, error) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var spec FilterSpec
	for _, name := range names {
		if reserved[name] {
			continue
		}
		field, ok := set[name]
		if !ok {
			return nil, &ValidationError{Param: name, Reason: "unknown filter field"}
		}
		raw := params.Get(name)
		if err := field.Validate(raw); err != nil {
			return nil, &ValidationError{Param: name, Reason: err.Error()}
		}
		spec = append(spec, Filter{Field: name, Value: strings.TrimSpace(raw)})
	}
	return spec, nil
}

// Compile turns a validated FilterSpec into a conjunctive predicate tree.
// Every leaf carries its value as a bound parameter. A spec referencing a
// field outside the set fails with a field-attributable error; this guards
// specs constructed by code paths other than ParseFilterSpec.
func (set FieldSet) Compile(spec FilterSpec) (*Predicate, error) {
	preds := make([]*Predicate, 0, len(spec))
	for _, f := range spec {
		field, ok := set[f.Field]
		if !ok {
			return nil, &ValidationError{Param: f.Field, Reason: "unknown filter field"}
		}
		if err := field.Validate(f.Value); err != nil {
			return nil, &ValidationError{Param: f.Field, Reason: err.Error()}
		}
		preds = append(preds, field.predicate(f.Value))
	}
	return And(preds...), nil
}
