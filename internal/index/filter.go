package index

import (
	"fmt"
	"strings"
	"time"
)

// Suffix operators recognized by BuildFilter. A metadata key passed without
// one of these suffixes is matched for exact equality.
const (
	suffixAfter    = "_after"
	suffixBefore   = "_before"
	suffixContains = "_contains"
)

// BuildFilter turns a flat set of criteria into a Filter predicate. Each
// key is either a bare metadata field name (exact match) or a field name
// with one of the _after/_before/_contains suffixes. A chunk is included
// only if every criterion matches; a chunk missing a referenced field, or
// a criterion naming an operator its field's value doesn't support (e.g.
// _contains on a non-string), causes that chunk to be excluded rather than
// erroring, matching the permissive-reject behavior of the metadata filter
// this is grounded on.
func BuildFilter(criteria map[string]any) Filter {
	if len(criteria) == 0 {
		return nil
	}

	type predicate struct {
		field string
		op    string
		value any
	}
	predicates := make([]predicate, 0, len(criteria))
	for key, value := range criteria {
		switch {
		case strings.HasSuffix(key, suffixAfter):
			predicates = append(predicates, predicate{field: strings.TrimSuffix(key, suffixAfter), op: suffixAfter, value: value})
		case strings.HasSuffix(key, suffixBefore):
			predicates = append(predicates, predicate{field: strings.TrimSuffix(key, suffixBefore), op: suffixBefore, value: value})
		case strings.HasSuffix(key, suffixContains):
			predicates = append(predicates, predicate{field: strings.TrimSuffix(key, suffixContains), op: suffixContains, value: value})
		default:
			predicates = append(predicates, predicate{field: key, op: "", value: value})
		}
	}

	return func(c Chunk) bool {
		for _, p := range predicates {
			fieldVal, ok := c.Metadata[p.field]
			if !ok {
				return false
			}
			switch p.op {
			case "":
				if !equalValues(fieldVal, p.value) {
					return false
				}
			case suffixAfter:
				if !timeCompare(fieldVal, p.value, func(a, b time.Time) bool { return a.After(b) }) {
					return false
				}
			case suffixBefore:
				if !timeCompare(fieldVal, p.value, func(a, b time.Time) bool { return a.Before(b) }) {
					return false
				}
			case suffixContains:
				if !containsValue(fieldVal, p.value) {
					return false
				}
			}
		}
		return true
	}
}

func equalValues(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func containsValue(fieldVal, needle any) bool {
	haystack, ok := fieldVal.(string)
	if !ok {
		return false
	}
	sub, ok := needle.(string)
	if !ok {
		return false
	}
	return strings.Contains(haystack, sub)
}

func timeCompare(fieldVal, bound any, cmp func(a, b time.Time) bool) bool {
	a, ok := asTime(fieldVal)
	if !ok {
		return false
	}
	b, ok := asTime(bound)
	if !ok {
		return false
	}
	return cmp(a, b)
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}
