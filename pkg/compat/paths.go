package compat

import (
	"reflect"
	"strings"
)

// Nested bag helpers
//
// Flag keys use dotted-path notation ("resources.legend.max"). Writes expand
// the path into a nested change object before merging; reads walk the bag
// along the path.

// expandPath expands a dotted-path key and value into a nested change object:
// "a.b.c", v becomes {a: {b: {c: v}}}.
func expandPath(dotted string, value any) map[string]any {
	parts := strings.Split(dotted, ".")
	out := map[string]any{parts[len(parts)-1]: value}
	for i := len(parts) - 2; i >= 0; i-- {
		out = map[string]any{parts[i]: out}
	}
	return out
}

// lookupPath walks a nested bag along a dotted-path key.
func lookupPath(bag map[string]any, dotted string) (any, bool) {
	parts := strings.Split(dotted, ".")
	current := bag
	for i, part := range parts {
		value, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return value, true
		}
		current, ok = value.(map[string]any)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

// deepCopy clones a nested bag. Map values are cloned recursively; slices
// are copied shallowly per element; primitives are shared (they are
// immutable once decoded).
func deepCopy(bag map[string]any) map[string]any {
	out := make(map[string]any, len(bag))
	for k, v := range bag {
		switch t := v.(type) {
		case map[string]any:
			out[k] = deepCopy(t)
		case []any:
			s := make([]any, len(t))
			copy(s, t)
			out[k] = s
		default:
			out[k] = v
		}
	}
	return out
}

// diffTrees returns the fields of next whose value differs from prior,
// recursing into maps so the diff carries only the leaves that actually
// changed. Fields absent from next are not reported: removal goes through
// UnsetFlag, never through a write diff.
func diffTrees(prior, next map[string]any) map[string]any {
	diff := make(map[string]any)
	for k, nextVal := range next {
		priorVal, existed := prior[k]
		if !existed {
			diff[k] = nextVal
			continue
		}

		nextMap, nextIsMap := nextVal.(map[string]any)
		priorMap, priorIsMap := priorVal.(map[string]any)
		if nextIsMap && priorIsMap {
			if sub := diffTrees(priorMap, nextMap); len(sub) > 0 {
				diff[k] = sub
			}
			continue
		}

		if !reflect.DeepEqual(priorVal, nextVal) {
			diff[k] = nextVal
		}
	}
	return diff
}
