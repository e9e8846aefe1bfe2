// Package refs rewrites and resolves catalog cross-reference strings.
//
// References have the shape "<root>.<namespace>.<rest>" (e.g.
// "Catalog.wardstone.monsters.goblin") and are embedded as plain strings
// inside nested configuration and entity data trees. Worlds created before
// the rename still carry references under the legacy namespace; the Rewriter
// folds those onto the canonical namespace, and the Resolver falls back
// through the legacy aliases when a canonical lookup misses.
package refs

import (
	"strings"

	"github.com/embermoor/wardstone/pkg/identity"
)

// Node is one value in a reference-bearing tree. The walker is exhaustively
// defined over its four variants: Map, Seq, String, and Opaque. Trees are
// acyclic; the walk always terminates.
type Node interface {
	node()
}

// Map is a mapping node.
type Map map[string]Node

// Seq is a sequence node.
type Seq []Node

// String is a string leaf - the only variant the rewriter ever touches.
type String string

// Opaque is any other primitive leaf (number, bool, nil). Opaque values pass
// through the rewriter untouched.
type Opaque struct {
	Value any
}

func (Map) node()    {}
func (Seq) node()    {}
func (String) node() {}
func (Opaque) node() {}

// FromGo converts a decoded JSON/YAML value into a Node tree.
func FromGo(v any) Node {
	switch t := v.(type) {
	case map[string]any:
		m := make(Map, len(t))
		for k, child := range t {
			m[k] = FromGo(child)
		}
		return m
	case []any:
		s := make(Seq, len(t))
		for i, child := range t {
			s[i] = FromGo(child)
		}
		return s
	case string:
		return String(t)
	default:
		return Opaque{Value: t}
	}
}

// ToGo converts a Node tree back into plain Go values.
func ToGo(n Node) any {
	switch t := n.(type) {
	case Map:
		m := make(map[string]any, len(t))
		for k, child := range t {
			m[k] = ToGo(child)
		}
		return m
	case Seq:
		s := make([]any, len(t))
		for i, child := range t {
			s[i] = ToGo(child)
		}
		return s
	case String:
		return string(t)
	case Opaque:
		return t.Value
	default:
		return nil
	}
}

// Rewriter replaces legacy-namespaced reference strings with their canonical
// form. Only strings under a recognised reference root are candidates; every
// other value, including strings that merely contain an alias somewhere, is
// left untouched.
type Rewriter struct {
	resolver *identity.Resolver
	roots    map[string]bool
}

// NewRewriter creates a Rewriter over the given identity. Additional
// reference roots may be supplied; the default root is "Catalog".
func NewRewriter(resolver *identity.Resolver, roots ...string) *Rewriter {
	rootSet := map[string]bool{"Catalog": true}
	for _, r := range roots {
		rootSet[r] = true
	}
	return &Rewriter{resolver: resolver, roots: rootSet}
}

// RewriteString rewrites a single reference string if it matches
// "<root>.<alias>.<rest>" for a declared legacy alias. Reports whether a
// rewrite happened; non-matching strings come back unchanged.
func (rw *Rewriter) RewriteString(s string) (string, bool) {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) < 3 || parts[2] == "" {
		return s, false
	}
	if !rw.roots[parts[0]] {
		return s, false
	}

	canonical := rw.resolver.Canonical()
	if parts[1] == canonical || !rw.resolver.IsCompatible(parts[1]) {
		return s, false
	}

	return parts[0] + "." + canonical + "." + parts[2], true
}

// Rewrite walks a Node tree and rewrites every matching reference string in
// place, returning the (possibly replaced) root node and the number of
// rewrites performed. Container nodes are mutated in place; a lone String
// root is returned rewritten.
func (rw *Rewriter) Rewrite(n Node) (Node, int) {
	switch t := n.(type) {
	case Map:
		count := 0
		for k, child := range t {
			replaced, c := rw.Rewrite(child)
			t[k] = replaced
			count += c
		}
		return t, count
	case Seq:
		count := 0
		for i, child := range t {
			replaced, c := rw.Rewrite(child)
			t[i] = replaced
			count += c
		}
		return t, count
	case String:
		if rewritten, ok := rw.RewriteString(string(t)); ok {
			return String(rewritten), 1
		}
		return t, 0
	default:
		return n, 0
	}
}

// RewriteTree rewrites references inside a plain decoded tree (as produced
// by encoding/json or yaml.v3) and returns the rewritten tree along with the
// number of rewrites performed.
func (rw *Rewriter) RewriteTree(tree map[string]any) (map[string]any, int) {
	node, count := rw.Rewrite(FromGo(tree))
	out, _ := ToGo(node).(map[string]any)
	return out, count
}
