// Package identity resolves between the canonical system identifier and its
// declared legacy aliases.
//
// Wardstone was renamed from an earlier system identity. Worlds created under
// the old name still carry settings, flags, hook listeners and catalog
// references keyed by the legacy identifier. The Resolver is the single source
// of truth for which identifiers belong to this system and which one data is
// actually persisted under.
package identity

import "fmt"

// Resolver holds the canonical identifier and the ordered list of legacy
// aliases. It is immutable after construction and safe for concurrent use.
// Exactly one Resolver is active per process.
type Resolver struct {
	canonical string
	aliases   []string
	aliasSet  map[string]bool
}

// NewResolver creates a Resolver for the given canonical identifier and legacy
// aliases. Aliases are kept in declaration order, which is significant: hook
// mirroring and catalog fallback both walk aliases in this order.
//
// Returns an error if the canonical identifier is empty, an alias is empty or
// repeated, or the canonical identifier is also listed as an alias.
func NewResolver(canonical string, legacyAliases []string) (*Resolver, error) {
	if canonical == "" {
		return nil, fmt.Errorf("canonical identifier cannot be empty")
	}

	aliasSet := make(map[string]bool, len(legacyAliases))
	aliases := make([]string, 0, len(legacyAliases))
	for _, alias := range legacyAliases {
		if alias == "" {
			return nil, fmt.Errorf("legacy alias cannot be empty")
		}
		if alias == canonical {
			return nil, fmt.Errorf("canonical identifier %q cannot be its own legacy alias", canonical)
		}
		if aliasSet[alias] {
			return nil, fmt.Errorf("duplicate legacy alias %q", alias)
		}
		aliasSet[alias] = true
		aliases = append(aliases, alias)
	}

	return &Resolver{
		canonical: canonical,
		aliases:   aliases,
		aliasSet:  aliasSet,
	}, nil
}

// Canonical returns the canonical identifier.
func (r *Resolver) Canonical() string {
	return r.canonical
}

// Aliases returns the declared legacy aliases in declaration order.
// The returned slice is a copy; callers may not mutate resolver state.
func (r *Resolver) Aliases() []string {
	out := make([]string, len(r.aliases))
	copy(out, r.aliases)
	return out
}

// Canonicalize maps the given identifier to the canonical identifier if it is
// the canonical identifier itself or a declared legacy alias. Any other
// identifier is returned unchanged: the resolver must never rewrite
// identifiers it does not own, so unrelated namespaces pass through untouched.
func (r *Resolver) Canonicalize(id string) string {
	if id == r.canonical || r.aliasSet[id] {
		return r.canonical
	}
	return id
}

// IsCompatible reports whether the identifier is the canonical identifier or
// one of the declared legacy aliases.
func (r *Resolver) IsCompatible(id string) bool {
	return id == r.canonical || r.aliasSet[id]
}
