package refs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/embermoor/wardstone/pkg/identity"
	"github.com/embermoor/wardstone/pkg/worldstore"
)

// ErrNotFound is returned by Resolve when neither the canonical namespace nor
// any legacy alias yields an entry. A missing reference is a normal,
// reportable outcome for callers to degrade on, never a panic.
var ErrNotFound = errors.New("reference does not resolve under any known namespace")

// CatalogResolver is the lookup surface Resolve depends on. The worldstore
// client satisfies it.
type CatalogResolver interface {
	ResolveByPath(ctx context.Context, path string) (*worldstore.CatalogEntry, error)
}

// Resolver looks up catalog references with legacy-alias fallback.
type Resolver struct {
	identity *identity.Resolver
	catalog  CatalogResolver
}

// NewResolver creates a reference Resolver over the given identity and
// catalog lookup.
func NewResolver(id *identity.Resolver, catalog CatalogResolver) *Resolver {
	return &Resolver{identity: id, catalog: catalog}
}

// Resolve looks up a reference path of the shape "<root>.<namespace>.<rest>".
// The canonical namespace is substituted and tried first; on a miss, each
// legacy alias is tried in declaration order. The first hit wins. If every
// attempt misses, the result is ErrNotFound - absence is reported, not
// thrown.
func (r *Resolver) Resolve(ctx context.Context, path string) (*worldstore.CatalogEntry, error) {
	parts := strings.SplitN(path, ".", 3)
	if len(parts) < 3 || parts[1] == "" || parts[2] == "" {
		return nil, fmt.Errorf("malformed reference path %q: %w", path, ErrNotFound)
	}

	candidates := append([]string{r.identity.Canonical()}, r.identity.Aliases()...)
	for _, namespace := range candidates {
		candidate := parts[0] + "." + namespace + "." + parts[2]
		entry, err := r.catalog.ResolveByPath(ctx, candidate)
		if err != nil {
			if worldstore.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve %q: %w", candidate, err)
		}
		return entry, nil
	}

	return nil, fmt.Errorf("%q: %w", path, ErrNotFound)
}
