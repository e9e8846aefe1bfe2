package migrate

import (
	"context"
	"fmt"
	"log"

	"github.com/embermoor/wardstone/pkg/identity"
	"github.com/embermoor/wardstone/pkg/refs"
	"github.com/embermoor/wardstone/pkg/worldstore"
)

// Built-in migration steps. Each step iterates entities one at a time and
// writes an entity back only after its transform fully succeeded, so a
// failure never leaves a single entity half-migrated.

// RewriteEntityReferences returns a step that rewrites legacy catalog
// references embedded in every entity's data tree onto the canonical
// namespace.
func RewriteEntityReferences(from, to string, store *worldstore.Client, rewriter *refs.Rewriter) Step {
	return Step{
		From:        from,
		To:          to,
		Description: "rewrite legacy catalog references in entity data",
		Apply: func(ctx context.Context) error {
			ids, err := store.ListEntityIDs(ctx)
			if err != nil {
				return err
			}

			rewritten := 0
			for _, id := range ids {
				entity, err := store.GetEntity(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to load entity %s: %w", id, err)
				}

				data, count := rewriter.RewriteTree(entity.Data)
				if count == 0 {
					continue
				}

				entity.Data = data
				if err := store.PutEntity(ctx, entity); err != nil {
					return fmt.Errorf("failed to write entity %s: %w", id, err)
				}
				rewritten += count
			}

			log.Printf("[Migration] Rewrote %d legacy references across %d entities", rewritten, len(ids))
			return nil
		},
	}
}

// FoldLegacyFlagScopes returns a step that folds flag bags persisted under
// legacy alias scopes into the canonical scope. Where both scopes hold the
// same key, the canonical value wins: canonical data is never overwritten by
// a stale legacy copy. The legacy bags are removed afterwards.
func FoldLegacyFlagScopes(from, to string, store *worldstore.Client, id *identity.Resolver) Step {
	return Step{
		From:        from,
		To:          to,
		Description: "fold legacy flag scopes into the canonical scope",
		Apply: func(ctx context.Context) error {
			ids, err := store.ListEntityIDs(ctx)
			if err != nil {
				return err
			}

			canonical := id.Canonical()
			folded := 0
			for _, entityID := range ids {
				for _, alias := range id.Aliases() {
					legacyBag, err := store.GetFlagBag(ctx, entityID, alias)
					if err != nil {
						return fmt.Errorf("failed to read legacy flags for entity %s: %w", entityID, err)
					}
					if legacyBag == nil {
						continue
					}

					canonicalBag, err := store.GetFlagBag(ctx, entityID, canonical)
					if err != nil {
						return fmt.Errorf("failed to read canonical flags for entity %s: %w", entityID, err)
					}

					merged := legacyBag
					if canonicalBag != nil {
						// Canonical wins on conflict.
						worldstore.DeepMerge(merged, canonicalBag)
					}

					if err := store.SetFlagBag(ctx, entityID, canonical, merged); err != nil {
						return fmt.Errorf("failed to write canonical flags for entity %s: %w", entityID, err)
					}
					if err := store.SetFlagBag(ctx, entityID, alias, nil); err != nil {
						return fmt.Errorf("failed to remove legacy flags for entity %s: %w", entityID, err)
					}
					folded++
				}
			}

			log.Printf("[Migration] Folded %d legacy flag bags into scope %q", folded, canonical)
			return nil
		},
	}
}
