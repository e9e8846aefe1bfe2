package compat

import (
	"context"
	"fmt"
	"sync"

	"github.com/embermoor/wardstone/pkg/identity"
	"github.com/embermoor/wardstone/pkg/worldstore"
)

// FlagStore is the underlying per-entity flag surface the redirector wraps.
// The worldstore client satisfies it.
type FlagStore interface {
	GetFlagBag(ctx context.Context, entityID, scope string) (map[string]any, error)
	SetFlagBag(ctx context.Context, entityID, scope string, bag map[string]any) error
	MergeFlagBag(ctx context.Context, entityID, scope string, diff map[string]any) error
	UnsetFlag(ctx context.Context, entityID, scope, key string) error
}

// Schema validates and normalizes a flag bag for one scope. Clean fills
// defaults and coerces values without persisting anything; Validate rejects
// bags that must never reach the store.
type Schema interface {
	Clean(bag map[string]any) (map[string]any, error)
	Validate(bag map[string]any) error
}

// ValidationError reports a flag write rejected by the scope's schema.
// Nothing was persisted.
type ValidationError struct {
	Scope string
	Key   string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("flag %s.%s failed validation: %v", e.Scope, e.Key, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FlagRedirector canonicalizes the scope argument of every flag call before
// delegating to the underlying store, and validates writes against the
// scope's registered schema when one exists.
type FlagRedirector struct {
	store    FlagStore
	identity *identity.Resolver

	mu      sync.RWMutex
	schemas map[string]Schema // canonical scope -> schema
}

// NewFlagRedirector wraps a flag store with scope redirection.
func NewFlagRedirector(store FlagStore, id *identity.Resolver) *FlagRedirector {
	return &FlagRedirector{
		store:    store,
		identity: id,
		schemas:  make(map[string]Schema),
	}
}

func (f *FlagRedirector) canonicalize(scope string) string {
	if f.identity == nil {
		return scope
	}
	return f.identity.Canonicalize(scope)
}

// RegisterSchema associates a validation schema with a scope. The scope is
// canonicalized first, so a schema registered under a legacy alias validates
// writes made under either identity.
func (f *FlagRedirector) RegisterSchema(scope string, schema Schema) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schemas[f.canonicalize(scope)] = schema
}

func (f *FlagRedirector) schemaFor(scope string) Schema {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.schemas[scope]
}

// GetFlag reads a dotted-path flag value from an entity's bag for a scope.
// The second return reports whether the key was present; a missing flag is
// normal, not an error.
func (f *FlagRedirector) GetFlag(ctx context.Context, entityID, scope, key string) (any, bool, error) {
	bag, err := f.store.GetFlagBag(ctx, entityID, f.canonicalize(scope))
	if err != nil {
		return nil, false, err
	}
	if bag == nil {
		return nil, false, nil
	}

	value, ok := lookupPath(bag, key)
	return value, ok, nil
}

// SetFlag writes a dotted-path flag value for an entity.
//
// The scope is canonicalized, and the key/value pair is expanded into a
// nested change object. With a schema registered for the scope:
//
//   - if a prior bag exists, the change is merged against a copy of it and
//     the merged bag is cleaned and validated as a dry run; only the diff
//     (fields whose cleaned value actually changed) is persisted, so sibling
//     fields the caller never touched are not rewritten and invalid partial
//     state never lands;
//   - if no prior bag exists, the change object is cleaned and validated
//     once and persisted whole.
//
// A schema rejection surfaces as *ValidationError with nothing persisted.
// Without a schema the expanded change object is merged as-is.
func (f *FlagRedirector) SetFlag(ctx context.Context, entityID, scope, key string, value any) error {
	canonical := f.canonicalize(scope)
	change := expandPath(key, value)

	schema := f.schemaFor(canonical)
	if schema == nil {
		return f.store.MergeFlagBag(ctx, entityID, canonical, change)
	}

	prior, err := f.store.GetFlagBag(ctx, entityID, canonical)
	if err != nil {
		return err
	}

	if prior == nil {
		cleaned, err := schema.Clean(change)
		if err != nil {
			return &ValidationError{Scope: canonical, Key: key, Err: err}
		}
		if err := schema.Validate(cleaned); err != nil {
			return &ValidationError{Scope: canonical, Key: key, Err: err}
		}
		return f.store.SetFlagBag(ctx, entityID, canonical, cleaned)
	}

	merged := deepCopy(prior)
	worldstore.DeepMerge(merged, change)

	cleaned, err := schema.Clean(merged)
	if err != nil {
		return &ValidationError{Scope: canonical, Key: key, Err: err}
	}
	if err := schema.Validate(cleaned); err != nil {
		return &ValidationError{Scope: canonical, Key: key, Err: err}
	}

	diff := diffTrees(prior, cleaned)
	if len(diff) == 0 {
		return nil
	}
	return f.store.MergeFlagBag(ctx, entityID, canonical, diff)
}

// UnsetFlag removes a dotted-path flag key. No validation runs on removal.
func (f *FlagRedirector) UnsetFlag(ctx context.Context, entityID, scope, key string) error {
	return f.store.UnsetFlag(ctx, entityID, f.canonicalize(scope), key)
}
