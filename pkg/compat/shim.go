package compat

import (
	"fmt"

	"github.com/embermoor/wardstone/pkg/hooks"
	"github.com/embermoor/wardstone/pkg/identity"
	"github.com/embermoor/wardstone/pkg/refs"
)

// Deps are the collaborators the shim wraps. Identity is required; any store
// left nil simply leaves the corresponding redirector unwired.
type Deps struct {
	Identity *identity.Resolver
	Settings SettingsStore
	Flags    FlagStore
	Hooks    hooks.Caller
	Sheets   SheetRegistry
	Catalog  refs.CatalogResolver
}

// Shim is the compatibility layer's composition root: every redirector,
// constructed once at process start and immutable afterwards. Callers that
// need redirected settings, flags, hooks, sheets, or reference access receive
// the shim (or the individual redirector) by injection; there is no global to
// reach for.
type Shim struct {
	Identity *identity.Resolver
	Settings *SettingsRedirector
	Flags    *FlagRedirector
	Hooks    *HookMirror
	Sheets   *SheetRedirector
	Rewriter *refs.Rewriter
	Resolver *refs.Resolver
}

// New builds the shim from its collaborators.
// Returns an error if the identity resolver is missing.
func New(deps Deps) (*Shim, error) {
	if deps.Identity == nil {
		return nil, fmt.Errorf("compat shim requires an identity resolver")
	}

	shim := &Shim{
		Identity: deps.Identity,
		Rewriter: refs.NewRewriter(deps.Identity),
	}

	if deps.Settings != nil {
		shim.Settings = NewSettingsRedirector(deps.Settings, deps.Identity)
	}
	if deps.Flags != nil {
		shim.Flags = NewFlagRedirector(deps.Flags, deps.Identity)
	}
	if deps.Hooks != nil {
		shim.Hooks = NewHookMirror(deps.Hooks, deps.Identity)
	}
	if deps.Sheets != nil {
		shim.Sheets = NewSheetRedirector(deps.Sheets, deps.Identity)
	}
	if deps.Catalog != nil {
		shim.Resolver = refs.NewResolver(deps.Identity, deps.Catalog)
	}

	return shim, nil
}
