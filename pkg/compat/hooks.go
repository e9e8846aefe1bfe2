package compat

import (
	"strings"

	"github.com/embermoor/wardstone/pkg/hooks"
	"github.com/embermoor/wardstone/pkg/identity"
)

// HookMirror wraps the hook dispatch primitive so canonical-namespaced events
// also fire under each legacy alias.
//
// When the event name begins with "<canonical>.", the canonical dispatch runs
// first and then the same args are re-dispatched under "<alias>." for every
// declared alias, in declaration order, inline within the same call.
//
// Mirroring is strictly one-directional: dispatch under a legacy-prefixed
// name is never mirrored back to canonical. Listeners bound to the canonical
// name would otherwise fire twice, and a symmetric mirror would recurse.
type HookMirror struct {
	caller   hooks.Caller
	identity *identity.Resolver
}

// NewHookMirror wraps a dispatch primitive with legacy-alias mirroring.
func NewHookMirror(caller hooks.Caller, id *identity.Resolver) *HookMirror {
	return &HookMirror{caller: caller, identity: id}
}

// CallAll dispatches the named event and mirrors canonical-prefixed events
// under each legacy alias. The result is the conjunction of the canonical
// dispatch and every mirrored dispatch: a veto from any listener is reported.
func (m *HookMirror) CallAll(name string, args ...any) bool {
	ok := m.caller.CallAll(name, args...)

	if m.identity == nil {
		return ok
	}

	prefix := m.identity.Canonical() + "."
	if !strings.HasPrefix(name, prefix) {
		return ok
	}

	event := strings.TrimPrefix(name, prefix)
	for _, alias := range m.identity.Aliases() {
		if !m.caller.CallAll(alias+"."+event, args...) {
			ok = false
		}
	}
	return ok
}
