// Package compat is the dual-identity compatibility layer.
//
// Wardstone persists all of its state under the canonical system identifier,
// but callers written against a legacy alias must keep working unchanged.
// The redirectors in this package wrap the settings store, the per-entity
// flag accessors, the hook dispatcher, and the sheet registry, canonicalizing
// the namespace argument on every call so that a logical key exists under
// exactly one namespace no matter which identity was used to reach it.
//
// The redirectors are decorators built once at the composition root (see
// Shim) and injected into call sites; nothing in this package mutates shared
// global state. They are re-entrant and add no locking of their own beyond
// their registries: serializing concurrent writes to the same key is the
// underlying store's job.
//
// A redirector must never break namespaces outside its concern: when
// canonicalization is impossible (no resolver wired), the original argument
// is forwarded untouched rather than aborting the call.
package compat
