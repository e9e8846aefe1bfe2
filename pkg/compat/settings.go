package compat

import (
	"context"

	"github.com/embermoor/wardstone/pkg/identity"
	"github.com/embermoor/wardstone/pkg/worldstore"
)

// SettingsStore is the underlying settings surface the redirector wraps.
// The worldstore client satisfies it.
type SettingsStore interface {
	RegisterSetting(namespace, key string, schema worldstore.SettingSchema)
	RegisterMenu(namespace, key string, def worldstore.MenuDef)
	GetSetting(ctx context.Context, namespace, key string) (any, error)
	SetSetting(ctx context.Context, namespace, key string, value any) error
}

// SettingsRedirector canonicalizes the namespace argument of every settings
// call before delegating to the underlying store. A setting registered or
// written under a legacy alias is filed under the canonical namespace, so a
// later read using either identity observes the same schema and value. All
// other behavior is the store's, unchanged.
type SettingsRedirector struct {
	store    SettingsStore
	identity *identity.Resolver
}

// NewSettingsRedirector wraps a settings store with namespace redirection.
func NewSettingsRedirector(store SettingsStore, id *identity.Resolver) *SettingsRedirector {
	return &SettingsRedirector{store: store, identity: id}
}

// canonicalize maps a namespace to the canonical identity. With no resolver
// wired the original namespace is forwarded untouched: a misbehaving
// redirector must never break unrelated namespaces.
func (s *SettingsRedirector) canonicalize(namespace string) string {
	if s.identity == nil {
		return namespace
	}
	return s.identity.Canonicalize(namespace)
}

// Register declares a setting, filing it under the canonical namespace.
func (s *SettingsRedirector) Register(namespace, key string, schema worldstore.SettingSchema) {
	s.store.RegisterSetting(s.canonicalize(namespace), key, schema)
}

// RegisterMenu declares a settings menu, filing it under the canonical
// namespace.
func (s *SettingsRedirector) RegisterMenu(namespace, key string, def worldstore.MenuDef) {
	s.store.RegisterMenu(s.canonicalize(namespace), key, def)
}

// Get reads a setting value through the canonical namespace.
func (s *SettingsRedirector) Get(ctx context.Context, namespace, key string) (any, error) {
	return s.store.GetSetting(ctx, s.canonicalize(namespace), key)
}

// Set writes a setting value through the canonical namespace.
func (s *SettingsRedirector) Set(ctx context.Context, namespace, key string, value any) error {
	return s.store.SetSetting(ctx, s.canonicalize(namespace), key, value)
}
