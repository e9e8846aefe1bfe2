package compat

import (
	"github.com/embermoor/wardstone/pkg/identity"
	"github.com/embermoor/wardstone/pkg/sheets"
)

// SheetRegistry is the underlying registry surface the redirector wraps.
// The sheets.Registry satisfies it.
type SheetRegistry interface {
	Register(reg sheets.Registration) error
	Unregister(documentType, namespace string, renderer sheets.Renderer) bool
}

// SheetRedirector canonicalizes the namespace of sheet registrations before
// delegating, so a legacy-namespaced registration lands under the canonical
// namespace and later default resolution sees a single authority.
type SheetRedirector struct {
	registry SheetRegistry
	identity *identity.Resolver
}

// NewSheetRedirector wraps a sheet registry with namespace redirection.
func NewSheetRedirector(registry SheetRegistry, id *identity.Resolver) *SheetRedirector {
	return &SheetRedirector{registry: registry, identity: id}
}

func (s *SheetRedirector) canonicalize(namespace string) string {
	if s.identity == nil {
		return namespace
	}
	return s.identity.Canonicalize(namespace)
}

// RegisterSheet files a sheet registration under the canonical namespace.
func (s *SheetRedirector) RegisterSheet(reg sheets.Registration) error {
	reg.Namespace = s.canonicalize(reg.Namespace)
	return s.registry.Register(reg)
}

// UnregisterSheet removes a registration matching the canonicalized
// namespace and exact renderer identity. Anything else is a no-op; the
// redirector never removes a registration it does not own.
func (s *SheetRedirector) UnregisterSheet(documentType, namespace string, renderer sheets.Renderer) bool {
	return s.registry.Unregister(documentType, s.canonicalize(namespace), renderer)
}
