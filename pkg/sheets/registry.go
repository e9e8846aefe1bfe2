// Package sheets maintains the document-type to renderer associations.
//
// The registry records which renderer presents which document type (and,
// optionally, which subtypes). It stores associations only; rendering itself
// belongs to the UI layer.
package sheets

import (
	"fmt"
	"sync"
)

// Renderer identifies a sheet implementation. Identity is the renderer ID
// string; unregistration matches on it exactly.
type Renderer interface {
	ID() string
}

// Registration associates a renderer with a document type under a namespace.
type Registration struct {
	DocumentType string   // e.g. "actor", "item"
	Namespace    string   // Owning namespace
	Renderer     Renderer // Sheet implementation
	MakeDefault  bool     // Whether this sheet is the default presentation
	Label        string   // Display label
	Types        []string // Subtypes this sheet applies to; empty = all
}

// appliesTo reports whether the registration covers the given subtype.
func (r Registration) appliesTo(subtype string) bool {
	if len(r.Types) == 0 {
		return true
	}
	for _, t := range r.Types {
		if t == subtype {
			return true
		}
	}
	return false
}

// Registry holds sheet registrations in registration order. Within a
// (documentType, subtype) pair, the most recently registered entry with
// MakeDefault set is the authoritative default.
type Registry struct {
	mu     sync.RWMutex
	byType map[string][]Registration
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[string][]Registration),
	}
}

// Register adds a sheet registration.
// Returns an error if required fields are missing.
func (g *Registry) Register(reg Registration) error {
	if reg.DocumentType == "" {
		return fmt.Errorf("sheet registration requires a document type")
	}
	if reg.Namespace == "" {
		return fmt.Errorf("sheet registration requires a namespace")
	}
	if reg.Renderer == nil {
		return fmt.Errorf("sheet registration requires a renderer")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.byType[reg.DocumentType] = append(g.byType[reg.DocumentType], reg)
	return nil
}

// Unregister removes the registration matching the document type, namespace,
// and renderer identity exactly. Anything less than an exact match is a
// no-op: unregistration must never remove an unrelated registration.
// Reports whether a registration was removed.
func (g *Registry) Unregister(documentType, namespace string, renderer Renderer) bool {
	if renderer == nil {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	regs := g.byType[documentType]
	for i, reg := range regs {
		if reg.Namespace == namespace && reg.Renderer.ID() == renderer.ID() {
			g.byType[documentType] = append(regs[:i:i], regs[i+1:]...)
			return true
		}
	}
	return false
}

// Default returns the authoritative default registration for a
// (documentType, subtype) pair: the most recently registered entry with
// MakeDefault set that covers the subtype.
func (g *Registry) Default(documentType, subtype string) (Registration, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	regs := g.byType[documentType]
	for i := len(regs) - 1; i >= 0; i-- {
		if regs[i].MakeDefault && regs[i].appliesTo(subtype) {
			return regs[i], true
		}
	}
	return Registration{}, false
}

// List returns every registration for a document type in registration order.
func (g *Registry) List(documentType string) []Registration {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Registration, len(g.byType[documentType]))
	copy(out, g.byType[documentType])
	return out
}

// DocumentTypes returns the document types with at least one registration.
func (g *Registry) DocumentTypes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var types []string
	for t, regs := range g.byType {
		if len(regs) > 0 {
			types = append(types, t)
		}
	}
	return types
}
