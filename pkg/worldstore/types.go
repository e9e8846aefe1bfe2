package worldstore

import (
	"fmt"

	"github.com/google/uuid"
)

// Entity represents a persisted game document: an actor, item, scene, or any
// other world-owned record. The Data tree is arbitrary nested rule data; its
// field schema belongs to the rules layer, not the store.
type Entity struct {
	ID          string         `json:"id"`            // UUID - unique identifier for this entity
	Type        string         `json:"type"`          // Document type (e.g. "actor", "item")
	Name        string         `json:"name"`          // Display name
	Data        map[string]any `json:"data"`          // Nested rule data tree
	CreatedAtMs int64          `json:"created_at_ms"` // Unix timestamp in milliseconds when entity was created
}

// CatalogEntry is a shared reference record addressable by dotted catalog
// path. Entries are what cross-reference strings embedded in entity data
// ultimately resolve to.
type CatalogEntry struct {
	Name string         `json:"name"` // Display name
	Type string         `json:"type"` // Document type the entry instantiates as
	Data map[string]any `json:"data"` // Nested rule data tree
}

// WorldMeta is the world-level metadata record. SchemaVersion is the
// migration checkpoint: it is monotonically non-decreasing and never rolled
// back, advancing only after the corresponding migration work is confirmed
// applied.
type WorldMeta struct {
	WorldID       string `json:"world_id"`       // UUID stamped when the world is first initialised
	SchemaVersion string `json:"schema_version"` // Last fully applied schema version ("" = never stamped)
	CreatedAtMs   int64  `json:"created_at_ms"`  // Unix timestamp in milliseconds when metadata was stamped
}

// SettingSchema describes a registered setting: its display metadata and the
// default returned when no value has been persisted yet.
type SettingSchema struct {
	Name    string // Display name
	Hint    string // Help text
	Default any    // Value returned before the first write
}

// MenuDef describes a registered settings menu entry. Menus are registration
// metadata only; the store never renders them.
type MenuDef struct {
	Name  string // Display name
	Label string // Button label
	Hint  string // Help text
	Icon  string // Icon identifier
}

// WorldEvent is the JSON payload published on the world events channel after
// every successful write.
type WorldEvent struct {
	Kind    string         `json:"kind"`             // "setting_changed", "entity_written", "flag_changed", ...
	Subject string         `json:"subject"`          // What changed: "ns:key" for settings, entity ID otherwise
	Detail  map[string]any `json:"detail,omitempty"` // Event-specific extras
	AtMs    int64          `json:"at_ms"`            // Unix timestamp in milliseconds
}

// World event kinds.
const (
	EventSettingChanged = "setting_changed"
	EventEntityWritten  = "entity_written"
	EventEntityDeleted  = "entity_deleted"
	EventFlagChanged    = "flag_changed"
	EventSchemaVersion  = "schema_version"
	EventKeysRelocated  = "keys_relocated"
)

// Validate checks if the Entity has valid field values.
// Returns an error if any validation fails.
func (e *Entity) Validate() error {
	if !isValidUUID(e.ID) {
		return fmt.Errorf("invalid entity ID: not a valid UUID")
	}

	if e.Type == "" {
		return fmt.Errorf("entity type cannot be empty")
	}

	if e.Name == "" {
		return fmt.Errorf("entity name cannot be empty")
	}

	return nil
}

// Validate checks if the CatalogEntry has valid field values.
func (c *CatalogEntry) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("catalog entry name cannot be empty")
	}

	if c.Type == "" {
		return fmt.Errorf("catalog entry type cannot be empty")
	}

	return nil
}

// isValidUUID checks if a string is a valid UUID format.
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
