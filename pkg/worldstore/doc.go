// Package worldstore provides type-safe Go definitions and Redis schema
// patterns for a Wardstone world's persisted state.
//
// # Overview
//
// A world is the unit of persistence: settings values, game entities and
// their flag bags, catalog entries, and world-level metadata (including the
// schema version the migration gate checkpoints against) all live under one
// world. The store is the substrate the compatibility layer redirects into;
// it knows nothing about legacy aliases itself.
//
// # Core Concepts
//
// Settings are registered in-process (name, hint, default) and their values
// persisted per world. Reading or writing a setting that was never registered
// is a configuration error, not a silent nil.
//
// Entities are the persisted game documents (actors, items, scenes). Each
// entity also carries per-namespace flag bags: arbitrary structured metadata
// keyed by the namespace that owns it.
//
// Catalog entries are shared reference content addressable by dotted path
// ("Catalog.<namespace>.<rest>").
//
// World metadata holds the world ID and the persisted schema version. The
// schema version only ever advances; it is the migration gate's checkpoint.
//
// # Multi-World Support
//
// All Redis keys and Pub/Sub channels are namespaced by system identifier and
// world name, so multiple worlds (and multiple systems) safely coexist on a
// single Redis server.
//
// # Redis Schema
//
// Keys follow the pattern: {system}:{world}:{kind}:...
//
//	Settings:  {system}:{world}:setting:{namespace}:{key}
//	Entities:  {system}:{world}:entity:{entity_id}
//	Catalog:   {system}:{world}:catalog:{namespace}:{rest}
//	Metadata:  {system}:{world}:meta
//
// Flag bags are JSON-encoded fields ("flag:{scope}") on the owning entity's
// hash. Writes publish JSON events to the {system}:{world}:world_events
// Pub/Sub channel.
package worldstore
