package worldstore

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by system identifier and
// world name. The system segment matters for migration: worlds created before
// the rename still hold their data under the legacy system prefix until the
// one-time key relocation runs.
//
// Key pattern: {system}:{world}:{kind}:...
// Channel pattern: {system}:{world}:world_events

// SettingKey returns the Redis key for a persisted setting value.
// Pattern: {system}:{world}:setting:{namespace}:{key}
func SettingKey(system, world, namespace, key string) string {
	return fmt.Sprintf("%s:%s:setting:%s:%s", system, world, namespace, key)
}

// EntityKey returns the Redis key for an entity hash.
// Pattern: {system}:{world}:entity:{entity_id}
func EntityKey(system, world, entityID string) string {
	return fmt.Sprintf("%s:%s:entity:%s", system, world, entityID)
}

// EntityKeyPattern returns the SCAN pattern matching all entity keys in a world.
func EntityKeyPattern(system, world string) string {
	return fmt.Sprintf("%s:%s:entity:*", system, world)
}

// CatalogKey returns the Redis key for a catalog entry.
// Pattern: {system}:{world}:catalog:{namespace}:{rest}
func CatalogKey(system, world, namespace, rest string) string {
	return fmt.Sprintf("%s:%s:catalog:%s:%s", system, world, namespace, rest)
}

// MetaKey returns the Redis key for the world metadata hash.
// Pattern: {system}:{world}:meta
func MetaKey(system, world string) string {
	return fmt.Sprintf("%s:%s:meta", system, world)
}

// WorldKeyPattern returns the SCAN pattern matching every key a world owns
// under the given system prefix. Used by the legacy key relocation.
func WorldKeyPattern(system, world string) string {
	return fmt.Sprintf("%s:%s:*", system, world)
}

// WorldEventsChannel returns the Pub/Sub channel name for world events.
// Pattern: {system}:{world}:world_events
func WorldEventsChannel(system, world string) string {
	return fmt.Sprintf("%s:%s:world_events", system, world)
}

// FlagField returns the entity hash field holding a namespace's flag bag.
// Pattern: flag:{scope}
func FlagField(scope string) string {
	return fmt.Sprintf("flag:%s", scope)
}
