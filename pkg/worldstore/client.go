package worldstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client provides world-scoped Redis operations for a Wardstone world.
// All keys and channels are automatically namespaced with the system
// identifier and world name. The client is thread-safe and can be used
// concurrently from multiple goroutines.
type Client struct {
	rdb    *redis.Client
	system string
	world  string

	mu       sync.RWMutex
	settings map[string]SettingSchema // "{ns}:{key}" -> schema
	menus    map[string]MenuDef       // "{ns}:{key}" -> menu definition
}

// NewClient creates a new world store client.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - system: system identifier used as the key prefix (must not be empty)
//   - world: world name (must not be empty)
//
// Returns an error if system or world is empty.
func NewClient(redisOpts *redis.Options, system, world string) (*Client, error) {
	if system == "" {
		return nil, fmt.Errorf("system identifier cannot be empty")
	}
	if world == "" {
		return nil, fmt.Errorf("world name cannot be empty")
	}

	return &Client{
		rdb:      redis.NewClient(redisOpts),
		system:   system,
		world:    world,
		settings: make(map[string]SettingSchema),
		menus:    make(map[string]MenuDef),
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
// After calling Close(), the client should not be used.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
// Returns an error if Redis is not reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// System returns the system identifier this client persists under.
func (c *Client) System() string {
	return c.system
}

// World returns the world name this client is scoped to.
func (c *Client) World() string {
	return c.world
}

// PutEntity writes an entity to Redis and publishes an event.
// Validates the entity before writing. Existing flag bag fields on the entity
// hash are preserved; only the entity's own fields are replaced.
// This method is idempotent - writing the same entity twice is safe.
func (c *Client) PutEntity(ctx context.Context, e *Entity) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid entity: %w", err)
	}

	hash, err := EntityToHash(e)
	if err != nil {
		return fmt.Errorf("failed to serialize entity: %w", err)
	}

	key := EntityKey(c.system, c.world, e.ID)
	if err := c.rdb.HSet(ctx, key, hash).Err(); err != nil {
		return fmt.Errorf("failed to write entity to Redis: %w", err)
	}

	return c.publishEvent(ctx, EventEntityWritten, e.ID, map[string]any{
		"type": e.Type,
		"name": e.Name,
	})
}

// GetEntity retrieves an entity by ID.
// Returns (nil, redis.Nil) if the entity doesn't exist.
// Use IsNotFound() to check for not-found errors.
func (c *Client) GetEntity(ctx context.Context, entityID string) (*Entity, error) {
	key := EntityKey(c.system, c.world, entityID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read entity from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	entity, err := HashToEntity(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize entity: %w", err)
	}

	return entity, nil
}

// DeleteEntity removes an entity (including its flag bags) and publishes an
// event. Deleting a non-existent entity is a no-op.
func (c *Client) DeleteEntity(ctx context.Context, entityID string) error {
	key := EntityKey(c.system, c.world, entityID)
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete entity from Redis: %w", err)
	}

	return c.publishEvent(ctx, EventEntityDeleted, entityID, nil)
}

// ListEntityIDs returns the IDs of all entities in the world.
// Order is not defined.
func (c *Client) ListEntityIDs(ctx context.Context) ([]string, error) {
	pattern := EntityKeyPattern(c.system, c.world)
	prefix := strings.TrimSuffix(pattern, "*")

	var ids []string
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan entities: %w", err)
	}

	return ids, nil
}

// HasEntities reports whether the world contains any persisted entities.
// The migration gate uses this to distinguish a fresh install from a world
// whose schema version was simply never stamped.
func (c *Client) HasEntities(ctx context.Context) (bool, error) {
	iter := c.rdb.Scan(ctx, 0, EntityKeyPattern(c.system, c.world), 1).Iterator()
	if iter.Next(ctx) {
		return true, nil
	}
	if err := iter.Err(); err != nil {
		return false, fmt.Errorf("failed to scan entities: %w", err)
	}
	return false, nil
}

// RelocateLegacyKeys renames every key this world persisted under a legacy
// system prefix into the canonical prefix. This is the one-time structural
// move the migration gate performs for worlds created before the rename.
// Returns the number of keys relocated.
//
// Keys that already exist under the canonical prefix are not overwritten:
// canonical data always wins over stale legacy copies.
func (c *Client) RelocateLegacyKeys(ctx context.Context, legacySystem string) (int, error) {
	if legacySystem == "" || legacySystem == c.system {
		return 0, fmt.Errorf("invalid legacy system prefix %q", legacySystem)
	}

	legacyPrefix := fmt.Sprintf("%s:%s:", legacySystem, c.world)
	canonicalPrefix := fmt.Sprintf("%s:%s:", c.system, c.world)

	var keys []string
	iter := c.rdb.Scan(ctx, 0, WorldKeyPattern(legacySystem, c.world), 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan legacy keys: %w", err)
	}

	moved := 0
	for _, key := range keys {
		target := canonicalPrefix + strings.TrimPrefix(key, legacyPrefix)
		ok, err := c.rdb.RenameNX(ctx, key, target).Result()
		if err != nil {
			return moved, fmt.Errorf("failed to relocate key %s: %w", key, err)
		}
		if !ok {
			// Canonical key already exists; drop the legacy copy.
			if err := c.rdb.Del(ctx, key).Err(); err != nil {
				return moved, fmt.Errorf("failed to remove superseded legacy key %s: %w", key, err)
			}
			continue
		}
		moved++
	}

	if moved > 0 {
		if err := c.publishEvent(ctx, EventKeysRelocated, legacySystem, map[string]any{
			"moved": moved,
		}); err != nil {
			return moved, err
		}
	}

	return moved, nil
}

// publishEvent publishes a WorldEvent on the world events channel.
func (c *Client) publishEvent(ctx context.Context, kind, subject string, detail map[string]any) error {
	event := WorldEvent{
		Kind:    kind,
		Subject: subject,
		Detail:  detail,
		AtMs:    time.Now().UnixMilli(),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal world event: %w", err)
	}

	channel := WorldEventsChannel(c.system, c.world)
	if err := c.rdb.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish world event: %w", err)
	}

	return nil
}

// IsNotFound returns true if the error is a Redis "key not found" error
// (redis.Nil). Use this to check if GetEntity, GetMeta, GetSetting, or
// ResolveByPath returned "not found".
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
