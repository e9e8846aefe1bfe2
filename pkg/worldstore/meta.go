package worldstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// World metadata accessors
//
// The metadata hash holds the world ID and the persisted schema version. The
// schema version is the migration gate's checkpoint: it is written once per
// completed migration step and never rolled back.

// GetMeta retrieves the world metadata.
// Returns (nil, redis.Nil) if the world has never been stamped.
// Use IsNotFound() to check for not-found errors.
func (c *Client) GetMeta(ctx context.Context) (*WorldMeta, error) {
	key := MetaKey(c.system, c.world)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read world metadata from Redis: %w", err)
	}

	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	return HashToMeta(hashData), nil
}

// InitMeta stamps fresh world metadata with a new world ID and the given
// schema version. Used for fresh installs with no data to migrate.
// Fails if metadata already exists - stamping is a one-time operation.
func (c *Client) InitMeta(ctx context.Context, schemaVersion string) (*WorldMeta, error) {
	if _, err := c.GetMeta(ctx); err == nil {
		return nil, fmt.Errorf("world metadata already exists")
	} else if !IsNotFound(err) {
		return nil, err
	}

	meta := &WorldMeta{
		WorldID:       uuid.New().String(),
		SchemaVersion: schemaVersion,
		CreatedAtMs:   time.Now().UnixMilli(),
	}

	key := MetaKey(c.system, c.world)
	if err := c.rdb.HSet(ctx, key, MetaToHash(meta)).Err(); err != nil {
		return nil, fmt.Errorf("failed to write world metadata to Redis: %w", err)
	}

	return meta, nil
}

// SetSchemaVersion advances the persisted schema version and publishes an
// event. This is the migration checkpoint primitive: the gate calls it after
// each step's work is confirmed applied, never before.
func (c *Client) SetSchemaVersion(ctx context.Context, version string) error {
	key := MetaKey(c.system, c.world)
	if err := c.rdb.HSet(ctx, key, "schema_version", version).Err(); err != nil {
		return fmt.Errorf("failed to write schema version to Redis: %w", err)
	}

	return c.publishEvent(ctx, EventSchemaVersion, version, nil)
}
