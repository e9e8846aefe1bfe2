package worldstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Flag bag accessors
//
// Flag bags are per-entity namespaced metadata: each scope owns one bag of
// arbitrary structured data, stored as a JSON-encoded "flag:{scope}" field on
// the entity's hash. The store treats bags as opaque trees; validation and
// diffing against a registered schema happens in the compatibility layer
// before the write reaches here.

// GetFlagBag returns the flag bag an entity holds for a scope.
// A missing bag is normal and returns (nil, nil), not an error.
func (c *Client) GetFlagBag(ctx context.Context, entityID, scope string) (map[string]any, error) {
	key := EntityKey(c.system, c.world, entityID)

	raw, err := c.rdb.HGet(ctx, key, FlagField(scope)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read flag bag from Redis: %w", err)
	}

	var bag map[string]any
	if err := json.Unmarshal([]byte(raw), &bag); err != nil {
		return nil, fmt.Errorf("failed to decode flag bag: %w", err)
	}

	return bag, nil
}

// SetFlagBag replaces an entity's flag bag for a scope wholesale and
// publishes an event. An empty or nil bag removes the field.
func (c *Client) SetFlagBag(ctx context.Context, entityID, scope string, bag map[string]any) error {
	key := EntityKey(c.system, c.world, entityID)

	if len(bag) == 0 {
		if err := c.rdb.HDel(ctx, key, FlagField(scope)).Err(); err != nil {
			return fmt.Errorf("failed to remove flag bag from Redis: %w", err)
		}
	} else {
		bagJSON, err := json.Marshal(bag)
		if err != nil {
			return fmt.Errorf("failed to encode flag bag: %w", err)
		}
		if err := c.rdb.HSet(ctx, key, FlagField(scope), string(bagJSON)).Err(); err != nil {
			return fmt.Errorf("failed to write flag bag to Redis: %w", err)
		}
	}

	return c.publishEvent(ctx, EventFlagChanged, entityID, map[string]any{
		"scope": scope,
	})
}

// MergeFlagBag deep-merges a diff into an entity's flag bag for a scope.
// Only fields present in the diff are touched; sibling fields survive.
// Merging into a missing bag creates it.
func (c *Client) MergeFlagBag(ctx context.Context, entityID, scope string, diff map[string]any) error {
	if len(diff) == 0 {
		return nil
	}

	bag, err := c.GetFlagBag(ctx, entityID, scope)
	if err != nil {
		return err
	}
	if bag == nil {
		bag = map[string]any{}
	}

	DeepMerge(bag, diff)

	return c.SetFlagBag(ctx, entityID, scope, bag)
}

// UnsetFlag removes a dotted-path key from an entity's flag bag for a scope.
// Removing a key that does not exist is a no-op. Maps left empty by the
// removal are pruned; a bag left empty is deleted entirely.
func (c *Client) UnsetFlag(ctx context.Context, entityID, scope, key string) error {
	bag, err := c.GetFlagBag(ctx, entityID, scope)
	if err != nil {
		return err
	}
	if bag == nil {
		return nil
	}

	if !deletePath(bag, key) {
		return nil
	}

	return c.SetFlagBag(ctx, entityID, scope, bag)
}

// ListFlagScopes returns the scopes that hold a flag bag on an entity.
func (c *Client) ListFlagScopes(ctx context.Context, entityID string) ([]string, error) {
	key := EntityKey(c.system, c.world, entityID)

	hashData, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read entity hash from Redis: %w", err)
	}

	return FlagScopesFromHash(hashData), nil
}
