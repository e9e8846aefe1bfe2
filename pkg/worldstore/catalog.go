package worldstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// CatalogRoot is the leading segment of every catalog reference path.
// Paths have the shape "Catalog.<namespace>.<rest>".
const CatalogRoot = "Catalog"

// SplitCatalogPath parses a catalog reference path into its namespace and
// rest segments. Returns an error for paths that are not well-formed catalog
// references (wrong root or fewer than three segments).
func SplitCatalogPath(path string) (namespace, rest string, err error) {
	parts := strings.SplitN(path, ".", 3)
	if len(parts) < 3 || parts[0] != CatalogRoot {
		return "", "", fmt.Errorf("malformed catalog path %q (want %s.<namespace>.<rest>)", path, CatalogRoot)
	}
	if parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("malformed catalog path %q: empty segment", path)
	}
	return parts[1], parts[2], nil
}

// PutCatalogEntry writes a catalog entry under a namespace and dotted rest
// path. Validates the entry before writing.
func (c *Client) PutCatalogEntry(ctx context.Context, namespace, rest string, entry *CatalogEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("invalid catalog entry: %w", err)
	}

	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize catalog entry: %w", err)
	}

	key := CatalogKey(c.system, c.world, namespace, rest)
	if err := c.rdb.Set(ctx, key, entryJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to write catalog entry to Redis: %w", err)
	}

	return nil
}

// ResolveByPath looks up the catalog entry for a full reference path of the
// shape "Catalog.<namespace>.<rest>".
// Returns (nil, redis.Nil) if no entry exists at that path.
// Use IsNotFound() to check for not-found errors.
func (c *Client) ResolveByPath(ctx context.Context, path string) (*CatalogEntry, error) {
	namespace, rest, err := SplitCatalogPath(path)
	if err != nil {
		return nil, err
	}

	key := CatalogKey(c.system, c.world, namespace, rest)
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, redis.Nil
		}
		return nil, fmt.Errorf("failed to read catalog entry from Redis: %w", err)
	}

	var entry CatalogEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("failed to deserialize catalog entry: %w", err)
	}

	return &entry, nil
}
