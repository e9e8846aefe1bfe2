package worldstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrUnregisteredSetting is returned when a setting is read or written before
// it was registered. Registration is an in-process declaration; values for
// keys nobody registered are a configuration error, not silently-nil data.
var ErrUnregisteredSetting = errors.New("setting is not registered")

// settingID builds the registry key for a (namespace, key) pair.
func settingID(namespace, key string) string {
	return namespace + ":" + key
}

// RegisterSetting declares a setting under the given namespace. Registering
// the same (namespace, key) again replaces the previous schema; the persisted
// value, if any, is untouched.
func (c *Client) RegisterSetting(namespace, key string, schema SettingSchema) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings[settingID(namespace, key)] = schema
}

// RegisterMenu declares a settings menu entry under the given namespace.
// Menus carry display metadata only; the store never renders them.
func (c *Client) RegisterMenu(namespace, key string, def MenuDef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.menus[settingID(namespace, key)] = def
}

// SettingRegistered reports whether a setting has been registered.
func (c *Client) SettingRegistered(namespace, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.settings[settingID(namespace, key)]
	return ok
}

// Menu returns the registered menu definition for (namespace, key), if any.
func (c *Client) Menu(namespace, key string) (MenuDef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.menus[settingID(namespace, key)]
	return def, ok
}

// GetSetting returns the persisted value for a registered setting, or the
// registered default if no value has been persisted yet.
// Returns ErrUnregisteredSetting if the setting was never registered.
func (c *Client) GetSetting(ctx context.Context, namespace, key string) (any, error) {
	c.mu.RLock()
	schema, ok := c.settings[settingID(namespace, key)]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get %s.%s: %w", namespace, key, ErrUnregisteredSetting)
	}

	raw, err := c.rdb.Get(ctx, SettingKey(c.system, c.world, namespace, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return schema.Default, nil
		}
		return nil, fmt.Errorf("failed to read setting from Redis: %w", err)
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("failed to decode setting value: %w", err)
	}

	return value, nil
}

// SetSetting persists a value for a registered setting and publishes an
// event. Returns ErrUnregisteredSetting if the setting was never registered.
func (c *Client) SetSetting(ctx context.Context, namespace, key string, value any) error {
	c.mu.RLock()
	_, ok := c.settings[settingID(namespace, key)]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("set %s.%s: %w", namespace, key, ErrUnregisteredSetting)
	}

	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting value: %w", err)
	}

	if err := c.rdb.Set(ctx, SettingKey(c.system, c.world, namespace, key), valueJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to write setting to Redis: %w", err)
	}

	return c.publishEvent(ctx, EventSettingChanged, settingID(namespace, key), nil)
}
