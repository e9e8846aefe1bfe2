package config

import (
	"fmt"
	"os"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// WardstoneConfig represents the top-level wardstone.yml configuration
type WardstoneConfig struct {
	Version   string           `yaml:"version"`
	World     string           `yaml:"world"`
	Redis     *RedisConfig     `yaml:"redis,omitempty"`
	Identity  IdentityConfig   `yaml:"identity"`
	Migration *MigrationConfig `yaml:"migration,omitempty"`
}

// RedisConfig specifies the Redis connection
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// IdentityConfig declares the canonical system identifier and its legacy
// aliases. Alias order is significant: hook mirroring and catalog fallback
// walk aliases in declaration order.
type IdentityConfig struct {
	Canonical     string   `yaml:"canonical"`
	LegacyAliases []string `yaml:"legacy_aliases,omitempty"`
}

// MigrationConfig specifies the migration gate's version parameters
type MigrationConfig struct {
	TargetSchemaVersion      string `yaml:"target_schema_version"`
	MinimumMigratableVersion string `yaml:"minimum_migratable_version"`
	RelocationThreshold      string `yaml:"relocation_threshold,omitempty"`
}

// Validate performs strict validation on the configuration
func (c *WardstoneConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	// Required: world name
	if c.World == "" {
		return fmt.Errorf("world name is required")
	}

	// Required: canonical identity
	if c.Identity.Canonical == "" {
		return fmt.Errorf("identity.canonical is required")
	}

	seen := make(map[string]bool)
	for _, alias := range c.Identity.LegacyAliases {
		if alias == "" {
			return fmt.Errorf("identity.legacy_aliases must not contain empty entries")
		}
		if alias == c.Identity.Canonical {
			return fmt.Errorf("identity.legacy_aliases must not contain the canonical identifier '%s'", alias)
		}
		if seen[alias] {
			return fmt.Errorf("duplicate legacy alias '%s'", alias)
		}
		seen[alias] = true
	}

	// Apply default Redis config if missing
	if c.Redis == nil {
		c.Redis = &RedisConfig{Addr: "localhost:6379"}
	} else if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	// Validate migration versions if the section is present
	if c.Migration != nil {
		if err := c.Migration.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Validate performs validation on the migration configuration
func (m *MigrationConfig) Validate() error {
	if !isSemver(m.TargetSchemaVersion) {
		return fmt.Errorf("migration.target_schema_version: invalid version '%s'", m.TargetSchemaVersion)
	}

	if !isSemver(m.MinimumMigratableVersion) {
		return fmt.Errorf("migration.minimum_migratable_version: invalid version '%s'", m.MinimumMigratableVersion)
	}

	if semver.Compare("v"+m.MinimumMigratableVersion, "v"+m.TargetSchemaVersion) > 0 {
		return fmt.Errorf("migration.minimum_migratable_version '%s' is above the target '%s'",
			m.MinimumMigratableVersion, m.TargetSchemaVersion)
	}

	if m.RelocationThreshold != "" && !isSemver(m.RelocationThreshold) {
		return fmt.Errorf("migration.relocation_threshold: invalid version '%s'", m.RelocationThreshold)
	}

	return nil
}

func isSemver(s string) bool {
	return s != "" && semver.IsValid("v"+s)
}

// Load reads and validates wardstone.yml from the specified path
func Load(path string) (*WardstoneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config WardstoneConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
