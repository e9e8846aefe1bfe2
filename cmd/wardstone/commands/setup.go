package commands

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/embermoor/wardstone/internal/config"
	"github.com/embermoor/wardstone/pkg/identity"
	"github.com/embermoor/wardstone/pkg/migrate"
	"github.com/embermoor/wardstone/pkg/refs"
	"github.com/embermoor/wardstone/pkg/worldstore"
)

// env bundles the collaborators every subcommand needs: the validated
// configuration, the identity resolver, and a world store client scoped to
// the configured world.
type env struct {
	cfg      *config.WardstoneConfig
	identity *identity.Resolver
	store    *worldstore.Client
}

// loadEnv loads wardstone.yml and connects the world store.
// Caller must Close() the returned env when done.
func loadEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	id, err := identity.NewResolver(cfg.Identity.Canonical, cfg.Identity.LegacyAliases)
	if err != nil {
		return nil, fmt.Errorf("invalid identity configuration: %w", err)
	}

	store, err := worldstore.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, id.Canonical(), cfg.World)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, identity: id, store: store}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// migrationSteps is the system's migration history: the ordered transforms
// that carry a world forward release by release. The gate selects the
// applicable suffix based on the world's checkpointed version.
func migrationSteps(e *env) migrate.StepList {
	rewriter := refs.NewRewriter(e.identity)
	return migrate.StepList{
		migrate.RewriteEntityReferences("3.1.0", "3.2.0", e.store, rewriter),
		migrate.FoldLegacyFlagScopes("3.2.0", "3.3.1", e.store, e.identity),
	}
}

// relocator builds the one-time structural move for worlds that predate the
// relocation threshold: their keys still live under a legacy system prefix
// and are renamed into the canonical prefix before any step runs.
func relocator(e *env) migrate.Relocator {
	return func(ctx context.Context) error {
		for _, alias := range e.identity.Aliases() {
			moved, err := e.store.RelocateLegacyKeys(ctx, alias)
			if err != nil {
				return err
			}
			if moved > 0 {
				fmt.Printf("Relocated %d keys from legacy prefix %q\n", moved, alias)
			}
		}
		return nil
	}
}

// newGate builds the migration gate from the loaded environment.
// Returns an error if the configuration has no migration section.
func newGate(e *env, privileged bool) (*migrate.Gate, error) {
	if e.cfg.Migration == nil {
		return nil, fmt.Errorf("configuration has no migration section")
	}

	return migrate.NewGate(e.store, migrationSteps(e), relocator(e), migrate.Config{
		CurrentVersion:           e.cfg.Migration.TargetSchemaVersion,
		TargetSchemaVersion:      e.cfg.Migration.TargetSchemaVersion,
		MinimumMigratableVersion: e.cfg.Migration.MinimumMigratableVersion,
		RelocationThreshold:      e.cfg.Migration.RelocationThreshold,
		Privileged:               privileged,
	})
}
