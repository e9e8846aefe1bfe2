// Package migrate decides whether, how far, and how safely to run the
// world's data migration steps.
//
// The gate is a version-comparison state machine evaluated once per process
// start. It compares the persisted schema version against the current system
// version and decides to skip (up to date), block (the world is too old to
// migrate safely), or run. Runs checkpoint the persisted version after every
// completed step, so an interruption resumes from the last checkpoint on the
// next start instead of redoing finished work or silently skipping unfinished
// work.
package migrate

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/embermoor/wardstone/pkg/worldstore"
)

// State is the gate's position in its lifecycle:
// Unknown -> {UpToDate, Blocked, Migrating} -> Done.
type State string

const (
	// StateUnknown means the gate has not been evaluated yet.
	StateUnknown State = "unknown"

	// StateUpToDate means no migration work is needed.
	StateUpToDate State = "up_to_date"

	// StateBlocked means the stored version is below the migration floor.
	// Steps are never invoked; the world keeps operating on un-migrated data.
	StateBlocked State = "blocked"

	// StateMigrating means steps are being applied.
	StateMigrating State = "migrating"

	// StateDone means a migration run completed and the stored version
	// reached the target.
	StateDone State = "done"
)

// Errors a Run can surface besides step failures.
var (
	// ErrNotPrivileged is returned when an unprivileged gate attempts to run.
	// Only the gamemaster process triggers migration; everyone else observes.
	ErrNotPrivileged = fmt.Errorf("migration requires the privileged (gamemaster) role")

	// ErrAlreadyRan is returned by a second Run in the same process.
	// The gate is evaluated exactly once per process start.
	ErrAlreadyRan = fmt.Errorf("migration gate already ran in this process")
)

// BlockedError reports a world whose stored version is below the migration
// floor. Non-fatal: the caller surfaces a persistent warning and the process
// continues in degraded (un-migrated) mode. Skipping that many versions
// would risk silent data corruption, so steps are never invoked.
type BlockedError struct {
	StoredVersion string
	FloorVersion  string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("world schema version %s is below the migration floor %s; migrate it with an intermediate release first",
		e.StoredVersion, e.FloorVersion)
}

// StepError reports a migration step that failed. The run halted; the stored
// version remains at the last checkpoint, so the run is safely retryable on
// next start.
type StepError struct {
	From string
	To   string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("migration step %s -> %s failed: %v", e.From, e.To, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// MetaStore is the world metadata surface the gate depends on. The
// worldstore client satisfies it.
type MetaStore interface {
	GetMeta(ctx context.Context) (*worldstore.WorldMeta, error)
	InitMeta(ctx context.Context, schemaVersion string) (*worldstore.WorldMeta, error)
	SetSchemaVersion(ctx context.Context, version string) error
	HasEntities(ctx context.Context) (bool, error)
}

// Relocator performs the one-time structural move for worlds whose stored
// version predates the relocation threshold (relocating data persisted under
// a legacy key prefix). It runs before any step and independently of the
// step sequence.
type Relocator func(ctx context.Context) error

// Config parameterizes the gate.
type Config struct {
	// CurrentVersion is the running system version, stamped on fresh
	// installs with no data to migrate.
	CurrentVersion string

	// TargetSchemaVersion is the version the step sequence migrates to.
	TargetSchemaVersion string

	// MinimumMigratableVersion is the floor below which migration is
	// infeasible and the gate blocks.
	MinimumMigratableVersion string

	// RelocationThreshold triggers the Relocator for stored versions below
	// it. Empty disables relocation.
	RelocationThreshold string

	// Privileged marks the single caller role allowed to trigger a run.
	Privileged bool
}

// Decision is the gate's evaluated outcome before (or without) running.
type Decision struct {
	State           State
	StoredVersion   string // "" if never stamped
	FreshInstall    bool   // no stored version and no persisted entities
	NeedsRelocation bool
	Steps           []Step // applicable steps, in order, when migrating
}

// Result summarizes a completed (or halted) run.
type Result struct {
	State        State
	From         string
	To           string
	StepsApplied int
	Relocated    bool
}

// Gate is the migration gate. Construct once per process; Evaluate is free
// to call from anywhere, Run is restricted to the privileged caller and to a
// single invocation per process lifetime.
type Gate struct {
	meta     MetaStore
	runner   Runner
	relocate Relocator
	cfg      Config

	mu  sync.Mutex
	ran bool
}

// NewGate creates a migration gate.
// Returns an error if the configured versions are malformed or the runner's
// step sequence violates the ordering contract.
func NewGate(meta MetaStore, runner Runner, relocate Relocator, cfg Config) (*Gate, error) {
	if meta == nil {
		return nil, fmt.Errorf("migration gate requires a metadata store")
	}
	for name, v := range map[string]string{
		"current version": cfg.CurrentVersion,
		"target version":  cfg.TargetSchemaVersion,
		"floor version":   cfg.MinimumMigratableVersion,
	} {
		if !isValidVersion(v) {
			return nil, fmt.Errorf("invalid %s %q", name, v)
		}
	}
	if cfg.RelocationThreshold != "" && !isValidVersion(cfg.RelocationThreshold) {
		return nil, fmt.Errorf("invalid relocation threshold %q", cfg.RelocationThreshold)
	}

	var steps []Step
	if runner != nil {
		steps = runner.Steps()
	}
	if err := validateSteps(steps); err != nil {
		return nil, fmt.Errorf("invalid migration step sequence: %w", err)
	}

	return &Gate{
		meta:     meta,
		runner:   runner,
		relocate: relocate,
		cfg:      cfg,
	}, nil
}

// Evaluate computes the gate's decision without mutating anything. Any
// caller may evaluate; only the privileged caller may act on a Migrating
// decision via Run.
func (g *Gate) Evaluate(ctx context.Context) (*Decision, error) {
	stored := ""
	meta, err := g.meta.GetMeta(ctx)
	if err != nil && !worldstore.IsNotFound(err) {
		return nil, fmt.Errorf("failed to read world metadata: %w", err)
	}
	if meta != nil {
		stored = meta.SchemaVersion
	}

	if stored == "" {
		hasEntities, err := g.meta.HasEntities(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check for persisted entities: %w", err)
		}
		if !hasEntities {
			// Fresh install: nothing to migrate, stamp on Run.
			return &Decision{State: StateUpToDate, FreshInstall: true}, nil
		}
		// Entities exist but no version was ever stamped: treat the world
		// as predating every known version, which lands below the floor.
		return &Decision{State: StateBlocked, StoredVersion: ""}, nil
	}

	if !isValidVersion(stored) {
		return nil, fmt.Errorf("persisted schema version %q is not a valid version", stored)
	}

	if compareVersions(stored, g.cfg.TargetSchemaVersion) >= 0 {
		return &Decision{State: StateUpToDate, StoredVersion: stored}, nil
	}

	if compareVersions(stored, g.cfg.MinimumMigratableVersion) < 0 {
		return &Decision{State: StateBlocked, StoredVersion: stored}, nil
	}

	return &Decision{
		State:           StateMigrating,
		StoredVersion:   stored,
		NeedsRelocation: g.cfg.RelocationThreshold != "" && compareVersions(stored, g.cfg.RelocationThreshold) < 0,
		Steps:           g.applicableSteps(stored),
	}, nil
}

// applicableSteps selects the steps that move the world from the stored
// version to the target, in sequence order.
func (g *Gate) applicableSteps(stored string) []Step {
	var steps []Step
	if g.runner == nil {
		return steps
	}
	for _, step := range g.runner.Steps() {
		if compareVersions(step.To, stored) <= 0 {
			continue // already applied (or checkpointed past)
		}
		if compareVersions(step.To, g.cfg.TargetSchemaVersion) > 0 {
			continue // beyond this release's target
		}
		steps = append(steps, step)
	}
	return steps
}

// Run evaluates the gate and, when migration is needed, performs it:
// relocation first if the stored version predates the threshold, then each
// applicable step in order, checkpointing the stored version to the step's
// target after that step succeeds. There is deliberately no all-or-nothing
// commit at the end - a failure partway leaves the stored version at the
// last completed checkpoint and the run resumes from there on next start.
//
// Only the privileged caller may run, and only once per process lifetime.
// A Blocked decision returns *BlockedError; a step failure returns
// *StepError. Both are non-fatal to the surrounding process.
func (g *Gate) Run(ctx context.Context) (*Result, error) {
	if !g.cfg.Privileged {
		return nil, ErrNotPrivileged
	}

	g.mu.Lock()
	if g.ran {
		g.mu.Unlock()
		return nil, ErrAlreadyRan
	}
	g.ran = true
	g.mu.Unlock()

	decision, err := g.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	switch decision.State {
	case StateUpToDate:
		if decision.FreshInstall {
			if _, err := g.meta.InitMeta(ctx, g.cfg.CurrentVersion); err != nil {
				return nil, fmt.Errorf("failed to stamp fresh world: %w", err)
			}
			log.Printf("[MigrationGate] Fresh world stamped at version %s", g.cfg.CurrentVersion)
		}
		return &Result{State: StateUpToDate, From: decision.StoredVersion, To: g.cfg.TargetSchemaVersion}, nil

	case StateBlocked:
		return &Result{State: StateBlocked, From: decision.StoredVersion},
			&BlockedError{StoredVersion: decision.StoredVersion, FloorVersion: g.cfg.MinimumMigratableVersion}

	case StateMigrating:
		return g.runMigration(ctx, decision)

	default:
		return nil, fmt.Errorf("unexpected gate state %q", decision.State)
	}
}

func (g *Gate) runMigration(ctx context.Context, decision *Decision) (*Result, error) {
	result := &Result{
		State: StateMigrating,
		From:  decision.StoredVersion,
		To:    g.cfg.TargetSchemaVersion,
	}

	log.Printf("[MigrationGate] Migrating world from %s to %s (%d steps)",
		decision.StoredVersion, g.cfg.TargetSchemaVersion, len(decision.Steps))

	if decision.NeedsRelocation && g.relocate != nil {
		if err := g.relocate(ctx); err != nil {
			return result, fmt.Errorf("structural relocation failed: %w", err)
		}
		result.Relocated = true
		log.Printf("[MigrationGate] Structural relocation complete")
	}

	for _, step := range decision.Steps {
		log.Printf("[MigrationGate] Applying step %s -> %s: %s", step.From, step.To, step.Description)

		if err := step.Apply(ctx); err != nil {
			return result, &StepError{From: step.From, To: step.To, Err: err}
		}

		// Checkpoint before moving on: a later failure must resume here.
		if err := g.meta.SetSchemaVersion(ctx, step.To); err != nil {
			return result, fmt.Errorf("failed to checkpoint version %s: %w", step.To, err)
		}
		result.StepsApplied++
	}

	// Steps may stop short of the target when no step produces it exactly
	// (e.g. the final step's To equals the target already; this is then a
	// no-op write of the same version).
	if err := g.meta.SetSchemaVersion(ctx, g.cfg.TargetSchemaVersion); err != nil {
		return result, fmt.Errorf("failed to stamp target version: %w", err)
	}

	result.State = StateDone
	result.To = g.cfg.TargetSchemaVersion
	log.Printf("[MigrationGate] Migration complete at version %s", g.cfg.TargetSchemaVersion)
	return result, nil
}
