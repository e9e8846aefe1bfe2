package migrate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embermoor/wardstone/pkg/worldstore"
)

// setupTestStore creates a miniredis-backed worldstore client for gate tests.
func setupTestStore(t *testing.T) *worldstore.Client {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	store, err := worldstore.NewClient(&redis.Options{Addr: mr.Addr()}, "wardstone", "test-world")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

// testConfig is the version window used throughout the gate tests:
// floor 3.0.0, target 3.3.1, relocation below 3.2.0.
func testConfig(privileged bool) Config {
	return Config{
		CurrentVersion:           "3.3.1",
		TargetSchemaVersion:      "3.3.1",
		MinimumMigratableVersion: "3.0.0",
		RelocationThreshold:      "3.2.0",
		Privileged:               privileged,
	}
}

// recordingSteps returns the standard two-step sequence and a pointer to the
// list of step targets applied, in order. failAt marks a To version whose
// step fails.
func recordingSteps(failAt string) (StepList, *[]string) {
	applied := &[]string{}
	step := func(from, to string) Step {
		return Step{
			From:        from,
			To:          to,
			Description: fmt.Sprintf("test step to %s", to),
			Apply: func(ctx context.Context) error {
				if to == failAt {
					return fmt.Errorf("step to %s exploded", to)
				}
				*applied = append(*applied, to)
				return nil
			},
		}
	}
	return StepList{step("3.1.0", "3.2.0"), step("3.2.0", "3.3.1")}, applied
}

func stampWorld(t *testing.T, store *worldstore.Client, version string) {
	t.Helper()
	_, err := store.InitMeta(context.Background(), version)
	require.NoError(t, err)
}

func putEntity(t *testing.T, store *worldstore.Client) string {
	t.Helper()
	entity := &worldstore.Entity{
		ID:          uuid.New().String(),
		Type:        "actor",
		Name:        "Test Subject",
		Data:        map[string]any{},
		CreatedAtMs: time.Now().UnixMilli(),
	}
	require.NoError(t, store.PutEntity(context.Background(), entity))
	return entity.ID
}

func TestNewGate(t *testing.T) {
	store := setupTestStore(t)

	t.Run("requires a metadata store", func(t *testing.T) {
		_, err := NewGate(nil, nil, nil, testConfig(true))
		assert.Error(t, err)
	})

	t.Run("rejects malformed versions", func(t *testing.T) {
		cfg := testConfig(true)
		cfg.TargetSchemaVersion = "not-a-version"
		_, err := NewGate(store, nil, nil, cfg)
		assert.Error(t, err)
	})

	t.Run("rejects a step that does not advance", func(t *testing.T) {
		steps := StepList{{From: "3.2.0", To: "3.2.0", Apply: func(ctx context.Context) error { return nil }}}
		_, err := NewGate(store, steps, nil, testConfig(true))
		assert.Error(t, err)
	})

	t.Run("rejects out-of-order steps", func(t *testing.T) {
		apply := func(ctx context.Context) error { return nil }
		steps := StepList{
			{From: "3.2.0", To: "3.3.0", Apply: apply},
			{From: "3.1.0", To: "3.2.0", Apply: apply},
		}
		_, err := NewGate(store, steps, nil, testConfig(true))
		assert.Error(t, err)
	})

	t.Run("rejects a step without an apply function", func(t *testing.T) {
		steps := StepList{{From: "3.1.0", To: "3.2.0"}}
		_, err := NewGate(store, steps, nil, testConfig(true))
		assert.Error(t, err)
	})
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh install is up to date", func(t *testing.T) {
		store := setupTestStore(t)
		gate, err := NewGate(store, nil, nil, testConfig(false))
		require.NoError(t, err)

		decision, err := gate.Evaluate(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateUpToDate, decision.State)
		assert.True(t, decision.FreshInstall)
	})

	t.Run("entities without a stamped version block", func(t *testing.T) {
		store := setupTestStore(t)
		putEntity(t, store)

		gate, err := NewGate(store, nil, nil, testConfig(false))
		require.NoError(t, err)

		decision, err := gate.Evaluate(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateBlocked, decision.State)
		assert.False(t, decision.FreshInstall)
	})

	t.Run("stored at target is up to date", func(t *testing.T) {
		store := setupTestStore(t)
		stampWorld(t, store, "3.3.1")

		gate, err := NewGate(store, nil, nil, testConfig(false))
		require.NoError(t, err)

		decision, err := gate.Evaluate(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateUpToDate, decision.State)
		assert.Equal(t, "3.3.1", decision.StoredVersion)
	})

	t.Run("stored above target is up to date", func(t *testing.T) {
		store := setupTestStore(t)
		stampWorld(t, store, "4.0.0")

		gate, err := NewGate(store, nil, nil, testConfig(false))
		require.NoError(t, err)

		decision, err := gate.Evaluate(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateUpToDate, decision.State)
	})

	t.Run("stored below the floor blocks", func(t *testing.T) {
		store := setupTestStore(t)
		stampWorld(t, store, "2.9.0")

		gate, err := NewGate(store, nil, nil, testConfig(false))
		require.NoError(t, err)

		decision, err := gate.Evaluate(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateBlocked, decision.State)
		assert.Equal(t, "2.9.0", decision.StoredVersion)
	})

	t.Run("stored in the window migrates with applicable steps", func(t *testing.T) {
		store := setupTestStore(t)
		stampWorld(t, store, "3.1.0")
		steps, _ := recordingSteps("")

		gate, err := NewGate(store, steps, nil, testConfig(false))
		require.NoError(t, err)

		decision, err := gate.Evaluate(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateMigrating, decision.State)
		assert.True(t, decision.NeedsRelocation)
		require.Len(t, decision.Steps, 2)
		assert.Equal(t, "3.2.0", decision.Steps[0].To)
		assert.Equal(t, "3.3.1", decision.Steps[1].To)
	})

	t.Run("checkpointed steps are not selected again", func(t *testing.T) {
		store := setupTestStore(t)
		stampWorld(t, store, "3.2.0")
		steps, _ := recordingSteps("")

		gate, err := NewGate(store, steps, nil, testConfig(false))
		require.NoError(t, err)

		decision, err := gate.Evaluate(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateMigrating, decision.State)
		assert.False(t, decision.NeedsRelocation)
		require.Len(t, decision.Steps, 1)
		assert.Equal(t, "3.3.1", decision.Steps[0].To)
	})

	t.Run("steps beyond the target are not selected", func(t *testing.T) {
		store := setupTestStore(t)
		stampWorld(t, store, "3.1.0")
		apply := func(ctx context.Context) error { return nil }
		steps := StepList{
			{From: "3.1.0", To: "3.2.0", Apply: apply},
			{From: "3.2.0", To: "3.3.1", Apply: apply},
			{From: "3.3.1", To: "4.0.0", Apply: apply},
		}

		gate, err := NewGate(store, steps, nil, testConfig(false))
		require.NoError(t, err)

		decision, err := gate.Evaluate(ctx)
		require.NoError(t, err)
		require.Len(t, decision.Steps, 2)
		assert.Equal(t, "3.3.1", decision.Steps[len(decision.Steps)-1].To)
	})

	t.Run("evaluate mutates nothing", func(t *testing.T) {
		store := setupTestStore(t)
		gate, err := NewGate(store, nil, nil, testConfig(false))
		require.NoError(t, err)

		_, err = gate.Evaluate(ctx)
		require.NoError(t, err)

		_, err = store.GetMeta(ctx)
		assert.True(t, worldstore.IsNotFound(err))
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("unprivileged run is refused", func(t *testing.T) {
		store := setupTestStore(t)
		gate, err := NewGate(store, nil, nil, testConfig(false))
		require.NoError(t, err)

		_, err = gate.Run(ctx)
		assert.ErrorIs(t, err, ErrNotPrivileged)
	})

	t.Run("second run in the same process is refused", func(t *testing.T) {
		store := setupTestStore(t)
		gate, err := NewGate(store, nil, nil, testConfig(true))
		require.NoError(t, err)

		_, err = gate.Run(ctx)
		require.NoError(t, err)

		_, err = gate.Run(ctx)
		assert.ErrorIs(t, err, ErrAlreadyRan)
	})

	t.Run("fresh install is stamped at the current version", func(t *testing.T) {
		store := setupTestStore(t)
		gate, err := NewGate(store, nil, nil, testConfig(true))
		require.NoError(t, err)

		result, err := gate.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateUpToDate, result.State)

		meta, err := store.GetMeta(ctx)
		require.NoError(t, err)
		assert.Equal(t, "3.3.1", meta.SchemaVersion)
		assert.NotEmpty(t, meta.WorldID)
	})

	t.Run("blocked world returns a non-fatal blocked error", func(t *testing.T) {
		store := setupTestStore(t)
		stampWorld(t, store, "2.9.0")
		steps, applied := recordingSteps("")

		gate, err := NewGate(store, steps, nil, testConfig(true))
		require.NoError(t, err)

		result, err := gate.Run(ctx)
		require.Error(t, err)

		var blocked *BlockedError
		require.ErrorAs(t, err, &blocked)
		assert.Equal(t, "2.9.0", blocked.StoredVersion)
		assert.Equal(t, "3.0.0", blocked.FloorVersion)

		// Steps never ran, the stored version is untouched, and the caller
		// still gets a result to report on.
		assert.Empty(t, *applied)
		assert.Equal(t, StateBlocked, result.State)

		meta, err := store.GetMeta(ctx)
		require.NoError(t, err)
		assert.Equal(t, "2.9.0", meta.SchemaVersion)
	})

	t.Run("full migration applies steps in order and reaches the target", func(t *testing.T) {
		store := setupTestStore(t)
		stampWorld(t, store, "3.1.0")
		steps, applied := recordingSteps("")

		relocated := false
		relocate := func(ctx context.Context) error {
			relocated = true
			// Relocation runs before any step.
			assert.Empty(t, *applied)
			return nil
		}

		gate, err := NewGate(store, steps, relocate, testConfig(true))
		require.NoError(t, err)

		result, err := gate.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateDone, result.State)
		assert.Equal(t, "3.1.0", result.From)
		assert.Equal(t, "3.3.1", result.To)
		assert.Equal(t, 2, result.StepsApplied)
		assert.True(t, result.Relocated)
		assert.True(t, relocated)
		assert.Equal(t, []string{"3.2.0", "3.3.1"}, *applied)

		meta, err := store.GetMeta(ctx)
		require.NoError(t, err)
		assert.Equal(t, "3.3.1", meta.SchemaVersion)
	})

	t.Run("relocation is skipped at or above the threshold", func(t *testing.T) {
		store := setupTestStore(t)
		stampWorld(t, store, "3.2.0")
		steps, _ := recordingSteps("")

		relocated := false
		relocate := func(ctx context.Context) error {
			relocated = true
			return nil
		}

		gate, err := NewGate(store, steps, relocate, testConfig(true))
		require.NoError(t, err)

		result, err := gate.Run(ctx)
		require.NoError(t, err)
		assert.False(t, result.Relocated)
		assert.False(t, relocated)
	})

	t.Run("failed step leaves the last checkpoint in place", func(t *testing.T) {
		store := setupTestStore(t)
		stampWorld(t, store, "3.1.0")
		steps, applied := recordingSteps("3.3.1")

		gate, err := NewGate(store, steps, nil, testConfig(true))
		require.NoError(t, err)

		_, err = gate.Run(ctx)
		require.Error(t, err)

		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, "3.2.0", stepErr.From)
		assert.Equal(t, "3.3.1", stepErr.To)

		// The first step completed and was checkpointed; the failed step
		// advanced nothing.
		assert.Equal(t, []string{"3.2.0"}, *applied)
		meta, err := store.GetMeta(ctx)
		require.NoError(t, err)
		assert.Equal(t, "3.2.0", meta.SchemaVersion)
	})

	t.Run("rerun after a failure resumes from the checkpoint", func(t *testing.T) {
		store := setupTestStore(t)
		stampWorld(t, store, "3.1.0")

		// First process: second step fails.
		failing, _ := recordingSteps("3.3.1")
		gate, err := NewGate(store, failing, nil, testConfig(true))
		require.NoError(t, err)
		_, err = gate.Run(ctx)
		require.Error(t, err)

		// Next process start: only the unfinished step is selected and
		// already-completed work is not redone.
		steps, applied := recordingSteps("")
		gate, err = NewGate(store, steps, nil, testConfig(true))
		require.NoError(t, err)

		result, err := gate.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateDone, result.State)
		assert.Equal(t, 1, result.StepsApplied)
		assert.Equal(t, []string{"3.3.1"}, *applied)

		meta, err := store.GetMeta(ctx)
		require.NoError(t, err)
		assert.Equal(t, "3.3.1", meta.SchemaVersion)
	})

	t.Run("up-to-date world runs as a no-op", func(t *testing.T) {
		store := setupTestStore(t)
		stampWorld(t, store, "3.3.1")
		steps, applied := recordingSteps("")

		gate, err := NewGate(store, steps, nil, testConfig(true))
		require.NoError(t, err)

		result, err := gate.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateUpToDate, result.State)
		assert.Empty(t, *applied)
	})
}

func TestVersionHelpers(t *testing.T) {
	assert.True(t, isValidVersion("3.3.1"))
	assert.True(t, isValidVersion("0.1.0"))
	assert.False(t, isValidVersion(""))
	assert.False(t, isValidVersion("abc"))

	assert.Equal(t, -1, compareVersions("3.1.0", "3.2.0"))
	assert.Equal(t, 0, compareVersions("3.2.0", "3.2.0"))
	assert.Equal(t, 1, compareVersions("3.10.0", "3.9.0"))
}
