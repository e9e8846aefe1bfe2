package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/embermoor/wardstone/internal/printer"
	"github.com/embermoor/wardstone/pkg/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending world migrations (gamemaster only)",
	Long: `Evaluate the migration gate and, when migration is needed, run it:
the one-time structural relocation first if the world predates the
relocation threshold, then each pending step in order.

The stored schema version is checkpointed after every completed step, so an
interrupted or failed run resumes from the last checkpoint on the next
invocation - completed work is never redone and unfinished work is never
silently skipped.

This is the single privileged entry point: player processes observe the
gate's outcome but never trigger it.

Examples:
  # Migrate the world in ./wardstone.yml
  wardstone migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	gate, err := newGate(e, true)
	if err != nil {
		return err
	}

	result, err := gate.Run(context.Background())
	if err != nil {
		var blocked *migrate.BlockedError
		if errors.As(err, &blocked) {
			// Non-fatal: the world keeps operating on un-migrated data, but
			// the warning persists until an intermediate release migrates it.
			printer.Warning("World not migrated: %v\n", blocked)
			printer.Info("The world will keep running on un-migrated data.\n")
			return nil
		}

		var stepErr *migrate.StepError
		if errors.As(err, &stepErr) {
			return printer.Error(
				"Migration halted",
				stepErr.Error(),
				[]string{
					"The world is at the last completed checkpoint; re-running 'wardstone migrate' resumes from there.",
				},
			)
		}

		return err
	}

	switch result.State {
	case migrate.StateUpToDate:
		printer.Success("World is up to date (version %s)\n", e.cfg.Migration.TargetSchemaVersion)
	case migrate.StateDone:
		if result.Relocated {
			printer.Info("Relocated legacy world data to the canonical prefix.\n")
		}
		printer.Success("Migration complete: %s -> %s (%d steps)\n", orUnset(result.From), result.To, result.StepsApplied)
	}

	return nil
}
