package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/embermoor/wardstone/pkg/migrate"
	"github.com/embermoor/wardstone/pkg/worldstore"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show world metadata and the migration gate's decision",
	Long: `Show the world's persisted metadata and what the migration gate would
decide on the next start: up to date, blocked below the migration floor, or
migrating (with the pending steps).

This command is read-only; it never stamps, relocates, or migrates anything.

Examples:
  # Status for the world in ./wardstone.yml
  wardstone status

  # Status with an explicit config path
  wardstone --config /srv/worlds/emberfall.yml status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := context.Background()

	gate, err := newGate(e, false)
	if err != nil {
		return err
	}

	decision, err := gate.Evaluate(ctx)
	if err != nil {
		return err
	}

	meta, err := e.store.GetMeta(ctx)
	if err != nil && !worldstore.IsNotFound(err) {
		return err
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("Field", "Value")
	table.Append([]string{"World", e.cfg.World})
	if meta != nil {
		table.Append([]string{"World ID", meta.WorldID})
	} else {
		table.Append([]string{"World ID", "(not stamped)"})
	}
	table.Append([]string{"Stored version", orUnset(decision.StoredVersion)})
	table.Append([]string{"Target version", e.cfg.Migration.TargetSchemaVersion})
	table.Append([]string{"Migration floor", e.cfg.Migration.MinimumMigratableVersion})
	table.Append([]string{"Gate decision", string(decision.State)})
	table.Append([]string{"Needs relocation", fmt.Sprintf("%t", decision.NeedsRelocation)})
	table.Append([]string{"Pending steps", fmt.Sprintf("%d", len(decision.Steps))})
	if err := table.Render(); err != nil {
		return err
	}

	if decision.State == migrate.StateMigrating {
		fmt.Println()
		steps := tablewriter.NewTable(os.Stdout)
		steps.Header("From", "To", "Description")
		for _, step := range decision.Steps {
			steps.Append([]string{step.From, step.To, step.Description})
		}
		if err := steps.Render(); err != nil {
			return err
		}
	}

	return nil
}

func orUnset(v string) string {
	if v == "" {
		return "(never stamped)"
	}
	return v
}
