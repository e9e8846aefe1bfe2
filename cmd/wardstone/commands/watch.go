package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/embermoor/wardstone/internal/printer"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream world events as they happen",
	Long: `Subscribe to the world's event channel and print every event as it
arrives: setting changes, entity and flag writes, schema version
checkpoints, and key relocations.

Useful for watching a migration progress from another terminal.

Examples:
  # Watch the world in ./wardstone.yml (Ctrl-C to stop)
  wardstone watch`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sub, err := e.store.SubscribeWorldEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to world events: %w", err)
	}
	defer sub.Close()

	printer.Info("Watching world '%s' (Ctrl-C to stop)...\n", e.cfg.World)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			at := time.UnixMilli(event.AtMs).Format(time.RFC3339)
			if len(event.Detail) > 0 {
				printer.Printf("%s  %-16s %s  %v\n", at, event.Kind, event.Subject, event.Detail)
			} else {
				printer.Printf("%s  %-16s %s\n", at, event.Kind, event.Subject)
			}

		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			printer.Warning("event error: %v\n", err)
		}
	}
}
