package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string

	// configPath is the wardstone.yml location, shared by all subcommands
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wardstone",
	Short: "Wardstone - world compatibility and migration tooling",
	Long: `Wardstone is the compatibility and migration layer for worlds created
under the system's legacy identity.

It redirects settings, per-entity flags, hooks, sheet registrations and
catalog references written against a legacy alias onto the canonical
namespace, and gates one-time data migrations behind the world's persisted
schema version so an interrupted migration resumes safely.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "wardstone.yml", "Path to the wardstone configuration file")
}
