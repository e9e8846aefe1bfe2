package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/embermoor/wardstone/internal/config"
	"github.com/embermoor/wardstone/internal/printer"
	"github.com/embermoor/wardstone/pkg/identity"
	"github.com/embermoor/wardstone/pkg/refs"
)

var rewriteOut string

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <file>",
	Short: "Rewrite legacy catalog references in a YAML export",
	Long: `Rewrite every legacy catalog reference in an exported YAML document to
the canonical namespace. Reference strings of the form
"Catalog.<legacy-alias>.<path>" become "Catalog.<canonical>.<path>";
everything else is left untouched.

Only the identity section of the configuration is needed; no Redis
connection is made.

Examples:
  # Rewrite in place
  wardstone rewrite export.yml

  # Write the rewritten document elsewhere
  wardstone rewrite export.yml --out export-canonical.yml`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

func init() {
	rewriteCmd.Flags().StringVar(&rewriteOut, "out", "", "Write the rewritten document here instead of in place")
	rootCmd.AddCommand(rewriteCmd)
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	id, err := identity.NewResolver(cfg.Identity.Canonical, cfg.Identity.LegacyAliases)
	if err != nil {
		return fmt.Errorf("invalid identity configuration: %w", err)
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	rewritten, count := refs.NewRewriter(id).RewriteTree(doc)
	if count == 0 {
		printer.Info("No legacy references found in %s\n", path)
		return nil
	}

	out, err := yaml.Marshal(rewritten)
	if err != nil {
		return fmt.Errorf("failed to serialise rewritten document: %w", err)
	}

	dest := rewriteOut
	if dest == "" {
		dest = path
	}
	if err := os.WriteFile(dest, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	printer.Success("Rewrote %d reference(s), written to %s\n", count, dest)
	return nil
}
