package main

import (
	"fmt"

	"github.com/open-edge-platform/repodb/internal/config"
	"github.com/open-edge-platform/repodb/internal/wal"
	"github.com/spf13/cobra"
)

// createBootstrapCommand creates the bootstrap subcommand: it opens
// (creating if absent) the configured WAL and reports the resulting
// revision and package count, exercising §4.D open semantics directly
// with no mutation.
func createBootstrapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Open (creating if absent) the repository WAL",
		Long: `Opens the WAL at the configured path, creating it if it does not
already exist, and replays it into State. Reports the resulting
revision and package count without mutating anything.`,
		RunE: executeBootstrap,
	}
}

func executeBootstrap(cmd *cobra.Command, args []string) error {
	cfg := config.Global()

	w, err := wal.Open(cfg.WalPath)
	if err != nil {
		return fmt.Errorf("bootstrapping wal at %s: %w", cfg.WalPath, err)
	}
	defer w.Close()

	s := w.State()
	fmt.Printf("repo %q bootstrapped at %s\n", cfg.RepoName, cfg.WalPath)
	fmt.Printf("revision: %d\n", s.Revision())
	fmt.Printf("packages: %d\n", s.Len())
	return nil
}
