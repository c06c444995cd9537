package main

import (
	"fmt"

	"github.com/open-edge-platform/repodb/internal/config"
	"github.com/open-edge-platform/repodb/internal/utils/logger"
	"github.com/open-edge-platform/repodb/internal/wal"
	"github.com/spf13/cobra"
)

// createRemovePackageCommand creates the remove-package subcommand.
// Removal fails with DependencyHeld if another package's depends list
// still names it (§4.D).
func createRemovePackageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-package <name>",
		Short: "Remove a package from the repository",
		Args:  cobra.ExactArgs(1),
		RunE:  executeRemovePackage,
	}
}

func executeRemovePackage(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := config.Global()
	log := logger.Logger()

	w, err := wal.Open(cfg.WalPath)
	if err != nil {
		return fmt.Errorf("opening wal at %s: %w", cfg.WalPath, err)
	}
	defer w.Close()

	if err := w.RemovePackage(name); err != nil {
		return fmt.Errorf("removing package %s: %w", name, err)
	}

	log.Infof("removed package %s (revision %d)", name, w.State().Revision())
	fmt.Printf("removed %s\n", name)
	return nil
}
