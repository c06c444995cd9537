package main

import (
	"fmt"

	"github.com/open-edge-platform/repodb/internal/config"
	"github.com/open-edge-platform/repodb/internal/export"
	"github.com/open-edge-platform/repodb/internal/utils/logger"
	"github.com/open-edge-platform/repodb/internal/wal"
	"github.com/spf13/cobra"
)

var exportOutDir string

// createExportDatabaseCommand creates the export-database subcommand,
// wiring internal/export.Export against the configured package
// directory and metadata placeholders (§4.H).
func createExportDatabaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-database",
		Short: "Export a snapshot archive of the repository database",
		RunE:  executeExportDatabase,
	}
	cmd.Flags().StringVar(&exportOutDir, "out-dir", ".", "directory to write the snapshot archive to")
	return cmd
}

func executeExportDatabase(cmd *cobra.Command, args []string) error {
	cfg := config.Global()
	log := logger.Logger()

	w, err := wal.Open(cfg.WalPath)
	if err != nil {
		return fmt.Errorf("opening wal at %s: %w", cfg.WalPath, err)
	}
	defer w.Close()

	path, err := export.Export(w.State(), export.Options{
		RepoName:   cfg.RepoName,
		PackageDir: cfg.PackageDir,
		OutDir:     exportOutDir,
		Placeholders: export.Placeholders{
			Desc:     cfg.Description,
			URL:      cfg.URL,
			License:  cfg.License,
			Packager: cfg.Packager,
		},
	})
	if err != nil {
		return fmt.Errorf("exporting repository database: %w", err)
	}

	log.Infof("exported %s", path)
	fmt.Printf("exported %s\n", path)
	return nil
}
