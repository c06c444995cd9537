package main

import (
	"fmt"

	"github.com/open-edge-platform/repodb/internal/config"
	"github.com/open-edge-platform/repodb/internal/pkgrecord"
	"github.com/open-edge-platform/repodb/internal/recipe"
	"github.com/open-edge-platform/repodb/internal/utils/logger"
	"github.com/open-edge-platform/repodb/internal/wal"
	"github.com/spf13/cobra"
)

var updateRecipeDir string

// createUpdatePackageCommand creates the update-package subcommand: the
// named package's recipe is reloaded and appended as an update-package
// record, which requires the new version to strictly exceed the current
// one (§4.D).
func createUpdatePackageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-package <name>",
		Short: "Update a package to a newer version from its recipe",
		Args:  cobra.ExactArgs(1),
		RunE:  executeUpdatePackage,
	}
	cmd.Flags().StringVar(&updateRecipeDir, "recipe-dir", "", "directory containing the recipe (default: <recipe_dir>/<name>)")
	return cmd
}

func executeUpdatePackage(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := config.Global()
	log := logger.Logger()

	w, err := wal.Open(cfg.WalPath)
	if err != nil {
		return fmt.Errorf("opening wal at %s: %w", cfg.WalPath, err)
	}
	defer w.Close()

	existing, ok := w.Get(name)
	if !ok {
		return fmt.Errorf("package %s not found", name)
	}

	dir := updateRecipeDir
	if dir == "" {
		dir = cfg.RecipeDir + "/" + name
	}
	r, err := recipe.Load(dir)
	if err != nil {
		return fmt.Errorf("loading recipe for %s: %w", name, err)
	}

	p := pkgrecord.Package{
		Name:     existing.Name,
		Version:  recipeVersionString(r),
		Depends:  r.Depends,
		External: existing.External,
		Arch:     firstArch(r.Arch),
	}.WithDefaults()

	if err := w.UpdatePackage(p); err != nil {
		return fmt.Errorf("updating package %s: %w", name, err)
	}

	log.Infof("updated package %s to %s (revision %d)", p.Name, p.Version, w.State().Revision())
	fmt.Printf("updated %s to %s\n", p.Name, p.Version)
	return nil
}
