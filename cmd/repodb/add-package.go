package main

import (
	"fmt"
	"strings"

	"github.com/open-edge-platform/repodb/internal/config"
	"github.com/open-edge-platform/repodb/internal/lookup"
	"github.com/open-edge-platform/repodb/internal/pkgrecord"
	"github.com/open-edge-platform/repodb/internal/recipe"
	"github.com/open-edge-platform/repodb/internal/utils/logger"
	"github.com/open-edge-platform/repodb/internal/wal"
	"github.com/spf13/cobra"
)

var (
	addRecipeDir string
	addExternal  bool
	addDBDir     string
	addKeyring   string
)

// createAddPackageCommand creates the add-package subcommand: a recipe
// directory is loaded into a Package record and appended to the WAL.
func createAddPackageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-package <name>",
		Short: "Add a package to the repository from its recipe",
		Long: `Loads the build recipe under --recipe-dir (default: the configured
recipe directory joined with <name>) and appends an add-package record
to the WAL. With --external, the package is instead resolved against
the host's installed package database (--db-dir) rather than a recipe.`,
		Args: cobra.ExactArgs(1),
		RunE: executeAddPackage,
	}
	cmd.Flags().StringVar(&addRecipeDir, "recipe-dir", "", "directory containing the recipe (default: <recipe_dir>/<name>)")
	cmd.Flags().BoolVar(&addExternal, "external", false, "resolve the package from the host's installed package database instead of a recipe")
	cmd.Flags().StringVar(&addDBDir, "db-dir", "", "directory of installed host packages used with --external (if empty, the provisional version is used)")
	cmd.Flags().StringVar(&addKeyring, "keyring", "", "armored OpenPGP keyring used to verify the host package before trusting it")
	return cmd
}

func executeAddPackage(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := config.Global()
	log := logger.Logger()

	w, err := wal.Open(cfg.WalPath)
	if err != nil {
		return fmt.Errorf("opening wal at %s: %w", cfg.WalPath, err)
	}
	defer w.Close()

	var p pkgrecord.Package
	if addExternal {
		p, err = resolveExternalPackage(name)
		if err != nil {
			return err
		}
	} else {
		dir := addRecipeDir
		if dir == "" {
			dir = cfg.RecipeDir + "/" + name
		}
		r, err := recipe.Load(dir)
		if err != nil {
			return fmt.Errorf("loading recipe for %s: %w", name, err)
		}
		p = pkgrecord.Package{
			Name:     r.Name,
			Version:  recipeVersionString(r),
			Depends:  r.Depends,
			External: false,
			Arch:     firstArch(r.Arch),
		}.WithDefaults()
	}

	if err := w.AddPackage(p); err != nil {
		return fmt.Errorf("adding package %s: %w", p.Name, err)
	}

	log.Infof("added package %s@%s (revision %d)", p.Name, p.Version, w.State().Revision())
	fmt.Printf("added %s@%s\n", p.Name, p.Version)
	return nil
}

// externalProvisionalVersion is the placeholder used for an external
// package when the host lookup boundary cannot resolve an installed
// version (lookup disabled, or the package genuinely absent from the
// host database), per spec.md:240.
const externalProvisionalVersion = "0.0.0-1"

func resolveExternalPackage(name string) (pkgrecord.Package, error) {
	if addDBDir == "" {
		log := logger.Logger()
		log.Warnf("no --db-dir configured; adding %s with provisional version %s", name, externalProvisionalVersion)
		return pkgrecord.Package{Name: name, Version: externalProvisionalVersion, External: true}.WithDefaults(), nil
	}

	l := lookup.New(addDBDir, addKeyring)
	entry, ok, err := l.Find(name)
	if err != nil {
		return pkgrecord.Package{}, fmt.Errorf("looking up host package %s: %w", name, err)
	}
	if !ok {
		log := logger.Logger()
		log.Warnf("host package %s not found in %s; adding with provisional version %s", name, addDBDir, externalProvisionalVersion)
		return pkgrecord.Package{Name: name, Version: externalProvisionalVersion, External: true}.WithDefaults(), nil
	}

	return pkgrecord.Package{
		Name:     entry.Name,
		Version:  entry.Version,
		Depends:  entry.Depends,
		External: true,
	}.WithDefaults(), nil
}

// recipeVersionString renders a recipe's version/release/epoch triple in
// the wire form internal/version.Version.String() produces.
func recipeVersionString(r recipe.Recipe) string {
	var b strings.Builder
	if r.Epoch != "" {
		b.WriteString(r.Epoch)
		b.WriteByte(':')
	}
	b.WriteString(r.Version)
	b.WriteByte('-')
	fmt.Fprintf(&b, "%d", r.Release)
	return b.String()
}

func firstArch(archs []string) string {
	if len(archs) == 0 {
		return pkgrecord.ArchAny
	}
	return archs[0]
}
