package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/open-edge-platform/repodb/internal/config"
	"github.com/open-edge-platform/repodb/internal/wal"
	"github.com/spf13/cobra"
)

// createQueryCommand creates the query subcommand: prints a single
// package's record, or lists all package names sorted lexicographically
// when no name is given (§E3.1).
func createQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query [name]",
		Short: "Print a package's record, or list all package names",
		Args:  cobra.MaximumNArgs(1),
		RunE:  executeQuery,
	}
}

func executeQuery(cmd *cobra.Command, args []string) error {
	cfg := config.Global()

	w, err := wal.Open(cfg.WalPath)
	if err != nil {
		return fmt.Errorf("opening wal at %s: %w", cfg.WalPath, err)
	}
	defer w.Close()

	s := w.State()

	if len(args) == 0 {
		names := s.Names()
		sort.Strings(names)
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}

	name := args[0]
	p, ok := s.Get(name)
	if !ok {
		return fmt.Errorf("package %s not found", name)
	}
	fmt.Printf("name:     %s\n", p.Name)
	fmt.Printf("version:  %s\n", p.Version)
	fmt.Printf("external: %t\n", p.External)
	fmt.Printf("arch:     %s\n", p.Arch)
	fmt.Printf("depends:  %s\n", strings.Join(p.Depends, ", "))
	return nil
}
