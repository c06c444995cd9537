package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/open-edge-platform/repodb/internal/config"
	"github.com/open-edge-platform/repodb/internal/graph"
	"github.com/open-edge-platform/repodb/internal/wal"
	"github.com/spf13/cobra"
)

var (
	graphReverse bool
	graphOrigin  string
)

// createBuildGraphCommand creates the build-graph subcommand (§E3.2):
// builds the forward graph, or with --reverse the inverse graph, and
// either prints layers(G, origin) when --origin is given or the full
// edge list otherwise.
func createBuildGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build-graph",
		Short: "Build the dependency graph and print its edges or impact layers",
		RunE:  executeBuildGraph,
	}
	cmd.Flags().BoolVar(&graphReverse, "reverse", false, "build the inverse (reverse-dependency) graph")
	cmd.Flags().StringVar(&graphOrigin, "origin", "", "compute BFS impact layers from this package instead of printing the edge list")
	return cmd
}

func executeBuildGraph(cmd *cobra.Command, args []string) error {
	cfg := config.Global()

	w, err := wal.Open(cfg.WalPath)
	if err != nil {
		return fmt.Errorf("opening wal at %s: %w", cfg.WalPath, err)
	}
	defer w.Close()

	g := graph.Build(w.State())
	if graphReverse {
		g = graph.Inverse(g)
	}

	if graphOrigin != "" {
		if _, ok := g.Nodes[graphOrigin]; !ok {
			return fmt.Errorf("origin package %s not found", graphOrigin)
		}
		layers := graph.Layers(g, graphOrigin)
		for depth, layer := range layers {
			fmt.Printf("%d: %s\n", depth, strings.Join(layer, ", "))
		}
		return nil
	}

	names := make([]string, 0, len(g.Edges))
	for name := range g.Edges {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s -> %s\n", name, strings.Join(g.Edges[name], ", "))
	}
	return nil
}
