// Package graph builds the forward/reverse dependency graph and computes
// BFS impact layers over it, per spec §4.G.
package graph

import (
	"regexp"
	"sort"

	"github.com/open-edge-platform/repodb/internal/pkgrecord"
	"github.com/open-edge-platform/repodb/internal/state"
)

// Graph is the node set and edge lists derived from a State snapshot.
// Edges are ordered and may contain duplicates, mirroring the source
// package's depends list with version constraints stripped.
type Graph struct {
	Nodes map[string]pkgrecord.Package
	Edges map[string][]string
}

// constraintRE matches a dependency token with a trailing version
// constraint: <name>(==|>=|<=|>|<)<rest>.
var constraintRE = regexp.MustCompile(`^(.*?)(==|>=|<=|>|<).*$`)

// stripConstraint returns the bare package name from a depends token,
// discarding any ==, >=, <=, >, or < version constraint suffix.
func stripConstraint(token string) string {
	if m := constraintRE.FindStringSubmatch(token); m != nil {
		return m[1]
	}
	return token
}

// Build derives a Graph from s: nodes are every package in s, and each
// node's edges are its depends list with constraints stripped.
func Build(s *state.State) Graph {
	names := s.Names()
	nodes := make(map[string]pkgrecord.Package, len(names))
	edges := make(map[string][]string, len(names))
	for _, name := range names {
		p, _ := s.Get(name)
		nodes[name] = p

		stripped := make([]string, len(p.Depends))
		for i, d := range p.Depends {
			stripped[i] = stripConstraint(d)
		}
		edges[name] = stripped
	}
	return Graph{Nodes: nodes, Edges: edges}
}

// Inverse returns a graph over the same node set with every edge
// reversed, preserving multiplicity.
func Inverse(g Graph) Graph {
	nodes := make(map[string]pkgrecord.Package, len(g.Nodes))
	for name, p := range g.Nodes {
		nodes[name] = p
	}

	edges := make(map[string][]string, len(g.Nodes))
	for name := range g.Nodes {
		edges[name] = nil
	}

	froms := make([]string, 0, len(g.Edges))
	for from := range g.Edges {
		froms = append(froms, from)
	}
	sort.Strings(froms)

	for _, from := range froms {
		for _, to := range g.Edges[from] {
			edges[to] = append(edges[to], from)
		}
	}
	return Graph{Nodes: nodes, Edges: edges}
}

// Layers runs a BFS from origin over g.Edges and returns the impact
// layers: layer 0 is {origin}, layer k is every node whose maximum
// distance from origin (across all paths explored) is k. Each layer is
// rendered as a lexicographically sorted slice.
func Layers(g Graph, origin string) [][]string {
	depth := map[string]int{origin: 0}
	queue := []string{origin}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Edges[cur] {
			nd := depth[cur] + 1
			if existing, ok := depth[next]; !ok || nd > existing {
				depth[next] = nd
				queue = append(queue, next)
			}
		}
	}

	maxDepth := 0
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}

	layers := make([][]string, maxDepth+1)
	for name, d := range depth {
		layers[d] = append(layers[d], name)
	}
	for _, layer := range layers {
		sort.Strings(layer)
	}
	return layers
}
