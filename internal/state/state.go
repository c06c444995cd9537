// Package state holds the in-memory name->Package map and revision
// counter that the WAL drives (spec §4.C). State itself performs no
// precondition checking and never touches the log; the WAL is the sole
// caller of its mutation methods, after its own precondition checks pass.
package state

import (
	"sort"

	"github.com/open-edge-platform/repodb/internal/pkgrecord"
)

// State is a pure in-memory structure, safe for the single-threaded
// discipline spec §5 requires (it performs no locking of its own).
type State struct {
	revision uint64
	packages map[string]pkgrecord.Package
}

// New returns an empty State at revision 0.
func New() *State {
	return &State{packages: make(map[string]pkgrecord.Package)}
}

// Revision returns the count of records applied since creation.
func (s *State) Revision() uint64 { return s.revision }

// Get returns the package with the given name and whether it exists.
func (s *State) Get(name string) (pkgrecord.Package, bool) {
	p, ok := s.packages[name]
	return p.Clone(), ok
}

// Has reports whether name is a known package.
func (s *State) Has(name string) bool {
	_, ok := s.packages[name]
	return ok
}

// Len returns the number of known packages.
func (s *State) Len() int { return len(s.packages) }

// Names returns all known package names, sorted lexicographically.
func (s *State) Names() []string {
	names := make([]string, 0, len(s.packages))
	for n := range s.packages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns a snapshot slice of every package, sorted by name.
func (s *State) All() []pkgrecord.Package {
	names := s.Names()
	out := make([]pkgrecord.Package, 0, len(names))
	for _, n := range names {
		out = append(out, s.packages[n].Clone())
	}
	return out
}

// DependentsOf returns the names of packages (other than name itself)
// whose depends list contains name, sorted lexicographically.
func (s *State) DependentsOf(name string) []string {
	var holders []string
	for n, p := range s.packages {
		if n == name {
			continue
		}
		for _, d := range p.Depends {
			if d == name {
				holders = append(holders, n)
				break
			}
		}
	}
	sort.Strings(holders)
	return holders
}

// Insert adds p and advances the revision counter by one. The caller
// (the WAL) must have already verified p.Name is absent and every
// dependency is present.
func (s *State) Insert(p pkgrecord.Package) {
	s.packages[p.Name] = p.Clone()
	s.revision++
}

// Replace overwrites the existing entry for p.Name and advances the
// revision counter by one. The caller must have already verified the
// monotone-version and dependency-closure preconditions.
func (s *State) Replace(p pkgrecord.Package) {
	s.packages[p.Name] = p.Clone()
	s.revision++
}

// Delete removes name and advances the revision counter by one. The
// caller must have already verified no remaining package depends on it.
func (s *State) Delete(name string) {
	delete(s.packages, name)
	s.revision++
}
