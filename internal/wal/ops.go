package wal

import (
	"fmt"

	"github.com/open-edge-platform/repodb/internal/errs"
	"github.com/open-edge-platform/repodb/internal/pkgrecord"
	"github.com/open-edge-platform/repodb/internal/utils/logger"
	"github.com/open-edge-platform/repodb/internal/version"
)

// Get returns the package named name and whether it exists.
func (w *WAL) Get(name string) (pkgrecord.Package, bool) {
	return w.state.Get(name)
}

// AddPackage inserts p. Preconditions: p.Name must be absent and every
// entry of p.Depends must already be present. On success the mutation is
// applied to State first, then appended to the log (spec §4.D, §7).
func (w *WAL) AddPackage(p pkgrecord.Package) error {
	p = p.WithDefaults()
	if err := w.checkAdd(p); err != nil {
		return err
	}
	w.state.Insert(p)
	line, err := encodeAddUpdate(OpAdd, p)
	if err != nil {
		logger.Logger().Fatalf("encoding add-package record for %s: %v", p.Name, err)
	}
	return w.append(line)
}

func (w *WAL) checkAdd(p pkgrecord.Package) error {
	if w.state.Has(p.Name) {
		return fmt.Errorf("%w: %s", errs.ErrDuplicate, p.Name)
	}
	for _, d := range p.Depends {
		if !w.state.Has(d) {
			return fmt.Errorf("%w: %s depends on missing package %s", errs.ErrMissingDependency, p.Name, d)
		}
	}
	return nil
}

// UpdatePackage replaces the existing entry for p.Name. Preconditions:
// p.Name must be present, p.Version must strictly exceed the current
// version under the §3 ordering, and every entry of p.Depends must be
// present.
func (w *WAL) UpdatePackage(p pkgrecord.Package) error {
	p = p.WithDefaults()
	if err := w.checkUpdate(p); err != nil {
		return err
	}
	w.state.Replace(p)
	line, err := encodeAddUpdate(OpUpdate, p)
	if err != nil {
		logger.Logger().Fatalf("encoding update-package record for %s: %v", p.Name, err)
	}
	return w.append(line)
}

func (w *WAL) checkUpdate(p pkgrecord.Package) error {
	prev, ok := w.state.Get(p.Name)
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrNotFound, p.Name)
	}
	newVer, err := version.Parse(p.Version)
	if err != nil {
		return err
	}
	prevVer, err := version.Parse(prev.Version)
	if err != nil {
		return err
	}
	if !prevVer.Less(newVer) {
		return fmt.Errorf("%w: %s %s is not strictly greater than %s", errs.ErrVersionNotStrictlyIncreasing, p.Name, p.Version, prev.Version)
	}
	for _, d := range p.Depends {
		if !w.state.Has(d) {
			return fmt.Errorf("%w: %s depends on missing package %s", errs.ErrMissingDependency, p.Name, d)
		}
	}
	return nil
}

// RemovePackage deletes name. Preconditions: name must be present and no
// remaining package's depends list may name it.
func (w *WAL) RemovePackage(name string) error {
	if err := w.checkRemove(name); err != nil {
		return err
	}
	w.state.Delete(name)
	line, err := encodeRemove(name)
	if err != nil {
		logger.Logger().Fatalf("encoding remove-package record for %s: %v", name, err)
	}
	return w.append(line)
}

func (w *WAL) checkRemove(name string) error {
	if !w.state.Has(name) {
		return fmt.Errorf("%w: %s", errs.ErrNotFound, name)
	}
	if holders := w.state.DependentsOf(name); len(holders) > 0 {
		return fmt.Errorf("%w: %s is still required by %v", errs.ErrDependencyHeld, name, holders)
	}
	return nil
}
