// Package errs defines the stable error kinds surfaced by the repository
// engine. Callers match on these with errors.Is; the text wrapped around
// them is for humans only and is not a stable identifier.
package errs

import "errors"

var (
	// ErrWalCorrupt is returned when the WAL fails to open or replay: bad
	// magic, invalid JSON, an unknown op, or a record that fails its own
	// precondition during replay.
	ErrWalCorrupt = errors.New("wal corrupt")

	// ErrWalBusy is returned when the WAL file's advisory lock is already
	// held by another process.
	ErrWalBusy = errors.New("wal busy")

	// ErrDuplicate is returned by add_package when the name already exists.
	ErrDuplicate = errors.New("package already exists")

	// ErrNotFound is returned by update_package and remove_package when
	// the name is absent (get reports absence with a boolean instead).
	ErrNotFound = errors.New("package not found")

	// ErrMissingDependency is returned by add_package and update_package
	// when a depends entry is not present in State.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrDependencyHeld is returned by remove_package when another
	// package's depends list still names it.
	ErrDependencyHeld = errors.New("dependency held")

	// ErrVersionNotStrictlyIncreasing is returned by update_package when
	// the new version does not strictly exceed the current one.
	ErrVersionNotStrictlyIncreasing = errors.New("version not strictly increasing")

	// ErrVersionSyntax is returned by version parsing on a malformed string.
	ErrVersionSyntax = errors.New("invalid version syntax")

	// ErrRecipeParseError is returned by the recipe loader on any deviation
	// from the expected declared-variable dump format.
	ErrRecipeParseError = errors.New("recipe parse error")

	// ErrPackageFileMissing is returned by the exporter when a non-external
	// package has no .pkg.tar.zst on disk.
	ErrPackageFileMissing = errors.New("package file missing")

	// ErrInnerArchiveCorrupt is returned by the exporter when the inner
	// zstd/tar archive cannot be parsed while computing ISIZE.
	ErrInnerArchiveCorrupt = errors.New("inner archive corrupt")
)
