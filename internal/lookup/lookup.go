// Package lookup implements the external package lookup boundary of
// spec §4.F: a pure, side-effect-free read against the host
// distribution's installed package database. It models that database as
// a directory of the host's installed `.rpm` artifacts and
// reads each one's header with github.com/sassoftware/go-rpmutils,
// optionally verifying the host's own package signatures against a
// configured keyring before trusting what it reports.
package lookup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	rpmutils "github.com/sassoftware/go-rpmutils"
	"github.com/schollz/progressbar/v3"

	"github.com/open-edge-platform/repodb/internal/utils/logger"
)

// Entry is the record this boundary returns: a name and its direct
// dependencies, per spec §4.F.
type Entry struct {
	Name    string
	Version string
	Depends []string
}

// Lookuper reads the host's installed package database rooted at DBDir.
// It never mutates the host state and is deterministic for a fixed DBDir.
type Lookuper struct {
	DBDir      string
	KeyringPEM string // path to an armored OpenPGP keyring; empty disables verification
}

// New returns a Lookuper rooted at dbDir. If keyringPath is non-empty,
// Find additionally verifies the host package's signature and refuses to
// report an entry whose signature does not check out.
func New(dbDir, keyringPath string) *Lookuper {
	return &Lookuper{DBDir: dbDir, KeyringPEM: keyringPath}
}

// Find returns the host's record for name, or (_, false, nil) if the
// host has no such package installed.
func (l *Lookuper) Find(name string) (Entry, bool, error) {
	path, err := l.findPackageFile(name)
	if err != nil {
		return Entry{}, false, err
	}
	if path == "" {
		return Entry{}, false, nil
	}

	if l.KeyringPEM != "" {
		if err := l.verify(path); err != nil {
			return Entry{}, false, fmt.Errorf("host package %s failed signature check: %w", path, err)
		}
	}

	entry, err := readHeader(path)
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

// findPackageFile searches DBDir for an installed artifact whose base
// name (before the first '-' followed by a digit) matches name.
func (l *Lookuper) findPackageFile(name string) (string, error) {
	entries, err := os.ReadDir(l.DBDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading host package db %s: %w", l.DBDir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fn := e.Name()
		if !strings.HasSuffix(fn, ".rpm") {
			continue
		}
		if baseName(fn) == name {
			return filepath.Join(l.DBDir, fn), nil
		}
	}
	return "", nil
}

// baseName strips the version/release/arch suffix from an RPM file name,
// e.g. "python3-3.13.0-1.x86_64.rpm" -> "python3".
func baseName(fileName string) string {
	n := strings.TrimSuffix(fileName, ".rpm")
	parts := strings.Split(n, "-")
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) > 0 && parts[i][0] >= '0' && parts[i][0] <= '9' {
			return strings.Join(parts[:i], "-")
		}
	}
	return n
}

func readHeader(path string) (Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, fmt.Errorf("opening host package %s: %w", path, err)
	}
	defer f.Close()

	hdr, err := rpmutils.ReadHeader(f)
	if err != nil {
		return Entry{}, fmt.Errorf("reading header of %s: %w", path, err)
	}

	name, err := hdr.GetString(rpmutils.NAME)
	if err != nil {
		return Entry{}, fmt.Errorf("reading name from %s: %w", path, err)
	}
	version, _ := hdr.GetString(rpmutils.VERSION)
	release, _ := hdr.GetString(rpmutils.RELEASE)
	if release != "" {
		version = version + "-" + release
	}

	requires, _ := hdr.GetStrings(rpmutils.REQUIRENAME)
	depends := make([]string, 0, len(requires))
	for _, r := range requires {
		if strings.HasPrefix(r, "rpmlib(") {
			continue
		}
		depends = append(depends, r)
	}

	return Entry{Name: name, Version: version, Depends: depends}, nil
}

func (l *Lookuper) verify(path string) error {
	keyringFile, err := os.Open(l.KeyringPEM)
	if err != nil {
		return fmt.Errorf("opening keyring: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		return fmt.Errorf("loading keyring: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening package: %w", err)
	}
	defer f.Close()

	_, sigs, err := rpmutils.Verify(f, keyring)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}
	if len(sigs) == 0 {
		return fmt.Errorf("no signatures found")
	}
	return nil
}

// VerifyAll checks the signature of every installed package in DBDir
// against the configured keyring, reporting progress, and returns each
// package path's verification result. No command in cmd/repodb calls it.
func (l *Lookuper) VerifyAll() (map[string]error, error) {
	log := logger.Logger()
	entries, err := os.ReadDir(l.DBDir)
	if err != nil {
		return nil, fmt.Errorf("reading host package db %s: %w", l.DBDir, err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".rpm") {
			paths = append(paths, filepath.Join(l.DBDir, e.Name()))
		}
	}

	results := make(map[string]error, len(paths))
	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	for _, p := range paths {
		err := l.verify(p)
		results[p] = err
		if err != nil {
			log.Warnf("host package %s failed verification: %v", p, err)
		}
		if barErr := bar.Add(1); barErr != nil {
			log.Errorf("progress bar update failed: %v", barErr)
		}
	}
	_ = bar.Finish()
	return results, nil
}
