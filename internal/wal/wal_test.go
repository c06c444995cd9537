package wal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/open-edge-platform/repodb/internal/errs"
	"github.com/open-edge-platform/repodb/internal/pkgrecord"
)

func pkg(name, ver string, depends ...string) pkgrecord.Package {
	if depends == nil {
		depends = []string{}
	}
	return pkgrecord.Package{Name: name, Version: ver, Depends: depends, Arch: pkgrecord.ArchAny}
}

func TestBootstrapAndAdd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w")

	w, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.AddPackage(pkg("a", "1.0-1")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w2.Close()

	got, ok := w2.Get("a")
	if !ok || got.Version != "1.0-1" {
		t.Errorf("got %+v, ok=%v", got, ok)
	}
	if w2.State().Revision() != 1 {
		t.Errorf("revision = %d, want 1", w2.State().Revision())
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	recordLine := `{"op":"add-package","args":{"name":"a","version":"1.0-1","depends":[],"external":false,"arch":"any"}}` + "\n"
	wantSize := int64(8 + len(recordLine))
	if info.Size() != wantSize {
		t.Errorf("file size = %d, want %d", info.Size(), wantSize)
	}
}

func TestMissingDependency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w")
	w, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	err = w.AddPackage(pkg("b", "0.1-1", "a"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errs.ErrMissingDependency) {
		t.Errorf("got %v, want ErrMissingDependency", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 8 {
		t.Errorf("file size = %d, want 8", info.Size())
	}
}

func TestUpdateMonotone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w")
	w, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.AddPackage(pkg("a", "1.0-1")); err != nil {
		t.Fatal(err)
	}
	if err := w.UpdatePackage(pkg("a", "1.0-1")); !errors.Is(err, errs.ErrVersionNotStrictlyIncreasing) {
		t.Errorf("same version: got %v", err)
	}
	if err := w.UpdatePackage(pkg("a", "1.0-2")); err != nil {
		t.Errorf("1.0-2 should succeed: %v", err)
	}
	if err := w.UpdatePackage(pkg("a", "0.9-9")); !errors.Is(err, errs.ErrVersionNotStrictlyIncreasing) {
		t.Errorf("lower version: got %v", err)
	}
}

func TestRemoveDependencyHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w")
	w, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.AddPackage(pkg("a", "1.0-1")); err != nil {
		t.Fatal(err)
	}
	if err := w.AddPackage(pkg("b", "1.0-1", "a")); err != nil {
		t.Fatal(err)
	}
	if err := w.RemovePackage("a"); !errors.Is(err, errs.ErrDependencyHeld) {
		t.Errorf("got %v, want ErrDependencyHeld", err)
	}
	if err := w.RemovePackage("b"); err != nil {
		t.Fatal(err)
	}
	if err := w.RemovePackage("a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := w.Get("a"); ok {
		t.Errorf("a should be removed")
	}
}

func TestReplayRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w")
	w, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	ops := []pkgrecord.Package{
		pkg("a", "1.0-1"),
		pkg("b", "1.0-1", "a"),
		pkg("c", "1.0-1", "a", "b"),
	}
	for _, p := range ops {
		if err := w.AddPackage(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.UpdatePackage(pkg("a", "2.0-1")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w2.Close()

	if w2.State().Revision() != 4 {
		t.Errorf("revision = %d, want 4", w2.State().Revision())
	}
	a, _ := w2.Get("a")
	if a.Version != "2.0-1" {
		t.Errorf("a.version = %s, want 2.0-1", a.Version)
	}
	if w2.State().Len() != 3 {
		t.Errorf("len = %d, want 3", w2.State().Len())
	}
}

func TestTruncatedTrailingRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w")
	w, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.AddPackage(pkg("a", "1.0-1")); err != nil {
		t.Fatal(err)
	}
	if err := w.AddPackage(pkg("b", "1.0-1")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Truncate the trailing newline and a few bytes of the last record.
	truncated := data[:len(data)-5]
	if err := os.WriteFile(path, truncated, 0644); err != nil {
		t.Fatal(err)
	}

	w2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w2.Close()

	if _, ok := w2.Get("a"); !ok {
		t.Errorf("a should survive truncation of b's record")
	}
	if _, ok := w2.Get("b"); ok {
		t.Errorf("b's truncated record should not be applied")
	}
	if w2.State().Revision() != 1 {
		t.Errorf("revision = %d, want 1", w2.State().Revision())
	}
}

func TestCorruptMiddleRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w")
	w, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.AddPackage(pkg("a", "1.0-1")); err != nil {
		t.Fatal(err)
	}
	if err := w.AddPackage(pkg("b", "1.0-1")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Corrupt a byte in the middle of the first record (after the magic).
	data[10] = '#'
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); !errors.Is(err, errs.ErrWalCorrupt) {
		t.Errorf("got %v, want ErrWalCorrupt", err)
	}
}

func TestWalBusy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w")
	w, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if _, err := Open(path); !errors.Is(err, errs.ErrWalBusy) {
		t.Errorf("got %v, want ErrWalBusy", err)
	}
}
