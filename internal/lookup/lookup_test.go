package lookup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBaseNameStripsVersionReleaseArch(t *testing.T) {
	cases := map[string]string{
		"python3-3.13.0-1.x86_64.rpm": "python3",
		"glibc-2.39-5.x86_64.rpm":     "glibc",
		"zlib-ng-2.2.1-1.x86_64.rpm":  "zlib-ng",
		"make-4.4.1-2.x86_64.rpm":     "make",
	}
	for fn, want := range cases {
		if got := baseName(fn); got != want {
			t.Errorf("baseName(%q) = %q, want %q", fn, got, want)
		}
	}
}

func TestFindAbsentPackageReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "")
	_, found, err := l.Find("nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected found=false for a package never installed on the host")
	}
}

func TestFindAgainstMissingDBDirIsAbsentNotError(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "does-not-exist"), "")
	_, found, err := l.Find("anything")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected found=false when the host db directory itself is absent")
	}
}

func TestFindSkipsNonRPMFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not a package"), 0644); err != nil {
		t.Fatal(err)
	}
	l := New(dir, "")
	_, found, err := l.Find("readme")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("expected non-.rpm files to be ignored by the host db scan")
	}
}
