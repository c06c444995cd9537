package export

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/open-edge-platform/repodb/internal/errs"
	"github.com/open-edge-platform/repodb/internal/pkgrecord"
	"github.com/open-edge-platform/repodb/internal/state"
)

// writeFakePackage builds a minimal zstd-compressed tar archive at path
// containing one regular file plus a .PKGINFO entry that must be
// excluded from ISIZE.
func writeFakePackage(t *testing.T, path string, payload []byte) {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(zw)

	if err := tw.WriteHeader(&tar.Header{Name: "usr/bin/hello", Typeflag: tar.TypeReg, Size: int64(len(payload)), Mode: 0o755}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(payload); err != nil {
		t.Fatal(err)
	}

	pkginfo := []byte("pkgname = python-test\n")
	if err := tw.WriteHeader(&tar.Header{Name: ".PKGINFO", Typeflag: tar.TypeReg, Size: int64(len(pkginfo)), Mode: 0o644}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(pkginfo); err != nil {
		t.Fatal(err)
	}

	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

// readArchiveEntries ungzips and untars path, returning a name->contents
// map for every regular file.
func readArchiveEntries(t *testing.T, path string) map[string][]byte {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	out := make(map[string][]byte)
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(tr); err != nil {
			t.Fatal(err)
		}
		out[hdr.Name] = buf.Bytes()
	}
	return out
}

// TestExportDeterminism exercises spec.md's scenario 5: python (external)
// is excluded, python-test's desc entry is present with the documented
// first three desc lines, and the archive is named for revision 2.
func TestExportDeterminism(t *testing.T) {
	s := state.New()
	s.Insert(pkgrecord.Package{
		Name: "python", Version: "3.13.0-1", Arch: "any", External: true,
	}.WithDefaults())
	s.Insert(pkgrecord.Package{
		Name: "python-test", Version: "0.0.0-1", Arch: "any",
		Depends: []string{"python"},
	}.WithDefaults())

	packageDir := t.TempDir()
	writeFakePackage(t, filepath.Join(packageDir, "python-test-0.0.0-1-any.pkg.tar.zst"), []byte("hello world"))

	outDir := t.TempDir()
	path, err := Export(s, Options{
		RepoName:   "myrepo",
		PackageDir: packageDir,
		OutDir:     outDir,
		Placeholders: Placeholders{
			Desc: "a test package", URL: "https://example.invalid", License: "MIT", Packager: "tester",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	wantName := "myrepo-r2.db.tar.gz"
	if filepath.Base(path) != wantName {
		t.Errorf("archive name = %s, want %s", filepath.Base(path), wantName)
	}

	entries := readArchiveEntries(t, path)
	descContents, ok := entries["python-test-0.0.0-1/desc"]
	if !ok {
		t.Fatalf("expected python-test-0.0.0-1/desc entry, got %v", keys(entries))
	}
	if _, ok := entries["python-3.13.0-1/desc"]; ok {
		t.Error("external package python must be excluded from the archive")
	}

	sc := bufio.NewScanner(strings.NewReader(string(descContents)))
	var lines []string
	for i := 0; i < 3 && sc.Scan(); i++ {
		lines = append(lines, sc.Text())
	}
	want := []string{"%FILENAME%", "python-test-0.0.0-1-any.pkg.tar.zst", ""}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("first three desc lines = %v, want %v", lines, want)
	}
}

func TestExportMissingPackageFileFails(t *testing.T) {
	s := state.New()
	s.Insert(pkgrecord.Package{Name: "orphan", Version: "1.0-1", Arch: "any"}.WithDefaults())

	outDir := t.TempDir()
	_, err := Export(s, Options{
		RepoName:   "r",
		PackageDir: t.TempDir(),
		OutDir:     outDir,
	})
	if err == nil {
		t.Fatal("expected PackageFileMissing error")
	}
	if !errors.Is(err, errs.ErrPackageFileMissing) {
		t.Errorf("got %v, want ErrPackageFileMissing", err)
	}

	leftover, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(leftover) != 0 {
		t.Errorf("expected no partial output left behind, found %v", leftover)
	}
}

func TestExportComputesISizeExcludingMetadata(t *testing.T) {
	s := state.New()
	s.Insert(pkgrecord.Package{Name: "pkg", Version: "1.0-1", Arch: "any"}.WithDefaults())

	packageDir := t.TempDir()
	payload := []byte("0123456789")
	writeFakePackage(t, filepath.Join(packageDir, "pkg-1.0-1-any.pkg.tar.zst"), payload)

	outDir := t.TempDir()
	path, err := Export(s, Options{RepoName: "r", PackageDir: packageDir, OutDir: outDir})
	if err != nil {
		t.Fatal(err)
	}

	entries := readArchiveEntries(t, path)
	desc := string(entries["pkg-1.0-1/desc"])
	if !strings.Contains(desc, "%ISIZE%\n10\n") {
		t.Errorf("expected ISIZE 10 (excluding .PKGINFO), got:\n%s", desc)
	}
}

// TestExportWithEmptyPlaceholdersStillEmitsScalarLine covers the
// zero-config export-database path, where DESC/URL/LICENSE/PACKAGER are
// all "". Spec §4.H requires exactly one value line per scalar even when
// that value is blank, so the stanza must carry the blank value line in
// addition to its terminating blank line.
func TestExportWithEmptyPlaceholdersStillEmitsScalarLine(t *testing.T) {
	s := state.New()
	s.Insert(pkgrecord.Package{Name: "pkg", Version: "1.0-1", Arch: "any"}.WithDefaults())

	packageDir := t.TempDir()
	writeFakePackage(t, filepath.Join(packageDir, "pkg-1.0-1-any.pkg.tar.zst"), []byte("hi"))

	outDir := t.TempDir()
	path, err := Export(s, Options{RepoName: "r", PackageDir: packageDir, OutDir: outDir})
	if err != nil {
		t.Fatal(err)
	}

	desc := string(readArchiveEntries(t, path)["pkg-1.0-1/desc"])
	if !strings.Contains(desc, "%DESC%\n\n\n%CSIZE%") {
		t.Errorf("expected %%DESC%% to carry a blank value line before its terminator, got:\n%s", desc)
	}
}

func keys(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
