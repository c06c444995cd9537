// Package export builds the gzip(tar) snapshot archive described in
// spec §4.H: one directory + desc file per non-external package, with
// content hashes and an uncompressed-size figure computed by streaming
// through each package's inner zstd/tar archive.
package export

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/open-edge-platform/repodb/internal/errs"
	"github.com/open-edge-platform/repodb/internal/pkgrecord"
	"github.com/open-edge-platform/repodb/internal/state"
	"github.com/open-edge-platform/repodb/internal/utils/fsutil"
	"github.com/open-edge-platform/repodb/internal/utils/logger"
)

// innerArchiveExcluded are the inner-archive entries excluded from ISIZE.
var innerArchiveExcluded = map[string]bool{
	".BUILDINFO": true,
	".MTREE":     true,
	".PKGINFO":   true,
}

// Placeholders carries the exporter's configuration-sourced metadata:
// DESC, URL, LICENSE, and PACKAGER are not derivable from State alone.
type Placeholders struct {
	Desc     string
	URL      string
	License  string
	Packager string
}

// Options configures one Export call.
type Options struct {
	RepoName   string
	PackageDir string
	OutDir     string
	Placeholders
}

// ArchiveName returns the normative snapshot file name for a repo at the
// given revision.
func ArchiveName(repoName string, revision uint64) string {
	return fmt.Sprintf("%s-r%d.db.tar.gz", repoName, revision)
}

// Export writes a snapshot archive for every non-external package in s
// to opts.OutDir, returning its full path. On any failure it removes the
// partial staging file and leaves opts.OutDir untouched.
func Export(s *state.State, opts Options) (string, error) {
	log := logger.Logger()

	finalPath := filepath.Join(opts.OutDir, ArchiveName(opts.RepoName, s.Revision()))

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", opts.OutDir, err)
	}

	stagingName := filepath.Join(opts.OutDir, ".export-"+uuid.NewString()+".tmp")
	f, err := os.Create(stagingName)
	if err != nil {
		return "", fmt.Errorf("creating staging file: %w", err)
	}

	if err := writeArchive(f, s, opts); err != nil {
		f.Close()
		os.Remove(stagingName)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(stagingName)
		return "", fmt.Errorf("closing staging file: %w", err)
	}

	if err := os.Rename(stagingName, finalPath); err != nil {
		os.Remove(stagingName)
		return "", fmt.Errorf("finalizing archive: %w", err)
	}

	log.Infof("exported repo %q revision %d to %s", opts.RepoName, s.Revision(), finalPath)
	return finalPath, nil
}

func writeArchive(w io.Writer, s *state.State, opts Options) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	buildDate := time.Now().Unix()

	for _, name := range s.Names() {
		p, _ := s.Get(name)
		if p.External {
			continue
		}
		if err := writePackageEntry(tw, p, opts, buildDate); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("closing gzip writer: %w", err)
	}
	return nil
}

func writePackageEntry(tw *tar.Writer, p pkgrecord.Package, opts Options, buildDate int64) error {
	filename := fmt.Sprintf("%s-%s-%s.pkg.tar.zst", p.Name, p.Version, p.Arch)
	pkgPath := filepath.Join(opts.PackageDir, filename)

	if ok, err := fsutil.IsSubPath(opts.PackageDir, pkgPath); err != nil || !ok {
		return fmt.Errorf("%w: %s resolves outside package directory %s", errs.ErrPackageFileMissing, p.Name, opts.PackageDir)
	}

	info, err := os.Stat(pkgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s has no package file at %s", errs.ErrPackageFileMissing, p.Name, pkgPath)
		}
		return fmt.Errorf("statting package file %s: %w", pkgPath, err)
	}
	csize := info.Size()

	sha256sum, err := hashFile(pkgPath)
	if err != nil {
		return err
	}

	isize, err := innerArchiveSize(pkgPath)
	if err != nil {
		return err
	}

	entryDir := fmt.Sprintf("%s-%s", p.Name, p.Version)
	if err := tw.WriteHeader(&tar.Header{
		Name:     entryDir + "/",
		Typeflag: tar.TypeDir,
		Mode:     0o755,
		ModTime:  time.Now(),
	}); err != nil {
		return fmt.Errorf("writing directory entry for %s: %w", p.Name, err)
	}

	desc := buildDescStanza(p, descFields{
		Filename:  filename,
		CSize:     csize,
		ISize:     isize,
		SHA256Sum: sha256sum,
		BuildDate: buildDate,
		URL:       opts.URL,
		License:   opts.License,
		Packager:  opts.Packager,
		Desc:      opts.Desc,
	})

	if err := tw.WriteHeader(&tar.Header{
		Name:     entryDir + "/desc",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len(desc)),
		ModTime:  time.Now(),
	}); err != nil {
		return fmt.Errorf("writing desc header for %s: %w", p.Name, err)
	}
	if _, err := tw.Write([]byte(desc)); err != nil {
		return fmt.Errorf("writing desc contents for %s: %w", p.Name, err)
	}

	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// innerArchiveSize streams the zstd-compressed tar archive at path and
// sums the size of every entry except the metadata files excluded by
// spec §4.H.
func innerArchiveSize(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", errs.ErrInnerArchiveCorrupt, path, err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	var total int64
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", errs.ErrInnerArchiveCorrupt, path, err)
		}
		if innerArchiveExcluded[hdr.Name] {
			continue
		}
		if hdr.Typeflag == tar.TypeReg {
			total += hdr.Size
		}
	}
	return total, nil
}
