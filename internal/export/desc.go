package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/open-edge-platform/repodb/internal/pkgrecord"
)

// descFields carries the per-package values not already on
// pkgrecord.Package: everything computed from the on-disk package file
// plus the exporter's configuration-sourced placeholders.
type descFields struct {
	Filename  string
	CSize     int64
	ISize     int64
	SHA256Sum string
	BuildDate int64
	URL       string
	License   string
	Packager  string
	Desc      string
}

// buildDescStanza renders the desc file for p in the fixed stanza order
// required by spec §4.H: FILENAME, NAME, BASE, VERSION, DESC, CSIZE,
// ISIZE, SHA256SUM, URL, LICENSE, ARCH, BUILDDATE, PACKAGER, DEPENDS,
// MAKEDEPENDS. MAKEDEPENDS is always empty in v1.
func buildDescStanza(p pkgrecord.Package, f descFields) string {
	var b strings.Builder

	scalarStanza(&b, "FILENAME", f.Filename)
	scalarStanza(&b, "NAME", p.Name)
	scalarStanza(&b, "BASE", p.Name)
	scalarStanza(&b, "VERSION", p.Version)
	scalarStanza(&b, "DESC", f.Desc)
	scalarStanza(&b, "CSIZE", strconv.FormatInt(f.CSize, 10))
	scalarStanza(&b, "ISIZE", strconv.FormatInt(f.ISize, 10))
	scalarStanza(&b, "SHA256SUM", f.SHA256Sum)
	scalarStanza(&b, "URL", f.URL)
	scalarStanza(&b, "LICENSE", f.License)
	scalarStanza(&b, "ARCH", p.Arch)
	scalarStanza(&b, "BUILDDATE", strconv.FormatInt(f.BuildDate, 10))
	scalarStanza(&b, "PACKAGER", f.Packager)
	stanza(&b, "DEPENDS", p.Depends)
	stanza(&b, "MAKEDEPENDS", nil)

	return b.String()
}

// scalarStanza writes one %KEY% block for a scalar field: the key line,
// exactly one value line (blank or not), and a trailing blank line, per
// spec §4.H's "exactly one line for a scalar".
func scalarStanza(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%%%s%%\n", key)
	b.WriteString(value)
	b.WriteByte('\n')
	b.WriteByte('\n')
}

// stanza writes one %KEY% block for a list field: the key line, one line
// per non-empty value, and a trailing blank line. An empty list (nil or
// zero-length, as MAKEDEPENDS always is in v1) still gets its header and
// blank line with no value lines in between.
func stanza(b *strings.Builder, key string, values []string) {
	fmt.Fprintf(b, "%%%s%%\n", key)
	for _, v := range values {
		if v == "" {
			continue
		}
		b.WriteString(v)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}
