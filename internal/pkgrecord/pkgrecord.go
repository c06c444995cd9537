// Package pkgrecord defines the Package value type tracked by the
// repository state engine (spec §4.B).
package pkgrecord

// Architecture tags recognized by the exporter and the graph. Any is the
// default when a recipe does not declare one.
const (
	ArchAny = "any"
)

// Package is an immutable value: name, version string, ordered direct
// dependency names, whether it is supplied by the host distribution, and
// its target architecture. Package carries no methods with side effects
// and is freely cloneable by value.
type Package struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Depends  []string `json:"depends"`
	External bool     `json:"external"`
	Arch     string   `json:"arch"`
}

// Equal reports structural equality of two Package values.
func (p Package) Equal(other Package) bool {
	if p.Name != other.Name || p.Version != other.Version ||
		p.External != other.External || p.Arch != other.Arch {
		return false
	}
	if len(p.Depends) != len(other.Depends) {
		return false
	}
	for i, d := range p.Depends {
		if other.Depends[i] != d {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of p; the returned value shares no backing
// array with p.
func (p Package) Clone() Package {
	depends := make([]string, len(p.Depends))
	copy(depends, p.Depends)
	p.Depends = depends
	return p
}

// WithDefaults fills in the documented normalizations: a blank Arch
// becomes ArchAny, and a nil Depends becomes an empty (non-nil) slice.
func (p Package) WithDefaults() Package {
	if p.Arch == "" {
		p.Arch = ArchAny
	}
	if p.Depends == nil {
		p.Depends = []string{}
	}
	return p
}
