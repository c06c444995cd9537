package recipe

import (
	"fmt"

	"github.com/open-edge-platform/repodb/internal/errs"
)

// normalize converts the raw declared-variable map into a Recipe. Missing
// dependency arrays become empty and a missing epoch becomes the empty
// string; a missing arch becomes [any] and a missing pkgrel becomes 1; a
// missing pkgname or pkgver is an error. `pkgname` is tolerated as an array (the
// supplementary `declare -A`/split-package tolerance of §E3.4): the
// first declared name is taken.
func normalize(vars map[string]value) (Recipe, error) {
	name, err := scalarOrFirst(vars, "pkgname")
	if err != nil {
		return Recipe{}, err
	}
	if name == "" {
		return Recipe{}, fmt.Errorf("%w: recipe has no pkgname", errs.ErrRecipeParseError)
	}

	version, err := scalarOrFirst(vars, "pkgver")
	if err != nil {
		return Recipe{}, err
	}
	if version == "" {
		return Recipe{}, fmt.Errorf("%w: recipe %s has no pkgver", errs.ErrRecipeParseError, name)
	}

	relStr, err := scalarOrFirst(vars, "pkgrel")
	if err != nil {
		return Recipe{}, err
	}
	if relStr == "" {
		relStr = "1"
	}
	release, err := parseInt(relStr)
	if err != nil || release < 1 {
		return Recipe{}, fmt.Errorf("%w: recipe %s has invalid pkgrel %q", errs.ErrRecipeParseError, name, relStr)
	}

	epoch, err := scalarOrFirst(vars, "epoch")
	if err != nil {
		return Recipe{}, err
	}

	arch := list(vars, "arch")
	if len(arch) == 0 {
		arch = []string{"any"}
	}

	return Recipe{
		Name:         name,
		Version:      version,
		Release:      release,
		Epoch:        epoch,
		Arch:         arch,
		Depends:      list(vars, "depends"),
		Makedepends:  list(vars, "makedepends"),
		Checkdepends: list(vars, "checkdepends"),
		Optdepends:   list(vars, "optdepends"),
	}, nil
}

// scalarOrFirst returns a declared scalar's value, or the first entry of
// a declared array sharing that name (the split-package/associative-array
// tolerance), or "" if the variable was not declared at all.
func scalarOrFirst(vars map[string]value, name string) (string, error) {
	v, ok := vars[name]
	if !ok {
		return "", nil
	}
	if !v.isArray {
		return v.scalar, nil
	}
	if len(v.list) == 0 {
		return "", nil
	}
	return v.list[0], nil
}

// list returns a declared array's values, or an empty slice if the
// variable was not declared or was declared as a scalar.
func list(vars map[string]value, name string) []string {
	v, ok := vars[name]
	if !ok || !v.isArray {
		return []string{}
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out
}
