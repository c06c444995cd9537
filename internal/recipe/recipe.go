// Package recipe loads a build recipe from a directory of shell-syntax
// source, per spec §4.E. It shells out to bash to source the recipe and
// dump its declared variables, then parses the dump into a normalized
// record.
package recipe

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/open-edge-platform/repodb/internal/errs"
	"github.com/open-edge-platform/repodb/internal/utils/logger"
	"github.com/open-edge-platform/repodb/internal/validate"
)

// Recipe is the normalized output of the loader: a package's static
// metadata plus its four dependency lists.
type Recipe struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Release      int64    `json:"release"`
	Epoch        string   `json:"epoch,omitempty"`
	Arch         []string `json:"arch"`
	Depends      []string `json:"depends"`
	Makedepends  []string `json:"makedepends"`
	Checkdepends []string `json:"checkdepends"`
	Optdepends   []string `json:"optdepends"`
}

// declaredVars is the fixed set of shell variables the loader cares about.
var declaredVars = []string{
	"pkgname", "pkgver", "pkgrel", "epoch", "arch",
	"depends", "makedepends", "checkdepends", "optdepends",
}

// recipeFileNames are the candidate recipe file names searched for, in
// order, within the recipe directory.
var recipeFileNames = []string{"PKGBUILD", "recipe.sh", "recipe"}

// findRecipeFile locates the recipe file within dir.
func findRecipeFile(dir string) (string, error) {
	for _, name := range recipeFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: no recipe file (%v) found in %s", errs.ErrRecipeParseError, recipeFileNames, dir)
}

// Load reads the recipe file in dir, sources it in a bash subprocess, and
// parses its declared-variable dump into a Recipe.
func Load(dir string) (Recipe, error) {
	log := logger.Logger()

	recipeFile, err := findRecipeFile(dir)
	if err != nil {
		return Recipe{}, err
	}

	dump, err := dumpDeclaredVars(recipeFile)
	if err != nil {
		return Recipe{}, fmt.Errorf("%w: sourcing %s: %v", errs.ErrRecipeParseError, recipeFile, err)
	}

	vars, err := parseDeclareDump(dump)
	if err != nil {
		return Recipe{}, err
	}

	rec, err := normalize(vars)
	if err != nil {
		return Recipe{}, err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return Recipe{}, fmt.Errorf("%w: encoding recipe for validation: %v", errs.ErrRecipeParseError, err)
	}
	if err := validate.ValidateRecipeJSON(data); err != nil {
		return Recipe{}, fmt.Errorf("%w: %v", errs.ErrRecipeParseError, err)
	}

	log.Debugf("loaded recipe %s from %s", rec.Name, recipeFile)
	return rec, nil
}

// dumpDeclaredVars sources recipeFile in a fresh bash subprocess and emits
// `declare -p` output for the variables the loader understands. Errors
// about unset variables are discarded (2>/dev/null) since a recipe need
// not define all of them.
func dumpDeclaredVars(recipeFile string) (string, error) {
	dir := filepath.Dir(recipeFile)
	base := filepath.Base(recipeFile)

	script := fmt.Sprintf(
		"cd %s && source ./%s >/dev/null 2>&1 && declare -p %s 2>/dev/null",
		shellQuote(dir), shellQuote(base), joinQuoted(declaredVars),
	)

	cmd := exec.Command("bash", "-c", script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		// declare -p exits non-zero when none of the requested names are
		// set; that's a legitimate (if useless) recipe, not a failure.
		if len(out) == 0 {
			return "", nil
		}
	}
	return string(out), nil
}

func shellQuote(s string) string {
	return "'" + filepathEscapeSingleQuote(s) + "'"
}

func filepathEscapeSingleQuote(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\\', '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

func joinQuoted(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " "
		}
		out += n
	}
	return out
}
