package recipe

import (
	"errors"
	"testing"

	"github.com/open-edge-platform/repodb/internal/errs"
)

func TestNormalizeMissingArraysBecomeEmpty(t *testing.T) {
	vars := map[string]value{
		"pkgname": {scalar: "hello"},
		"pkgver":  {scalar: "2.12"},
		"pkgrel":  {scalar: "1"},
	}
	rec, err := normalize(vars)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Depends) != 0 || len(rec.Makedepends) != 0 {
		t.Errorf("expected empty dependency lists, got %+v", rec)
	}
	if len(rec.Arch) != 1 || rec.Arch[0] != "any" {
		t.Errorf("expected default arch [any], got %v", rec.Arch)
	}
}

func TestNormalizeMissingPkgverFails(t *testing.T) {
	vars := map[string]value{
		"pkgname": {scalar: "hello"},
	}
	_, err := normalize(vars)
	if !errors.Is(err, errs.ErrRecipeParseError) {
		t.Errorf("got %v, want ErrRecipeParseError", err)
	}
}

func TestNormalizeInvalidPkgrelFails(t *testing.T) {
	vars := map[string]value{
		"pkgname": {scalar: "hello"},
		"pkgver":  {scalar: "1.0"},
		"pkgrel":  {scalar: "0"},
	}
	_, err := normalize(vars)
	if !errors.Is(err, errs.ErrRecipeParseError) {
		t.Errorf("got %v, want ErrRecipeParseError for pkgrel=0", err)
	}
}

func TestNormalizeSplitPackageArrayPkgname(t *testing.T) {
	vars := map[string]value{
		"pkgname": {isArray: true, list: []string{"hello-libs", "hello-bin"}},
		"pkgver":  {scalar: "2.12"},
		"pkgrel":  {scalar: "1"},
	}
	rec, err := normalize(vars)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Name != "hello-libs" {
		t.Errorf("name = %q, want hello-libs", rec.Name)
	}
}
