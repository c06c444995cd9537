package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RepoName != Default().RepoName {
		t.Errorf("expected default repo name, got %q", cfg.RepoName)
	}
}

func TestLoadValidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repo.toml")
	contents := `
repo_name = "demo"
wal_path = "./demo.wal"
recipe_dir = "./recipes"
package_dir = "./packages"
dependency_dbs = ["core", "extra"]
license = "MIT"
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RepoName != "demo" {
		t.Errorf("repo_name = %q, want demo", cfg.RepoName)
	}
	if len(cfg.DependencyDBs) != 2 || cfg.DependencyDBs[0] != "core" {
		t.Errorf("dependency_dbs = %v", cfg.DependencyDBs)
	}
	if cfg.License != "MIT" {
		t.Errorf("license = %q, want MIT", cfg.License)
	}
}

func TestLoadRejectsMissingRequiredField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	// Omitting wal_path entirely would not fail: Load starts from
	// Default(), which fills it in. So here we blank it instead, which the
	// schema (minLength 1) and RepoConfig.Validate both reject.
	contents := `
repo_name = "demo"
wal_path = ""
recipe_dir = "./recipes"
package_dir = "./packages"
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for empty wal_path")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roundtrip.toml")

	cfg := Default()
	cfg.RepoName = "roundtrip-repo"
	cfg.DependencyDBs = []string{"core"}
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.RepoName != "roundtrip-repo" {
		t.Errorf("repo_name = %q, want roundtrip-repo", loaded.RepoName)
	}
}

func TestGlobalDefaultsWhenUnset(t *testing.T) {
	SetGlobal(nil)
	if Global().RepoName != Default().RepoName {
		t.Errorf("Global() should fall back to Default() when unset")
	}
}
