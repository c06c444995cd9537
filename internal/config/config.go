// Package config loads and holds the repository engine's configuration:
// repository name, WAL path, recipe/package directories, dependency
// database names, and the exporter's placeholder metadata, per §E1.b.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/open-edge-platform/repodb/internal/utils/logger"
	"github.com/open-edge-platform/repodb/internal/utils/security"
	"github.com/open-edge-platform/repodb/internal/validate"
)

var log = logger.Logger()

// RepoConfig holds the settings a repodb command needs to operate on one
// repository: where its WAL lives, where recipes and built packages are
// found, which other package databases it depends on, and the metadata
// placeholders the exporter writes into each desc stanza.
type RepoConfig struct {
	RepoName      string   `toml:"repo_name" json:"repo_name"`
	WalPath       string   `toml:"wal_path" json:"wal_path"`
	RecipeDir     string   `toml:"recipe_dir" json:"recipe_dir"`
	PackageDir    string   `toml:"package_dir" json:"package_dir"`
	DependencyDBs []string `toml:"dependency_dbs,omitempty" json:"dependency_dbs,omitempty"`

	URL         string `toml:"url,omitempty" json:"url,omitempty"`
	License     string `toml:"license,omitempty" json:"license,omitempty"`
	Packager    string `toml:"packager,omitempty" json:"packager,omitempty"`
	Description string `toml:"description,omitempty" json:"description,omitempty"`

	LogLevel string `toml:"log_level,omitempty" json:"log_level,omitempty"`
	LogFile  string `toml:"log_file,omitempty" json:"log_file,omitempty"`
}

var (
	globalInstance *RepoConfig
	globalMutex    sync.RWMutex
)

// SetGlobal installs cfg as the process-wide configuration.
func SetGlobal(cfg *RepoConfig) {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalInstance = cfg
}

// Global returns the process-wide configuration, defaulting to Default()
// if none has been set yet.
func Global() *RepoConfig {
	globalMutex.RLock()
	cfg := globalInstance
	globalMutex.RUnlock()
	if cfg != nil {
		return cfg
	}

	cfg = Default()
	SetGlobal(cfg)
	return cfg
}

// Default returns the zero-config defaults: a repository named "repo" in
// the current directory.
func Default() *RepoConfig {
	return &RepoConfig{
		RepoName:   "repo",
		WalPath:    "./repo.wal",
		RecipeDir:  "./recipes",
		PackageDir: "./packages",
		LogLevel:   "info",
	}
}

// Load reads a RepoConfig from a TOML file at path, filling in Default()
// for any field the file omits, then validates the result against
// schema/config.schema.json.
func Load(path string) (*RepoConfig, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			log.Warnf("config file %s not found; using defaults", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("accessing config file %s: %w", path, err)
	}

	data, err := security.SafeReadFile(path, security.RejectSymlinks)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing TOML config %s: %w", path, err)
	}

	if err := cfg.validateAgainstSchema(); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Infof("loaded repo config %q from %s", cfg.RepoName, path)
	return cfg, nil
}

// Save writes cfg to path as TOML, after validating it.
func (c *RepoConfig) Save(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Errorf("marshaling config to TOML: %w", err)
	}

	if err := security.SafeWriteFile(path, []byte(b.String()), 0o644, security.RejectSymlinks); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks required fields and normalizes the logging level.
func (c *RepoConfig) Validate() error {
	if c.RepoName == "" {
		return fmt.Errorf("repo_name cannot be empty")
	}
	if c.WalPath == "" {
		return fmt.Errorf("wal_path cannot be empty")
	}
	if c.RecipeDir == "" {
		return fmt.Errorf("recipe_dir cannot be empty")
	}
	if c.PackageDir == "" {
		return fmt.Errorf("package_dir cannot be empty")
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	validLevels := []string{"debug", "info", "warn", "error"}
	valid := false
	for _, l := range validLevels {
		if c.LogLevel == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.LogLevel, strings.Join(validLevels, ", "))
	}
	return nil
}

// validateAgainstSchema re-encodes c as JSON and runs it through
// schema/config.schema.json, catching unknown or malformed fields the
// TOML decode alone wouldn't.
func (c *RepoConfig) validateAgainstSchema() error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("converting config to JSON for validation: %w", err)
	}
	return validate.ValidateConfigJSON(data)
}
