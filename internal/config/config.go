// Package config loads tasktime's runtime configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

const (
	// EnvPrefix prefixes every environment override, e.g. TASKTIME_DB_PATH.
	EnvPrefix = "TASKTIME"
	FileName  = "config.toml"
	appDir    = "tasktime"
)

// Config holds process-level settings. Behavior the user tunes while
// working (idle timeout, daily goal, week start) lives in the settings
// table instead.
type Config struct {
	DBPath    string `toml:"db_path" envconfig:"DB_PATH"`
	LogLevel  string `toml:"log_level" envconfig:"LOG_LEVEL"`
	LogFile   string `toml:"log_file" envconfig:"LOG_FILE"`
	ExportDir string `toml:"export_dir" envconfig:"EXPORT_DIR"`
}

// DefaultDir is the per-user directory holding the database, config and log.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, appDir), nil
}

// Defaults returns the built-in configuration rooted at dir.
func Defaults(dir string) Config {
	exportDir, err := os.UserHomeDir()
	if err != nil {
		exportDir = "."
	}
	return Config{
		DBPath:    filepath.Join(dir, "tasktime.db"),
		LogLevel:  "info",
		LogFile:   filepath.Join(dir, "tasktime.log"),
		ExportDir: exportDir,
	}
}

// Load merges defaults <- TOML file <- environment. An empty path means
// config.toml in DefaultDir. A missing file is not an error.
func Load(path string) (Config, error) {
	dir, err := DefaultDir()
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		path = filepath.Join(dir, FileName)
	}
	return load(Defaults(dir), path)
}

func load(cfg Config, path string) (Config, error) {
	fileCfg, err := loadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	if fileCfg != nil {
		cfg = merge(cfg, *fileCfg)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config from environment: %w", err)
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// merge overlays the non-empty fields of override onto base.
func merge(base, override Config) Config {
	if override.DBPath != "" {
		base.DBPath = expandHome(override.DBPath)
	}
	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}
	if override.LogFile != "" {
		base.LogFile = expandHome(override.LogFile)
	}
	if override.ExportDir != "" {
		base.ExportDir = expandHome(override.ExportDir)
	}
	return base
}

func expandHome(p string) string {
	if len(p) < 2 || p[:2] != "~/" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// Template is the commented config file written by `tasktime config init`.
func Template(cfg Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return "# tasktime configuration. Environment variables prefixed with " +
		EnvPrefix + "_ take precedence.\n" + string(data), nil
}
