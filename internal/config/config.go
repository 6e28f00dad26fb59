package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SourceConfig describes one subscribed calendar to import on the
// refresh schedule.
type SourceConfig struct {
	// ID is an internal identifier used for caching and logging.
	ID string `yaml:"id"`
	// Name is an optional fallback display name, used when the
	// document declares no calendar name of its own.
	Name string `yaml:"name,omitempty"`
	// Location is a local .ics path or an http(s) URL.
	Location string `yaml:"location"`
}

// Config is the top-level application configuration.
type Config struct {
	// StorePath is the JSON task store file.
	StorePath string `yaml:"store_path"`

	// CacheDir holds the HTTP cache for remote sources.
	CacheDir string `yaml:"cache_dir"`

	// WatchDir, when non-empty, is a drop directory: any .ics file
	// created or modified there is imported automatically.
	WatchDir string `yaml:"watch_dir,omitempty"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// re-importing the configured sources in watch mode.
	RefreshCron string `yaml:"refresh"`

	// Sources is the list of subscribed calendars.
	Sources []SourceConfig `yaml:"sources"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		StorePath:   "./var/tasks.json",
		CacheDir:    "./var/ics-cache",
		RefreshCron: "*/15 * * * *",
		Sources:     []SourceConfig{},
	}
}

// Normalize fills in missing values so partially-filled configs from
// older versions still behave.
func (c *Config) Normalize() {
	if c.StorePath == "" {
		c.StorePath = "./var/tasks.json"
	}
	if c.CacheDir == "" {
		c.CacheDir = "./var/ics-cache"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
}

// Load loads configuration from the given YAML path. A missing file is
// first-run: a default config is written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".icstask-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
