package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultRepositoryURL is the artifact repository queried when no override is
// configured.
const DefaultRepositoryURL = "https://www.jetbrains.com/intellij-repository"

// Config captures resolution settings for one ideadep invocation. It is
// passed explicitly into resolver construction; there is no ambient global
// configuration state.
type Config struct {
	Version int `yaml:"version"`

	// RepositoryURL is the base URL of the maven2-layout artifact repository.
	RepositoryURL string `yaml:"repository_url"`

	// CacheDir overrides the cache root. Empty means the per-user default
	// (or the IDEADEP_CACHE_DIR environment variable).
	CacheDir string `yaml:"cache_dir,omitempty"`

	// CheckVersion enables build-marker content comparison when validating a
	// cached extracted tree. When false a marker's existence is enough.
	CheckVersion bool `yaml:"check_version"`

	// Context tags log lines so parallel invocations can be told apart.
	Context string `yaml:"context,omitempty"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version:       1,
		RepositoryURL: DefaultRepositoryURL,
		CheckVersion:  true,
	}
}

// Load reads a configuration file, applying defaults for absent fields. A
// missing file yields the default configuration.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks structural invariants.
func (c Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version %d", c.Version)
	}
	if c.RepositoryURL == "" {
		return errors.New("repository_url must not be empty")
	}
	return nil
}
