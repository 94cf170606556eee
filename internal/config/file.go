package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// EnvCookie overrides the cookie from the config file.
const EnvCookie = "BILI_COOKIE"

// FileConfig is the CLI configuration read from YAML.
type FileConfig struct {
	Cookie      string   `yaml:"cookie,omitempty"`
	DownloadDir string   `yaml:"download_dir,omitempty"`
	MaxParallel int      `yaml:"max_parallel,omitempty"`
	SaltMode    SaltMode `yaml:"salt_mode,omitempty"`
	Timeout     string   `yaml:"timeout,omitempty"`
	// StateFile holds the CLI's creator list.
	StateFile string `yaml:"state_file,omitempty"`
}

// DefaultConfigPath returns the XDG config file location.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "bili-audio", "config.yaml")
}

// DefaultStatePath returns the XDG data file used for CLI state.
func DefaultStatePath() string {
	return filepath.Join(xdg.DataHome, "bili-audio", "state.json")
}

// ResolvedCookie returns the env cookie if set, else the file value.
func (c *FileConfig) ResolvedCookie() string {
	if v := os.Getenv(EnvCookie); v != "" {
		return v
	}
	return c.Cookie
}

// TimeoutDuration returns the per-request timeout, 15s by default.
func (c *FileConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// GetMaxParallel returns the parallel download limit, clamped to 1..10.
func (c *FileConfig) GetMaxParallel() int {
	switch {
	case c.MaxParallel <= 0:
		return DefaultMaxParallel
	case c.MaxParallel > 10:
		return 10
	}
	return c.MaxParallel
}

// GetDownloadDir returns the configured directory or the desktop default.
func (c *FileConfig) GetDownloadDir() string {
	if c.DownloadDir != "" {
		return c.DownloadDir
	}
	if dir := xdg.UserDirs.Desktop; dir != "" {
		return filepath.Join(dir, DefaultFolderName)
	}
	return DefaultFolderName
}

// GetStateFile returns the state file path.
func (c *FileConfig) GetStateFile() string {
	if c.StateFile != "" {
		return c.StateFile
	}
	return DefaultStatePath()
}

// LoadFile reads the YAML config at path (DefaultConfigPath when empty).
// A missing file yields an empty config.
func LoadFile(path string) (*FileConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the salt mode and timeout values.
func (c *FileConfig) Validate() error {
	switch c.SaltMode {
	case "", SaltConcat, SaltMixin:
	default:
		return fmt.Errorf("unknown salt_mode %q (valid: concat, mixin)", c.SaltMode)
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
	}
	return nil
}
