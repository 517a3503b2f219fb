// Package file loads parlsync configuration from a TOML file.
// Missing file or missing keys fall back to defaults, so a bare
// installation works with no configuration at all.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// Config is the full parlsync configuration.
type Config struct {
	// DataDir holds the archives and the run journal.
	DataDir string `toml:"data_dir"`

	API  APIConfig  `toml:"api"`
	Sync SyncConfig `toml:"sync"`
	CRM  CRMConfig  `toml:"crm"`
}

// APIConfig configures the Parliament API client.
type APIConfig struct {
	MembersBaseURL    string  `toml:"members_base_url"`
	QuestionsBaseURL  string  `toml:"questions_base_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RatePerSecond     float64 `toml:"rate_per_second"`
	MaxRetries        int     `toml:"max_retries"`
	MaxMemberID       int     `toml:"max_member_id"`
	MaxConstituencyID int     `toml:"max_constituency_id"`
}

// SyncConfig configures the sync engine.
type SyncConfig struct {
	// Concurrency bounds parallel window fetches and id probes.
	Concurrency int `toml:"concurrency"`
}

// CRMConfig configures the CiviCRM sink. Push is disabled while the keys
// are empty.
type CRMConfig struct {
	BaseURL string `toml:"base_url"`
	SiteKey string `toml:"site_key"`
	UserKey string `toml:"user_key"`
}

// Defaults for the bounded id-space sweeps. Member and constituency ids
// have been observed to stay below 5000.
const (
	DefaultMaxMemberID       = 5000
	DefaultMaxConstituencyID = 5000
	DefaultConcurrency       = 8
)

// DefaultDataDir resolves the base directory for archives, checking
// PARLSYNC_DIR first, then the XDG data home.
func DefaultDataDir() string {
	if explicit := os.Getenv("PARLSYNC_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()
	dataHome := xdg.DataHome
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "parlsync")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "parlsync")
}

// DefaultConfigPath returns the config file location inside the data dir.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDataDir(), "config.toml")
}

// Load reads the configuration at path, or the default path when empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	if cfg.API.MaxMemberID == 0 {
		cfg.API.MaxMemberID = DefaultMaxMemberID
	}
	if cfg.API.MaxConstituencyID == 0 {
		cfg.API.MaxConstituencyID = DefaultMaxConstituencyID
	}
	if cfg.Sync.Concurrency == 0 {
		cfg.Sync.Concurrency = DefaultConcurrency
	}
}

// ArchivePath returns the on-disk location of one archive file.
func (c *Config) ArchivePath(filename string) string {
	return filepath.Join(c.DataDir, filename)
}
