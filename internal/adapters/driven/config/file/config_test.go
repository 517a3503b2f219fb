package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))

	require.NoError(t, err)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, DefaultMaxMemberID, cfg.API.MaxMemberID)
	assert.Equal(t, DefaultConcurrency, cfg.Sync.Concurrency)
	assert.Empty(t, cfg.CRM.SiteKey)
}

func TestLoad_ParsesAndFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir = "/srv/parlsync"

[api]
rate_per_second = 2.5
max_member_id = 6000

[sync]
concurrency = 4

[crm]
base_url = "https://crm.example.org/rest.php"
site_key = "sk"
user_key = "uk"
`), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "/srv/parlsync", cfg.DataDir)
	assert.Equal(t, 2.5, cfg.API.RatePerSecond)
	assert.Equal(t, 6000, cfg.API.MaxMemberID)
	// Unspecified keys still default.
	assert.Equal(t, DefaultMaxConstituencyID, cfg.API.MaxConstituencyID)
	assert.Equal(t, 4, cfg.Sync.Concurrency)
	assert.Equal(t, "sk", cfg.CRM.SiteKey)
}

func TestLoad_RejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`data_dir = [`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultDataDir_EnvOverride(t *testing.T) {
	t.Setenv("PARLSYNC_DIR", "/tmp/parlsync-test")
	assert.Equal(t, "/tmp/parlsync-test", DefaultDataDir())
}

func TestArchivePath(t *testing.T) {
	cfg := &Config{DataDir: "/data"}
	assert.Equal(t, filepath.Join("/data", "answered_questions.csv"), cfg.ArchivePath("answered_questions.csv"))
}
