package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/randcp/internal/config"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	configDir := filepath.Join(dir, "randcp")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o644))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Defaults.Count)
	assert.Nil(t, cfg.Defaults.StallTimeout)
	assert.Nil(t, cfg.Defaults.Verify)
}

func TestLoad_FullConfig(t *testing.T) {
	writeConfig(t, `
[defaults]
count = 25
stall_timeout = "45s"
verify = true
bwlimit = "10M"
follow_symlinks = false
history = true
seed = 1234
exclude = ["*.tmp", ".git/"]
`)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.Defaults.Count)
	assert.Equal(t, 25, *cfg.Defaults.Count)

	require.NotNil(t, cfg.Defaults.StallTimeout)
	assert.Equal(t, 45*time.Second, cfg.Defaults.StallTimeout.Duration)

	require.NotNil(t, cfg.Defaults.Verify)
	assert.True(t, *cfg.Defaults.Verify)

	require.NotNil(t, cfg.Defaults.BWLimit)
	assert.Equal(t, "10M", *cfg.Defaults.BWLimit)

	require.NotNil(t, cfg.Defaults.FollowSymlinks)
	assert.False(t, *cfg.Defaults.FollowSymlinks)

	require.NotNil(t, cfg.Defaults.History)
	assert.True(t, *cfg.Defaults.History)

	require.NotNil(t, cfg.Defaults.Seed)
	assert.Equal(t, uint64(1234), *cfg.Defaults.Seed)

	assert.Equal(t, []string{"*.tmp", ".git/"}, cfg.Defaults.Exclude)
}

func TestLoad_PartialConfig(t *testing.T) {
	writeConfig(t, `
[defaults]
verify = true
`)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Defaults.Verify)
	assert.Nil(t, cfg.Defaults.Count)
	assert.Nil(t, cfg.Defaults.BWLimit)
	assert.Empty(t, cfg.Defaults.Exclude)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "invalid [[["},
		{"bad duration", "[defaults]\nstall_timeout = \"soon\""},
		{"negative duration", "[defaults]\nstall_timeout = \"-5s\""},
		{"zero count", "[defaults]\ncount = 0"},
		{"unknown key", "[defaults]\nworkers = 8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.content)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/randcp/config.toml", config.Path())
}

func TestDuration_MarshalText(t *testing.T) {
	text, err := config.Duration{Duration: 90 * time.Second}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
