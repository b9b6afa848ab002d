package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "none.yaml")
}

func TestLoadDefaults(t *testing.T) {
	config, err := Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, "file", config.Backend)
	assert.Equal(t, "contacts", config.Slot)
	assert.Equal(t, 5, config.PerPage)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, filepath.Join(config.DataDir, "contactbook.log"), config.Log.File)
	assert.Equal(t, filepath.Join(config.DataDir, "audit"), config.Audit.Dir)
	assert.False(t, config.Audit.Enabled)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: `+dir+`
backend: sqlite
per_page: 10
log:
  level: debug
  file: "off"
audit:
  enabled: true
`), 0600))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, dir, config.DataDir)
	assert.Equal(t, "sqlite", config.Backend)
	assert.Equal(t, 10, config.PerPage)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "off", config.Log.File)
	assert.True(t, config.Audit.Enabled)
	assert.Equal(t, filepath.Join(dir, "audit"), config.Audit.Dir)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("per_page: 10\nbackend: sqlite\n"), 0600))

	t.Setenv("CONTACTBOOK_PER_PAGE", "3")
	t.Setenv("CONTACTBOOK_BACKEND", "memory")
	t.Setenv("CONTACTBOOK_LOG_LEVEL", "warn")
	t.Setenv("CONTACTBOOK_HTTP_ADDR", ":9999")

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, config.PerPage)
	assert.Equal(t, "memory", config.Backend)
	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, ":9999", config.HTTP.Addr)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("per_page: [nope"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"backend", func(c *Config) { c.Backend = "redis" }},
		{"per page", func(c *Config) { c.PerPage = 0 }},
		{"slot", func(c *Config) { c.Slot = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestStorageOptions(t *testing.T) {
	config := DefaultConfig()
	config.Passphrase = "pw"

	opts := config.StorageOptions()
	assert.Equal(t, config.DataDir, opts.DataDir)
	assert.Equal(t, "file", opts.Backend)
	assert.Equal(t, "pw", opts.Passphrase)
}
