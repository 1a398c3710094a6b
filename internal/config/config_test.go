package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
disabled: true
log:
  level: debug
  format: console
audit:
  path: /var/log/truthgate/audit.jsonl
catalog:
  path: /etc/truthgate/catalog.yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Disabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "/var/log/truthgate/audit.jsonl", cfg.Audit.Path)
	assert.Equal(t, "/etc/truthgate/catalog.yaml", cfg.Catalog.Path)
}

func TestLoadKeepsDefaultsForUnsetKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, "audit:\n  path: /tmp/a.jsonl\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	t.Setenv("TRUTHGATE_LOG_LEVEL", "error")
	t.Setenv("TRUTHGATE_AUDIT_PATH", "/tmp/audit.jsonl")
	t.Setenv("TRUTHGATE_DISABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/tmp/audit.jsonl", cfg.Audit.Path)
	assert.True(t, cfg.Disabled)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "log: [unclosed"))
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".truthgate", "audit.jsonl"), ExpandHome("~/.truthgate/audit.jsonl"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "", ExpandHome(""))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "log.level", envKey("TRUTHGATE_LOG_LEVEL"))
	assert.Equal(t, "audit.path", envKey("TRUTHGATE_AUDIT_PATH"))
	assert.Equal(t, "disabled", envKey("TRUTHGATE_DISABLED"))
	assert.Equal(t, "catalog.path", envKey("TRUTHGATE_CATALOG_PATH"))
}
