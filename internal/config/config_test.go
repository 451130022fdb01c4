package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chTempDir moves the process into an empty temp dir so Load sees (or
// doesn't see) exactly the config file each test writes.
func chTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "catalog.yaml", cfg.Catalog.Path)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, int64(1024), cfg.Anthropic.MaxTokens)
	assert.Empty(t, cfg.Anthropic.Key)
	assert.Equal(t, "https://vision.googleapis.com/v1", cfg.Vision.BaseURL)
	assert.True(t, cfg.OCR.Enabled)
	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.Equal(t, 2, cfg.Engine.MaxEditDistance)
	assert.Equal(t, 6, cfg.Engine.MinUnmatchedLength)
	assert.Equal(t, 30, cfg.Engine.StageTimeoutSecs)
	assert.Empty(t, cfg.History.Driver, "history recording is off by default")
	assert.Equal(t, "nameplate-history.db", cfg.History.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentImages)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chTempDir(t)

	yaml := `
catalog:
  path: /etc/nameplate/catalog.yaml
ocr:
  enabled: false
  language: deu
engine:
  max_edit_distance: 1
  min_unmatched_length: 8
history:
  driver: sqlite
server:
  port: 9090
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/etc/nameplate/catalog.yaml", cfg.Catalog.Path)
	assert.False(t, cfg.OCR.Enabled)
	assert.Equal(t, "deu", cfg.OCR.Language)
	assert.Equal(t, 1, cfg.Engine.MaxEditDistance)
	assert.Equal(t, 8, cfg.Engine.MinUnmatchedLength)
	assert.Equal(t, "sqlite", cfg.History.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched keys keep defaults.
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentImages)
}

func TestLoadFromEnv(t *testing.T) {
	chTempDir(t)

	t.Setenv("NAMEPLATE_ANTHROPIC_KEY", "sk-test")
	t.Setenv("NAMEPLATE_VISION_KEY", "gv-test")
	t.Setenv("NAMEPLATE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, "gv-test", cfg.Vision.Key)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := chTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("catalog: ["), 0644))

	_, err := Load()
	require.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	orig := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(orig) })

	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nonsense", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
