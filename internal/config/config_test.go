package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []int{101, 102, 103, 104}, cfg.Sources.Stations)
	assert.Equal(t, "João Pessoa", cfg.Sources.FilterCity)
	assert.Equal(t, "J00", cfg.Sources.FilterICDFrom)
	assert.Equal(t, "J99", cfg.Sources.FilterICDTo)
	assert.Equal(t, 2.0, cfg.Sources.RequestsPerSec)

	// Paths resolve to absolute with derived subdirectories.
	assert.True(t, filepath.IsAbs(cfg.Paths.BaseDir))
	assert.Equal(t, filepath.Join(cfg.Paths.BaseDir, "raw"), cfg.Paths.RawDir)
	assert.Equal(t, filepath.Join(cfg.Paths.BaseDir, "processed"), cfg.Paths.ProcessedDir)
}

func TestLoadFrom_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	yamlContent := `
server:
  port: 9090
sources:
  stations: [201, 202]
  filter_city: Recife
  timeout: 10s
`
	require.NoError(t, os.WriteFile(file, []byte(yamlContent), 0o644))

	cfg, err := LoadFrom(file)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []int{201, 202}, cfg.Sources.Stations)
	assert.Equal(t, "Recife", cfg.Sources.FilterCity)
	assert.Equal(t, 10*time.Second, cfg.Sources.Timeout)

	// Values the file does not mention keep their defaults.
	assert.Equal(t, "J00", cfg.Sources.FilterICDFrom)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 9090\n"), 0o644))

	t.Setenv("AIRHEALTH_SERVER_PORT", "7070")
	t.Setenv("AIRHEALTH_SOURCES_FILTER_CITY", "Natal")

	cfg, err := LoadFrom(file)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "Natal", cfg.Sources.FilterCity)
}

func TestLoadFrom_ValidationFailure(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("sources:\n  air_quality_url: not-a-url\n"), 0o644))

	_, err := LoadFrom(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoadFrom_InvalidPort(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server:\n  port: 70000\n"), 0o644))

	_, err := LoadFrom(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("server: [not a map\n"), 0o644))

	_, err := LoadFrom(file)
	require.Error(t, err)
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
