package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"editor": { "autoSave": false, "autoSaveDelay": "2s", "gridSpacing": 25 },
		"satellite": { "apiKey": "abc", "zoom": 18 },
		"store": { "path": "/tmp/maps.db" }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(cfg), 0644))

	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", LogLevel())
	assert.Equal(t, EditorConfig{
		AutoSave:      false,
		AutoSaveDelay: 2 * time.Second,
		MoveInterval:  16 * time.Millisecond,
		GridSpacing:   25,
	}, Editor())
	assert.Equal(t, "abc", Satellite().APIKey)
	assert.Equal(t, 18, Satellite().Zoom)
	assert.Equal(t, "/tmp/maps.db", StorePath())
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(t.TempDir()))

	assert.Equal(t, "info", LogLevel())
	assert.True(t, Editor().AutoSave)
	assert.Equal(t, 5*time.Second, Editor().AutoSaveDelay)
	assert.Equal(t, 50.0, Editor().GridSpacing)
	assert.Equal(t, 30*time.Second, Satellite().Timeout)
	assert.Equal(t, 19, Satellite().Zoom)
	assert.Equal(t, "./site-maps.db", StorePath())
	assert.Equal(t, "./exports", ExportDir())
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("SITEMAPPER_SATELLITE_APIKEY", "from-env")

	require.NoError(t, Load(t.TempDir()))
	assert.Equal(t, "from-env", Satellite().APIKey)
}

func TestLoad_InvalidJSON(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{not json`), 0644))

	assert.Error(t, Load(dir))
}
