// Package config loads the application settings with viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "site-mapper.cfg.json"

// EditorConfig holds editor behaviour settings.
type EditorConfig struct {
	AutoSave      bool          `mapstructure:"autoSave"`
	AutoSaveDelay time.Duration `mapstructure:"autoSaveDelay"`
	MoveInterval  time.Duration `mapstructure:"moveInterval"`
	GridSpacing   float64       `mapstructure:"gridSpacing"`
}

// SatelliteConfig holds the static map provider settings.
type SatelliteConfig struct {
	URLTemplate string        `mapstructure:"urlTemplate"`
	APIKey      string        `mapstructure:"apiKey"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Zoom        int           `mapstructure:"zoom"`
}

// Load reads configuration from the JSON file in configDir and sets default
// values. A missing file is not an error; defaults apply. Every key can be
// overridden from the environment as SITEMAPPER_<SECTION>_<KEY>.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("editor.autoSave", true)
	viper.SetDefault("editor.autoSaveDelay", "5s")
	viper.SetDefault("editor.moveInterval", "16ms")
	viper.SetDefault("editor.gridSpacing", 50)

	viper.SetDefault("satellite.urlTemplate", "")
	viper.SetDefault("satellite.apiKey", "")
	viper.SetDefault("satellite.timeout", "30s")
	viper.SetDefault("satellite.zoom", 19)

	viper.SetDefault("store.path", "./site-maps.db")
	viper.SetDefault("export.dir", "./exports")

	viper.SetEnvPrefix("SITEMAPPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Editor returns the editor settings.
func Editor() EditorConfig {
	return EditorConfig{
		AutoSave:      viper.GetBool("editor.autoSave"),
		AutoSaveDelay: viper.GetDuration("editor.autoSaveDelay"),
		MoveInterval:  viper.GetDuration("editor.moveInterval"),
		GridSpacing:   viper.GetFloat64("editor.gridSpacing"),
	}
}

// Satellite returns the static map provider settings.
func Satellite() SatelliteConfig {
	return SatelliteConfig{
		URLTemplate: viper.GetString("satellite.urlTemplate"),
		APIKey:      viper.GetString("satellite.apiKey"),
		Timeout:     viper.GetDuration("satellite.timeout"),
		Zoom:        viper.GetInt("satellite.zoom"),
	}
}

// LogLevel returns the configured log level name.
func LogLevel() string {
	return viper.GetString("logLevel")
}

// StorePath returns the site map database path.
func StorePath() string {
	return viper.GetString("store.path")
}

// ExportDir returns the default directory of exported files.
func ExportDir() string {
	return viper.GetString("export.dir")
}
