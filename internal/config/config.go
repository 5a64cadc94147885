// Package config resolves fdbridge run settings.
//
// Sources, highest priority first:
//  1. command line flags
//  2. FDBRIDGE_* environment variables (FDTORA for the routing directory)
//  3. an optional settings file (fdbridge.yaml, .toml or .json)
//  4. defaults
//
// The routing table itself (areas and message base root) is not a setting;
// it is loaded by the area package from the file these settings point at.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stlalpha/fdbridge/internal/area"
)

// EnvPrefix is the prefix for environment overrides, e.g. FDBRIDGE_LOG_LEVEL.
const EnvPrefix = "FDBRIDGE"

// LegacyEnv names the directory holding FDTORA.CFG.
const LegacyEnv = "FDTORA"

// SettingsName is the settings file base name searched for when no
// explicit --config path is given.
const SettingsName = "fdbridge"

// Settings is everything a run needs besides the routing table.
type Settings struct {
	// ConfigDir is searched for fdbridge.json5 and FDTORA.CFG.
	ConfigDir string `mapstructure:"config_dir"`
	// AreasFile, when set, is the routing file and ConfigDir is ignored.
	AreasFile string `mapstructure:"areas_file"`
	// Journal is the bbolt journal path. Empty disables crash recovery.
	Journal string `mapstructure:"journal"`
	// MetricsFile is the node-exporter textfile written after each run.
	MetricsFile string `mapstructure:"metrics_file"`

	Log   LogSettings   `mapstructure:"log"`
	Toss  TossSettings  `mapstructure:"toss"`
	Watch WatchSettings `mapstructure:"watch"`
}

// LogSettings control log output.
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Diag   bool   `mapstructure:"diag"`
}

// TossSettings are the persistent toss switches.
type TossSettings struct {
	Delete bool `mapstructure:"delete"`
	Kill   bool `mapstructure:"kill"`
}

// WatchSettings configure the daemon.
type WatchSettings struct {
	Schedule string        `mapstructure:"schedule"`
	Debounce time.Duration `mapstructure:"debounce"`
	NoWatch  bool          `mapstructure:"no_watch"`
}

// flagKeys maps command line flag names to settings keys.
var flagKeys = map[string]string{
	"config-dir":   "config_dir",
	"areas":        "areas_file",
	"journal":      "journal",
	"metrics-file": "metrics_file",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"diag":         "log.diag",
	"delete":       "toss.delete",
	"kill":         "toss.kill",
	"schedule":     "watch.schedule",
	"debounce":     "watch.debounce",
	"no-watch":     "watch.no_watch",
}

// Every key gets a default, otherwise Unmarshal never sees env overrides
// for it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("config_dir", ".")
	v.SetDefault("areas_file", "")
	v.SetDefault("journal", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.diag", false)
	v.SetDefault("toss.delete", false)
	v.SetDefault("toss.kill", false)
	v.SetDefault("watch.schedule", "")
	v.SetDefault("watch.debounce", 500*time.Millisecond)
	v.SetDefault("watch.no_watch", false)
}

// Load resolves settings. settingsPath may be empty, in which case a
// settings file is looked for in the working directory and is optional.
// fs may be nil; flags it carries that appear in flagKeys take precedence
// over everything else.
func Load(settingsPath string, fs *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("config_dir", EnvPrefix+"_CONFIG_DIR", LegacyEnv); err != nil {
		return nil, err
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	if settingsPath != "" {
		v.SetConfigFile(settingsPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", settingsPath, err)
		}
	} else {
		v.SetConfigName(SettingsName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read settings: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("config: decode settings: %w", err)
	}
	s.Log.Level = strings.ToLower(s.Log.Level)
	s.Log.Format = strings.ToLower(s.Log.Format)
	return &s, nil
}

// AreasPath returns the routing file to load: AreasFile when set, else
// whichever of fdbridge.json5 and FDTORA.CFG exists in ConfigDir.
func (s *Settings) AreasPath() (string, error) {
	if s.AreasFile != "" {
		return s.AreasFile, nil
	}
	dir := s.ConfigDir
	if dir == "" {
		dir = "."
	}
	return area.Find(filepath.Clean(dir))
}
