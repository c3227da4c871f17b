// Package config loads roadmap settings from defaults, an optional YAML file
// and ROADMAP_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. ROADMAP_DB_PATH.
const EnvPrefix = "ROADMAP"

// Config represents the complete roadmap configuration.
type Config struct {
	DB       DBConfig       `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Timeline TimelineConfig `mapstructure:"timeline"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// File receives JSON log lines. Empty disables file logging.
	File string `mapstructure:"file"`
}

type CacheConfig struct {
	// File holds the offline project list snapshot. Empty keeps it in memory.
	File string `mapstructure:"file"`
}

// TimelineConfig controls how the Gantt views lay out time.
type TimelineConfig struct {
	Unit    string `mapstructure:"unit"`
	Columns int    `mapstructure:"columns"`
	// ColumnWidth is pixels per period in SVG output.
	ColumnWidth float64 `mapstructure:"column_width"`
	// CellWidth is terminal cells per period in the TUI and text chart.
	CellWidth int `mapstructure:"cell_width"`
	// MinVisibleCells is the narrowest a committed bar is drawn in the terminal.
	MinVisibleCells int `mapstructure:"min_visible_cells"`
	// DragFloorCells is the narrowest a bar is drawn while being resized.
	DragFloorCells int `mapstructure:"drag_floor_cells"`
	// RefreshSeconds is how often the TUI reloads the board. 0 disables it.
	RefreshSeconds int `mapstructure:"refresh_seconds"`
}

// RefreshInterval converts RefreshSeconds to a duration.
func (c TimelineConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshSeconds) * time.Second
}

// Dir returns the roadmap home directory (~/.roadmap).
func Dir() string {
	if dir := os.Getenv(EnvPrefix + "_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".roadmap"
	}
	return filepath.Join(home, ".roadmap")
}

// File returns the default config file path.
func File() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns a Config with default values.
func Default() *Config {
	dir := Dir()
	return &Config{
		DB: DBConfig{
			Path: filepath.Join(dir, "roadmap.db"),
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "roadmap.log"),
		},
		Cache: CacheConfig{
			File: filepath.Join(dir, "projects-cache.yaml"),
		},
		Timeline: TimelineConfig{
			Unit:            "month",
			Columns:         12,
			ColumnWidth:     100,
			CellWidth:       8,
			MinVisibleCells: 2,
			DragFloorCells:  1,
			RefreshSeconds:  60,
		},
	}
}

// SetDefaults registers every default on v so env overrides resolve for
// keys that are absent from the config file.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("db.path", d.DB.Path)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)

	v.SetDefault("cache.file", d.Cache.File)

	v.SetDefault("timeline.unit", d.Timeline.Unit)
	v.SetDefault("timeline.columns", d.Timeline.Columns)
	v.SetDefault("timeline.column_width", d.Timeline.ColumnWidth)
	v.SetDefault("timeline.cell_width", d.Timeline.CellWidth)
	v.SetDefault("timeline.min_visible_cells", d.Timeline.MinVisibleCells)
	v.SetDefault("timeline.drag_floor_cells", d.Timeline.DragFloorCells)
	v.SetDefault("timeline.refresh_seconds", d.Timeline.RefreshSeconds)
}

// NewViper returns a viper instance wired for defaults, env overrides and
// configFile (or the default location when empty).
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix(EnvPrefix)
	// ROADMAP_TIMELINE_CELL_WIDTH for timeline.cell_width
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// ROADMAP_DB is the short form kept for scripts. It names the parent key
	// "db" under AutomaticEnv, so it is applied as an override instead.
	if short, ok := os.LookupEnv(EnvPrefix + "_DB"); ok {
		if _, long := os.LookupEnv(EnvPrefix + "_DB_PATH"); !long {
			v.Set("db.path", short)
		}
	}
	return v
}

// Load reads configuration. A missing default config file is not an error;
// a missing explicitly named one is.
func Load(configFile string) (*Config, error) {
	v := NewViper(configFile)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return Decode(v)
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}
