package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// dateFloorLayout is the format for the analysis date-window lower bound.
const dateFloorLayout = "2006-01-02"

// Config holds all report settings, populated from an optional YAML file
// and STORM_REPORT_* environment variables.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Output   OutputConfig   `mapstructure:"output"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DataConfig locates the raw storm-events dataset.
type DataConfig struct {
	// Path to the dataset CSV; ".gz" and ".bz2" suffixes are decompressed
	// on the fly.
	Path string `mapstructure:"path"`
}

// AnalysisConfig names the two constants the filtering behavior depends on,
// so they are explicit and testable rather than buried inline.
type AnalysisConfig struct {
	// DateFloor is the inclusive lower bound of the analysis window,
	// "YYYY-MM-DD". Defaults to 1996-01-01, when the dataset starts
	// recording all event types.
	DateFloor string `mapstructure:"date_floor"`

	// SignificanceRatio is the minimum fraction of the per-metric maximum
	// a category total must exceed to be retained.
	SignificanceRatio float64 `mapstructure:"significance_ratio"`
}

// Floor parses the configured date floor.
func (a AnalysisConfig) Floor() (time.Time, error) {
	t, err := time.Parse(dateFloorLayout, a.DateFloor)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid analysis.date_floor %q: %w", a.DateFloor, err)
	}
	return t.UTC(), nil
}

// OutputConfig locates the chart-data output directory.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// MetricsConfig controls the optional debug metrics listener. An empty
// address leaves it disabled, which is the default for a batch run.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file (optional; pass "" for
// defaults plus environment only) and validates it.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("STORM_REPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.path", "./data/storm_events.csv.bz2")

	v.SetDefault("analysis.date_floor", "1996-01-01")
	v.SetDefault("analysis.significance_ratio", 0.05)

	v.SetDefault("output.dir", "./out")

	v.SetDefault("metrics.addr", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}

	if _, err := c.Analysis.Floor(); err != nil {
		return err
	}
	if c.Analysis.SignificanceRatio < 0 || c.Analysis.SignificanceRatio >= 1 {
		return fmt.Errorf("analysis.significance_ratio must be in [0, 1), got %g", c.Analysis.SignificanceRatio)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
