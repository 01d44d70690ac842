// Package config loads the run configuration for the dinosim CLI from a
// YAML file, DINOSIM_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/dinosim/core"
	"github.com/signalsfoundry/dinosim/internal/logging"
	"github.com/signalsfoundry/dinosim/internal/observability"
	"github.com/signalsfoundry/dinosim/model"
)

// EnvPrefix prefixes every environment override, e.g. DINOSIM_GRID_NUM_POINTS.
const EnvPrefix = "DINOSIM"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Scenario string         `mapstructure:"scenario"`
	Viewport ViewportConfig `mapstructure:"viewport"`
	Grid     GridConfig     `mapstructure:"grid"`
	Coverage CoverageConfig `mapstructure:"coverage"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type ViewportConfig struct {
	XMin float64 `mapstructure:"x_min"`
	XMax float64 `mapstructure:"x_max"`
	YMin float64 `mapstructure:"y_min"`
	YMax float64 `mapstructure:"y_max"`
}

type GridConfig struct {
	NumPoints         int  `mapstructure:"num_points"`
	AntennaCorrection bool `mapstructure:"antenna_correction"`
}

type CoverageConfig struct {
	MinPowerDBm float64 `mapstructure:"min_power_dbm"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"` // empty disables CSV export
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // empty disables the dump
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

func setDefaults(v *viper.Viper) {
	vp := model.DefaultViewport()
	v.SetDefault("scenario", "")
	v.SetDefault("viewport.x_min", vp.XMin)
	v.SetDefault("viewport.x_max", vp.XMax)
	v.SetDefault("viewport.y_min", vp.YMin)
	v.SetDefault("viewport.y_max", vp.YMax)
	v.SetDefault("grid.num_points", core.DefaultNumPoints)
	v.SetDefault("grid.antenna_correction", true)
	v.SetDefault("coverage.min_power_dbm", core.DefaultMinPowerDBm)
	v.SetDefault("output.dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "dinosim")
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// Load reads the config file at path (falling back to $DINOSIM_CONFIG; no
// file at all means defaults plus environment) and validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the field computation cannot run with.
func (c Config) Validate() error {
	if c.Grid.NumPoints <= 0 {
		return fmt.Errorf("%w: grid.num_points must be positive, got %d", ErrInvalid, c.Grid.NumPoints)
	}
	if !c.Bounds().Valid() {
		return fmt.Errorf("%w: viewport %+v is inverted or not finite", ErrInvalid, c.Viewport)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("%w: tracing.sample_ratio must be within [0, 1], got %v", ErrInvalid, c.Tracing.SampleRatio)
	}
	return nil
}

// Bounds returns the configured viewport.
func (c Config) Bounds() model.Bounds {
	return model.Bounds{XMin: c.Viewport.XMin, XMax: c.Viewport.XMax, YMin: c.Viewport.YMin, YMax: c.Viewport.YMax}
}

// FieldRequest builds the request passed to the coverage service.
func (c Config) FieldRequest() core.FieldRequest {
	return core.FieldRequest{
		Bounds:            c.Bounds(),
		NumPoints:         c.Grid.NumPoints,
		AntennaCorrection: c.Grid.AntennaCorrection,
	}
}

// Logging returns the logger configuration.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// TraceSettings returns the tracing setup for observability.InitTracing.
func (c Config) TraceSettings() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		ServiceName: c.Tracing.ServiceName,
		Exporter:    c.Tracing.Exporter,
		Endpoint:    c.Tracing.Endpoint,
		SampleRatio: c.Tracing.SampleRatio,
	}
}
