// Package config loads runtime settings and effect tuning from a YAML file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phanxgames/offgrid"
)

// WindowConfig sizes the window.
type WindowConfig struct {
	Title     string `mapstructure:"title"`
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	ShowStats bool   `mapstructure:"show_stats"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// MetricsConfig configures the debug HTTP server. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config is the complete settings file.
type Config struct {
	Window        WindowConfig         `mapstructure:"window"`
	Log           LogConfig            `mapstructure:"log"`
	Metrics       MetricsConfig        `mapstructure:"metrics"`
	ScreenshotDir string               `mapstructure:"screenshot_dir"`
	Effects       offgrid.EffectConfig `mapstructure:"effects"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "Digital Brutalism",
			Width:  1280,
			Height: 800,
		},
		Log:           LogConfig{Level: "info"},
		ScreenshotDir: "screenshots",
		Effects:       offgrid.DefaultEffectConfig(),
	}
}

// Load reads path on top of the defaults. Keys missing from the file keep
// their default values. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := c.Effects.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("effects: %w", err))
	}
	return errors.Join(errs...)
}

// NewLogger builds a zap logger for the log settings. debug forces the
// debug level.
func NewLogger(lc LogConfig, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level := strings.TrimSpace(lc.Level)
	if debug {
		level = "debug"
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		zc.Level = lvl
	}
	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}
