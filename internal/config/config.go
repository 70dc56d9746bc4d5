// Package config holds the settings for flyer date extraction runs.
//
// Values are resolved by viper in this order: command-line flags,
// FLYERDATES_* environment variables, the config file, then Default().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ironsheep/flyer-dates/internal/imaging"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix is the prefix for environment overrides, e.g. FLYERDATES_OCR_LANGUAGE.
const EnvPrefix = "FLYERDATES"

// Config is the complete run configuration.
type Config struct {
	Input       InputConfig       `mapstructure:"input" yaml:"input"`
	OCR         OCRConfig         `mapstructure:"ocr" yaml:"ocr"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

// InputConfig selects the images to process.
type InputConfig struct {
	Dir        string   `mapstructure:"dir" yaml:"dir"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	SkipHidden bool     `mapstructure:"skip_hidden" yaml:"skip_hidden"`
}

// OCRConfig configures Tesseract.
type OCRConfig struct {
	Language       string  `mapstructure:"language" yaml:"language"`
	TessdataPrefix string  `mapstructure:"tessdata_prefix" yaml:"tessdata_prefix"`
	PageSegMode    int     `mapstructure:"page_seg_mode" yaml:"page_seg_mode"`
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst          int     `mapstructure:"burst" yaml:"burst"`
}

// CacheConfig configures the OCR text cache.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir       string        `mapstructure:"dir" yaml:"dir"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// ConcurrencyConfig controls batch scheduling.
type ConcurrencyConfig struct {
	Workers  int           `mapstructure:"workers" yaml:"workers"`
	FailFast bool          `mapstructure:"fail_fast" yaml:"fail_fast"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// OutputConfig selects report sinks.
type OutputConfig struct {
	Format       string `mapstructure:"format" yaml:"format"`
	File         string `mapstructure:"file" yaml:"file"`
	XLSX         string `mapstructure:"xlsx" yaml:"xlsx"`
	SQLite       string `mapstructure:"sqlite" yaml:"sqlite"`
	ShowVariants bool   `mapstructure:"show_variants" yaml:"show_variants"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	cacheDir := ".flyerdates-cache"
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(dir, "flyerdates")
	}

	return Config{
		Input: InputConfig{
			Dir:        "flyers",
			Extensions: append([]string(nil), imaging.SupportedExtensions...),
			SkipHidden: true,
		},
		OCR: OCRConfig{
			Language: "eng",
			Burst:    1,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers Default() with v so that every key is known to
// viper, which lets environment variables override keys absent from the
// config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("input.dir", d.Input.Dir)
	v.SetDefault("input.extensions", d.Input.Extensions)
	v.SetDefault("input.skip_hidden", d.Input.SkipHidden)
	v.SetDefault("ocr.language", d.OCR.Language)
	v.SetDefault("ocr.tessdata_prefix", d.OCR.TessdataPrefix)
	v.SetDefault("ocr.page_seg_mode", d.OCR.PageSegMode)
	v.SetDefault("ocr.rate_limit", d.OCR.RateLimit)
	v.SetDefault("ocr.burst", d.OCR.Burst)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)
	v.SetDefault("concurrency.workers", d.Concurrency.Workers)
	v.SetDefault("concurrency.fail_fast", d.Concurrency.FailFast)
	v.SetDefault("concurrency.timeout", d.Concurrency.Timeout)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.file", d.Output.File)
	v.SetDefault("output.xlsx", d.Output.XLSX)
	v.SetDefault("output.sqlite", d.Output.SQLite)
	v.SetDefault("output.show_variants", d.Output.ShowVariants)
	v.SetDefault("log.level", d.Log.Level)
}

// ConfigureEnv enables FLYERDATES_* overrides on v. Nested keys use
// underscores, e.g. FLYERDATES_CONCURRENCY_WORKERS.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Concurrency.Workers < 1:
		return fmt.Errorf("%w: concurrency.workers must be at least 1, got %d", ErrInvalidConfig, c.Concurrency.Workers)
	case c.Concurrency.Timeout < 0:
		return fmt.Errorf("%w: concurrency.timeout must not be negative", ErrInvalidConfig)
	case c.OCR.Language == "":
		return fmt.Errorf("%w: ocr.language is required", ErrInvalidConfig)
	case c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13:
		return fmt.Errorf("%w: ocr.page_seg_mode must be between 0 and 13, got %d", ErrInvalidConfig, c.OCR.PageSegMode)
	case c.OCR.RateLimit < 0:
		return fmt.Errorf("%w: ocr.rate_limit must not be negative", ErrInvalidConfig)
	case c.Cache.Enabled && c.Cache.Dir == "":
		return fmt.Errorf("%w: cache.dir is required when the cache is enabled", ErrInvalidConfig)
	}

	switch strings.ToLower(c.Output.Format) {
	case "json", "yaml", "yml", "text", "txt":
	default:
		return fmt.Errorf("%w: output.format must be json, yaml or text, got %q", ErrInvalidConfig, c.Output.Format)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level must be debug, info, warn or error, got %q", ErrInvalidConfig, c.Log.Level)
	}

	for _, ext := range c.Input.Extensions {
		if !imaging.IsSupported(ext) {
			return fmt.Errorf("%w: unsupported input extension %q", ErrInvalidConfig, ext)
		}
	}
	return nil
}
