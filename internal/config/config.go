package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Load     LoadConfig     `yaml:"load" mapstructure:"load"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// PipelineConfig configures the normalize pass.
type PipelineConfig struct {
	DataDir       string   `yaml:"data_dir" mapstructure:"data_dir"`
	OutputFile    string   `yaml:"output_file" mapstructure:"output_file"`
	Sources       []string `yaml:"sources" mapstructure:"sources"`
	ProgressEvery int      `yaml:"progress_every" mapstructure:"progress_every"`
}

// GeocodeConfig configures the geocoding provider and its guard rails.
type GeocodeConfig struct {
	Provider        string  `yaml:"provider" mapstructure:"provider"`
	OpenCageKey     string  `yaml:"opencage_key" mapstructure:"opencage_key"`
	GoogleKey       string  `yaml:"google_key" mapstructure:"google_key"`
	RegionSuffix    string  `yaml:"region_suffix" mapstructure:"region_suffix"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit       float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Concurrency     int     `yaml:"concurrency" mapstructure:"concurrency"`
	BreakerFailures int     `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerOpenSecs int     `yaml:"breaker_open_secs" mapstructure:"breaker_open_secs"`
}

// APIKey returns the credential for the selected provider.
func (g GeocodeConfig) APIKey() string {
	if g.Provider == "google" {
		return g.GoogleKey
	}
	return g.OpenCageKey
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// LoadConfig configures the load step.
type LoadConfig struct {
	RequireCoordinates bool `yaml:"require_coordinates" mapstructure:"require_coordinates"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EVENTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider keys and the database URL also honour their conventional names.
	_ = v.BindEnv("geocode.opencage_key", "EVENTS_GEOCODE_OPENCAGE_KEY", "OPENCAGE_KEY")
	_ = v.BindEnv("geocode.google_key", "EVENTS_GEOCODE_GOOGLE_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("store.database_url", "EVENTS_STORE_DATABASE_URL", "DATABASE_URL")

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("pipeline.data_dir", "data")
	v.SetDefault("pipeline.output_file", "normalized_events.json")
	v.SetDefault("pipeline.sources", []string{})
	v.SetDefault("pipeline.progress_every", 5)
	v.SetDefault("geocode.provider", "opencage")
	v.SetDefault("geocode.region_suffix", ", South Australia")
	v.SetDefault("geocode.timeout_secs", 10)
	v.SetDefault("geocode.rate_limit", 1.0)
	v.SetDefault("geocode.concurrency", 1)
	v.SetDefault("geocode.breaker_failures", 0)
	v.SetDefault("geocode.breaker_open_secs", 30)
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.table", "events")
	v.SetDefault("store.batch_size", 500)
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("load.require_coordinates", true)
	v.SetDefault("metrics.textfile", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is "normalize",
// "load" or "run" (normalize then load). All problems are reported at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkNormalize := func() {
		switch c.Geocode.Provider {
		case "opencage", "google":
		default:
			problems = append(problems, fmt.Sprintf("geocode.provider %q is not supported", c.Geocode.Provider))
		}
		if c.Pipeline.DataDir == "" {
			problems = append(problems, "pipeline.data_dir is required")
		}
		if c.Geocode.Concurrency < 1 || c.Geocode.Concurrency > 16 {
			problems = append(problems, "geocode.concurrency must be between 1 and 16")
		}
		if c.Geocode.TimeoutSecs < 1 {
			problems = append(problems, "geocode.timeout_secs must be > 0")
		}
		if c.Geocode.RateLimit < 0 {
			problems = append(problems, "geocode.rate_limit must be >= 0")
		}
	}
	checkLoad := func() {
		switch c.Store.Driver {
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for postgres")
			}
		case "sqlite":
		default:
			problems = append(problems, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
		}
		if c.Store.BatchSize < 1 {
			problems = append(problems, "store.batch_size must be > 0")
		}
	}

	switch mode {
	case "normalize":
		checkNormalize()
	case "load":
		checkLoad()
	case "run":
		checkNormalize()
		checkLoad()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

const redacted = "********"

// Redacted returns a copy with credentials masked, for display.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return redacted
	}
	c.Geocode.OpenCageKey = mask(c.Geocode.OpenCageKey)
	c.Geocode.GoogleKey = mask(c.Geocode.GoogleKey)
	c.Store.DatabaseURL = mask(c.Store.DatabaseURL)
	c.Pipeline.Sources = append([]string(nil), c.Pipeline.Sources...)
	return c
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
