package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Match  MatchConfig  `yaml:"match" mapstructure:"match"`
	Upload UploadConfig `yaml:"upload" mapstructure:"upload"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// MatchConfig configures the driver match cascade.
type MatchConfig struct {
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`
	// Timezone decides the calendar date of stored journeys. "Local" uses
	// the host zone; anything else is an IANA name.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
}

// UploadConfig configures spreadsheet reading.
type UploadConfig struct {
	SheetIndex  int    `yaml:"sheet_index" mapstructure:"sheet_index"`
	SheetName   string `yaml:"sheet_name" mapstructure:"sheet_name"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// ReportConfig configures the diagnostic report.
type ReportConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. A .env file in the
// working directory seeds the environment without overriding it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "recon.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("match.fuzzy_threshold", 0.6)
	v.SetDefault("match.timezone", "Local")
	v.SetDefault("upload.sheet_index", 0)
	v.SetDefault("upload.concurrency", 4)
	v.SetDefault("report.format", "yaml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Location resolves match.timezone. Empty and "Local" mean time.Local.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Match.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, eris.Wrapf(err, "config: load timezone %q", tz)
	}
	return loc, nil
}

// Validate checks the settings a command mode depends on. Modes: "store"
// (any command touching the database) and "reconcile".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "store", "reconcile":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			problems = append(problems, "store.sqlite_path is required for the sqlite driver")
		}
	default:
		problems = append(problems, "store.driver must be postgres or sqlite")
	}

	if mode == "reconcile" {
		if c.Match.FuzzyThreshold < 0 || c.Match.FuzzyThreshold > 1 {
			problems = append(problems, "match.fuzzy_threshold must be between 0 and 1")
		}
		if c.Upload.Concurrency < 1 || c.Upload.Concurrency > 32 {
			problems = append(problems, "upload.concurrency must be between 1 and 32")
		}
		if c.Report.Format != "yaml" && c.Report.Format != "json" {
			problems = append(problems, "report.format must be yaml or json")
		}
		if _, err := c.Location(); err != nil {
			problems = append(problems, "match.timezone: "+err.Error())
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
