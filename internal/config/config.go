// Package config loads the crudify settings from crudify.yaml, CRUDIFY_*
// environment variables and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syssam/crudify"
)

// Config represents the crudify configuration.
type Config struct {
	// Project is the path of the YAML or JSON project file.
	Project   string         `mapstructure:"project"`
	Name      string         `mapstructure:"name"`
	APIURL    string         `mapstructure:"api_url"`
	Database  DatabaseConfig `mapstructure:"database"`
	Output    string         `mapstructure:"output"`
	Templates string         `mapstructure:"templates"`
	Workers   int            `mapstructure:"workers"`
	DryRun    bool           `mapstructure:"dry_run"`
	Prune     bool           `mapstructure:"prune"`
	Header    string         `mapstructure:"header"`
	Tables    []string       `mapstructure:"tables"`
	Log       LogConfig      `mapstructure:"log"`
}

// DatabaseConfig represents the database inspected when no project file is
// given.
type DatabaseConfig struct {
	Dialect string `mapstructure:"dialect"`
	DSN     string `mapstructure:"dsn"`
	Schema  string `mapstructure:"schema"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultHeader is written on top of every generated file.
const DefaultHeader = "Code generated by crudify. DO NOT EDIT."

// flags maps configuration keys to the command line flags overriding them.
var flags = map[string]string{
	"project":          "project",
	"output":           "output",
	"templates":        "templates",
	"workers":          "workers",
	"dry_run":          "dry-run",
	"prune":            "prune",
	"tables":           "tables",
	"database.dialect": "dialect",
	"database.dsn":     "dsn",
	"database.schema":  "schema",
	"log.level":        "log-level",
}

// Load loads the configuration. When path is empty crudify.yaml (or .yml,
// .json) is looked up in the current directory and defaults are used if
// there is none. Flags changed on flagSet take precedence over the file
// and the environment; flagSet may be nil.
func Load(path string, flagSet *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("name", "app")
	v.SetDefault("api_url", "/api")
	v.SetDefault("output", "src/app")
	v.SetDefault("header", DefaultHeader)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("crudify")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("crudify")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flagSet != nil {
		for key, name := range flags {
			if f := flagSet.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case path != "" && isNotExist(path):
			return nil, crudify.NewNotFoundError(path, err)
		default:
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	if c.Output == "" {
		return errors.New("config: output directory is required")
	}
	if c.Database.DSN != "" && c.Database.Dialect == "" {
		return errors.New("config: database.dialect is required with database.dsn")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// FromDatabase reports whether the project is inspected from a database
// rather than read from a file.
func (c *Config) FromDatabase() bool {
	return c.Project == "" && c.Database.DSN != ""
}

func isNotExist(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}
