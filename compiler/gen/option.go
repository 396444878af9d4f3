package gen

import (
	"io/fs"
	"os"
	"runtime"

	"go.uber.org/zap"
)

// Config holds the configuration of a generation run.
type Config struct {
	// Target is the output directory.
	Target string
	// Dialect supplies the templates, vocabulary and file plan.
	Dialect Dialect
	// Overrides shadows templates of the dialect template set.
	Overrides fs.FS
	// Workers bounds the number of tables generated concurrently.
	Workers int
	// DryRun computes every file without writing to the output directory.
	DryRun bool
	// Prune deletes files recorded by the previous run that are no longer
	// planned.
	Prune bool
	// Header is written as a comment at the top of each generated file.
	Header string
	// Tables restricts generation to the named tables.
	Tables []string
	// Logger receives per-file debug logs and a summary per run.
	Logger *zap.Logger
}

// Option configures code generation.
type Option func(*Config) error

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithDialect sets the frontend dialect.
func WithDialect(d Dialect) Option {
	return func(c *Config) error {
		if d == nil {
			return NewConfigError("Dialect", nil, "dialect cannot be nil")
		}
		c.Dialect = d
		return nil
	}
}

// WithTemplates shadows the dialect templates with the templates found in
// dir. The directory must exist.
func WithTemplates(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return nil
		}
		info, err := os.Stat(dir)
		if err != nil {
			return NewConfigError("Templates", dir, err.Error())
		}
		if !info.IsDir() {
			return NewConfigError("Templates", dir, "not a directory")
		}
		c.Overrides = os.DirFS(dir)
		return nil
	}
}

// WithTemplateFS shadows the dialect templates with the templates of fsys.
func WithTemplateFS(fsys fs.FS) Option {
	return func(c *Config) error {
		c.Overrides = fsys
		return nil
	}
}

// WithWorkers sets the number of tables generated concurrently.
// 1 generates tables sequentially.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("Workers", n, "workers cannot be negative")
		}
		c.Workers = n
		return nil
	}
}

// WithDryRun enables or disables dry runs.
func WithDryRun(dry bool) Option {
	return func(c *Config) error {
		c.DryRun = dry
		return nil
	}
}

// WithPrune enables deletion of stale files of the previous run.
func WithPrune(prune bool) Option {
	return func(c *Config) error {
		c.Prune = prune
		return nil
	}
}

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithTables restricts generation to the named tables.
func WithTables(names ...string) Option {
	return func(c *Config) error {
		c.Tables = append(c.Tables, names...)
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// NewConfig creates a new Config with the given options and fills in
// defaults for the unset fields.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c, nil
}

// validate reports the first missing setting.
func (c *Config) validate() error {
	if c.Target == "" {
		return NewConfigError("Target", nil, "missing target directory in config")
	}
	if c.Dialect == nil {
		return NewConfigError("Dialect", nil, "no dialect set: use WithDialect")
	}
	return nil
}
