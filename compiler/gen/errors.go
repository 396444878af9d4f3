package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("crudify: missing configuration")
	// ErrGenerationFailed indicates a file could not be generated.
	ErrGenerationFailed = errors.New("crudify: code generation failed")
	// ErrOutsideRoot indicates an output path escaping the output directory.
	ErrOutsideRoot = errors.New("path escapes the output directory")
	// ErrPathCollision indicates an output path planned for more than one file.
	ErrPathCollision = errors.New("output path collision")
)

// ConfigError represents a configuration error. Configuration errors are
// reported before any file is produced.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("crudify: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("crudify: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerationError records the failure of a single planned file. The cause is
// a *crudify.NotFoundError, *crudify.TemplateError or *crudify.IOError.
type GenerationError struct {
	Table    string // Table name, empty for project-wide files
	Template string // Template path
	File     string // Output path, when it could be computed
	Cause    error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("crudify: generate")
	if e.File != "" {
		b.WriteString(" ")
		b.WriteString(e.File)
	}
	if e.Table != "" {
		b.WriteString(" (table ")
		b.WriteString(e.Table)
		b.WriteString(")")
	}
	if e.Template != "" && e.Template != e.File {
		b.WriteString(" from ")
		b.WriteString(e.Template)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(table, template, file string, cause error) *GenerationError {
	return &GenerationError{
		Table:    table,
		Template: template,
		File:     file,
		Cause:    cause,
	}
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
