// Package crudify holds the error types shared by every stage of the
// generator: loading templates, expanding markers and emitting files.
package crudify

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for the three failure classes of a generation run.
var (
	// ErrNotFound is returned when a requested template or metadata file
	// does not exist.
	ErrNotFound = errors.New("crudify: not found")

	// ErrTemplate is returned when a template holds an unresolved or
	// malformed marker.
	ErrTemplate = errors.New("crudify: template error")

	// ErrIO is returned when the filesystem fails while emitting a file.
	ErrIO = errors.New("crudify: i/o error")
)

// NotFoundError represents a missing template or input path.
type NotFoundError struct {
	Path  string
	Cause error // Optional: the underlying fs error
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("crudify: %s not found", e.Path)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Unwrap returns the underlying error.
func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// NewNotFoundError returns a new NotFoundError for the given path.
func NewNotFoundError(path string, cause error) *NotFoundError {
	return &NotFoundError{Path: path, Cause: cause}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// TemplateError represents a marker that could not be resolved, or a
// malformed marker, inside a template.
type TemplateError struct {
	Path    string // Template path
	Marker  string // Marker name, without brackets
	Offset  int    // Byte offset of the marker in the template (-1 if unknown)
	Message string
	Cause   error
}

// Error returns the error string. It always names the template path and
// the offending marker.
func (e *TemplateError) Error() string {
	var b strings.Builder
	b.WriteString("crudify: template ")
	b.WriteString(e.Path)
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	fmt.Fprintf(&b, ": marker [[%s]]", e.Marker)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Is reports whether the target error matches TemplateError.
func (e *TemplateError) Is(err error) bool {
	return err == ErrTemplate
}

// Unwrap returns the underlying error.
func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// NewTemplateError returns a new TemplateError.
func NewTemplateError(path, marker string, offset int, message string) *TemplateError {
	return &TemplateError{Path: path, Marker: marker, Offset: offset, Message: message}
}

// IsTemplateError returns true if the error is a TemplateError.
func IsTemplateError(err error) bool {
	if err == nil {
		return false
	}
	var e *TemplateError
	return errors.As(err, &e)
}

// IOError wraps a filesystem failure that happened while emitting a file.
type IOError struct {
	Op   string // Operation (e.g., "mkdir", "write", "rename")
	Path string // Output path
	Err  error  // Underlying error
}

// Error returns the error string.
func (e *IOError) Error() string {
	return fmt.Sprintf("crudify: %s %s: %v", e.Op, e.Path, e.Err)
}

// Is reports whether the target error matches IOError.
func (e *IOError) Is(err error) bool {
	return err == ErrIO
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError returns a new IOError.
func NewIOError(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Err: err}
}

// IsIOError returns true if the error is an IOError.
func IsIOError(err error) bool {
	if err == nil {
		return false
	}
	var e *IOError
	return errors.As(err, &e)
}

// AggregateError represents multiple errors collected during a run.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "crudify: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "crudify: %d errors:", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors, so errors.Is and errors.As look
// through every one of them.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
