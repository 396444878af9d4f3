package marker

import (
	"fmt"
	"strings"

	"github.com/syssam/crudify"
	"github.com/syssam/crudify/compiler/tmpl"
)

// DefaultMaxDepth bounds sub-template nesting.
const DefaultMaxDepth = 8

// Engine expands the markers of a template in a single left-to-right pass.
// Resolver output is inserted verbatim and never scanned again.
type Engine struct {
	reg      *Registry
	set      *tmpl.Set
	maxDepth int
}

// NewEngine returns an engine resolving markers through reg and loading
// sub-templates from set.
func NewEngine(reg *Registry, set *tmpl.Set) *Engine {
	return &Engine{reg: reg, set: set, maxDepth: DefaultMaxDepth}
}

// WithMaxDepth sets the sub-template nesting limit.
func (e *Engine) WithMaxDepth(n int) *Engine {
	if n > 0 {
		e.maxDepth = n
	}
	return e
}

// Registry returns the engine registry.
func (e *Engine) Registry() *Registry { return e.reg }

// Templates returns the template set sub-templates are loaded from.
func (e *Engine) Templates() *tmpl.Set { return e.set }

// Expand returns text with every marker replaced by its resolver output.
// Text without markers is returned unchanged. Failures are reported as
// *crudify.TemplateError naming path and the offending marker.
func (e *Engine) Expand(path, text string, s *Scope) (string, error) {
	if s == nil {
		s = &Scope{}
	}
	markers, err := Scan(text)
	if err != nil {
		return "", scanError(path, err)
	}
	if len(markers) == 0 {
		return text, nil
	}
	scope := *s
	scope.Path, scope.engine = path, e

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range markers {
		b.WriteString(text[last:m.Offset])
		res, err := e.reg.Lookup(m)
		if err != nil {
			return "", crudify.NewTemplateError(path, m.Name, m.Offset, err.Error())
		}
		out, err := res.Resolve(&scope, m)
		if err != nil {
			return "", &crudify.TemplateError{Path: path, Marker: m.Name, Offset: m.Offset, Cause: err}
		}
		b.WriteString(out)
		last = m.End
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// ExpandFile loads the template at path and expands it.
func (e *Engine) ExpandFile(path string, s *Scope) (string, error) {
	f, err := e.set.Load(path)
	if err != nil {
		return "", err
	}
	return e.Expand(f.Path, f.Text, s)
}

// Check reports every malformed or unresolvable marker of text without
// expanding it. Markers are checked against the registry only; sub-template
// names depend on the metadata and are checked at expansion time.
func (e *Engine) Check(path, text string) error {
	markers, err := Scan(text)
	if err != nil {
		return scanError(path, err)
	}
	var errs []error
	for _, m := range markers {
		if _, err := e.reg.Lookup(m); err != nil {
			errs = append(errs, crudify.NewTemplateError(path, m.Name, m.Offset, err.Error()))
		}
	}
	return crudify.NewAggregateError(errs...)
}

func (e *Engine) include(parent *Scope, path string, child *Scope) (string, error) {
	depth := parent.depth + 1
	if depth > e.maxDepth {
		return "", fmt.Errorf("sub-template %s nests deeper than %d levels", path, e.maxDepth)
	}
	f, err := e.set.Load(path)
	if err != nil {
		return "", err
	}
	c := *child
	c.depth = depth
	return e.Expand(f.Path, trimFinalNewline(f.Text), &c)
}

// trimFinalNewline drops the line break ending a sub-template, so that a
// marker alone on its line expands to exactly the lines of its blocks.
func trimFinalNewline(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}

func scanError(path string, err error) error {
	if se, ok := err.(*ScanError); ok {
		return crudify.NewTemplateError(path, se.Name, se.Offset, se.Message)
	}
	return &crudify.TemplateError{Path: path, Offset: -1, Cause: err}
}
