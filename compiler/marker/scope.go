package marker

import (
	"github.com/syssam/crudify/schema"
)

// Scope is the metadata a marker is resolved against. The project scope
// holds only the project; a table scope adds the table; column and verb
// scopes are created by repeating markers for each element they expand.
//
// Scopes are values handed to resolvers; resolvers must not keep them.
type Scope struct {
	Project *schema.Project
	Table   *schema.Table
	Column  *schema.Column
	Verb    *schema.Verb
	// Index of the element within the sequence that created this scope.
	Index int
	// Last reports whether the element is the last one of its sequence.
	Last bool
	// Role of the file being generated, e.g. "main" or "edit".
	Role string
	// Path of the template being expanded.
	Path string

	engine *Engine
	parent *Scope
	depth  int
}

// NewScope returns a project scope for the file role.
func NewScope(p *schema.Project, role string) *Scope {
	return &Scope{Project: p, Role: role}
}

// ForTable returns a child scope for table t.
func (s *Scope) ForTable(t *schema.Table) *Scope {
	c := s.child()
	c.Table = t
	c.Column, c.Verb = nil, nil
	return c
}

// ForColumn returns a child scope for column col.
func (s *Scope) ForColumn(col schema.Column) *Scope {
	c := s.child()
	c.Column = &col
	return c
}

// ForVerb returns a child scope for verb v.
func (s *Scope) ForVerb(v schema.Verb) *Scope {
	c := s.child()
	c.Verb = &v
	return c
}

// Parent returns the scope this scope was derived from, or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// Include expands the sub-template at path in scope child and returns the
// final text. The result is inserted as is: it is never scanned again.
func (s *Scope) Include(path string, child *Scope) (string, error) {
	if s.engine == nil {
		return "", errNoEngine
	}
	return s.engine.include(s, path, child)
}

func (s *Scope) child() *Scope {
	c := *s
	c.parent = s
	c.Index, c.Last = 0, false
	return &c
}
