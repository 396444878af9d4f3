package gen

import (
	"io/fs"

	"github.com/syssam/crudify/compiler/marker"
	"github.com/syssam/crudify/schema"
)

// Dialect is a frontend flavor the generator produces: its default template
// set, the marker vocabulary of those templates and the file plan.
type Dialect interface {
	// Name identifies the dialect, e.g. "angular".
	Name() string
	// FS returns the default template set. Templates of the override
	// directory shadow it file by file.
	FS() fs.FS
	// Registry returns the resolvers and predicates of the dialect
	// vocabulary. The registry is only read once generation starts.
	Registry() *marker.Registry
	// Templates returns the templates executed once per table.
	Templates() []Template
	// GraphTemplates returns the templates executed once per project.
	GraphTemplates() []GraphTemplate
}

// Commenter is implemented by dialects able to render the configured
// header as a comment of the generated file.
type Commenter interface {
	// Comment returns text as a comment block for the file at path, or ""
	// when the file format has no comments.
	Comment(path, text string) string
}

// Template is a template executed once per table. Its path is also the
// output path pattern: "components/[[name]]/[[name]].component.ts" is
// written to components/users/users.component.ts for table users.
type Template struct {
	// Path of the template in the template set.
	Path string
	// Output overrides the output path pattern. Defaults to Path.
	Output string
	// Role is exposed to predicates, e.g. "main" or "edit".
	Role string
	// Cond skips the template for tables it returns false for.
	Cond func(*schema.Table) bool
}

// GraphTemplate is a template executed once per project.
type GraphTemplate struct {
	// Path of the template in the template set.
	Path string
	// Output overrides the output path pattern. Defaults to Path.
	Output string
	// Role is exposed to predicates.
	Role string
	// Skip the template for projects it returns true for.
	Skip func(*schema.Project) bool
}

func (t Template) output() string {
	if t.Output != "" {
		return t.Output
	}
	return t.Path
}

func (t GraphTemplate) output() string {
	if t.Output != "" {
		return t.Output
	}
	return t.Path
}
