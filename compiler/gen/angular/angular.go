// Package angular is the Angular dialect of the generator: for every table a
// model interface, an HTTP service, a list component with debounced column
// filters and an edit dialog, plus the routing module of the project.
//
// Templates are embedded. A template directory given to the generator
// shadows them file by file, so a project can restyle a single snippet such
// as components/form-control-instantiations.string.ts and keep the rest.
//
// # Vocabulary
//
// Project scope:
//
//	[[project-name]]  [[api-url]]
//
// Table scope:
//
//	[[name]]              table name as declared
//	[[class-name]]        singular PascalCase name, "users" is "User"
//	[[file-name]]         kebab-case name used in paths
//	[[label]]             human readable title
//	[[primary-key]]       identifier of the first primary key column, "id" if none
//	[[primary-key-type]]  TypeScript type of that column
//	[[column-names]]      quoted identifiers of the listed columns
//
// Column scope:
//
//	[[column-name]] [[column-label]] [[column-type]] [[column-db-type]]
//	[[column-optional]] [[column-readonly]] [[column-validators]]
//
// Verb scope:
//
//	[[verb]]
//
// Repeating markers expand one sub-template per element: [[model-fields]],
// [[service-methods]], [[component-methods]], [[form-control-instantiations]],
// [[filter-inputs]], [[columns]], [[cells]], [[row-actions]],
// [[form-controls]], [[form-fields]], [[routes]] and [[route-imports]].
// Per-kind or per-verb sub-templates that do not exist contribute nothing.
//
// Partials include a snippet in the current scope: [[imports]] (the
// imports of the current role), [[dialog-import]], [[dialog-param]],
// [[create-button]], [[save-update]] and [[save-create]].
//
// Predicates, usable as [[marker-only-X]]: main, edit (file role); string,
// number, bool, date, other, nullable, primary, auto, required (column);
// get, post, put, delete, editable (column inclusion, verb name or table
// verbs, whichever the scope holds); listable (table).
package angular

import (
	"embed"
	"io/fs"
	"path"
	"strings"

	"github.com/syssam/crudify/compiler/gen"
	"github.com/syssam/crudify/compiler/marker"
	"github.com/syssam/crudify/schema"
)

//go:embed templates
var embedded embed.FS

// Templates is the default template set.
var Templates = func() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}()

// Name of the dialect.
const Name = "angular"

// Dialect is the Angular dialect.
type Dialect struct{}

var (
	_ gen.Dialect   = (*Dialect)(nil)
	_ gen.Commenter = (*Dialect)(nil)
)

// New returns the Angular dialect.
func New() *Dialect { return &Dialect{} }

// Name implements gen.Dialect.
func (*Dialect) Name() string { return Name }

// FS implements gen.Dialect.
func (*Dialect) FS() fs.FS { return Templates }

// Registry implements gen.Dialect.
func (*Dialect) Registry() *marker.Registry { return Vocabulary() }

// Templates implements gen.Dialect.
func (*Dialect) Templates() []gen.Template {
	return []gen.Template{
		{
			Path:   "models/model.ts",
			Output: "models/[[file-name]].model.ts",
		},
		{
			Path:   "services/service.ts",
			Output: "services/[[file-name]].service.ts",
		},
		{
			Path:   "components/list.component.ts",
			Output: "components/[[file-name]]/[[file-name]].component.ts",
			Role:   RoleMain,
			Cond:   Listable,
		},
		{
			Path:   "components/list.component.html",
			Output: "components/[[file-name]]/[[file-name]].component.html",
			Role:   RoleMain,
			Cond:   Listable,
		},
		{
			Path:   "components/edit.component.ts",
			Output: "components/[[file-name]]/[[file-name]]-edit.component.ts",
			Role:   RoleEdit,
			Cond:   Editable,
		},
		{
			Path:   "components/edit.component.html",
			Output: "components/[[file-name]]/[[file-name]]-edit.component.html",
			Role:   RoleEdit,
			Cond:   Editable,
		},
	}
}

// GraphTemplates implements gen.Dialect.
func (*Dialect) GraphTemplates() []gen.GraphTemplate {
	return []gen.GraphTemplate{
		{
			Path:   "routing/app-routing.module.ts",
			Output: "app-routing.module.ts",
			Skip: func(p *schema.Project) bool {
				for _, t := range p.Tables {
					if Listable(t) {
						return false
					}
				}
				return true
			},
		},
	}
}

// Comment implements gen.Commenter.
func (*Dialect) Comment(file, text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	switch path.Ext(file) {
	case ".ts":
		var b strings.Builder
		for _, l := range lines {
			b.WriteString(strings.TrimRight("// "+l, " "))
			b.WriteByte('\n')
		}
		return b.String()
	case ".html":
		return "<!-- " + strings.Join(lines, "\n     ") + " -->\n"
	}
	return ""
}

// File roles.
const (
	RoleMain = "main"
	RoleEdit = "edit"
)

// Listable reports whether a list component is generated for t: listing
// needs the get verb.
func Listable(t *schema.Table) bool { return t.Generates(schema.Get) }

// Editable reports whether an edit dialog is generated for t.
func Editable(t *schema.Table) bool {
	return t.Generates(schema.Put) || t.Generates(schema.Post)
}
