package schema

import (
	"errors"
	"fmt"
)

// Table describes one database table: its name, its columns in declared
// order and the verbs to scaffold for it.
type Table struct {
	name    string
	columns []Column
	verbs   []Verb
}

// NewTable returns a new table. Column names must be non-empty and unique
// within the table, and so must their TypeScript identifiers. When no verbs
// are given every verb is generated.
func NewTable(name string, columns []Column, verbs ...Verb) (*Table, error) {
	if name == "" {
		return nil, errors.New("schema: table name cannot be empty")
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("schema: table %q has no columns", name)
	}
	seen := make(map[string]struct{}, len(columns))
	ids := make(map[string]string, len(columns))
	for i, c := range columns {
		if c.name == "" {
			return nil, fmt.Errorf("schema: table %q column %d has no name", name, i)
		}
		if _, ok := seen[c.name]; ok {
			return nil, fmt.Errorf("schema: table %q has duplicate column %q", name, c.name)
		}
		seen[c.name] = struct{}{}
		id := c.Identifier()
		if other, ok := ids[id]; ok {
			return nil, fmt.Errorf("schema: table %q columns %q and %q share the identifier %q", name, other, c.name, id)
		}
		ids[id] = c.name
	}
	if len(verbs) == 0 {
		verbs = DefaultTableVerbs()
	}
	vseen := make(map[VerbName]struct{}, len(verbs))
	for _, v := range verbs {
		if v.Name.bit() == 0 {
			return nil, fmt.Errorf("schema: table %q has unknown verb %q", name, v.Name)
		}
		if _, ok := vseen[v.Name]; ok {
			return nil, fmt.Errorf("schema: table %q has duplicate verb %q", name, v.Name)
		}
		vseen[v.Name] = struct{}{}
	}
	return &Table{
		name:    name,
		columns: append([]Column(nil), columns...),
		verbs:   append([]Verb(nil), verbs...),
	}, nil
}

// MustNewTable is like NewTable but panics on error.
func MustNewTable(name string, columns []Column, verbs ...Verb) *Table {
	t, err := NewTable(name, columns, verbs...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Columns returns a copy of the columns in declared order.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.columns {
		if c.name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Filter returns the columns satisfying pred, in declared order.
func (t *Table) Filter(pred func(Column) bool) []Column {
	var cols []Column
	for _, c := range t.columns {
		if pred(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// PrimaryKeys returns the primary key columns.
func (t *Table) PrimaryKeys() []Column {
	return t.Filter(Column.Primary)
}

// Verbs returns a copy of the table verbs.
func (t *Table) Verbs() []Verb {
	return append([]Verb(nil), t.verbs...)
}

// Generates reports whether the user opted to scaffold verb v.
func (t *Table) Generates(v VerbName) bool {
	for _, verb := range t.verbs {
		if verb.Name == v {
			return verb.Generate
		}
	}
	return false
}

// WithVerbs returns a copy of the table with the given verbs.
func (t *Table) WithVerbs(verbs ...Verb) (*Table, error) {
	return NewTable(t.name, t.columns, verbs...)
}

// ClassName returns the singular PascalCase name of the table.
func (t *Table) ClassName() string { return ClassName(t.name) }

// FileName returns the kebab-case name used for generated paths.
func (t *Table) FileName() string { return FileName(t.name) }

// Project is the root of the metadata: the tables to scaffold and the
// settings shared by all of them.
type Project struct {
	// Name of the generated Angular module.
	Name string
	// APIURL is the base URL of the backend CRUD endpoints.
	APIURL string
	// Tables in declared order.
	Tables []*Table
}

// NewProject returns a new project. Table names must be unique, and so
// must the file names derived from them.
func NewProject(name, apiURL string, tables ...*Table) (*Project, error) {
	seen := make(map[string]struct{}, len(tables))
	files := make(map[string]string, len(tables))
	for _, t := range tables {
		if t == nil {
			return nil, errors.New("schema: nil table")
		}
		if _, ok := seen[t.name]; ok {
			return nil, fmt.Errorf("schema: duplicate table %q", t.name)
		}
		seen[t.name] = struct{}{}
		fn := t.FileName()
		if other, ok := files[fn]; ok {
			return nil, fmt.Errorf("schema: tables %q and %q map to the same file name %q", other, t.name, fn)
		}
		files[fn] = t.name
	}
	return &Project{Name: name, APIURL: apiURL, Tables: tables}, nil
}

// Table returns the named table.
func (p *Project) Table(name string) (*Table, bool) {
	for _, t := range p.Tables {
		if t.name == name {
			return t, true
		}
	}
	return nil, false
}
