package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/crudify"
	"github.com/syssam/crudify/schema"
)

// File is the on-disk form of a project. JSON files are accepted as well,
// being valid YAML.
type File struct {
	Name   string  `yaml:"name"`
	APIURL string  `yaml:"api_url"`
	Tables []Table `yaml:"tables"`
}

// Table is a table entry of a project file.
type Table struct {
	Name string `yaml:"name"`
	// Verbs to generate. All verbs are generated when empty.
	Verbs   []string `yaml:"verbs,omitempty"`
	Columns []Column `yaml:"columns"`
}

// Column is a column entry of a project file.
type Column struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable,omitempty"`
	Primary  bool   `yaml:"primary,omitempty"`
	Auto     bool   `yaml:"auto,omitempty"`
	// Verbs including the column. Derived from the other flags when empty.
	Verbs []string `yaml:"verbs,omitempty"`
}

// ReadFile loads the project described by the YAML or JSON file at path.
func ReadFile(path string) (*schema.Project, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, crudify.NewNotFoundError(path, err)
	case err != nil:
		return nil, crudify.NewIOError("read", path, err)
	}
	p, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a project file. Unknown keys are rejected.
func Parse(r io.Reader) (*schema.Project, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("load: empty project file")
		}
		return nil, fmt.Errorf("load: decode project: %w", err)
	}
	return f.Project()
}

// Project validates f and converts it to the metadata model.
func (f *File) Project() (*schema.Project, error) {
	if len(f.Tables) == 0 {
		return nil, errors.New("load: project has no tables")
	}
	tables := make([]*schema.Table, 0, len(f.Tables))
	for i, tf := range f.Tables {
		t, err := tf.table()
		if err != nil {
			return nil, fmt.Errorf("load: table %d: %w", i, err)
		}
		tables = append(tables, t)
	}
	return schema.NewProject(f.Name, f.APIURL, tables...)
}

func (tf Table) table() (*schema.Table, error) {
	cols := make([]schema.Column, 0, len(tf.Columns))
	for _, cf := range tf.Columns {
		c, err := cf.column()
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", cf.Name, err)
		}
		cols = append(cols, c)
	}
	var verbs []schema.Verb
	if len(tf.Verbs) > 0 {
		names, err := parseVerbs(tf.Verbs)
		if err != nil {
			return nil, err
		}
		set := schema.NewVerbSet(names...)
		for _, v := range schema.AllVerbs {
			verbs = append(verbs, schema.Verb{Name: v, Generate: set.Has(v)})
		}
	}
	return schema.NewTable(tf.Name, cols, verbs...)
}

func (cf Column) column() (schema.Column, error) {
	if cf.Type == "" {
		return schema.Column{}, errors.New("missing type")
	}
	var opts []schema.ColumnOption
	if cf.Nullable {
		opts = append(opts, schema.Nullable())
	}
	if cf.Primary {
		opts = append(opts, schema.Primary())
	}
	if cf.Auto {
		opts = append(opts, schema.AutoGenerated())
	}
	if len(cf.Verbs) > 0 {
		names, err := parseVerbs(cf.Verbs)
		if err != nil {
			return schema.Column{}, err
		}
		opts = append(opts, schema.InVerbs(names...))
	}
	return schema.NewColumn(cf.Name, cf.Type, opts...), nil
}

func parseVerbs(ss []string) ([]schema.VerbName, error) {
	names := make([]schema.VerbName, len(ss))
	for i, s := range ss {
		v, err := schema.ParseVerb(s)
		if err != nil {
			return nil, err
		}
		names[i] = v
	}
	return names, nil
}

// FromProject returns the file form of p. Verb lists are written only when
// they differ from the defaults, so FromProject(p).Project() is equivalent
// to p.
func FromProject(p *schema.Project) *File {
	f := &File{Name: p.Name, APIURL: p.APIURL}
	for _, t := range p.Tables {
		tf := Table{Name: t.Name()}
		all := true
		for _, v := range t.Verbs() {
			if v.Generate {
				tf.Verbs = append(tf.Verbs, string(v.Name))
			} else {
				all = false
			}
		}
		if all && len(t.Verbs()) == len(schema.AllVerbs) {
			tf.Verbs = nil
		}
		for _, c := range t.Columns() {
			cf := Column{
				Name:     c.Name(),
				Type:     c.DBType(),
				Nullable: c.Nullable(),
				Primary:  c.Primary(),
				Auto:     c.AutoGenerated(),
			}
			if c.Verbs() != schema.DefaultVerbs(c) {
				for _, v := range c.Verbs().Names() {
					cf.Verbs = append(cf.Verbs, string(v))
				}
			}
			tf.Columns = append(tf.Columns, cf)
		}
		f.Tables = append(f.Tables, tf)
	}
	return f
}

// Marshal encodes p as a YAML project file.
func Marshal(p *schema.Project) ([]byte, error) {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(FromProject(p)); err != nil {
		return nil, fmt.Errorf("load: encode project: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
