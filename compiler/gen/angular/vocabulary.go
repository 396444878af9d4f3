package angular

import (
	"fmt"
	"strings"

	"github.com/syssam/crudify/compiler/marker"
	"github.com/syssam/crudify/schema"
)

// Vocabulary returns a registry holding the markers and predicates of the
// Angular templates.
func Vocabulary() *marker.Registry {
	r := marker.NewRegistry()

	// Project.
	r.MustRegister("project-name", marker.Value(func(s *marker.Scope) string {
		if s.Project == nil {
			return ""
		}
		return s.Project.Name
	}))
	r.MustRegister("api-url", marker.Value(func(s *marker.Scope) string {
		if s.Project == nil {
			return ""
		}
		return strings.TrimSuffix(s.Project.APIURL, "/")
	}))

	// Table.
	r.MustRegister("name", marker.TableValue((*schema.Table).Name))
	r.MustRegister("class-name", marker.TableValue((*schema.Table).ClassName))
	r.MustRegister("file-name", marker.TableValue((*schema.Table).FileName))
	r.MustRegister("label", marker.TableValue(func(t *schema.Table) string { return schema.Label(t.Name()) }))
	r.MustRegister("primary-key", marker.TableValue(func(t *schema.Table) string { return primaryKey(t).Identifier() }))
	r.MustRegister("primary-key-type", marker.TableValue(func(t *schema.Table) string { return primaryKey(t).Kind().TSType() }))
	r.MustRegister("column-names", marker.TableValue(columnNames))

	// Column.
	r.MustRegister("column-name", marker.ColumnValue(schema.Column.Identifier))
	r.MustRegister("column-label", marker.ColumnValue(schema.Column.Label))
	r.MustRegister("column-db-type", marker.ColumnValue(schema.Column.DBType))
	r.MustRegister("column-type", marker.ColumnValue(func(c schema.Column) string { return c.Kind().TSType() }))
	r.MustRegister("column-optional", marker.ColumnValue(func(c schema.Column) string {
		if c.Nullable() {
			return "?"
		}
		return ""
	}))
	r.MustRegister("column-readonly", marker.ColumnValue(func(c schema.Column) string {
		if c.AutoGenerated() {
			return "true"
		}
		return "false"
	}))
	r.MustRegister("column-validators", marker.ColumnValue(func(c schema.Column) string {
		if required(c) {
			return ", Validators.required"
		}
		return ""
	}))

	// Verb.
	r.MustRegister("verb", marker.VerbValue(func(v schema.Verb) string { return string(v.Name) }))

	// Repeating markers.
	r.MustRegister("model-fields", marker.Repeat{
		Each:     marker.Columns,
		Template: marker.Fixed("models/field.ts"),
		Sep:      "\n",
	})
	r.MustRegister("service-methods", marker.Repeat{
		Each:     marker.Verbs,
		Template: perVerb("services/method.%s.ts"),
		Optional: true,
		Sep:      "\n",
	})
	r.MustRegister("component-methods", marker.Repeat{
		Each:     marker.Verbs,
		Template: perVerb("components/method.%s.ts"),
		Optional: true,
		Sep:      "\n",
	})
	r.MustRegister("row-actions", marker.Repeat{
		Each:     marker.Verbs,
		Template: perVerb("components/row-action.%s.html"),
		Optional: true,
		Sep:      "\n",
	})
	r.MustRegister("form-control-instantiations", marker.Repeat{
		Each:     marker.Columns,
		Template: perKind("components/form-control-instantiations.%s.ts"),
		Where:    listed,
		Optional: true,
		Sep:      "\n",
	})
	r.MustRegister("filter-inputs", marker.Repeat{
		Each:     marker.Columns,
		Template: perKind("components/filter-input.%s.html"),
		Where:    listed,
		Optional: true,
		Sep:      "\n",
	})
	r.MustRegister("columns", marker.Repeat{
		Each:     marker.Columns,
		Template: marker.Fixed("components/column.html"),
		Where:    listed,
		Sep:      "\n",
	})
	r.MustRegister("cells", marker.Repeat{
		Each:     marker.Columns,
		Template: marker.Fixed("components/cell.html"),
		Where:    listed,
		Sep:      "\n",
	})
	r.MustRegister("form-controls", marker.Repeat{
		Each:     marker.Columns,
		Template: marker.Fixed("components/form-control.ts"),
		Where:    editableColumn,
		Sep:      "\n",
	})
	r.MustRegister("form-fields", marker.Repeat{
		Each:     marker.Columns,
		Template: perKind("components/form-field.%s.html"),
		Where:    editableColumn,
		Sep:      "\n",
	})
	r.MustRegister("routes", marker.Repeat{
		Each:     marker.Tables,
		Template: marker.Fixed("routing/route.ts"),
		Where:    func(s *marker.Scope) bool { return Listable(s.Table) },
		Sep:      "\n",
	})
	r.MustRegister("route-imports", marker.Repeat{
		Each:     marker.Tables,
		Template: marker.Fixed("routing/route-import.ts"),
		Where:    func(s *marker.Scope) bool { return Listable(s.Table) },
		Sep:      "\n",
	})

	// Partials.
	r.MustRegister("imports", marker.Partial(func(s *marker.Scope) string {
		return "components/imports." + s.Role + ".ts"
	}))
	r.MustRegister("dialog-import", marker.Partial(marker.Fixed("components/dialog-import.ts")))
	r.MustRegister("dialog-param", marker.Const(", private dialog: MatDialog"))
	r.MustRegister("create-button", marker.Partial(marker.Fixed("components/create-button.html")))
	r.MustRegister("save-update", marker.Partial(marker.Fixed("components/save-update.ts")))
	r.MustRegister("save-create", marker.Partial(marker.Fixed("components/save-create.ts")))

	registerPredicates(r)
	return r
}

func registerPredicates(r *marker.Registry) {
	r.MustRegisterPredicate(RoleMain, func(s *marker.Scope) bool { return s.Role == RoleMain })
	r.MustRegisterPredicate(RoleEdit, func(s *marker.Scope) bool { return s.Role == RoleEdit })

	for _, k := range []schema.Kind{schema.KindString, schema.KindNumber, schema.KindBool, schema.KindDate, schema.KindOther} {
		k := k
		r.MustRegisterPredicate(k.String(), column(func(c schema.Column) bool { return c.Kind() == k }))
	}
	r.MustRegisterPredicate("nullable", column(schema.Column.Nullable))
	r.MustRegisterPredicate("primary", column(schema.Column.Primary))
	r.MustRegisterPredicate("auto", column(schema.Column.AutoGenerated))
	r.MustRegisterPredicate("required", column(required))

	for _, v := range schema.AllVerbs {
		v := v
		r.MustRegisterPredicate(string(v), func(s *marker.Scope) bool {
			switch {
			case s.Column != nil:
				return s.Column.In(v)
			case s.Verb != nil:
				return s.Verb.Name == v
			case s.Table != nil:
				return s.Table.Generates(v)
			}
			return false
		})
	}
	r.MustRegisterPredicate("editable", func(s *marker.Scope) bool {
		switch {
		case s.Column != nil:
			return editableColumn(s)
		case s.Table != nil:
			return Editable(s.Table)
		}
		return false
	})
	r.MustRegisterPredicate("listable", func(s *marker.Scope) bool {
		return s.Table != nil && Listable(s.Table)
	})
}

// column lifts a column test to a predicate, false outside column scopes.
func column(f func(schema.Column) bool) marker.Predicate {
	return func(s *marker.Scope) bool {
		return s.Column != nil && f(*s.Column)
	}
}

var listed = column(func(c schema.Column) bool { return c.In(schema.Get) })

var editableColumn = column(func(c schema.Column) bool {
	return c.In(schema.Post) || c.In(schema.Put)
})

func required(c schema.Column) bool { return !c.Nullable() && !c.AutoGenerated() }

func perKind(format string) func(*marker.Scope) string {
	return func(s *marker.Scope) string {
		return fmt.Sprintf(format, s.Column.Kind())
	}
}

func perVerb(format string) func(*marker.Scope) string {
	return func(s *marker.Scope) string {
		return fmt.Sprintf(format, s.Verb.Name)
	}
}

// primaryKey returns the first primary key column of t, or a number column
// named id for tables without one.
func primaryKey(t *schema.Table) schema.Column {
	if pks := t.PrimaryKeys(); len(pks) > 0 {
		return pks[0]
	}
	return schema.NewColumn("id", "int", schema.Primary())
}

func columnNames(t *schema.Table) string {
	cols := t.Filter(func(c schema.Column) bool { return c.In(schema.Get) })
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = "'" + c.Identifier() + "'"
	}
	return strings.Join(names, ", ")
}
