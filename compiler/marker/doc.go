// Package marker implements the substitution language of crudify templates.
//
// A marker is a token of the form [[name]] or [[name-only-X]]. Names are
// dash separated lower-case words. Each marker is resolved through a
// Registry mapping names to Resolvers:
//
//	reg := marker.NewRegistry()
//	reg.MustRegister("name", marker.TableValue((*schema.Table).Name))
//	reg.MustRegister("column-name", marker.ColumnValue(schema.Column.Identifier))
//	reg.MustRegister("columns", marker.Repeat{
//	    Each:     marker.Columns,
//	    Template: marker.Fixed("column.ts"),
//	})
//	reg.MustRegisterPredicate("string", func(s *marker.Scope) bool {
//	    return s.Column != nil && s.Column.Kind() == schema.KindString
//	})
//
// With the registry above, [[columns-only-string]] expands column.ts once
// per string column, in declared column order.
//
// # Expansion
//
// Expansion is a single left-to-right pass. The output of a resolver is
// written as is and never scanned again, so a value holding "[[" can not
// inject markers. Repeating resolvers expand their sub-template in a child
// scope, the sub-template is expanded on its own, and its result is
// inserted verbatim; nesting is bounded by the engine depth limit.
//
// A qualified marker [[base-only-X]] resolves to an exact registration of
// the full name when one exists. Otherwise the base resolver is combined
// with predicate X: a Filterable resolver (Repeat) drops the elements
// failing X, any other resolver expands to nothing when X fails on the
// current scope.
//
// # Errors
//
// Unknown markers, unknown predicates, malformed markers and resolver
// failures are reported as *crudify.TemplateError, naming the template path
// and the marker.
package marker
