package marker

import (
	"errors"
	"strings"

	"github.com/syssam/crudify/schema"
)

var (
	errNoEngine = errors.New("scope is not attached to an engine")
	errNoTable  = errors.New("marker requires a table scope")
	errNoColumn = errors.New("marker requires a column scope")
	errNoVerb   = errors.New("marker requires a verb scope")
)

// Resolver produces the text substituted for a marker in scope s.
type Resolver interface {
	Resolve(s *Scope, m Marker) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(s *Scope, m Marker) (string, error)

// Resolve calls f(s, m).
func (f ResolverFunc) Resolve(s *Scope, m Marker) (string, error) { return f(s, m) }

// Predicate selects scopes. Used by "-only-" markers and by Repeat to drop
// elements; elements failing it contribute nothing.
type Predicate func(s *Scope) bool

// Filterable is implemented by resolvers that apply an "-only-" predicate
// to every element they expand, rather than to the current scope.
type Filterable interface {
	Resolver
	Filter(p Predicate) Resolver
}

// gated applies a predicate to the current scope of a scalar resolver:
// when it fails the marker expands to nothing.
type gated struct {
	pred Predicate
	res  Resolver
}

func (g gated) Resolve(s *Scope, m Marker) (string, error) {
	if !g.pred(s) {
		return "", nil
	}
	return g.res.Resolve(s, m)
}

// Const returns a resolver expanding to text.
func Const(text string) Resolver {
	return ResolverFunc(func(*Scope, Marker) (string, error) { return text, nil })
}

// Value returns a resolver expanding to f(s).
func Value(f func(s *Scope) string) Resolver {
	return ResolverFunc(func(s *Scope, _ Marker) (string, error) { return f(s), nil })
}

// TableValue returns a resolver expanding to f of the scope table. It fails
// outside of a table scope.
func TableValue(f func(t *schema.Table) string) Resolver {
	return ResolverFunc(func(s *Scope, _ Marker) (string, error) {
		if s.Table == nil {
			return "", errNoTable
		}
		return f(s.Table), nil
	})
}

// ColumnValue returns a resolver expanding to f of the scope column. It
// fails outside of a column scope.
func ColumnValue(f func(c schema.Column) string) Resolver {
	return ResolverFunc(func(s *Scope, _ Marker) (string, error) {
		if s.Column == nil {
			return "", errNoColumn
		}
		return f(*s.Column), nil
	})
}

// VerbValue returns a resolver expanding to f of the scope verb. It fails
// outside of a verb scope.
func VerbValue(f func(v schema.Verb) string) Resolver {
	return ResolverFunc(func(s *Scope, _ Marker) (string, error) {
		if s.Verb == nil {
			return "", errNoVerb
		}
		return f(*s.Verb), nil
	})
}

// Repeat expands one sub-template per element of an ordered sequence and
// concatenates the blocks. It is a stateless map, filter and join: Each
// lists the element scopes, Where drops elements, Template names the
// sub-template of each remaining element.
type Repeat struct {
	// Each returns the element scopes in order. Required.
	Each func(s *Scope) ([]*Scope, error)
	// Template returns the sub-template path for an element. Required.
	Template func(elem *Scope) string
	// Where filters elements. Optional.
	Where Predicate
	// Optional makes a missing sub-template contribute nothing instead of
	// failing. Used for per-kind sub-templates that exist only for some kinds.
	Optional bool
	// Sep is written between blocks.
	Sep string
}

// Resolve implements Resolver.
func (r Repeat) Resolve(s *Scope, _ Marker) (string, error) {
	elems, err := r.Each(s)
	if err != nil {
		return "", err
	}
	kept := make([]*Scope, 0, len(elems))
	for _, e := range elems {
		if r.Where == nil || r.Where(e) {
			kept = append(kept, e)
		}
	}
	var b strings.Builder
	n := 0
	for i, e := range kept {
		e.Index, e.Last = i, i == len(kept)-1
		path := r.Template(e)
		if path == "" {
			continue
		}
		if r.Optional && s.engine != nil && !s.engine.set.Exists(path) {
			continue
		}
		out, err := s.Include(path, e)
		if err != nil {
			return "", err
		}
		if n > 0 {
			b.WriteString(r.Sep)
		}
		b.WriteString(out)
		n++
	}
	return b.String(), nil
}

// Filter implements Filterable: the returned Repeat keeps only the elements
// satisfying both its own filter and p.
func (r Repeat) Filter(p Predicate) Resolver {
	where := r.Where
	r.Where = func(s *Scope) bool {
		return (where == nil || where(s)) && p(s)
	}
	return r
}

// Partial returns a resolver expanding the sub-template named by path in a
// child of the current scope. Combined with an "-only-" predicate it
// includes a snippet conditionally.
func Partial(path func(s *Scope) string) Resolver {
	return ResolverFunc(func(s *Scope, _ Marker) (string, error) {
		return s.Include(path(s), s.child())
	})
}

// Fixed returns a Template function always naming path.
func Fixed(path string) func(*Scope) string {
	return func(*Scope) string { return path }
}

// Columns lists one scope per column of the scope table, in declared order.
func Columns(s *Scope) ([]*Scope, error) {
	if s.Table == nil {
		return nil, errNoTable
	}
	cols := s.Table.Columns()
	scopes := make([]*Scope, len(cols))
	for i, c := range cols {
		scopes[i] = s.ForColumn(c)
	}
	return scopes, nil
}

// Tables lists one scope per project table, in declared order.
func Tables(s *Scope) ([]*Scope, error) {
	if s.Project == nil {
		return nil, nil
	}
	scopes := make([]*Scope, len(s.Project.Tables))
	for i, t := range s.Project.Tables {
		scopes[i] = s.ForTable(t)
	}
	return scopes, nil
}

// Verbs lists one scope per verb the user opted to generate for the scope
// table, in table order.
func Verbs(s *Scope) ([]*Scope, error) {
	if s.Table == nil {
		return nil, errNoTable
	}
	var scopes []*Scope
	for _, v := range s.Table.Verbs() {
		if v.Generate {
			scopes = append(scopes, s.ForVerb(v))
		}
	}
	return scopes, nil
}
