package schema

import (
	"fmt"
	"strings"
)

// VerbName is an HTTP verb of a generated CRUD endpoint.
type VerbName string

// Supported verbs.
const (
	Get    VerbName = "get"
	Post   VerbName = "post"
	Put    VerbName = "put"
	Delete VerbName = "delete"
)

// AllVerbs lists the supported verbs in scaffolding order.
var AllVerbs = []VerbName{Get, Post, Put, Delete}

// ParseVerb parses a verb name, case-insensitively.
func ParseVerb(s string) (VerbName, error) {
	v := VerbName(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case Get, Post, Put, Delete:
		return v, nil
	}
	return "", fmt.Errorf("schema: unknown verb %q", s)
}

func (v VerbName) bit() VerbSet {
	switch v {
	case Get:
		return 1 << 0
	case Post:
		return 1 << 1
	case Put:
		return 1 << 2
	case Delete:
		return 1 << 3
	}
	return 0
}

// Verb describes whether the user opted to scaffold a verb for a table.
type Verb struct {
	Name     VerbName
	Generate bool
}

// DefaultTableVerbs returns all verbs with Generate set.
func DefaultTableVerbs() []Verb {
	verbs := make([]Verb, len(AllVerbs))
	for i, v := range AllVerbs {
		verbs[i] = Verb{Name: v, Generate: true}
	}
	return verbs
}

// VerbSet is the set of verbs a column participates in.
type VerbSet uint8

// NewVerbSet returns a set holding the given verbs.
func NewVerbSet(verbs ...VerbName) VerbSet {
	var s VerbSet
	for _, v := range verbs {
		s |= v.bit()
	}
	return s
}

// Has reports whether v is in the set.
func (s VerbSet) Has(v VerbName) bool {
	b := v.bit()
	return b != 0 && s&b != 0
}

// Names returns the verbs of the set in AllVerbs order.
func (s VerbSet) Names() []VerbName {
	var names []VerbName
	for _, v := range AllVerbs {
		if s.Has(v) {
			names = append(names, v)
		}
	}
	return names
}

// String implements fmt.Stringer.
func (s VerbSet) String() string {
	names := s.Names()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
