package schema

import (
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// reserved TypeScript words that cannot be used as identifiers.
var reserved = map[string]struct{}{
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {}, "continue": {},
	"debugger": {}, "default": {}, "delete": {}, "do": {}, "else": {}, "enum": {},
	"export": {}, "extends": {}, "false": {}, "finally": {}, "for": {}, "function": {},
	"if": {}, "import": {}, "in": {}, "instanceof": {}, "new": {}, "null": {},
	"return": {}, "super": {}, "switch": {}, "this": {}, "throw": {}, "true": {},
	"try": {}, "typeof": {}, "var": {}, "void": {}, "while": {}, "with": {},
	"implements": {}, "interface": {}, "let": {}, "package": {}, "private": {},
	"protected": {}, "public": {}, "static": {}, "yield": {}, "await": {},
}

// Identifier turns a database name into a valid TypeScript identifier.
// Characters outside [A-Za-z0-9_$] become underscores, a leading digit is
// prefixed with an underscore, and reserved words get a trailing underscore.
func Identifier(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	b.Grow(len(name) + 1)
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
			b.WriteRune(r)
		case '0' <= r && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	id := b.String()
	if _, ok := reserved[id]; ok {
		id += "_"
	}
	return id
}

// Label returns a human readable title for a database name:
// "created_at" becomes "Created At".
func Label(name string) string {
	s := strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(name)
	// A Caser is stateful and can not be shared between goroutines.
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

// ClassName returns the singular PascalCase name for a table:
// "users" becomes "User", "order_items" becomes "OrderItem".
func ClassName(table string) string {
	base := Identifier(strings.ReplaceAll(table, ".", "_"))
	words := strings.Split(base, "_")
	last := len(words) - 1
	for last > 0 && words[last] == "" {
		last--
	}
	words[last] = inflect.Singularize(words[last])
	return Identifier(inflect.Camelize(strings.Join(words, "_")))
}

// FileName returns the kebab-case name used for generated file and
// directory names: "OrderItems" and "order_items" become "order-items".
func FileName(table string) string {
	return inflect.Dasherize(strings.ReplaceAll(table, ".", "_"))
}
