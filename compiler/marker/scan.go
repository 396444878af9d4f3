package marker

import (
	"fmt"
	"strings"
)

const (
	openDelim  = "[["
	closeDelim = "]]"
	onlySep    = "-only-"
)

// Marker is a [[name]] token found in a template.
type Marker struct {
	// Name is the full marker name without brackets, e.g. "imports-only-main".
	Name string
	// Base is the name before the "-only-" qualifier, e.g. "imports".
	// Equal to Name for unqualified markers.
	Base string
	// Only is the predicate name after "-only-", e.g. "main". Empty for
	// unqualified markers.
	Only string
	// Offset is the byte offset of the opening brackets.
	Offset int
	// End is the byte offset just past the closing brackets.
	End int
}

// String returns the marker token.
func (m Marker) String() string { return openDelim + m.Name + closeDelim }

// ScanError reports a malformed marker.
type ScanError struct {
	Offset  int
	Name    string
	Message string
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	return fmt.Sprintf("malformed marker at offset %d: %s", e.Offset, e.Message)
}

// Scan returns the markers of text in order of appearance. An opening "[["
// that is not followed by a lower-case letter is literal text, so
// TypeScript such as "[[1, 2], [3, 4]]" passes through untouched. An opening
// "[[" followed by a lower-case letter always starts a marker and must be
// well formed: a nested array such as "[[a, b]]" is malformed and has to be
// written with a space, as in "[ [a, b] ]".
func Scan(text string) ([]Marker, error) {
	var markers []Marker
	for i := 0; i < len(text); {
		j := strings.Index(text[i:], openDelim)
		if j < 0 {
			break
		}
		start := i + j
		nameStart := start + len(openDelim)
		if nameStart >= len(text) || !isLower(text[nameStart]) {
			i = start + 1
			continue
		}
		k := strings.Index(text[nameStart:], closeDelim)
		if k < 0 {
			return nil, &ScanError{Offset: start, Name: clip(text[nameStart:]), Message: "missing closing ]]"}
		}
		name := text[nameStart : nameStart+k]
		if !ValidName(name) {
			return nil, &ScanError{Offset: start, Name: name, Message: fmt.Sprintf("invalid marker name %q", name)}
		}
		m := Marker{Name: name, Base: name, Offset: start, End: nameStart + k + len(closeDelim)}
		if base, pred, ok := strings.Cut(name, onlySep); ok {
			m.Base, m.Only = base, pred
		}
		markers = append(markers, m)
		i = m.End
	}
	return markers, nil
}

// ValidName reports whether s is a valid marker name: dash separated words
// of lower-case letters and digits, starting with a letter.
func ValidName(s string) bool {
	if s == "" || !isLower(s[0]) {
		return false
	}
	prevDash := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isLower(c) || ('0' <= c && c <= '9'):
			prevDash = false
		case c == '-' && !prevDash:
			prevDash = true
		default:
			return false
		}
	}
	return !prevDash
}

func isLower(c byte) bool { return 'a' <= c && c <= 'z' }

// clip shortens a run-away marker name for error messages.
func clip(s string) string {
	if i := strings.IndexAny(s, " \t\r\n"); i >= 0 {
		s = s[:i]
	}
	if len(s) > 32 {
		s = s[:32]
	}
	return s
}
