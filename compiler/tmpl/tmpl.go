// Package tmpl loads template files by logical path from a stack of
// file systems.
//
// A Set is built from one or more layers. Layers are searched in order, so a
// directory of user templates placed before the embedded defaults shadows
// them file by file:
//
//	set := tmpl.New(os.DirFS("my-templates"), angular.Templates)
//	f, err := set.Load("components/[[name]]/[[name]].component.ts")
//
// Loading is a pure read. Loaded files are cached, since a generation run
// reads the same sub-templates once per table.
package tmpl

import (
	"errors"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/syssam/crudify"
)

// File is a raw template: text holding zero or more markers, identified by
// its path. The path may itself hold markers.
type File struct {
	Path string
	Text string
}

// Set is an ordered stack of template file systems. It is safe for
// concurrent use.
type Set struct {
	layers []fs.FS
	cache  sync.Map // path -> *File
}

// New returns a Set searching the given layers in order. Nil layers are
// skipped.
func New(layers ...fs.FS) *Set {
	s := &Set{}
	for _, l := range layers {
		if l != nil {
			s.layers = append(s.layers, l)
		}
	}
	return s
}

// Load reads the template at path. It returns a *crudify.NotFoundError if
// no layer holds the path, or if the path is not a valid, relative,
// slash-separated path.
func (s *Set) Load(name string) (*File, error) {
	if f, ok := s.cache.Load(name); ok {
		return f.(*File), nil
	}
	if !fs.ValidPath(name) || name == "." {
		return nil, crudify.NewNotFoundError(name, fs.ErrInvalid)
	}
	for _, l := range s.layers {
		b, err := fs.ReadFile(l, name)
		switch {
		case err == nil:
			f, _ := s.cache.LoadOrStore(name, &File{Path: name, Text: string(b)})
			return f.(*File), nil
		case errors.Is(err, fs.ErrNotExist):
			continue
		default:
			return nil, crudify.NewNotFoundError(name, err)
		}
	}
	return nil, crudify.NewNotFoundError(name, fs.ErrNotExist)
}

// Exists reports whether some layer holds path.
func (s *Set) Exists(name string) bool {
	if _, ok := s.cache.Load(name); ok {
		return true
	}
	if !fs.ValidPath(name) || name == "." {
		return false
	}
	for _, l := range s.layers {
		if info, err := fs.Stat(l, name); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// List returns the paths of all template files in all layers, sorted and
// without duplicates.
func (s *Set) List() ([]string, error) {
	return s.Glob("")
}

// Glob returns the sorted template paths matching pattern, using path.Match
// syntax. An empty pattern matches everything.
func (s *Set) Glob(pattern string) ([]string, error) {
	if pattern != "" {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, err
		}
	}
	seen := make(map[string]struct{})
	for _, l := range s.layers {
		err := fs.WalkDir(l, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if pattern != "" {
				if ok, _ := path.Match(pattern, p); !ok {
					return nil
				}
			}
			seen[p] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}
