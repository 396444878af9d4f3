package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/crudify"
)

// ManifestName is the name of the manifest file in the output directory.
const ManifestName = ".crudify.manifest"

const manifestVersion = 1

// Manifest records the files produced by a run. The next run reads it to
// find stale files.
type Manifest struct {
	Version   int             `msgpack:"version"`
	RunID     string          `msgpack:"run_id"`
	Dialect   string          `msgpack:"dialect"`
	Generated time.Time       `msgpack:"generated"`
	Files     []ManifestEntry `msgpack:"files"`
}

// ManifestEntry is a generated file and the digest of its content.
type ManifestEntry struct {
	Path   string `msgpack:"path"`
	SHA256 string `msgpack:"sha256"`
	Size   int    `msgpack:"size"`
}

// NewManifest returns an empty manifest with a new run ID.
func NewManifest(dialect string) *Manifest {
	return &Manifest{
		Version:   manifestVersion,
		RunID:     uuid.NewString(),
		Dialect:   dialect,
		Generated: time.Now().UTC(),
	}
}

// Digest returns the hex SHA-256 digest of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Add records the file at path with the hex SHA-256 digest and size of its
// content.
func (m *Manifest) Add(path, sum string, size int) {
	m.Files = append(m.Files, ManifestEntry{Path: path, SHA256: sum, Size: size})
}

// Lookup returns the entry recorded for path.
func (m *Manifest) Lookup(path string) (ManifestEntry, bool) {
	if m == nil {
		return ManifestEntry{}, false
	}
	for _, e := range m.Files {
		if e.Path == path {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// Stale returns the paths recorded in m that are not planned any more,
// sorted.
func (m *Manifest) Stale(planned map[string]struct{}) []string {
	if m == nil {
		return nil
	}
	var stale []string
	for _, e := range m.Files {
		if _, ok := planned[e.Path]; !ok {
			stale = append(stale, e.Path)
		}
	}
	sort.Strings(stale)
	return stale
}

// ReadManifest reads the manifest of the output directory dir. It returns
// a *crudify.NotFoundError when dir holds no manifest.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, crudify.NewNotFoundError(path, err)
	}
	if err != nil {
		return nil, crudify.NewIOError("read", path, err)
	}
	m := &Manifest{}
	if err := msgpack.Unmarshal(data, m); err != nil {
		return nil, crudify.NewIOError("decode", path, err)
	}
	return m, nil
}

// WriteManifest writes m to the output directory of w.
func WriteManifest(w *Writer, m *Manifest) error {
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path })
	data, err := msgpack.Marshal(m)
	if err != nil {
		return crudify.NewIOError("encode", ManifestName, err)
	}
	if w.dryRun {
		return nil
	}
	return writeFileAtomic(filepath.Join(w.root, ManifestName), data)
}

// Prune removes the stale files of prev. A file modified since it was
// generated is kept and reported in skipped.
func Prune(w *Writer, prev *Manifest, planned map[string]struct{}) (removed, skipped []string, err error) {
	var errs []error
	for _, rel := range prev.Stale(planned) {
		path, err := w.Resolve(rel)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, crudify.NewIOError("read", path, err))
			continue
		}
		if e, _ := prev.Lookup(rel); e.SHA256 != Digest(data) {
			skipped = append(skipped, rel)
			continue
		}
		if err := w.Remove(rel); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, rel)
	}
	return removed, skipped, crudify.NewAggregateError(errs...)
}
