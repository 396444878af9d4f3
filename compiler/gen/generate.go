package gen

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/crudify"
	"github.com/syssam/crudify/compiler/marker"
	"github.com/syssam/crudify/compiler/tmpl"
	"github.com/syssam/crudify/schema"
)

// Generator expands the templates of a dialect for the tables of a project
// and writes the results below the target directory.
//
// Tables are generated in parallel, bounded by the configured number of
// workers. A file failure does not stop the run: every failure is recorded
// in the report and the remaining files are still generated.
type Generator struct {
	cfg     *Config
	project *schema.Project
	tables  []*schema.Table
	set     *tmpl.Set
	engine  *marker.Engine
	writer  *Writer
	log     *zap.Logger
}

// New returns a generator for project p.
func New(p *schema.Project, opts ...Option) (*Generator, error) {
	if p == nil {
		return nil, NewConfigError("Project", nil, "project cannot be nil")
	}
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	tables := p.Tables
	if len(cfg.Tables) > 0 {
		tables = make([]*schema.Table, 0, len(cfg.Tables))
		for _, name := range cfg.Tables {
			t, ok := p.Table(name)
			if !ok {
				return nil, NewConfigError("Tables", name, "unknown table")
			}
			tables = append(tables, t)
		}
	}
	set := tmpl.New(cfg.Overrides, cfg.Dialect.FS())
	return &Generator{
		cfg:     cfg,
		project: p,
		tables:  tables,
		set:     set,
		engine:  marker.NewEngine(cfg.Dialect.Registry(), set),
		writer:  NewWriter(cfg.Target).WithDryRun(cfg.DryRun),
		log:     cfg.Logger.With(zap.String("dialect", cfg.Dialect.Name())),
	}, nil
}

// Config returns the generator configuration.
func (g *Generator) Config() *Config { return g.cfg }

// Templates returns the template set, overrides included.
func (g *Generator) Templates() *tmpl.Set { return g.set }

// Engine returns the marker engine.
func (g *Generator) Engine() *marker.Engine { return g.engine }

// File is a file planned for generation.
type File struct {
	// Table is nil for project-wide files.
	Table    *schema.Table
	Template string
	Output   string
	Role     string
}

// Plan returns the files of the run in generation order: the per-table
// templates of every table, then the project-wide templates.
func (g *Generator) Plan() []File {
	var files []File
	for _, t := range g.tables {
		for _, tt := range g.cfg.Dialect.Templates() {
			if tt.Cond != nil && !tt.Cond(t) {
				continue
			}
			files = append(files, File{Table: t, Template: tt.Path, Output: tt.output(), Role: tt.Role})
		}
	}
	for _, gt := range g.cfg.Dialect.GraphTemplates() {
		if gt.Skip != nil && gt.Skip(g.project) {
			continue
		}
		files = append(files, File{Template: gt.Path, Output: gt.output(), Role: gt.Role})
	}
	return files
}

// FileResult is the outcome of one planned file.
type FileResult struct {
	Table    string
	Template string
	// Path is the output path relative to the target directory.
	Path   string
	Status Status
	Size   int
	SHA256 string
}

// Report summarizes a run. Files are listed in plan order whatever the
// number of workers.
type Report struct {
	RunID    string
	DryRun   bool
	Files    []FileResult
	Failures []*GenerationError
	// Pruned lists the stale files removed; Kept the stale files left in
	// place because they were edited after generation.
	Pruned   []string
	Kept     []string
	Metrics  WriterMetrics
	Duration time.Duration
}

// Err returns the failures of the run as a single error, or nil.
func (r *Report) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return crudify.NewAggregateError(errs...)
}

// Run generates every planned file. The returned error is non-nil only when
// ctx is canceled; file failures are reported by Report.Err.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	files := g.Plan()
	results := make([]FileResult, len(files))
	errs := make([]*GenerationError, len(files))
	paths := g.outputs(files, results, errs)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)
	for _, batch := range batches(files) {
		batch := batch
		eg.Go(func() error {
			for _, i := range batch {
				if err := ctx.Err(); err != nil {
					return err
				}
				if errs[i] != nil {
					continue
				}
				results[i], errs[i] = g.generate(files[i], paths[i])
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	report := &Report{DryRun: g.cfg.DryRun, Files: results}
	for _, err := range errs {
		if err != nil {
			report.Failures = append(report.Failures, err)
		}
	}
	if err := g.finish(report, errs); err != nil {
		report.Failures = append(report.Failures, err)
	}
	report.Metrics = summarize(results)
	report.Duration = time.Since(start)
	g.log.Info("generation finished",
		zap.String("run_id", report.RunID),
		zap.Int("files", len(results)),
		zap.Int("generated", report.Metrics.Generated()),
		zap.Int("unchanged", report.Metrics.FilesUnchanged),
		zap.Int("failed", len(report.Failures)),
		zap.Int("pruned", len(report.Pruned)),
		zap.Bool("dry_run", g.cfg.DryRun),
		zap.Duration("took", report.Duration),
	)
	return report, nil
}

// batches groups plan indices per table. Project-wide files form the last
// batch.
func batches(files []File) [][]int {
	var (
		out   [][]int
		index = make(map[*schema.Table]int)
	)
	for i, f := range files {
		b, ok := index[f.Table]
		if !ok {
			b = len(out)
			index[f.Table] = b
			out = append(out, nil)
		}
		out[b] = append(out[b], i)
	}
	return out
}

func (g *Generator) scope(f File) *marker.Scope {
	scope := marker.NewScope(g.project, f.Role)
	if f.Table != nil {
		scope = scope.ForTable(f.Table)
	}
	return scope
}

func (g *Generator) fail(f File, rel string, err error) (FileResult, *GenerationError) {
	res := FileResult{Template: f.Template, Path: rel, Status: StatusFailed}
	if f.Table != nil {
		res.Table = f.Table.Name()
	}
	g.log.Debug("file failed", zap.String("template", f.Template), zap.String("table", res.Table), zap.Error(err))
	return res, NewGenerationError(res.Table, f.Template, rel, err)
}

// outputs expands the output path of every planned file. Files that fail to
// expand, and every file of a group sharing one output path, are failed in
// results and errs and must not be written.
func (g *Generator) outputs(files []File, results []FileResult, errs []*GenerationError) []string {
	paths := make([]string, len(files))
	claims := make(map[string][]int, len(files))
	for i, f := range files {
		out, err := g.engine.Expand(f.Output, f.Output, g.scope(f))
		if err != nil {
			results[i], errs[i] = g.fail(f, "", err)
			continue
		}
		paths[i] = path.Clean(out)
		claims[paths[i]] = append(claims[paths[i]], i)
	}
	for rel, idx := range claims {
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			var others []string
			for _, j := range idx {
				if j != i {
					others = append(others, describe(files[j]))
				}
			}
			err := crudify.NewIOError("write", rel, fmt.Errorf("%w: also produced by %s", ErrPathCollision, strings.Join(others, ", ")))
			results[i], errs[i] = g.fail(files[i], rel, err)
		}
	}
	return paths
}

func describe(f File) string {
	if f.Table == nil {
		return f.Template
	}
	return fmt.Sprintf("%s (table %s)", f.Template, f.Table.Name())
}

func (g *Generator) generate(f File, rel string) (FileResult, *GenerationError) {
	text, err := g.engine.ExpandFile(f.Template, g.scope(f))
	if err != nil {
		return g.fail(f, rel, err)
	}
	data := []byte(g.header(rel) + text)
	st, err := g.writer.Write(rel, data)
	if err != nil {
		return g.fail(f, rel, err)
	}
	res := FileResult{Template: f.Template, Path: rel, Status: st, Size: len(data), SHA256: Digest(data)}
	if f.Table != nil {
		res.Table = f.Table.Name()
	}
	g.log.Debug("file generated",
		zap.String("path", res.Path),
		zap.String("table", res.Table),
		zap.Stringer("status", st),
		zap.Int("bytes", res.Size),
	)
	return res, nil
}

func (g *Generator) header(rel string) string {
	if g.cfg.Header == "" {
		return ""
	}
	if c, ok := g.cfg.Dialect.(Commenter); ok {
		return c.Comment(rel, g.cfg.Header)
	}
	return ""
}

// finish records the run manifest and prunes stale files. Dry runs leave
// the manifest untouched.
func (g *Generator) finish(r *Report, errs []*GenerationError) *GenerationError {
	next := NewManifest(g.cfg.Dialect.Name())
	r.RunID = next.RunID
	if g.cfg.DryRun {
		return nil
	}
	prev, err := ReadManifest(g.cfg.Target)
	if err != nil && !crudify.IsNotFound(err) {
		g.log.Warn("ignoring unreadable manifest", zap.Error(err))
	}
	planned := make(map[string]struct{}, len(r.Files))
	carry := func(rel string) {
		if e, ok := prev.Lookup(rel); ok {
			next.Add(e.Path, e.SHA256, e.Size)
		}
	}
	for i, f := range r.Files {
		if f.Path == "" || f.Path == "." {
			continue
		}
		if _, ok := planned[f.Path]; ok {
			continue
		}
		planned[f.Path] = struct{}{}
		switch {
		case errs[i] == nil:
			next.Add(f.Path, f.SHA256, f.Size)
		default:
			// Keep what the previous run recorded for files failing now.
			carry(f.Path)
		}
	}
	var cause error
	if prev != nil {
		if g.cfg.Prune {
			r.Pruned, r.Kept, cause = Prune(g.writer, prev, planned)
			for _, rel := range r.Kept {
				carry(rel)
			}
			for _, rel := range r.Pruned {
				g.log.Debug("file pruned", zap.String("path", rel))
			}
		} else {
			for _, rel := range prev.Stale(planned) {
				carry(rel)
			}
		}
	}
	if err := WriteManifest(g.writer, next); err != nil {
		cause = crudify.NewAggregateError(cause, err)
	}
	if cause != nil {
		return NewGenerationError("", "", ManifestName, cause)
	}
	return nil
}

func summarize(results []FileResult) WriterMetrics {
	var m WriterMetrics
	for _, r := range results {
		switch r.Status {
		case StatusCreated:
			m.FilesCreated++
		case StatusUpdated:
			m.FilesUpdated++
		case StatusUnchanged:
			m.FilesUnchanged++
		default:
			m.FilesFailed++
			continue
		}
		m.TotalBytes += int64(r.Size)
	}
	return m
}

// Check validates every template of the set and every output path pattern
// of the plan against the dialect vocabulary, without generating.
func (g *Generator) Check() error {
	names, err := g.set.List()
	if err != nil {
		return crudify.NewIOError("list templates", "", err)
	}
	var errs []error
	for _, name := range names {
		f, err := g.set.Load(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := g.engine.Check(f.Path, f.Text); err != nil {
			errs = append(errs, err)
		}
	}
	seen := make(map[string]bool)
	for _, f := range g.Plan() {
		if seen[f.Output] {
			continue
		}
		seen[f.Output] = true
		if !g.set.Exists(f.Template) {
			errs = append(errs, NewGenerationError("", f.Template, "", crudify.NewNotFoundError(f.Template, nil)))
		}
		if err := g.engine.Check(f.Output, f.Output); err != nil {
			errs = append(errs, err)
		}
	}
	return crudify.NewAggregateError(errs...)
}
