// Package gen drives code generation: it plans the files of a project,
// expands their templates and writes the results below a target directory.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	Project metadata (schema.Project, from compiler/load)
//	        ↓
//	   Dialect (templates, vocabulary, output plan)
//	        ↓
//	   Plan: per-table Templates + project-wide GraphTemplates
//	        ↓
//	   marker.Engine (expands paths and contents)
//	        ↓
//	   Writer (atomic, skips unchanged files) + Manifest
//
// # Key Types
//
//   - Dialect: the template set, marker registry and output plan of a target
//     framework. The angular subpackage is the built-in dialect.
//   - Template, GraphTemplate: one planned file per table or per project.
//     Cond and Skip decide whether a file is generated at all.
//   - Generator: runs a plan. Tables are generated in parallel.
//   - Writer: writes files atomically and reports whether each one was
//     created, updated or left unchanged.
//   - Manifest: the files written by the last run, used to prune files that
//     are no longer planned.
//
// # Error Handling
//
//   - ConfigError: invalid options, reported by New before any file is
//     produced.
//   - GenerationError: a file that could not be produced. It wraps the
//     *crudify.TemplateError, *crudify.NotFoundError or *crudify.IOError
//     that caused it.
//
// A failing file does not stop a run. Run collects every failure in the
// Report:
//
//	report, err := g.Run(ctx)
//	if err != nil {
//	    return err // canceled
//	}
//	if err := report.Err(); err != nil {
//	    for _, f := range report.Failures {
//	        log.Println(f.File, f.Cause)
//	    }
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	g, err := gen.New(project,
//	    gen.WithTarget("./src/app"),
//	    gen.WithDialect(angular.New()),
//	    gen.WithTemplates("./templates"), // shadows embedded templates
//	    gen.WithWorkers(4),
//	    gen.WithPrune(true),
//	)
//
// # Generated Output
//
// With the angular dialect:
//
//	{target}/
//	├── app-routing.module.ts
//	├── .crudify.manifest
//	├── models/
//	│   └── {table}.model.ts
//	├── services/
//	│   └── {table}.service.ts
//	└── components/{table}/
//	    ├── {table}.component.ts|html        // list, needs get
//	    └── {table}-edit.component.ts|html   // edit dialog, needs put or post
package gen
