package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/crudify/compiler/gen"
	"github.com/syssam/crudify/compiler/gen/angular"
	"github.com/syssam/crudify/internal/config"
	"github.com/syssam/crudify/schema"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the Angular CRUD files of a project",
		Long: `Generate expands the Angular templates for every table of the project and
writes the results below the output directory. Files whose content did not
change are left untouched. A failing file does not stop the run; the command
exits non-zero once every other file was generated.`,
		Example: `  crudify generate -p project.yaml -o src/app
  crudify generate --dialect postgres --dsn postgres://localhost/app --tables users,posts
  crudify generate -p project.yaml --templates ./templates --prune`,
		Aliases: []string{"gen"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			p, err := loadProject(ctx, cfg, log)
			if err != nil {
				return err
			}
			if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
				if p, err = choose(p, askOne); err != nil {
					return err
				}
			}
			return generate(ctx, cmd.OutOrStdout(), cfg, p, log)
		},
	}
	addSourceFlags(cmd)
	f := cmd.Flags()
	f.StringP("output", "o", "", "output directory (default src/app)")
	f.String("templates", "", "directory of templates overriding the embedded ones")
	f.Int("workers", 0, "number of tables generated in parallel (default GOMAXPROCS)")
	f.Bool("dry-run", false, "report what would be written without writing")
	f.Bool("prune", false, "remove files generated by a previous run and no longer planned")
	f.BoolP("interactive", "i", false, "choose the tables and verbs to generate")
	return cmd
}

// generate runs one generation and prints its report.
func generate(ctx context.Context, out io.Writer, cfg *config.Config, p *schema.Project, log *zap.Logger) error {
	opts := []gen.Option{
		gen.WithTarget(cfg.Output),
		gen.WithDialect(angular.New()),
		gen.WithWorkers(cfg.Workers),
		gen.WithDryRun(cfg.DryRun),
		gen.WithPrune(cfg.Prune),
		gen.WithHeader(cfg.Header),
		gen.WithLogger(log),
	}
	if cfg.Templates != "" {
		opts = append(opts, gen.WithTemplates(cfg.Templates))
	}
	if len(cfg.Tables) > 0 && !cfg.FromDatabase() {
		opts = append(opts, gen.WithTables(cfg.Tables...))
	}
	g, err := gen.New(p, opts...)
	if err != nil {
		return err
	}
	report, err := g.Run(ctx)
	if err != nil {
		return err
	}
	printReport(out, report)
	if n := len(report.Failures); n > 0 {
		return fmt.Errorf("%d of %d files failed: %w", n, len(report.Files), gen.ErrGenerationFailed)
	}
	return nil
}

var (
	created   = color.New(color.FgGreen)
	updated   = color.New(color.FgYellow)
	unchanged = color.New(color.Faint)
	failed    = color.New(color.FgRed, color.Bold)
)

func printReport(out io.Writer, r *gen.Report) {
	for _, f := range r.Files {
		switch f.Status {
		case gen.StatusCreated:
			created.Fprintf(out, "  %-9s", "create")
		case gen.StatusUpdated:
			updated.Fprintf(out, "  %-9s", "update")
		case gen.StatusUnchanged:
			unchanged.Fprintf(out, "  %-9s", "identical")
		default:
			continue
		}
		fmt.Fprintln(out, f.Path)
	}
	for _, p := range r.Pruned {
		updated.Fprintf(out, "  %-9s", "remove")
		fmt.Fprintln(out, p)
	}
	for _, p := range r.Kept {
		unchanged.Fprintf(out, "  %-9s", "keep")
		fmt.Fprintf(out, "%s (edited since generated)\n", p)
	}
	for _, e := range r.Failures {
		failed.Fprintf(out, "  %-9s", "error")
		fmt.Fprintln(out, e.Error())
	}
	m := r.Metrics
	summary := fmt.Sprintf("%d created, %d updated, %d identical, %d failed in %s",
		m.FilesCreated, m.FilesUpdated, m.FilesUnchanged, len(r.Failures), r.Duration.Round(time.Millisecond))
	if r.DryRun {
		summary += " (dry run, nothing written)"
	}
	fmt.Fprintln(out, summary)
}
