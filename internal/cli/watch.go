package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/crudify/internal/watch"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the project file or a template changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.Project == "" && cfg.Templates == "" {
				return errors.New("watch needs --project or --templates")
			}
			out := cmd.OutOrStdout()
			var mu sync.Mutex
			run := func() error {
				mu.Lock()
				defer mu.Unlock()
				p, err := loadProject(ctx, cfg, log)
				if err != nil {
					return err
				}
				return generate(ctx, out, cfg, p, log)
			}
			if err := run(); err != nil {
				color.New(color.FgRed).Fprintln(out, err)
			}

			w, err := watch.New(func(files []string) error {
				log.Info("change detected", zap.Strings("files", files))
				return run()
			}, watch.WithLogger(log))
			if err != nil {
				return err
			}
			for _, path := range []string{cfg.Project, cfg.Templates} {
				if path == "" {
					continue
				}
				if err := w.Add(path); err != nil {
					w.Stop()
					return err
				}
			}
			w.Start()
			fmt.Fprintln(out, "watching for changes, press Ctrl+C to stop")
			<-ctx.Done()
			return w.Stop()
		},
	}
	addSourceFlags(cmd)
	f := cmd.Flags()
	f.StringP("output", "o", "", "output directory (default src/app)")
	f.String("templates", "", "directory of templates overriding the embedded ones")
	f.Int("workers", 0, "number of tables generated in parallel (default GOMAXPROCS)")
	f.Bool("prune", false, "remove files generated by a previous run and no longer planned")
	return cmd
}
