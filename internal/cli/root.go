// Package cli implements the crudify command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/crudify/compiler/load"
	"github.com/syssam/crudify/internal/config"
	"github.com/syssam/crudify/internal/logger"
	"github.com/syssam/crudify/schema"
)

var (
	// Version information, set at build time.
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crudify",
		Short: "Scaffold Angular CRUD screens from table metadata",
		Long: `crudify generates an Angular model, service, list component, edit dialog
and routing module for every table of a project, from a YAML project file or
from a live database. Templates are plain files holding [[markers]] and can
be overridden one by one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("config", "", "config file (default ./crudify.yaml)")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")

	cmd.AddCommand(NewGenerateCommand())
	cmd.AddCommand(NewIntrospectCommand())
	cmd.AddCommand(NewTemplatesCommand())
	cmd.AddCommand(NewWatchCommand())
	cmd.AddCommand(NewVersionCommand())
	return cmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			title := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()
			for _, kv := range [][2]string{
				{"crudify version", Version},
				{"Git commit", GitCommit},
				{"Build date", BuildDate},
				{"Go version", runtime.Version()},
			} {
				title.Fprintf(out, "%s: ", kv[0])
				fmt.Fprintln(out, kv[1])
			}
		},
	}
}

// addSourceFlags registers the flags selecting where the project metadata
// comes from.
func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("project", "p", "", "YAML or JSON project file")
	f.String("dialect", "", "database dialect to inspect: mysql, postgres or sqlite")
	f.String("dsn", "", "data source name of the database to inspect")
	f.String("schema", "", "database schema to inspect (default: the connection schema)")
	f.StringSlice("tables", nil, "restrict to the named tables")
}

// setup loads the configuration and the logger of cmd.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// loadProject reads the project file or inspects the database named by
// cfg.
func loadProject(ctx context.Context, cfg *config.Config, log *zap.Logger) (*schema.Project, error) {
	switch {
	case cfg.Project != "":
		p, err := load.ReadFile(cfg.Project)
		if err != nil {
			return nil, err
		}
		if p.Name == "" {
			p.Name = cfg.Name
		}
		if p.APIURL == "" {
			p.APIURL = cfg.APIURL
		}
		log.Debug("project loaded", zap.String("file", cfg.Project), zap.Int("tables", len(p.Tables)))
		return p, nil
	case cfg.FromDatabase():
		db, err := load.Open(ctx, cfg.Database.Dialect, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		i, err := load.NewInspector(db, cfg.Database.Dialect,
			load.WithSchema(cfg.Database.Schema),
			load.WithTables(cfg.Tables...),
			load.WithInspectLogger(log),
		)
		if err != nil {
			return nil, err
		}
		return i.Project(ctx, cfg.Name, cfg.APIURL)
	}
	return nil, errors.New("no project: use --project or --dialect with --dsn")
}
