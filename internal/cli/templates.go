package cli

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/crudify/compiler/gen"
	"github.com/syssam/crudify/compiler/gen/angular"
	"github.com/syssam/crudify/compiler/tmpl"
	"github.com/syssam/crudify/internal/config"
	"github.com/syssam/crudify/schema"
)

// NewTemplatesCommand creates the templates command.
func NewTemplatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect and validate templates",
	}
	cmd.PersistentFlags().String("templates", "", "directory of templates overriding the embedded ones")
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the templates and where each one comes from",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.Load(configPath(cmd), cmd.Flags())
				if err != nil {
					return err
				}
				overrides, set := templateSet(cfg)
				names, err := set.List()
				if err != nil {
					return err
				}
				over := color.New(color.FgYellow)
				for _, name := range names {
					if overrides != nil {
						if _, err := fs.Stat(overrides, name); err == nil {
							over.Fprintf(cmd.OutOrStdout(), "%-10s", "override")
							fmt.Fprintln(cmd.OutOrStdout(), name)
							continue
						}
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%-10s%s\n", "embedded", name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <path>",
			Short: "Print a template as the generator sees it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(configPath(cmd), cmd.Flags())
				if err != nil {
					return err
				}
				_, set := templateSet(cfg)
				f, err := set.Load(args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), f.Text)
				return err
			},
		},
		&cobra.Command{
			Use:   "check",
			Short: "Check every template against the marker vocabulary",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.Load(configPath(cmd), cmd.Flags())
				if err != nil {
					return err
				}
				opts := []gen.Option{gen.WithTarget(cfg.Output), gen.WithDialect(angular.New())}
				if cfg.Templates != "" {
					opts = append(opts, gen.WithTemplates(cfg.Templates))
				}
				g, err := gen.New(sampleProject(), opts...)
				if err != nil {
					return err
				}
				if err := g.Check(); err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "all templates are valid")
				return nil
			},
		},
	)
	return cmd
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

// templateSet returns the override layer of cfg, if any, and the template
// set searched by the generator.
func templateSet(cfg *config.Config) (fs.FS, *tmpl.Set) {
	var overrides fs.FS
	if cfg.Templates != "" {
		overrides = os.DirFS(cfg.Templates)
	}
	return overrides, tmpl.New(overrides, angular.Templates)
}

// sampleProject is the project templates are checked against when no
// project is at hand.
func sampleProject() *schema.Project {
	t := schema.MustNewTable("items", []schema.Column{
		schema.NewColumn("id", "int", schema.Primary(), schema.AutoGenerated()),
		schema.NewColumn("name", "varchar(255)"),
	})
	p, _ := schema.NewProject("app", "/api", t)
	return p
}
