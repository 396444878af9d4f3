package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/crudify"
	"github.com/syssam/crudify/compiler/load"
)

// NewIntrospectCommand creates the introspect command.
func NewIntrospectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Write the project file of a live database",
		Long: `Introspect reads the tables of a MySQL, PostgreSQL or SQLite database and
prints the matching project file, ready to be edited (verbs, excluded
columns) and passed to generate with --project.`,
		Example: `  crudify introspect --dialect sqlite --dsn app.db -f project.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			if !cfg.FromDatabase() {
				return errors.New("introspect needs --dialect and --dsn")
			}
			p, err := loadProject(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			data, err := load.Marshal(p)
			if err != nil {
				return err
			}
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(file, data, 0o644); err != nil {
				return crudify.NewIOError("write", file, err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "wrote %s", file)
			fmt.Fprintf(cmd.OutOrStdout(), " (%d tables)\n", len(p.Tables))
			return nil
		},
	}
	addSourceFlags(cmd)
	cmd.Flags().MarkHidden("project")
	cmd.Flags().StringP("file", "f", "", "write the project file instead of printing it")
	return cmd
}
