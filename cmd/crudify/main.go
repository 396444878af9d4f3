// Command crudify scaffolds Angular CRUD screens from table metadata.
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/syssam/crudify/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
