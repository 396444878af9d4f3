package cli

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/crudify/compiler/gen"
	"github.com/syssam/crudify/schema"
)

const project = `name: admin
api_url: /api
tables:
  - name: users
    columns:
      - {name: id, type: int, primary: true, auto: true}
      - {name: username, type: varchar(64)}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeProject(t *testing.T) (dir, file string) {
	t.Helper()
	dir = t.TempDir()
	file = filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(file, []byte(project), 0o644))
	return dir, file
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "crudify", cmd.Use)
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"generate", "introspect", "templates", "watch", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "crudify version: dev\n")
	assert.Contains(t, out, "Go version: go")
}

func TestGenerate(t *testing.T) {
	dir, file := writeProject(t)
	target := filepath.Join(dir, "src", "app")

	out, err := execute(t, "generate", "-p", file, "-o", target, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "create   models/users.model.ts")
	assert.Contains(t, out, "7 created, 0 updated, 0 identical, 0 failed")
	assert.FileExists(t, filepath.Join(target, "components", "users", "users.component.ts"))
	assert.FileExists(t, filepath.Join(target, "app-routing.module.ts"))

	out, err = execute(t, "generate", "-p", file, "-o", target, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "0 created, 0 updated, 7 identical, 0 failed")

	t.Run("dry run", func(t *testing.T) {
		other := filepath.Join(dir, "dry")
		out, err := execute(t, "generate", "-p", file, "-o", other, "--dry-run", "--log-level", "error")
		require.NoError(t, err)
		assert.Contains(t, out, "(dry run, nothing written)")
		assert.NoDirExists(t, other)
	})
	t.Run("broken override", func(t *testing.T) {
		templates := filepath.Join(dir, "templates", "models")
		require.NoError(t, os.MkdirAll(templates, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(templates, "model.ts"), []byte("[[nope]]\n"), 0o644))
		out, err := execute(t, "generate", "-p", file, "-o", filepath.Join(dir, "broken"),
			"--templates", filepath.Dir(templates), "--log-level", "error")
		assert.EqualError(t, err, "1 of 7 files failed: crudify: code generation failed")
		assert.ErrorIs(t, err, gen.ErrGenerationFailed)
		assert.Contains(t, out, "error")
		assert.Contains(t, out, "[[nope]]")
	})
	t.Run("no project", func(t *testing.T) {
		_, err := execute(t, "generate", "-o", filepath.Join(dir, "none"), "--log-level", "error")
		assert.ErrorContains(t, err, "no project")
	})
	t.Run("unknown table", func(t *testing.T) {
		_, err := execute(t, "generate", "-p", file, "-o", filepath.Join(dir, "none"), "--tables", "orders", "--log-level", "error")
		assert.ErrorContains(t, err, "unknown table")
	})
}

func TestIntrospect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE posts (id integer PRIMARY KEY, title varchar(120) NOT NULL, body text)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := execute(t, "introspect", "--dialect", "sqlite", "--dsn", path, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "- name: posts")
	assert.Contains(t, out, "type: varchar(120)")

	file := filepath.Join(dir, "project.yaml")
	out, err = execute(t, "introspect", "--dialect", "sqlite", "--dsn", path, "-f", file, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "(1 tables)")
	assert.FileExists(t, file)

	_, err = execute(t, "introspect", "--log-level", "error")
	assert.EqualError(t, err, "introspect needs --dialect and --dsn")
}

func TestTemplates(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		out, err := execute(t, "templates", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "embedded  models/model.ts\n")
	})
	t.Run("list with overrides", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "models"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "field.ts"), []byte("  [[column-name]];\n"), 0o644))
		out, err := execute(t, "templates", "list", "--templates", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "override  models/field.ts\n")
		assert.Contains(t, out, "embedded  models/model.ts\n")

		out, err = execute(t, "templates", "show", "models/field.ts", "--templates", dir)
		require.NoError(t, err)
		assert.Equal(t, "  [[column-name]];\n", out)
	})
	t.Run("show missing", func(t *testing.T) {
		_, err := execute(t, "templates", "show", "models/nope.ts")
		assert.Error(t, err)
	})
	t.Run("check", func(t *testing.T) {
		out, err := execute(t, "templates", "check")
		require.NoError(t, err)
		assert.Contains(t, out, "all templates are valid")
	})
	t.Run("check broken", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "models"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "field.ts"), []byte("[[colum-name]]"), 0o644))
		_, err := execute(t, "templates", "check", "--templates", dir)
		assert.ErrorContains(t, err, "colum-name")
	})
}

func TestChoose(t *testing.T) {
	users := schema.MustNewTable("users", []schema.Column{schema.NewColumn("id", "int", schema.Primary())})
	posts := schema.MustNewTable("posts", []schema.Column{schema.NewColumn("id", "int", schema.Primary())})
	p, err := schema.NewProject("app", "/api", users, posts)
	require.NoError(t, err)

	answers := [][]string{{"posts"}, {"get", "delete"}}
	ask := func(_ survey.Prompt, resp any, _ ...survey.AskOpt) error {
		*resp.(*[]string) = answers[0]
		answers = answers[1:]
		return nil
	}
	got, err := choose(p, ask)
	require.NoError(t, err)
	require.Len(t, got.Tables, 1)
	tbl := got.Tables[0]
	assert.Equal(t, "posts", tbl.Name())
	assert.True(t, tbl.Generates(schema.Get))
	assert.True(t, tbl.Generates(schema.Delete))
	assert.False(t, tbl.Generates(schema.Post))
	assert.Len(t, p.Tables, 2, "input project is not modified")

	t.Run("interrupted", func(t *testing.T) {
		_, err := choose(p, func(survey.Prompt, any, ...survey.AskOpt) error {
			return errors.New("interrupt")
		})
		assert.EqualError(t, err, "interrupt")
	})
	t.Run("no verbs", func(t *testing.T) {
		answers = [][]string{{"users"}, {}}
		_, err := choose(p, ask)
		assert.EqualError(t, err, "no verbs selected for users")
	})
}
