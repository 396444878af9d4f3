package angular_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudify"
	"github.com/syssam/crudify/compiler/gen"
	"github.com/syssam/crudify/compiler/gen/angular"
	"github.com/syssam/crudify/compiler/marker"
	"github.com/syssam/crudify/compiler/tmpl"
	"github.com/syssam/crudify/schema"
)

func usersTable(t *testing.T) *schema.Table {
	t.Helper()
	tbl, err := schema.NewTable("users", []schema.Column{
		schema.NewColumn("id", "int", schema.Primary()),
		schema.NewColumn("username", "varchar(64)"),
	})
	require.NoError(t, err)
	return tbl
}

func project(t *testing.T, tables ...*schema.Table) *schema.Project {
	t.Helper()
	p, err := schema.NewProject("admin", "/api/", tables...)
	require.NoError(t, err)
	return p
}

func read(t *testing.T, dir, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(b)
}

func TestFormControlInstantiations(t *testing.T) {
	tbl := usersTable(t)
	e := marker.NewEngine(angular.Vocabulary(), tmpl.New(angular.Templates))
	scope := marker.NewScope(project(t, tbl), angular.RoleMain).ForTable(tbl)

	out, err := e.Expand("x.ts", "[[form-control-instantiations]]", scope)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "addControl("))
	assert.Contains(t, out, "this.filters.addControl('username', new FormControl(''));")
	assert.Contains(t, out, "this.filter['username.like'] = value ?? '';")
	assert.NotContains(t, out, "'id'")
	assert.NotContains(t, out, "id.like")
}

func TestStringOnlyBlocks(t *testing.T) {
	tbl, err := schema.NewTable("people", []schema.Column{
		schema.NewColumn("first_name", "varchar(32)"),
		schema.NewColumn("age", "int"),
		schema.NewColumn("last_name", "text"),
		schema.NewColumn("born", "date"),
		schema.NewColumn("email", "character varying(128)"),
	})
	require.NoError(t, err)
	e := marker.NewEngine(angular.Vocabulary(), tmpl.New(angular.Templates))
	scope := marker.NewScope(project(t, tbl), angular.RoleMain).ForTable(tbl)

	out, err := e.Expand("x.ts", "[[form-control-instantiations]]", scope)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, ".like'"))
	first := strings.Index(out, "first_name.like")
	last := strings.Index(out, "last_name.like")
	email := strings.Index(out, "email.like")
	assert.True(t, first >= 0 && first < last && last < email, out)
	assert.NotContains(t, out, "age")
	assert.NotContains(t, out, "born")

	names, err := e.Expand("x.ts", "[[columns-only-string]]", scope)
	require.NoError(t, err)
	assert.Equal(t, "      <th>First Name</th>\n      <th>Last Name</th>\n      <th>Email</th>", names)
}

func TestPredicates(t *testing.T) {
	tbl := usersTable(t)
	readOnly, err := tbl.WithVerbs(schema.Verb{Name: schema.Get, Generate: true})
	require.NoError(t, err)
	e := marker.NewEngine(angular.Vocabulary(), tmpl.New(angular.Templates))

	tests := []struct {
		name  string
		scope *marker.Scope
		text  string
		want  string
	}{
		{"main role", marker.NewScope(nil, angular.RoleMain).ForTable(tbl), "[[file-name-only-main]]", "users"},
		{"edit role", marker.NewScope(nil, angular.RoleEdit).ForTable(tbl), "[[file-name-only-main]]", ""},
		{"table verb", marker.NewScope(nil, "").ForTable(readOnly), "[[name-only-post]]|[[name-only-get]]", "|users"},
		{"editable table", marker.NewScope(nil, "").ForTable(readOnly), "[[name-only-editable]]", ""},
		{"primary columns", marker.NewScope(nil, "").ForTable(tbl), "[[cells-only-primary]]", "      <td>{{ row.id }}</td>"},
		{"scope without column", marker.NewScope(nil, "").ForTable(tbl), "[[name-only-string]]", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Expand("x.ts", tt.text, tt.scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestComment(t *testing.T) {
	d := angular.New()
	assert.Equal(t, "// Code generated by crudify.\n// DO NOT EDIT.\n", d.Comment("a.ts", "Code generated by crudify.\nDO NOT EDIT.\n"))
	assert.Equal(t, "<!-- generated -->\n", d.Comment("a.html", "generated"))
	assert.Equal(t, "", d.Comment("a.json", "generated"))
}

func TestCheckEmbeddedTemplates(t *testing.T) {
	g, err := gen.New(project(t, usersTable(t)), gen.WithTarget(t.TempDir()), gen.WithDialect(angular.New()))
	require.NoError(t, err)
	assert.NoError(t, g.Check())
	names, err := g.Templates().List()
	require.NoError(t, err)
	assert.NotEmpty(t, names)
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	users := usersTable(t)
	posts, err := schema.NewTable("blog_posts", []schema.Column{
		schema.NewColumn("post_id", "bigint", schema.Primary(), schema.AutoGenerated()),
		schema.NewColumn("title", "varchar(200)"),
		schema.NewColumn("published", "tinyint(1)", schema.Nullable()),
	}, schema.Verb{Name: schema.Get, Generate: true}, schema.Verb{Name: schema.Delete, Generate: true})
	require.NoError(t, err)

	dir := t.TempDir()
	g, err := gen.New(project(t, users, posts), gen.WithTarget(dir), gen.WithDialect(angular.New()))
	require.NoError(t, err)
	report, err := g.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, report.Err())

	var paths []string
	for _, f := range report.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"models/users.model.ts",
		"services/users.service.ts",
		"components/users/users.component.ts",
		"components/users/users.component.html",
		"components/users/users-edit.component.ts",
		"components/users/users-edit.component.html",
		"models/blog-posts.model.ts",
		"services/blog-posts.service.ts",
		"components/blog-posts/blog-posts.component.ts",
		"components/blog-posts/blog-posts.component.html",
		"app-routing.module.ts",
	}, paths)

	t.Run("model", func(t *testing.T) {
		assert.Equal(t, "export interface User {\n  id: number;\n  username: string;\n}\n", read(t, dir, "models/users.model.ts"))
		assert.Equal(t, "export interface BlogPost {\n  post_id: number;\n  title: string;\n  published?: boolean;\n}\n",
			read(t, dir, "models/blog-posts.model.ts"))
	})

	t.Run("service", func(t *testing.T) {
		users := read(t, dir, "services/users.service.ts")
		assert.Contains(t, users, "export class UserService {")
		assert.Contains(t, users, "private readonly url = '/api/users';")
		for _, method := range []string{"list(", "get(id: number)", "create(item", "update(id: number", "delete(id: number)"} {
			assert.Contains(t, users, method)
		}

		posts := read(t, dir, "services/blog-posts.service.ts")
		assert.Contains(t, posts, "get(post_id: number)")
		assert.Contains(t, posts, "delete(post_id: number)")
		assert.NotContains(t, posts, "create(")
		assert.NotContains(t, posts, "update(")
	})

	t.Run("list component", func(t *testing.T) {
		ts := read(t, dir, "components/users/users.component.ts")
		assert.Contains(t, ts, "import { debounceTime } from 'rxjs/operators';")
		assert.Contains(t, ts, "import { UserEditComponent } from './users-edit.component';")
		assert.Contains(t, ts, "readonly columns: string[] = ['id', 'username'];")
		assert.Contains(t, ts, "constructor(private service: UserService, private dialog: MatDialog) {}")
		assert.Contains(t, ts, "this.filter['username.like'] = value ?? '';")
		assert.Contains(t, ts, "this.service.delete(row.id)")
		assert.NotContains(t, ts, "[[")

		posts := read(t, dir, "components/blog-posts/blog-posts.component.ts")
		assert.NotContains(t, posts, "MatDialog")
		assert.NotContains(t, posts, "create()")
		assert.Contains(t, posts, "remove(row: BlogPost)")

		html := read(t, dir, "components/users/users.component.html")
		assert.Contains(t, html, "<h2>Users</h2>")
		assert.Contains(t, html, `<input formControlName="username" placeholder="Username">`)
		assert.Contains(t, html, "<button type=\"button\" (click)=\"create()\">New Users</button>")
		assert.Contains(t, html, "      <th>Id</th>\n      <th>Username</th>\n      <th></th>")
		assert.Contains(t, html, "<td>{{ row.username }}</td>")
		assert.Contains(t, html, "(click)=\"edit(row)\"")
		assert.NotContains(t, read(t, dir, "components/blog-posts/blog-posts.component.html"), "create()")
	})

	t.Run("edit dialog", func(t *testing.T) {
		ts := read(t, dir, "components/users/users-edit.component.ts")
		assert.Contains(t, ts, "import { MAT_DIALOG_DATA, MatDialogRef } from '@angular/material/dialog';")
		assert.Contains(t, ts, "    username: new FormControl<string | null>({ value: null, disabled: false }, Validators.required),")
		assert.Contains(t, ts, "this.service.update(this.data.row.id, value)")
		assert.Contains(t, ts, "this.service.create(value)")
		assert.NotContains(t, ts, "debounceTime")

		html := read(t, dir, "components/users/users-edit.component.html")
		assert.Contains(t, html, `<label>Username <input formControlName="username"></label>`)
		assert.Contains(t, html, `<input type="number" formControlName="id">`)
		assert.NoFileExists(t, filepath.Join(dir, "components", "blog-posts", "blog-posts-edit.component.ts"))
	})

	t.Run("routing", func(t *testing.T) {
		routing := read(t, dir, "app-routing.module.ts")
		assert.Contains(t, routing, "import { UserComponent } from './components/users/users.component';\n"+
			"import { BlogPostComponent } from './components/blog-posts/blog-posts.component';\n")
		assert.Contains(t, routing, "const routes: Routes = [\n"+
			"  { path: 'users', component: UserComponent },\n"+
			"  { path: 'blog_posts', component: BlogPostComponent },\n"+
			"];")
	})

	t.Run("second run is byte identical", func(t *testing.T) {
		again, err := g.Run(ctx)
		require.NoError(t, err)
		require.NoError(t, again.Err())
		assert.Equal(t, len(report.Files), again.Metrics.FilesUnchanged)
		for i := range report.Files {
			assert.Equal(t, report.Files[i].SHA256, again.Files[i].SHA256, report.Files[i].Path)
		}
	})
}

func TestFileNameCollision(t *testing.T) {
	columns := []schema.Column{
		schema.NewColumn("id", "int", schema.Primary()),
		schema.NewColumn("title", "text"),
	}
	snake := schema.MustNewTable("order_items", columns)
	camel := schema.MustNewTable("OrderItems", columns)
	// Built by hand: NewProject refuses the pair.
	p := &schema.Project{Name: "admin", APIURL: "/api/", Tables: []*schema.Table{snake, camel}}

	dir := t.TempDir()
	g, err := gen.New(p, gen.WithTarget(dir), gen.WithDialect(angular.New()))
	require.NoError(t, err)
	report, err := g.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Files, 13)
	require.Len(t, report.Failures, 12)
	for _, f := range report.Failures {
		assert.True(t, errors.Is(f, gen.ErrPathCollision), f.Error())
		assert.True(t, crudify.IsIOError(f))
		assert.Contains(t, f.File, "order-items")
	}
	assert.Equal(t, "order_items", report.Failures[0].Table)
	assert.Equal(t, "models/order-items.model.ts", report.Failures[0].File)
	assert.Contains(t, report.Failures[0].Error(), "also produced by models/model.ts (table OrderItems)")
	assert.Equal(t, "OrderItems", report.Failures[6].Table)
	assert.Contains(t, report.Failures[6].Error(), "also produced by models/model.ts (table order_items)")

	assert.NoDirExists(t, filepath.Join(dir, "models"))
	assert.NoDirExists(t, filepath.Join(dir, "components"))
	assert.FileExists(t, filepath.Join(dir, "app-routing.module.ts"))

	m, err := gen.ReadManifest(dir)
	require.NoError(t, err)
	require.Len(t, m.Files, 1)
	assert.Equal(t, "app-routing.module.ts", m.Files[0].Path)
}

func TestOverrides(t *testing.T) {
	dir := t.TempDir()
	overrides := fstest.MapFS{
		"models/field.ts": {Data: []byte("  readonly [[column-name]]: [[column-type]];\n")},
		"components/form-control-instantiations.number.ts": {Data: []byte("    // [[column-name]] is a number")},
	}
	g, err := gen.New(project(t, usersTable(t)),
		gen.WithTarget(dir),
		gen.WithDialect(angular.New()),
		gen.WithTemplateFS(overrides),
		gen.WithHeader("Code generated by crudify. DO NOT EDIT."),
	)
	require.NoError(t, err)
	report, err := g.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Equal(t, "// Code generated by crudify. DO NOT EDIT.\nexport interface User {\n  readonly id: number;\n  readonly username: string;\n}\n",
		read(t, dir, "models/users.model.ts"))
	assert.Contains(t, read(t, dir, "components/users/users.component.ts"), "    // id is a number\n")
	assert.True(t, strings.HasPrefix(read(t, dir, "app-routing.module.ts"), "// Code generated by crudify."))
	assert.True(t, strings.HasPrefix(read(t, dir, "components/users/users.component.html"), "<!-- Code generated by crudify."))
}

func TestBrokenOverride(t *testing.T) {
	dir := t.TempDir()
	overrides := fstest.MapFS{
		"components/list.component.ts": {Data: []byte("[[unknown-marker]]")},
	}
	g, err := gen.New(project(t, usersTable(t)), gen.WithTarget(dir), gen.WithDialect(angular.New()), gen.WithTemplateFS(overrides))
	require.NoError(t, err)
	report, err := g.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Failures, 1)
	assert.True(t, crudify.IsTemplateError(report.Failures[0]))
	assert.Contains(t, report.Failures[0].Error(), "components/list.component.ts")
	assert.Contains(t, report.Failures[0].Error(), "unknown-marker")
	assert.FileExists(t, filepath.Join(dir, "components", "users", "users.component.html"))
	assert.FileExists(t, filepath.Join(dir, "app-routing.module.ts"))
	assert.Equal(t, 6, report.Metrics.Generated())
}
