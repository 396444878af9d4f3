package load

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	atlas "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"
	"go.uber.org/zap"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/crudify"
	"github.com/syssam/crudify/schema"
)

// Supported dialects.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite3"
	Postgres = "postgres"
)

// drivers maps a dialect to its database/sql driver name and to the atlas
// driver inspecting it.
var drivers = map[string]struct {
	name string
	open func(atlas.ExecQuerier) (migrate.Driver, error)
}{
	MySQL:    {name: "mysql", open: mysql.Open},
	SQLite:   {name: "sqlite", open: sqlite.Open},
	Postgres: {name: "postgres", open: postgres.Open},
}

// Dialect normalizes a dialect or driver name: "sqlite", "sqlite3",
// "postgresql", "pgx" and "mariadb" are accepted as aliases.
func Dialect(name string) (string, error) {
	switch strings.ToLower(name) {
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return "", fmt.Errorf("load: unsupported dialect %q", name)
}

// Open opens a connection to the database and checks that it is
// reachable.
func Open(ctx context.Context, dialect, dsn string) (*sql.DB, error) {
	d, err := Dialect(dialect)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(drivers[d].name, dsn)
	if err != nil {
		return nil, crudify.NewIOError("open", d, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, crudify.NewIOError("ping", d, err)
	}
	return db, nil
}

// InspectOption configures an Inspector.
type InspectOption func(*Inspector)

// WithSchema inspects the named schema (database for mysql) instead of the
// connection default.
func WithSchema(name string) InspectOption {
	return func(i *Inspector) { i.schema = name }
}

// WithTables restricts the inspection to the named tables, kept in the
// database order.
func WithTables(names ...string) InspectOption {
	return func(i *Inspector) { i.tables = names }
}

// WithInspectLogger sets the logger of the inspector.
func WithInspectLogger(l *zap.Logger) InspectOption {
	return func(i *Inspector) { i.log = l }
}

// Inspector reads table metadata from a live database.
type Inspector struct {
	db      *sql.DB
	dialect string
	schema  string
	tables  []string
	log     *zap.Logger
}

// NewInspector returns an inspector over db, which must be connected to a
// database of the given dialect.
func NewInspector(db *sql.DB, dialect string, opts ...InspectOption) (*Inspector, error) {
	if db == nil {
		return nil, errors.New("load: nil database")
	}
	d, err := Dialect(dialect)
	if err != nil {
		return nil, err
	}
	i := &Inspector{db: db, dialect: d, log: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Tables inspects the database and returns its tables in the order the
// database reports them.
// Every verb is generated for inspected tables.
func (i *Inspector) Tables(ctx context.Context) ([]*schema.Table, error) {
	drv, err := drivers[i.dialect].open(i.db)
	if err != nil {
		return nil, crudify.NewIOError("inspect", i.dialect, err)
	}
	var opts *atlas.InspectOptions
	if len(i.tables) > 0 {
		opts = &atlas.InspectOptions{Tables: i.tables}
	}
	name := i.schema
	if name == "" && i.dialect == SQLite {
		name = "main"
	}
	s, err := drv.InspectSchema(ctx, name, opts)
	if err != nil {
		return nil, crudify.NewIOError("inspect", i.dialect, err)
	}
	for _, name := range i.tables {
		if _, ok := s.Table(name); !ok {
			return nil, crudify.NewNotFoundError("table "+name, nil)
		}
	}
	tables := make([]*schema.Table, 0, len(s.Tables))
	for _, at := range s.Tables {
		t, err := convert(at)
		if err != nil {
			return nil, err
		}
		i.log.Debug("inspected table",
			zap.String("table", t.Name()),
			zap.Int("columns", len(t.Columns())),
		)
		tables = append(tables, t)
	}
	return tables, nil
}

// Project inspects the database and returns a project holding its tables.
func (i *Inspector) Project(ctx context.Context, name, apiURL string) (*schema.Project, error) {
	tables, err := i.Tables(ctx)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("load: no tables found in %s database", i.dialect)
	}
	return schema.NewProject(name, apiURL, tables...)
}

func convert(at *atlas.Table) (*schema.Table, error) {
	var pk []string
	if at.PrimaryKey != nil {
		for _, p := range at.PrimaryKey.Parts {
			if p.C != nil {
				pk = append(pk, p.C.Name)
			}
		}
	}
	cols := make([]schema.Column, 0, len(at.Columns))
	for _, ac := range at.Columns {
		var opts []schema.ColumnOption
		if ac.Type != nil && ac.Type.Null {
			opts = append(opts, schema.Nullable())
		}
		primary := slices.Contains(pk, ac.Name)
		if primary {
			opts = append(opts, schema.Primary())
		}
		if autoGenerated(ac, primary && len(pk) == 1) {
			opts = append(opts, schema.AutoGenerated())
		}
		cols = append(cols, schema.NewColumn(ac.Name, rawType(ac), opts...))
	}
	return schema.NewTable(at.Name, cols)
}

// autoGenerated reports whether the database assigns the column value:
// auto increment, identity and serial columns, nextval defaults, and the
// integer primary key aliasing the sqlite rowid.
func autoGenerated(c *atlas.Column, soloPK bool) bool {
	for _, a := range c.Attrs {
		switch a.(type) {
		case *mysql.AutoIncrement, *sqlite.AutoIncrement, *postgres.Identity:
			return true
		}
	}
	if c.Type != nil {
		if _, ok := c.Type.Type.(*postgres.SerialType); ok {
			return true
		}
	}
	if x, ok := c.Default.(*atlas.RawExpr); ok && strings.HasPrefix(strings.ToLower(x.X), "nextval(") {
		return true
	}
	return soloPK && strings.EqualFold(rawType(c), "integer")
}

// rawType returns the declared type of c, falling back to a name derived
// from the inspected type.
func rawType(c *atlas.Column) string {
	if c.Type == nil {
		return ""
	}
	if c.Type.Raw != "" {
		return c.Type.Raw
	}
	switch t := c.Type.Type.(type) {
	case *atlas.StringType:
		return t.T
	case *atlas.IntegerType:
		return t.T
	case *atlas.DecimalType:
		return t.T
	case *atlas.FloatType:
		return t.T
	case *atlas.BoolType:
		return t.T
	case *atlas.TimeType:
		return t.T
	case *atlas.UUIDType:
		return t.T
	case *atlas.JSONType:
		return t.T
	case *atlas.EnumType:
		return "enum"
	}
	return ""
}
