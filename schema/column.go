package schema

// Column describes one database column. Build it with NewColumn; the zero
// value is not a valid column.
type Column struct {
	name     string
	dbType   string
	nullable bool
	primary  bool
	auto     bool
	verbs    VerbSet
	explicit bool // verbs were given explicitly
}

// ColumnOption configures a column at construction time.
type ColumnOption func(*Column)

// Nullable marks the column as accepting NULL.
func Nullable() ColumnOption {
	return func(c *Column) { c.nullable = true }
}

// Primary marks the column as part of the primary key.
func Primary() ColumnOption {
	return func(c *Column) { c.primary = true }
}

// AutoGenerated marks the column as generated by the database
// (auto increment, identity, default expression).
func AutoGenerated() ColumnOption {
	return func(c *Column) { c.auto = true }
}

// InVerbs sets the verbs the column is included in, overriding DefaultVerbs.
func InVerbs(verbs ...VerbName) ColumnOption {
	return func(c *Column) {
		c.verbs = NewVerbSet(verbs...)
		c.explicit = true
	}
}

// NewColumn returns a new column with the given name and database type.
func NewColumn(name, dbType string, opts ...ColumnOption) Column {
	c := Column{name: name, dbType: dbType}
	for _, opt := range opts {
		opt(&c)
	}
	if !c.explicit {
		c.verbs = DefaultVerbs(c)
	}
	return c
}

// DefaultVerbs returns the verbs a column participates in when none were
// given: every column is read, auto-generated columns are never posted,
// put carries the primary key plus every writable column, and delete
// only takes the primary key.
func DefaultVerbs(c Column) VerbSet {
	s := NewVerbSet(Get)
	if !c.auto {
		s |= NewVerbSet(Post)
	}
	if !c.auto || c.primary {
		s |= NewVerbSet(Put)
	}
	if c.primary {
		s |= NewVerbSet(Delete)
	}
	return s
}

// Name returns the column name as declared in the database.
func (c Column) Name() string { return c.name }

// DBType returns the raw database type.
func (c Column) DBType() string { return c.dbType }

// Nullable reports whether the column accepts NULL.
func (c Column) Nullable() bool { return c.nullable }

// Primary reports whether the column is part of the primary key.
func (c Column) Primary() bool { return c.primary }

// AutoGenerated reports whether the database generates the column value.
func (c Column) AutoGenerated() bool { return c.auto }

// Verbs returns the verbs the column is included in.
func (c Column) Verbs() VerbSet { return c.verbs }

// In reports whether the column is included in verb v.
func (c Column) In(v VerbName) bool { return c.verbs.Has(v) }

// Kind classifies the column database type.
func (c Column) Kind() Kind { return KindOf(c.dbType) }

// Identifier returns the column name as a valid TypeScript identifier.
func (c Column) Identifier() string { return Identifier(c.name) }

// Label returns a human readable title for the column.
func (c Column) Label() string { return Label(c.name) }
