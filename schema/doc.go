// Package schema provides the metadata model that drives code generation.
//
// A Project holds an ordered list of tables. Each Table holds its columns in
// declared order and the HTTP verbs the user opted to scaffold:
//
//	users, err := schema.NewTable("users", []schema.Column{
//	    schema.NewColumn("id", "int", schema.Primary(), schema.AutoGenerated()),
//	    schema.NewColumn("username", "varchar(64)"),
//	    schema.NewColumn("email", "varchar(255)", schema.Nullable()),
//	})
//
// # Immutability
//
// Descriptors are built once, usually by the load package after reading a
// metadata file or introspecting a database, and are never mutated after
// that. Table accessors return copies, so resolvers running in parallel can
// share a table without synchronization.
//
// # Column kinds
//
// The database type of a column is classified into a Kind:
//
//	varchar(255), text, uuid    -> KindString
//	int, bigint, decimal(10,2)  -> KindNumber
//	bit, boolean, tinyint(1)    -> KindBool
//	date, datetime, timestamptz -> KindDate
//	json, blob, ...             -> KindOther
//
// Templates use the kind to select per-kind sub-templates, for example
// only string columns receive the "like" filter block.
//
// # Verbs
//
// Every column carries a VerbSet telling which generated HTTP verbs include
// it. When not given explicitly, DefaultVerbs derives it from the column:
// auto-generated columns are never posted, only primary keys are used to
// delete.
package schema
