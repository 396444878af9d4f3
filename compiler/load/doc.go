// Package load builds the metadata of a project, either from a YAML or
// JSON project file or by inspecting the tables of a live MySQL, PostgreSQL
// or SQLite database.
package load
