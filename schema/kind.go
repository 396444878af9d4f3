package schema

import (
	"fmt"
	"strings"
)

// Kind classifies a database column type for template selection.
type Kind uint8

// Column kinds.
const (
	KindOther Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
)

var kindNames = [...]string{
	KindOther:  "other",
	KindString: "string",
	KindNumber: "number",
	KindBool:   "bool",
	KindDate:   "date",
}

// String returns the kind name as used in sub-template file names
// (e.g. "form-control-instantiations.string.ts").
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// TSType returns the TypeScript type used for the kind in generated models.
func (k Kind) TSType() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindDate:
		return "Date"
	default:
		return "any"
	}
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}
	return KindOther, fmt.Errorf("schema: unknown column kind %q", s)
}

// KindOf classifies a raw database type. Sizes, precision, array suffixes and
// the "unsigned" modifier are ignored, so "varchar(255)", "VARCHAR" and
// "character varying" all map to KindString.
func KindOf(dbType string) Kind {
	t := strings.ToLower(strings.TrimSpace(dbType))
	// tinyint(1) and bit(1) are the conventional boolean columns of mysql
	// and mssql.
	if t == "tinyint(1)" || t == "bit(1)" {
		return KindBool
	}
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimSuffix(t, "[]")
	t = strings.TrimSpace(strings.TrimSuffix(t, " unsigned"))
	switch t {
	case "char", "nchar", "varchar", "nvarchar", "varchar2", "nvarchar2",
		"character", "character varying", "text", "tinytext", "mediumtext",
		"longtext", "ntext", "citext", "clob", "string", "uuid",
		"uniqueidentifier", "enum", "set", "bpchar":
		return KindString
	case "int", "integer", "int2", "int4", "int8", "smallint", "tinyint",
		"mediumint", "bigint", "serial", "smallserial", "bigserial",
		"decimal", "numeric", "number", "float", "float4", "float8",
		"double", "double precision", "real", "money", "smallmoney":
		return KindNumber
	case "bool", "boolean", "bit":
		return KindBool
	case "date", "datetime", "datetime2", "smalldatetime", "datetimeoffset",
		"time", "timetz", "timestamp", "timestamptz",
		"timestamp with time zone", "timestamp without time zone",
		"time with time zone", "time without time zone":
		return KindDate
	}
	return KindOther
}
