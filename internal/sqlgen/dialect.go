package sqlgen

import (
	"strings"

	"dbdesigner/internal/models"
)

// EscapeIdentifier quotes name in the dialect's identifier style. A closing
// quote character inside name is doubled so the identifier reads back intact.
func EscapeIdentifier(name string, dialect models.Dialect) string {
	switch dialect {
	case models.DialectMySQL:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	case models.DialectSQLServer:
		return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
	case models.DialectSQLite:
		// SQLite has no escape inside brackets.
		if strings.Contains(name, "]") {
			return doubleQuoted(name)
		}
		return "[" + name + "]"
	case models.DialectOracle:
		return doubleQuoted(strings.ToUpper(name))
	default:
		return doubleQuoted(name)
	}
}

func doubleQuoted(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

var typeMap = map[models.Dialect]map[models.SqlType]string{
	models.DialectPostgreSQL: {
		models.TypeInteger:   "INTEGER",
		models.TypeText:      "TEXT",
		models.TypeBoolean:   "BOOLEAN",
		models.TypeDate:      "DATE",
		models.TypeTimestamp: "TIMESTAMP",
		models.TypeUUID:      "UUID",
		models.TypeJSON:      "JSON",
		models.TypeFloat:     "REAL",
		models.TypeDouble:    "DOUBLE PRECISION",
		models.TypeDecimal:   "NUMERIC",
		models.TypeBlob:      "BYTEA",
	},
	models.DialectMySQL: {
		models.TypeInteger:   "INT",
		models.TypeText:      "TEXT",
		models.TypeBoolean:   "BOOLEAN",
		models.TypeDate:      "DATE",
		models.TypeTimestamp: "TIMESTAMP",
		models.TypeUUID:      "CHAR(36)",
		models.TypeJSON:      "JSON",
		models.TypeFloat:     "FLOAT",
		models.TypeDouble:    "DOUBLE",
		models.TypeDecimal:   "DECIMAL",
		models.TypeBlob:      "BLOB",
	},
	models.DialectSQLite: {
		models.TypeInteger:   "INTEGER",
		models.TypeText:      "TEXT",
		models.TypeBoolean:   "INTEGER",
		models.TypeDate:      "TEXT",
		models.TypeTimestamp: "TEXT",
		models.TypeUUID:      "TEXT",
		models.TypeJSON:      "TEXT",
		models.TypeFloat:     "REAL",
		models.TypeDouble:    "REAL",
		models.TypeDecimal:   "NUMERIC",
		models.TypeBlob:      "BLOB",
	},
	models.DialectSQLServer: {
		models.TypeInteger:   "INT",
		models.TypeText:      "NVARCHAR(MAX)",
		models.TypeBoolean:   "BIT",
		models.TypeDate:      "DATE",
		models.TypeTimestamp: "DATETIME2",
		models.TypeUUID:      "UNIQUEIDENTIFIER",
		models.TypeJSON:      "NVARCHAR(MAX)",
		models.TypeFloat:     "FLOAT",
		models.TypeDouble:    "FLOAT",
		models.TypeDecimal:   "DECIMAL",
		models.TypeBlob:      "VARBINARY(MAX)",
	},
	models.DialectOracle: {
		models.TypeInteger:   "NUMBER",
		models.TypeText:      "CLOB",
		models.TypeBoolean:   "NUMBER(1)",
		models.TypeDate:      "DATE",
		models.TypeTimestamp: "TIMESTAMP",
		models.TypeUUID:      "VARCHAR2(36)",
		models.TypeJSON:      "CLOB",
		models.TypeFloat:     "BINARY_FLOAT",
		models.TypeDouble:    "BINARY_DOUBLE",
		models.TypeDecimal:   "NUMBER",
		models.TypeBlob:      "BLOB",
	},
}

// MapColumnType returns the dialect's native spelling of t. The general
// dialect, and any type a dialect does not list, use the upper-cased name.
func MapColumnType(t models.SqlType, dialect models.Dialect) string {
	if mapped, ok := typeMap[dialect][t]; ok {
		return mapped
	}
	return strings.ToUpper(string(t))
}

// FormatDefaultValue renders the raw default text for a column of type t.
// Types without a rule pass through untouched, which lets users write
// expressions such as NOW() or CURRENT_TIMESTAMP.
func FormatDefaultValue(value string, t models.SqlType, dialect models.Dialect) string {
	switch t {
	case models.TypeText:
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	case models.TypeBoolean:
		if dialect == models.DialectSQLite {
			if strings.ToLower(value) == "true" {
				return "1"
			}
			return "0"
		}
		return strings.ToUpper(value)
	case models.TypeInteger, models.TypeFloat, models.TypeDouble, models.TypeDecimal:
		return value
	default:
		return value
	}
}
