package models

import (
	"fmt"
	"strings"
)

// SqlType is the column type vocabulary of the designer.
type SqlType string

const (
	TypeInteger   SqlType = "integer"
	TypeText      SqlType = "text"
	TypeBoolean   SqlType = "boolean"
	TypeDate      SqlType = "date"
	TypeTimestamp SqlType = "timestamp"
	TypeUUID      SqlType = "uuid"
	TypeJSON      SqlType = "json"
	TypeFloat     SqlType = "float"
	TypeDouble    SqlType = "double"
	TypeDecimal   SqlType = "decimal"
	TypeBlob      SqlType = "blob"
)

// SqlTypes lists every SqlType in the order the editor offers them.
var SqlTypes = []SqlType{
	TypeInteger,
	TypeText,
	TypeBoolean,
	TypeDate,
	TypeTimestamp,
	TypeUUID,
	TypeJSON,
	TypeFloat,
	TypeDouble,
	TypeDecimal,
	TypeBlob,
}

func (t SqlType) Valid() bool {
	for _, s := range SqlTypes {
		if s == t {
			return true
		}
	}
	return false
}

// Dialect is a target SQL database product.
type Dialect string

const (
	DialectGeneral    Dialect = "general"
	DialectPostgreSQL Dialect = "postgresql"
	DialectMySQL      Dialect = "mysql"
	DialectSQLite     Dialect = "sqlite"
	DialectSQLServer  Dialect = "sqlserver"
	DialectOracle     Dialect = "oracle"
)

var Dialects = []Dialect{
	DialectGeneral,
	DialectPostgreSQL,
	DialectMySQL,
	DialectSQLite,
	DialectSQLServer,
	DialectOracle,
}

func (d Dialect) Valid() bool {
	switch d {
	case DialectGeneral, DialectPostgreSQL, DialectMySQL, DialectSQLite, DialectSQLServer, DialectOracle:
		return true
	}
	return false
}

// Label is the human readable product name shown by the export page.
func (d Dialect) Label() string {
	switch d {
	case DialectGeneral:
		return "General SQL"
	case DialectPostgreSQL:
		return "PostgreSQL"
	case DialectMySQL:
		return "MySQL"
	case DialectSQLite:
		return "SQLite"
	case DialectSQLServer:
		return "SQL Server"
	case DialectOracle:
		return "Oracle"
	}
	return string(d)
}

// ParseDialect validates s against the supported dialects.
func ParseDialect(s string) (Dialect, error) {
	d := Dialect(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unsupported dialect %q", s)
	}
	return d, nil
}

// OnDeleteAction is the referential action of a foreign key.
type OnDeleteAction string

const (
	OnDeleteCascade  OnDeleteAction = "cascade"
	OnDeleteRestrict OnDeleteAction = "restrict"
	OnDeleteSetNull  OnDeleteAction = "set null"
)

func (a OnDeleteAction) Valid() bool {
	switch a {
	case OnDeleteCascade, OnDeleteRestrict, OnDeleteSetNull:
		return true
	}
	return false
}

// Design is the schema document edited on the canvas and persisted as JSON.
type Design struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name,omitempty" yaml:"name,omitempty"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty"`
	Tables        []Table      `json:"tables" yaml:"tables"`
	Relationships []ForeignKey `json:"relationships" yaml:"relationships"`
	// ExampleData holds sample rows per table for the canvas preview. It is
	// stored with the design and ignored by DDL generation.
	ExampleData map[string][]any `json:"exampleData,omitempty" yaml:"exampleData,omitempty"`
}

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type Table struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Columns     []Column  `json:"columns" yaml:"columns"`
	Position    *Position `json:"position,omitempty" yaml:"position,omitempty"`
}

type Column struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Type         SqlType `json:"type" yaml:"type"`
	IsPrimaryKey bool    `json:"isPrimaryKey,omitempty" yaml:"isPrimaryKey,omitempty"`
	// IsNullable is nil when the editor never set it; nil reads as nullable.
	IsNullable   *bool  `json:"isNullable,omitempty" yaml:"isNullable,omitempty"`
	IsUnique     bool   `json:"isUnique,omitempty" yaml:"isUnique,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Comment      string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// NotNull reports whether the column was explicitly marked non-nullable.
func (c Column) NotNull() bool {
	return c.IsNullable != nil && !*c.IsNullable
}

type ForeignKey struct {
	ID         string         `json:"id" yaml:"id"`
	FromTable  string         `json:"fromTable" yaml:"fromTable"`
	FromColumn string         `json:"fromColumn" yaml:"fromColumn"`
	ToTable    string         `json:"toTable" yaml:"toTable"`
	ToColumn   string         `json:"toColumn" yaml:"toColumn"`
	OnDelete   OnDeleteAction `json:"onDelete,omitempty" yaml:"onDelete,omitempty"`
}

// Validate checks the fields the editor forms enforce. Dangling relationship
// references are not an error here; the SQL export annotates them instead.
func (d *Design) Validate() error {
	seen := make(map[string]bool, len(d.Tables))
	for i, t := range d.Tables {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("table %d: name is required", i)
		}
		if t.ID != "" {
			if seen[t.ID] {
				return fmt.Errorf("table %q: duplicate id %s", t.Name, t.ID)
			}
			seen[t.ID] = true
		}
		for j, c := range t.Columns {
			if strings.TrimSpace(c.Name) == "" {
				return fmt.Errorf("table %q column %d: name is required", t.Name, j)
			}
			if !c.Type.Valid() {
				return fmt.Errorf("table %q column %q: unsupported type %q", t.Name, c.Name, c.Type)
			}
		}
	}
	for _, fk := range d.Relationships {
		if fk.OnDelete != "" && !fk.OnDelete.Valid() {
			return fmt.Errorf("relationship %s: unsupported onDelete %q", fk.ID, fk.OnDelete)
		}
	}
	return nil
}
