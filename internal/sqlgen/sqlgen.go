// Package sqlgen renders a design as a DDL script for one SQL dialect.
//
// All functions are pure: they read the design, never modify it and keep no
// state between calls, so they are safe to call from concurrent requests.
package sqlgen

import (
	"fmt"
	"strings"

	"dbdesigner/internal/models"
)

const (
	warnUnresolvedTables  = "-- Warning: Could not resolve table names for foreign key relationship"
	warnUnresolvedColumns = "-- Warning: Could not resolve column names for foreign key relationship"
)

// Kind classifies a generated statement.
type Kind int

const (
	KindCreateTable Kind = iota
	KindForeignKey
	// KindWarning is a comment line standing in for a relationship whose
	// table or column ids do not resolve within the design.
	KindWarning
)

func (k Kind) String() string {
	switch k {
	case KindCreateTable:
		return "create_table"
	case KindForeignKey:
		return "foreign_key"
	case KindWarning:
		return "warning"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type Statement struct {
	Kind Kind
	SQL  string
}

// Generate returns the complete DDL script for design: a header comment, one
// CREATE TABLE per table in design order, then one foreign key line per
// relationship in design order.
func Generate(design models.Design, dialect models.Dialect) string {
	return Render(Statements(design, dialect), dialect)
}

// Render lays out statements as a script under the dialect header.
func Render(stmts []Statement, dialect models.Dialect) string {
	var b strings.Builder
	b.WriteString(Header(dialect))
	b.WriteString("\n\n")

	for _, stmt := range stmts {
		b.WriteString(stmt.SQL)
		if stmt.Kind == KindCreateTable {
			b.WriteString("\n\n")
		} else {
			b.WriteString("\n")
		}
	}

	return strings.TrimSpace(b.String())
}

// Header is the comment line every script starts with.
func Header(dialect models.Dialect) string {
	label := string(dialect)
	if dialect == models.DialectGeneral {
		label = dialect.Label()
	}
	return "-- Generated SQL for " + label
}

// Statements returns the statements of the script in emission order. Every
// relationship yields exactly one statement, either a foreign key or a warning.
func Statements(design models.Design, dialect models.Dialect) []Statement {
	stmts := make([]Statement, 0, len(design.Tables)+len(design.Relationships))

	for i := range design.Tables {
		stmts = append(stmts, Statement{
			Kind: KindCreateTable,
			SQL:  CreateTable(design.Tables[i], dialect),
		})
	}

	idx := newIndex(design.Tables)
	for _, fk := range design.Relationships {
		stmts = append(stmts, idx.foreignKey(fk, dialect))
	}

	return stmts
}

// CreateTable renders a single CREATE TABLE statement with its primary key and
// unique constraints inlined. A table without columns still renders.
func CreateTable(table models.Table, dialect models.Dialect) string {
	defs := make([]string, 0, len(table.Columns)+1)
	for _, col := range table.Columns {
		defs = append(defs, columnDefinition(col, dialect))
	}

	var pk []string
	for _, col := range table.Columns {
		if col.IsPrimaryKey {
			pk = append(pk, EscapeIdentifier(col.Name, dialect))
		}
	}
	if len(pk) > 0 {
		defs = append(defs, fmt.Sprintf("  CONSTRAINT pk_%s PRIMARY KEY (%s)", table.Name, strings.Join(pk, ", ")))
	}

	// A primary key column is already unique; do not declare it twice.
	for _, col := range table.Columns {
		if col.IsUnique && !col.IsPrimaryKey {
			defs = append(defs, fmt.Sprintf("  CONSTRAINT uk_%s_%s UNIQUE (%s)",
				table.Name, col.Name, EscapeIdentifier(col.Name, dialect)))
		}
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(EscapeIdentifier(table.Name, dialect))
	b.WriteString(" (\n")
	b.WriteString(strings.Join(defs, ",\n"))
	b.WriteString("\n);")
	return b.String()
}

func columnDefinition(col models.Column, dialect models.Dialect) string {
	def := fmt.Sprintf("  %s %s", EscapeIdentifier(col.Name, dialect), MapColumnType(col.Type, dialect))
	if col.NotNull() {
		def += " NOT NULL"
	}
	if col.DefaultValue != "" {
		def += " DEFAULT " + FormatDefaultValue(col.DefaultValue, col.Type, dialect)
	}
	return def
}

// index resolves relationship ids in constant time. When ids repeat, the
// first table or column wins.
type index struct {
	tables  map[string]*models.Table
	columns map[string]map[string]*models.Column
}

func newIndex(tables []models.Table) *index {
	idx := &index{
		tables:  make(map[string]*models.Table, len(tables)),
		columns: make(map[string]map[string]*models.Column, len(tables)),
	}
	for i := range tables {
		t := &tables[i]
		if _, ok := idx.tables[t.ID]; ok {
			continue
		}
		idx.tables[t.ID] = t
		cols := make(map[string]*models.Column, len(t.Columns))
		for j := range t.Columns {
			if _, ok := cols[t.Columns[j].ID]; !ok {
				cols[t.Columns[j].ID] = &t.Columns[j]
			}
		}
		idx.columns[t.ID] = cols
	}
	return idx
}

func (idx *index) foreignKey(fk models.ForeignKey, dialect models.Dialect) Statement {
	from, okFrom := idx.tables[fk.FromTable]
	to, okTo := idx.tables[fk.ToTable]
	if !okFrom || !okTo {
		return Statement{Kind: KindWarning, SQL: warnUnresolvedTables}
	}

	fromCol, okFrom := idx.columns[from.ID][fk.FromColumn]
	toCol, okTo := idx.columns[to.ID][fk.ToColumn]
	if !okFrom || !okTo {
		return Statement{Kind: KindWarning, SQL: warnUnresolvedColumns}
	}

	action := "CASCADE"
	if fk.OnDelete != "" {
		action = strings.ToUpper(string(fk.OnDelete))
	}

	sql := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT fk_%s_%s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s;",
		EscapeIdentifier(from.Name, dialect),
		from.Name, fromCol.Name,
		EscapeIdentifier(fromCol.Name, dialect),
		EscapeIdentifier(to.Name, dialect),
		EscapeIdentifier(toCol.Name, dialect),
		action,
	)
	return Statement{Kind: KindForeignKey, SQL: sql}
}
