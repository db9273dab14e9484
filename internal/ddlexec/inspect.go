package ddlexec

import (
	"context"
	"fmt"

	"dbdesigner/internal/models"
)

// ColumnInfo is a column as the target database reports it. The queries
// alias every column because MySQL 8 labels information_schema columns in
// upper case.
type ColumnInfo struct {
	Name     string `db:"column_name"`
	DataType string `db:"data_type"`
	Nullable bool   `db:"nullable"`
}

var tablesQueries = map[models.Dialect]string{
	models.DialectPostgreSQL: `
		SELECT table_name AS table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
	models.DialectMySQL: `
		SELECT table_name AS table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		AND table_type = 'BASE TABLE'
		ORDER BY table_name`,
	models.DialectSQLite: `
		SELECT name AS table_name
		FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite_%'
		ORDER BY name`,
}

var columnsQueries = map[models.Dialect]string{
	models.DialectPostgreSQL: `
		SELECT column_name AS column_name, data_type AS data_type, is_nullable = 'YES' AS nullable
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position`,
	models.DialectMySQL: `
		SELECT column_name AS column_name, data_type AS data_type, is_nullable = 'YES' AS nullable
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position`,
	models.DialectSQLite: `
		SELECT name AS column_name, type AS data_type, "notnull" = 0 AS nullable
		FROM pragma_table_info(?)
		ORDER BY cid`,
}

// Tables returns the base tables in the connection's current schema.
func (e *Executor) Tables(ctx context.Context) ([]string, error) {
	query, ok := tablesQueries[e.dialect]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, e.dialect)
	}
	tables := []string{}
	if err := e.db.SelectContext(ctx, &tables, query); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

// Columns describes table in ordinal order.
func (e *Executor) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	query, ok := columnsQueries[e.dialect]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, e.dialect)
	}
	columns := []ColumnInfo{}
	if err := e.db.SelectContext(ctx, &columns, query, table); err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	return columns, nil
}
