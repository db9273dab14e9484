// Package ddlexec applies a generated DDL script to a live database.
package ddlexec

import (
	"context"
	"errors"
	"fmt"
	"log"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"dbdesigner/internal/models"
	"dbdesigner/internal/sqlgen"
)

var ErrUnsupportedDialect = errors.New("dialect cannot be applied to a live database")

// driverNames maps the dialects we can connect to onto database/sql drivers.
var driverNames = map[models.Dialect]string{
	models.DialectPostgreSQL: "pgx",
	models.DialectMySQL:      "mysql",
	models.DialectSQLite:     "sqlite",
}

type Executor struct {
	db      *sqlx.DB
	dialect models.Dialect
}

// Result lists what Apply ran and what it left out.
type Result struct {
	Executed []sqlgen.Statement
	Skipped  []sqlgen.Statement
}

// Open connects to dsn with the driver for dialect.
func Open(ctx context.Context, dialect models.Dialect, dsn string) (*Executor, error) {
	driver, ok := driverNames[dialect]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, dialect)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Executor{db: db, dialect: dialect}, nil
}

// New wraps an existing connection.
func New(db *sqlx.DB, dialect models.Dialect) *Executor {
	return &Executor{db: db, dialect: dialect}
}

func (e *Executor) Close() error {
	return e.db.Close()
}

// Apply runs the design's statements in one transaction. Warning lines are
// skipped, and so are foreign keys on SQLite, which has no ALTER TABLE ADD
// CONSTRAINT. MySQL commits DDL implicitly, so a failure there can leave
// earlier tables behind.
func (e *Executor) Apply(ctx context.Context, design models.Design) (*Result, error) {
	if _, ok := driverNames[e.dialect]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, e.dialect)
	}

	result := &Result{}
	var run []sqlgen.Statement
	for _, stmt := range sqlgen.Statements(design, e.dialect) {
		switch {
		case stmt.Kind == sqlgen.KindWarning:
			log.Printf("skipping unresolved relationship: %s", stmt.SQL)
			result.Skipped = append(result.Skipped, stmt)
		case stmt.Kind == sqlgen.KindForeignKey && e.dialect == models.DialectSQLite:
			log.Printf("skipping foreign key, not supported by ALTER TABLE on sqlite: %s", stmt.SQL)
			result.Skipped = append(result.Skipped, stmt)
		default:
			run = append(run, stmt)
		}
	}

	tx, err := e.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	for i, stmt := range run {
		if _, err := tx.ExecContext(ctx, stmt.SQL); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("rollback failed: %v", rbErr)
			}
			return nil, fmt.Errorf("statement %d (%s) failed: %w", i+1, stmt.Kind, err)
		}
		result.Executed = append(result.Executed, stmt)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return result, nil
}
