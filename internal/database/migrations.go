package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations applies every statement in order. Each one is idempotent, so
// the server runs them on every start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		createDialectType,
		createProjectsTable,
		addProjectsUpdatedAtIndex,
	}

	for i, migration := range migrations {
		log.Printf("Running migration %d/%d", i+1, len(migrations))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("All migrations completed successfully")
	return nil
}

const createDialectType = `
DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'dialect_t') THEN
    CREATE TYPE dialect_t AS ENUM ('general', 'postgresql', 'mysql', 'sqlite', 'sqlserver', 'oracle');
  END IF;
END$$;
`

// Users live with the external auth provider, so user_id carries no
// foreign key.
const createProjectsTable = `
CREATE TABLE IF NOT EXISTS projects (
  id UUID PRIMARY KEY,
  user_id UUID NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  dialect dialect_t NOT NULL DEFAULT 'general',
  design JSONB NOT NULL DEFAULT '{}'::jsonb,
  ai_conversation TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  CONSTRAINT projects_user_name_key UNIQUE (user_id, name)
);

CREATE INDEX IF NOT EXISTS idx_projects_user_id ON projects(user_id);
`

const addProjectsUpdatedAtIndex = `
CREATE INDEX IF NOT EXISTS idx_projects_updated_at ON projects(updated_at);
`
