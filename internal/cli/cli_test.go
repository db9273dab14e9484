package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const designYAML = `id: d1
name: blog
tables:
  - id: t-users
    name: users
    columns:
      - id: u-id
        name: id
        type: integer
        isPrimaryKey: true
        isNullable: false
  - id: t-posts
    name: posts
    columns:
      - id: p-id
        name: id
        type: integer
        isPrimaryKey: true
      - id: p-author
        name: author_id
        type: integer
relationships:
  - id: r1
    fromTable: t-posts
    fromColumn: p-author
    toTable: t-users
    toColumn: u-id
    onDelete: restrict
`

func writeDesign(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(designYAML), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand(&out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestGenerateToStdout(t *testing.T) {
	path := writeDesign(t)

	out, _, err := run(t, "generate", path, "--dialect", "postgresql")
	require.NoError(t, err)
	assert.Equal(t, "-- Generated SQL for postgresql\n\n"+
		"CREATE TABLE \"users\" (\n  \"id\" INTEGER NOT NULL,\n  CONSTRAINT pk_users PRIMARY KEY (\"id\")\n);\n\n"+
		"CREATE TABLE \"posts\" (\n  \"id\" INTEGER,\n  \"author_id\" INTEGER,\n  CONSTRAINT pk_posts PRIMARY KEY (\"id\")\n);\n\n"+
		"ALTER TABLE \"posts\" ADD CONSTRAINT fk_posts_author_id FOREIGN KEY (\"author_id\") REFERENCES \"users\" (\"id\") ON DELETE RESTRICT;\n", out)
}

func TestGenerateDefaultsToGeneralSQL(t *testing.T) {
	out, _, err := run(t, "generate", writeDesign(t))
	require.NoError(t, err)
	assert.Contains(t, out, "-- Generated SQL for General SQL")
}

func TestGenerateToFile(t *testing.T) {
	path := writeDesign(t)
	target := filepath.Join(t.TempDir(), "schema.sql")

	out, status, err := run(t, "generate", path, "-d", "mysql", "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, status, "Wrote "+target+" (MySQL)")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CREATE TABLE `users`")
}

func TestGenerateErrors(t *testing.T) {
	path := writeDesign(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad dialect", []string{"generate", path, "--dialect", "db2"}, `unsupported dialect "db2"`},
		{"missing file", []string{"generate", filepath.Join(t.TempDir(), "nope.json")}, "no such file"},
		{"no argument", []string{"generate"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestApplyToSQLite(t *testing.T) {
	path := writeDesign(t)
	dsn := filepath.Join(t.TempDir(), "blog.db")

	out, status, err := run(t, "apply", path, "--dialect", "sqlite", "--dsn", dsn)
	require.NoError(t, err)
	assert.Equal(t, "posts (2 columns)\nusers (1 columns)\n", out)
	assert.Contains(t, status, "skipped foreign_key on SQLite")
	assert.Contains(t, status, "Applied 2 statement(s) to SQLite")

	db, err := sqlx.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	assert.Equal(t, []string{"posts", "users"}, tables)
}

func TestApplyRequiresFlags(t *testing.T) {
	path := writeDesign(t)

	_, _, err := run(t, "apply", path, "--dialect", "sqlite")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "dsn" not set`)

	_, _, err = run(t, "apply", path, "--dialect", "oracle", "--dsn", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be applied")
}
