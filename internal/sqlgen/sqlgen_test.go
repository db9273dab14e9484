package sqlgen_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbdesigner/internal/models"
	"dbdesigner/internal/sqlgen"
)

func boolPtr(b bool) *bool { return &b }

func usersDesign() models.Design {
	return models.Design{
		ID: "design-1",
		Tables: []models.Table{
			{
				ID:   "t-users",
				Name: "Users",
				Columns: []models.Column{
					{ID: "c-users-id", Name: "id", Type: models.TypeInteger, IsPrimaryKey: true},
					{ID: "c-users-name", Name: "name", Type: models.TypeText, IsNullable: boolPtr(false)},
				},
			},
		},
	}
}

func blogDesign() models.Design {
	return models.Design{
		ID: "design-2",
		Tables: []models.Table{
			{
				ID:   "t-users",
				Name: "users",
				Columns: []models.Column{
					{ID: "c-users-id", Name: "id", Type: models.TypeUUID, IsPrimaryKey: true, IsUnique: true},
					{ID: "c-users-email", Name: "email", Type: models.TypeText, IsNullable: boolPtr(false), IsUnique: true},
				},
			},
			{
				ID:   "t-posts",
				Name: "posts",
				Columns: []models.Column{
					{ID: "c-posts-id", Name: "id", Type: models.TypeInteger, IsPrimaryKey: true},
					{ID: "c-posts-author", Name: "author_id", Type: models.TypeUUID},
					{ID: "c-posts-published", Name: "published", Type: models.TypeBoolean, DefaultValue: "false"},
				},
			},
		},
		Relationships: []models.ForeignKey{
			{ID: "r-1", FromTable: "t-posts", FromColumn: "c-posts-author", ToTable: "t-users", ToColumn: "c-users-id"},
		},
	}
}

func TestGenerateEmptyDesign(t *testing.T) {
	got := sqlgen.Generate(models.Design{}, models.DialectGeneral)
	assert.Equal(t, "-- Generated SQL for General SQL", got)

	got = sqlgen.Generate(models.Design{Tables: []models.Table{}, Relationships: []models.ForeignKey{}}, models.DialectMySQL)
	assert.Equal(t, "-- Generated SQL for mysql", got)
}

func TestGenerateSingleTablePostgres(t *testing.T) {
	want := `-- Generated SQL for postgresql

CREATE TABLE "Users" (
  "id" INTEGER,
  "name" TEXT NOT NULL,
  CONSTRAINT pk_Users PRIMARY KEY ("id")
);`
	assert.Equal(t, want, sqlgen.Generate(usersDesign(), models.DialectPostgreSQL))
}

func TestGenerateMySQLWithForeignKey(t *testing.T) {
	want := "-- Generated SQL for mysql\n" +
		"\n" +
		"CREATE TABLE `users` (\n" +
		"  `id` CHAR(36),\n" +
		"  `email` TEXT NOT NULL,\n" +
		"  CONSTRAINT pk_users PRIMARY KEY (`id`),\n" +
		"  CONSTRAINT uk_users_email UNIQUE (`email`)\n" +
		");\n" +
		"\n" +
		"CREATE TABLE `posts` (\n" +
		"  `id` INT,\n" +
		"  `author_id` CHAR(36),\n" +
		"  `published` BOOLEAN DEFAULT FALSE,\n" +
		"  CONSTRAINT pk_posts PRIMARY KEY (`id`)\n" +
		");\n" +
		"\n" +
		"ALTER TABLE `posts` ADD CONSTRAINT fk_posts_author_id FOREIGN KEY (`author_id`) REFERENCES `users` (`id`) ON DELETE CASCADE;"

	assert.Equal(t, want, sqlgen.Generate(blogDesign(), models.DialectMySQL))
}

func TestGenerateSQLiteBooleanDefault(t *testing.T) {
	got := sqlgen.Generate(blogDesign(), models.DialectSQLite)
	assert.Contains(t, got, "[published] INTEGER DEFAULT 0")
	assert.Contains(t, got, "ALTER TABLE [posts] ADD CONSTRAINT fk_posts_author_id FOREIGN KEY ([author_id]) REFERENCES [users] ([id]) ON DELETE CASCADE;")
}

func TestGenerateIsDeterministicAndDoesNotMutateInput(t *testing.T) {
	design := blogDesign()
	before := blogDesign()

	for _, d := range models.Dialects {
		first := sqlgen.Generate(design, d)
		second := sqlgen.Generate(design, d)
		assert.Equal(t, first, second, d)
	}
	assert.Equal(t, before, design)
}

func TestGenerateConcurrentCalls(t *testing.T) {
	design := blogDesign()
	want := sqlgen.Generate(design, models.DialectOracle)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = sqlgen.Generate(design, models.DialectOracle)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestGenerateStatementCounts(t *testing.T) {
	design := blogDesign()
	design.Relationships = append(design.Relationships,
		models.ForeignKey{ID: "r-2", FromTable: "t-posts", FromColumn: "c-posts-id", ToTable: "t-missing", ToColumn: "c-x"},
		models.ForeignKey{ID: "r-3", FromTable: "t-posts", FromColumn: "c-missing", ToTable: "t-users", ToColumn: "c-users-id"},
	)

	for _, d := range models.Dialects {
		t.Run(string(d), func(t *testing.T) {
			got := sqlgen.Generate(design, d)
			assert.Equal(t, len(design.Tables), strings.Count(got, "CREATE TABLE "))

			fkLines := 0
			for _, line := range strings.Split(got, "\n") {
				if strings.HasPrefix(line, "ALTER TABLE ") || strings.HasPrefix(line, "-- Warning:") {
					fkLines++
				}
			}
			assert.Equal(t, len(design.Relationships), fkLines)

			stmts := sqlgen.Statements(design, d)
			require.Len(t, stmts, len(design.Tables)+len(design.Relationships))
			assert.Equal(t, sqlgen.KindForeignKey, stmts[2].Kind)
			assert.Equal(t, sqlgen.KindWarning, stmts[3].Kind)
			assert.Equal(t, sqlgen.KindWarning, stmts[4].Kind)
		})
	}
}

func TestForeignKeyWithMissingTargetTable(t *testing.T) {
	design := blogDesign()
	design.Relationships = []models.ForeignKey{
		{ID: "r-bad", FromTable: "t-posts", FromColumn: "c-posts-author", ToTable: "t-gone", ToColumn: "c-users-id"},
		design.Relationships[0],
	}

	got := sqlgen.Generate(design, models.DialectPostgreSQL)
	lines := strings.Split(got, "\n")

	assert.Equal(t, "-- Warning: Could not resolve table names for foreign key relationship", lines[len(lines)-2])
	assert.Equal(t, `ALTER TABLE "posts" ADD CONSTRAINT fk_posts_author_id FOREIGN KEY ("author_id") REFERENCES "users" ("id") ON DELETE CASCADE;`, lines[len(lines)-1])
	assert.Equal(t, 1, strings.Count(got, "ALTER TABLE"))
	assert.Equal(t, 2, strings.Count(got, "CREATE TABLE"))
}

func TestForeignKeyWithMissingColumn(t *testing.T) {
	design := blogDesign()
	design.Relationships[0].ToColumn = "c-gone"

	got := sqlgen.Generate(design, models.DialectGeneral)
	assert.True(t, strings.HasSuffix(got, "-- Warning: Could not resolve column names for foreign key relationship"))
	assert.NotContains(t, got, "ALTER TABLE")
}

func TestForeignKeyOnDelete(t *testing.T) {
	tests := []struct {
		name     string
		onDelete models.OnDeleteAction
		want     string
	}{
		// The relationship dialogs default new relationships to "set null",
		// but an unset action still exports as CASCADE.
		{name: "unset defaults to cascade", onDelete: "", want: "ON DELETE CASCADE;"},
		{name: "cascade", onDelete: models.OnDeleteCascade, want: "ON DELETE CASCADE;"},
		{name: "restrict", onDelete: models.OnDeleteRestrict, want: "ON DELETE RESTRICT;"},
		{name: "set null", onDelete: models.OnDeleteSetNull, want: "ON DELETE SET NULL;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			design := blogDesign()
			design.Relationships[0].OnDelete = tt.onDelete
			got := sqlgen.Generate(design, models.DialectGeneral)
			assert.True(t, strings.HasSuffix(got, tt.want), got)
		})
	}
}

func TestCreateTableConstraints(t *testing.T) {
	tests := []struct {
		name    string
		table   models.Table
		want    []string
		notWant []string
	}{
		{
			name: "single primary key",
			table: models.Table{Name: "t", Columns: []models.Column{
				{ID: "1", Name: "id", Type: models.TypeInteger, IsPrimaryKey: true},
				{ID: "2", Name: "v", Type: models.TypeText},
			}},
			want:    []string{`CONSTRAINT pk_t PRIMARY KEY ("id")`},
			notWant: []string{"UNIQUE"},
		},
		{
			name: "composite primary key keeps column order",
			table: models.Table{Name: "t", Columns: []models.Column{
				{ID: "1", Name: "b", Type: models.TypeInteger, IsPrimaryKey: true},
				{ID: "2", Name: "x", Type: models.TypeText},
				{ID: "3", Name: "a", Type: models.TypeInteger, IsPrimaryKey: true},
			}},
			want: []string{`CONSTRAINT pk_t PRIMARY KEY ("b", "a")`},
		},
		{
			name: "no primary key",
			table: models.Table{Name: "t", Columns: []models.Column{
				{ID: "1", Name: "v", Type: models.TypeText},
			}},
			notWant: []string{"PRIMARY KEY"},
		},
		{
			name: "unique primary key is declared once",
			table: models.Table{Name: "t", Columns: []models.Column{
				{ID: "1", Name: "id", Type: models.TypeUUID, IsPrimaryKey: true, IsUnique: true},
			}},
			want:    []string{`CONSTRAINT pk_t PRIMARY KEY ("id")`},
			notWant: []string{"UNIQUE", "uk_t_id"},
		},
		{
			name: "one unique constraint per column",
			table: models.Table{Name: "t", Columns: []models.Column{
				{ID: "1", Name: "a", Type: models.TypeText, IsUnique: true},
				{ID: "2", Name: "b", Type: models.TypeText, IsUnique: true},
			}},
			want: []string{`CONSTRAINT uk_t_a UNIQUE ("a")`, `CONSTRAINT uk_t_b UNIQUE ("b")`},
		},
		{
			name: "nullable unset or true emits no NOT NULL",
			table: models.Table{Name: "t", Columns: []models.Column{
				{ID: "1", Name: "a", Type: models.TypeText},
				{ID: "2", Name: "b", Type: models.TypeText, IsNullable: boolPtr(true)},
			}},
			notWant: []string{"NOT NULL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sqlgen.CreateTable(tt.table, models.DialectGeneral)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, got, nw)
			}
			assert.LessOrEqual(t, strings.Count(got, "PRIMARY KEY"), 1)
		})
	}
}

func TestCreateTableWithoutColumns(t *testing.T) {
	got := sqlgen.CreateTable(models.Table{ID: "t", Name: "empty"}, models.DialectPostgreSQL)
	assert.Equal(t, "CREATE TABLE \"empty\" (\n\n);", got)
}

func TestCreateTableDefaultValues(t *testing.T) {
	table := models.Table{Name: "people", Columns: []models.Column{
		{ID: "1", Name: "surname", Type: models.TypeText, DefaultValue: "O'Brien"},
		{ID: "2", Name: "age", Type: models.TypeInteger, DefaultValue: "42"},
		{ID: "3", Name: "created", Type: models.TypeTimestamp, IsNullable: boolPtr(false), DefaultValue: "NOW()"},
		{ID: "4", Name: "note", Type: models.TypeText, DefaultValue: ""},
	}}

	got := sqlgen.CreateTable(table, models.DialectPostgreSQL)
	assert.Contains(t, got, `"surname" TEXT DEFAULT 'O''Brien'`)
	assert.Contains(t, got, `"age" INTEGER DEFAULT 42`)
	assert.Contains(t, got, `"created" TIMESTAMP NOT NULL DEFAULT NOW()`)
	assert.Contains(t, got, "  \"note\" TEXT\n")
}
