package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbdesigner/internal/designer"
	"dbdesigner/internal/models"
	"dbdesigner/internal/repositories"
	"dbdesigner/internal/repositories/repotest"
)

type memoryCache struct {
	entries map[string]string
	gets    int
	err     error
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.gets++
	if c.err != nil {
		return "", false, c.err
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key, sql string) error {
	if c.err != nil {
		return c.err
	}
	c.entries[key] = sql
	return nil
}

func TestCreateProject(t *testing.T) {
	svc := NewProjectService(repotest.NewProjectStore(), nil)
	ctx := context.Background()
	userID := uuid.New()

	p, err := svc.CreateProject(ctx, userID, CreateProjectRequest{Name: " shop ", Description: "orders"})
	require.NoError(t, err)
	assert.Equal(t, "shop", p.Name)
	assert.Equal(t, models.DialectGeneral, p.Dialect)
	assert.Equal(t, p.ID.String(), p.Design.ID)
	assert.Equal(t, uuid.Version(7), p.ID.Version())

	_, err = svc.CreateProject(ctx, userID, CreateProjectRequest{Name: "shop"})
	assert.ErrorIs(t, err, ErrProjectNameTaken)

	_, err = svc.CreateProject(ctx, userID, CreateProjectRequest{Name: "x", Dialect: "db2"})
	assert.ErrorIs(t, err, ErrInvalidDialect)

	_, err = svc.CreateProject(ctx, userID, CreateProjectRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	p, err = svc.CreateProject(ctx, userID, CreateProjectRequest{Name: "pg", Dialect: "PostgreSQL"})
	require.NoError(t, err)
	assert.Equal(t, models.DialectPostgreSQL, p.Dialect)
}

func TestCreateProjectStoreFailure(t *testing.T) {
	store := repotest.NewProjectStore()
	store.Err = errors.New("connection refused")
	svc := NewProjectService(store, nil)

	_, err := svc.CreateProject(context.Background(), uuid.New(), CreateProjectRequest{Name: "shop"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestProjectsAreScopedToOwner(t *testing.T) {
	svc := NewProjectService(repotest.NewProjectStore(), nil)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	p, err := svc.CreateProject(ctx, owner, CreateProjectRequest{Name: "shop"})
	require.NoError(t, err)

	_, err = svc.GetProject(ctx, stranger, p.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	err = svc.DeleteProject(ctx, stranger, p.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	list, err := svc.ListProjects(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, svc.DeleteProject(ctx, owner, p.ID))
	_, err = svc.GetProject(ctx, owner, p.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestUpdateProject(t *testing.T) {
	svc := NewProjectService(repotest.NewProjectStore(), nil)
	ctx := context.Background()
	userID := uuid.New()

	p, err := svc.CreateProject(ctx, userID, CreateProjectRequest{Name: "shop"})
	require.NoError(t, err)

	name, dialect := "store", "sqlite"
	design := designer.NewDesign(p.ID.String(), "store", "")
	design.Tables = append(design.Tables, models.Table{ID: "t1", Name: "items", Columns: []models.Column{
		{ID: "c1", Name: "id", Type: models.TypeInteger, IsPrimaryKey: true},
	}})
	design.ExampleData["items"] = []any{map[string]any{"id": 1}}

	updated, err := svc.UpdateProject(ctx, userID, p.ID, UpdateProjectRequest{Name: &name, Dialect: &dialect, Design: mustJSON(t, design)})
	require.NoError(t, err)
	assert.Equal(t, "store", updated.Name)
	assert.Equal(t, models.DialectSQLite, updated.Dialect)
	require.Len(t, updated.Design.Tables, 1)
	assert.Len(t, updated.Design.ExampleData["items"], 1)

	bad := "oracle9"
	_, err = svc.UpdateProject(ctx, userID, p.ID, UpdateProjectRequest{Dialect: &bad})
	assert.ErrorIs(t, err, ErrInvalidDialect)

	invalid := designer.NewDesign("x", "", "")
	invalid.Tables = append(invalid.Tables, models.Table{ID: "t", Name: ""})
	_, err = svc.UpdateProject(ctx, userID, p.ID, UpdateProjectRequest{Design: mustJSON(t, invalid)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateProject(ctx, uuid.New(), p.ID, UpdateProjectRequest{Name: &name})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestDecodeDesign(t *testing.T) {
	object := `{"id":"d1","tables":[{"id":"t1","name":"users","columns":[]}],"relationships":[]}`
	quoted, err := json.Marshal(object)
	require.NoError(t, err)

	tests := []struct {
		name    string
		raw     string
		ok      bool
		wantErr bool
	}{
		{"object", object, true, false},
		{"json string", string(quoted), true, false},
		{"absent", "", false, false},
		{"null", "null", false, false},
		{"malformed string", `"{not json"`, false, true},
		{"number", "42", false, true},
		{"invalid design", `"{\"tables\":[{\"id\":\"t\",\"name\":\"\"}]}"`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			design, ok, err := decodeDesign(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, "d1", design.ID)
				require.Len(t, design.Tables, 1)
				assert.Equal(t, "users", design.Tables[0].Name)
			}
		})
	}
}

func TestUpdateDesign(t *testing.T) {
	svc := NewProjectService(repotest.NewProjectStore(), nil)
	ctx := context.Background()
	userID := uuid.New()

	p, err := svc.CreateProject(ctx, userID, CreateProjectRequest{Name: "shop"})
	require.NoError(t, err)

	var tableID string
	updated, err := svc.UpdateDesign(ctx, userID, p.ID, func(d models.Design) (models.Design, error) {
		var err error
		d, tableID, err = designer.AddTable(d, designer.NewTable{Name: "orders"})
		return d, err
	})
	require.NoError(t, err)
	require.Len(t, updated.Design.Tables, 1)
	assert.Equal(t, tableID, updated.Design.Tables[0].ID)

	_, err = svc.UpdateDesign(ctx, userID, p.ID, func(d models.Design) (models.Design, error) {
		return designer.RemoveTable(d, "missing")
	})
	assert.ErrorIs(t, err, ErrValidation)

	reloaded, err := svc.GetProject(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Design.Tables, 1)
}

func seedExportProject(t *testing.T, svc *ProjectService, userID uuid.UUID) *models.Project {
	t.Helper()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, userID, CreateProjectRequest{Name: "blog", Dialect: "postgresql"})
	require.NoError(t, err)

	p, err = svc.UpdateDesign(ctx, userID, p.ID, func(d models.Design) (models.Design, error) {
		d.Tables = []models.Table{
			{ID: "t-users", Name: "users", Columns: []models.Column{
				{ID: "c-id", Name: "id", Type: models.TypeInteger, IsPrimaryKey: true},
			}},
		}
		d.Relationships = []models.ForeignKey{
			{ID: "r-1", FromTable: "t-users", FromColumn: "c-id", ToTable: "t-gone", ToColumn: "c-x"},
		}
		return d, nil
	})
	require.NoError(t, err)
	return p
}

func TestExportSQL(t *testing.T) {
	svc := NewProjectService(repotest.NewProjectStore(), nil)
	ctx := context.Background()
	userID := uuid.New()
	p := seedExportProject(t, svc, userID)

	export, err := svc.ExportSQL(ctx, userID, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "blog", export.ProjectName)
	assert.Equal(t, models.DialectPostgreSQL, export.Dialect)
	assert.Equal(t, "-- Generated SQL for postgresql\n\n"+
		"CREATE TABLE \"users\" (\n  \"id\" INTEGER,\n  CONSTRAINT pk_users PRIMARY KEY (\"id\")\n);\n\n"+
		"-- Warning: Could not resolve table names for foreign key relationship", export.SQL)

	export, err = svc.ExportSQL(ctx, userID, p.ID, "mysql")
	require.NoError(t, err)
	assert.Equal(t, models.DialectMySQL, export.Dialect)
	assert.Contains(t, export.SQL, "CREATE TABLE `users`")

	_, err = svc.ExportSQL(ctx, userID, p.ID, "access")
	assert.ErrorIs(t, err, ErrInvalidDialect)

	_, err = svc.ExportSQL(ctx, uuid.New(), p.ID, "")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestExportSQLUsesCache(t *testing.T) {
	cache := &memoryCache{entries: map[string]string{}}
	svc := NewProjectService(repotest.NewProjectStore(), cache)
	ctx := context.Background()
	userID := uuid.New()
	p := seedExportProject(t, svc, userID)

	first, err := svc.ExportSQL(ctx, userID, p.ID, "")
	require.NoError(t, err)
	require.Len(t, cache.entries, 1)

	key := repositories.ExportCacheKey(p.ID, models.DialectPostgreSQL, p.UpdatedAt)
	cache.entries[key] = "-- cached"

	second, err := svc.ExportSQL(ctx, userID, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "-- cached", second.SQL)
	assert.NotEqual(t, first.SQL, second.SQL)

	// An edit changes updated_at, so the stale entry is bypassed.
	_, err = svc.UpdateDesign(ctx, userID, p.ID, func(d models.Design) (models.Design, error) { return d, nil })
	require.NoError(t, err)
	third, err := svc.ExportSQL(ctx, userID, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, first.SQL, third.SQL)
}

func TestExportSQLIgnoresCacheErrors(t *testing.T) {
	cache := &memoryCache{entries: map[string]string{}, err: errors.New("redis down")}
	svc := NewProjectService(repotest.NewProjectStore(), cache)
	userID := uuid.New()
	p := seedExportProject(t, svc, userID)

	export, err := svc.ExportSQL(context.Background(), userID, p.ID, "")
	require.NoError(t, err)
	assert.Contains(t, export.SQL, "CREATE TABLE")
	assert.Equal(t, 1, cache.gets)
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "export_sqlserver_2026-03-09.sql", ExportFilename(models.DialectSQLServer, now))
}
