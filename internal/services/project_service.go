package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"dbdesigner/internal/designer"
	"dbdesigner/internal/models"
	"dbdesigner/internal/repositories"
	"dbdesigner/internal/sqlgen"
)

var (
	ErrProjectNotFound  = errors.New("project not found or access denied")
	ErrProjectNameTaken = errors.New("a project with this name already exists")
	ErrInvalidDialect   = errors.New("invalid dialect")
	ErrValidation       = errors.New("validation failed")
)

// ProjectStore is the persistence the service needs; the pgx repository
// implements it.
type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	GetByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*models.Project, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) (bool, error)
	DeleteByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

// ExportCache stores rendered exports. It is optional.
type ExportCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, sql string) error
}

type ProjectService struct {
	store ProjectStore
	cache ExportCache
}

// NewProjectService wires the service. cache may be nil to disable export
// caching.
func NewProjectService(store ProjectStore, cache ExportCache) *ProjectService {
	return &ProjectService{store: store, cache: cache}
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Dialect     string `json:"dialect"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Dialect     *string `json:"dialect,omitempty"`
	// Design is either a design object or that object serialized into a
	// JSON string, which is what the web client sends.
	Design json.RawMessage `json:"design,omitempty"`
}

func parseDialect(s string) (models.Dialect, error) {
	d, err := models.ParseDialect(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDialect, err)
	}
	return d, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, userID uuid.UUID, req CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrValidation)
	}

	dialect := models.DialectGeneral
	if req.Dialect != "" {
		d, err := parseDialect(req.Dialect)
		if err != nil {
			return nil, err
		}
		dialect = d
	}

	project := &models.Project{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      userID,
		Name:        name,
		Description: req.Description,
		Dialect:     dialect,
	}
	project.Design = designer.NewDesign(project.ID.String(), name, req.Description)

	if err := s.store.Create(ctx, project); err != nil {
		if errors.Is(err, repositories.ErrDuplicateName) {
			return nil, ErrProjectNameTaken
		}
		return nil, fmt.Errorf("failed to save project to database: %w", err)
	}

	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.store.GetByIDAndUserID(ctx, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	projects, err := s.store.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, userID, projectID uuid.UUID, req UpdateProjectRequest) (*models.Project, error) {
	project, err := s.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: project name is required", ErrValidation)
		}
		project.Name = name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Dialect != nil {
		d, err := parseDialect(*req.Dialect)
		if err != nil {
			return nil, err
		}
		project.Dialect = d
	}
	if design, ok, err := decodeDesign(req.Design); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	} else if ok {
		project.Design = design
	}

	return s.save(ctx, project)
}

// decodeDesign reports ok=false when raw is absent or null.
func decodeDesign(raw json.RawMessage) (models.Design, bool, error) {
	var design models.Design
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return design, false, nil
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return design, false, fmt.Errorf("invalid design: %w", err)
		}
		raw = []byte(text)
	}
	if err := json.Unmarshal(raw, &design); err != nil {
		return design, false, fmt.Errorf("invalid design: %w", err)
	}
	if err := design.Validate(); err != nil {
		return design, false, err
	}
	return design, true, nil
}

// UpdateDesign applies change to the stored design and persists the result.
// Concurrent edits are last-writer-wins.
func (s *ProjectService) UpdateDesign(ctx context.Context, userID, projectID uuid.UUID, change func(models.Design) (models.Design, error)) (*models.Project, error) {
	project, err := s.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	design, err := change(project.Design)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	project.Design = design

	return s.save(ctx, project)
}

func (s *ProjectService) save(ctx context.Context, project *models.Project) (*models.Project, error) {
	ok, err := s.store.Update(ctx, project)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateName) {
			return nil, ErrProjectNameTaken
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	if !ok {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, userID, projectID uuid.UUID) error {
	ok, err := s.store.DeleteByIDAndUserID(ctx, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if !ok {
		return ErrProjectNotFound
	}
	return nil
}

type Export struct {
	ProjectName string
	Dialect     models.Dialect
	SQL         string
}

// ExportSQL renders the project's design. dialect overrides the project's own
// dialect when non-empty.
func (s *ProjectService) ExportSQL(ctx context.Context, userID, projectID uuid.UUID, dialect string) (*Export, error) {
	project, err := s.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	target := project.Dialect
	if dialect != "" {
		if target, err = parseDialect(dialect); err != nil {
			return nil, err
		}
	}
	if !target.Valid() {
		return nil, fmt.Errorf("%w: project has dialect %q", ErrInvalidDialect, target)
	}

	export := &Export{ProjectName: project.Name, Dialect: target}
	key := repositories.ExportCacheKey(project.ID, target, project.UpdatedAt)

	if s.cache != nil {
		sql, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("export cache read failed for %s: %v", key, err)
		} else if ok {
			export.SQL = sql
			return export, nil
		}
	}

	stmts := sqlgen.Statements(project.Design, target)
	warnings := 0
	for _, stmt := range stmts {
		if stmt.Kind == sqlgen.KindWarning {
			warnings++
		}
	}
	if warnings > 0 {
		log.Printf("project %s: %d relationship(s) could not be resolved during %s export", project.ID, warnings, target)
	}
	export.SQL = sqlgen.Render(stmts, target)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, export.SQL); err != nil {
			log.Printf("export cache write failed for %s: %v", key, err)
		}
	}

	return export, nil
}

// ExportFilename is the download name the export page offers.
func ExportFilename(dialect models.Dialect, now time.Time) string {
	return fmt.Sprintf("export_%s_%s.sql", dialect, now.UTC().Format("2006-01-02"))
}
