package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dbdesigner/internal/models"
)

// ErrDuplicateName is returned when the user already owns a project with
// the same name.
var ErrDuplicateName = errors.New("project name already exists")

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateName
	}
	return err
}

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

const projectColumns = `id, user_id, name, description, dialect::text, design, ai_conversation, created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var project models.Project
	var dialect string
	err := row.Scan(
		&project.ID,
		&project.UserID,
		&project.Name,
		&project.Description,
		&dialect,
		&project.Design,
		&project.AIConversation,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	project.Dialect = models.Dialect(dialect)
	return &project, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	project.Prepare()

	// Postgres keeps microseconds; truncating keeps the returned value equal
	// to what a later read sees.
	now := time.Now().UTC().Truncate(time.Microsecond)
	project.CreatedAt = now
	project.UpdatedAt = now

	query := `
		INSERT INTO projects (id, user_id, name, description, dialect, design, ai_conversation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::text::dialect_t, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		project.ID,
		project.UserID,
		project.Name,
		project.Description,
		string(project.Dialect),
		project.Design,
		project.AIConversation,
		project.CreatedAt,
		project.UpdatedAt,
	)
	return mapWriteError(err)
}

// GetByIDAndUserID returns nil, nil when the project does not exist or
// belongs to another user.
func (r *ProjectRepository) GetByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND user_id = $2`

	project, err := scanProject(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return project, nil
}

func (r *ProjectRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}

	return projects, rows.Err()
}

// Update writes name, description, dialect and design and bumps updated_at.
// It reports false when no row matched.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) (bool, error) {
	project.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	query := `
		UPDATE projects SET
			name = $3, description = $4, dialect = $5::text::dialect_t, design = $6, updated_at = $7
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		project.ID,
		project.UserID,
		project.Name,
		project.Description,
		string(project.Dialect),
		project.Design,
		project.UpdatedAt,
	)
	if err != nil {
		return false, mapWriteError(err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *ProjectRepository) DeleteByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM projects WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
