package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dbdesigner/internal/middlewares"
	"dbdesigner/internal/models"
	"dbdesigner/internal/responses"
	"dbdesigner/internal/services"
	"dbdesigner/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	now            func() time.Time
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		now:            time.Now,
	}
}

type ExportPreview struct {
	Dialect  models.Dialect `json:"dialect"`
	Label    string         `json:"label"`
	SQL      string         `json:"sql"`
	Filename string         `json:"filename"`
}

func userIDFrom(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(middlewares.UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// scope extracts the caller and the :id path parameter, writing the error
// response itself when either is missing or malformed.
func scope(c *gin.Context) (userID, projectID uuid.UUID, ok bool) {
	userID, ok = userIDFrom(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid project ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, projectID, true
}

// fail maps service errors onto HTTP statuses.
func fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		responses.Fail(c, http.StatusNotFound, err, "Project not found or access denied")
	case errors.Is(err, services.ErrInvalidDialect), errors.Is(err, services.ErrValidation):
		responses.Fail(c, http.StatusBadRequest, err, message)
	case errors.Is(err, services.ErrProjectNameTaken):
		responses.Fail(c, http.StatusConflict, err, message)
	default:
		log.Printf("ERROR %s %s: %v", c.Request.Method, c.FullPath(), err)
		responses.Fail(c, http.StatusInternalServerError, err, message)
	}
}

// CreateProject handles POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err, "Failed to create project")
		return
	}

	responses.Success(c, http.StatusCreated, project, "Project created successfully")
}

// GetProject handles GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, projectID, ok := scope(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), userID, projectID)
	if err != nil {
		fail(c, err, "Failed to retrieve project")
		return
	}

	responses.Success(c, http.StatusOK, project, "Project retrieved successfully")
}

// ListProjects handles GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), userID)
	if err != nil {
		fail(c, err, "Failed to retrieve projects")
		return
	}

	responses.Success(c, http.StatusOK, projects, "Projects retrieved successfully")
}

// UpdateProject handles PUT /api/v1/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, projectID, ok := scope(c)
	if !ok {
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), userID, projectID, req)
	if err != nil {
		fail(c, err, "Failed to update project")
		return
	}

	responses.Success(c, http.StatusOK, project, "Project updated successfully")
}

// DeleteProject handles DELETE /api/v1/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, projectID, ok := scope(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), userID, projectID); err != nil {
		fail(c, err, "Failed to delete project")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Project deleted successfully")
}

// ExportSQL handles GET /api/v1/projects/:id/export/sql
func (h *ProjectHandler) ExportSQL(c *gin.Context) {
	userID, projectID, ok := scope(c)
	if !ok {
		return
	}

	export, err := h.projectService.ExportSQL(c.Request.Context(), userID, projectID, c.Query("dialect"))
	if err != nil {
		fail(c, err, "Failed to export project")
		return
	}

	filename := utils.SafeFilename(export.ProjectName) + ".sql"
	responses.Attachment(c, filename, "text/plain; charset=utf-8", []byte(export.SQL))
}

// PreviewExport handles GET /api/v1/projects/:id/export/preview
func (h *ProjectHandler) PreviewExport(c *gin.Context) {
	userID, projectID, ok := scope(c)
	if !ok {
		return
	}

	export, err := h.projectService.ExportSQL(c.Request.Context(), userID, projectID, c.Query("dialect"))
	if err != nil {
		fail(c, err, "Failed to export project")
		return
	}

	responses.Success(c, http.StatusOK, ExportPreview{
		Dialect:  export.Dialect,
		Label:    export.Dialect.Label(),
		SQL:      export.SQL,
		Filename: services.ExportFilename(export.Dialect, h.now()),
	}, "Export generated successfully")
}
