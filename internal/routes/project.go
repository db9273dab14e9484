package routes

import (
	"github.com/gin-gonic/gin"

	"dbdesigner/internal/handlers"
	"dbdesigner/internal/middlewares"
)

type ProjectRoutes struct {
	handler *handlers.ProjectHandler
	secret  []byte
}

func NewProjectRoutes(handler *handlers.ProjectHandler, secret []byte) *ProjectRoutes {
	return &ProjectRoutes{handler: handler, secret: secret}
}

func (r *ProjectRoutes) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	projects.Use(middlewares.Authenticate(r.secret)) // All project routes require authentication
	{
		projects.POST("", r.handler.CreateProject)
		projects.GET("", r.handler.ListProjects)
		projects.GET("/:id", r.handler.GetProject)
		projects.PUT("/:id", r.handler.UpdateProject)
		projects.DELETE("/:id", r.handler.DeleteProject)
		projects.GET("/:id/export/sql", r.handler.ExportSQL)
		projects.GET("/:id/export/preview", r.handler.PreviewExport)
	}
}
