package routes

import (
	"github.com/gin-gonic/gin"

	"dbdesigner/internal/handlers"
)

func RegisterRoutes(router *gin.Engine, accessTokenSecret []byte, projectHandler *handlers.ProjectHandler) {
	api := router.Group("/api/v1")

	api.GET("/health", handlers.Health)

	projectRoutes := NewProjectRoutes(projectHandler, accessTokenSecret)
	projectRoutes.RegisterRoutes(api)
}
