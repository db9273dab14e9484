package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health handles GET /api/v1/health
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
