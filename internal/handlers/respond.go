package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/croplens/api/internal/models"
)

// ok writes a 200 success envelope wrapping data.
func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.NewEnvelope(true, message, data))
}
