package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health returns the static health payload
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "SQLite-backed Insurance Claims API is running!",
	})
}
