package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jacob-mennell/fast-insurance-claims/service"
)

type LogHandler struct {
	store *service.ClaimStore
}

func NewLogHandler(store *service.ClaimStore) *LogHandler {
	return &LogHandler{store: store}
}

// List returns all claim log rows for tabular display
func (h *LogHandler) List(c *gin.Context) {
	logs, err := h.store.Logs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to fetch logs: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, logs)
}
