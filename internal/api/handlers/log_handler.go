// server/internal/api/handlers/log_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/database"
	"motohub-api-server/internal/models"
)

type LogHandler struct {
	Logs   LogStore
	Logger *log.Logger
}

// ListLogs returns the newest activity first. Filters: ?resourceType=, ?actorId=, ?limit=.
// A missing or non-positive limit means 50, and anything above 500 is cut to 500.
func (h *LogHandler) ListLogs(c *gin.Context) {
	logs, err := h.Logs.List(c.Request.Context(), models.ActivityFilter{
		ResourceType: c.Query("resourceType"),
		ActorID:      c.Query("actorId"),
		Limit:        database.ClampLimit(queryInt(c, "limit")),
	})
	if err != nil {
		respondError(c, h.Logger, err, "Failed to list activity logs")
		return
	}
	c.JSON(http.StatusOK, logs)
}
