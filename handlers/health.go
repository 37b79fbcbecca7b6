package handlers

import (
	"net/http"

	"glowclinic/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

// HealthHandler reports the last backend check made by utils.StartHealthMonitor.
func (h *HealthHandler) HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code, state := http.StatusOK, "ok"
	switch {
	case !status.Mongo:
		code, state = http.StatusServiceUnavailable, "unavailable"
	case !status.Redis:
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "services": status})
}
