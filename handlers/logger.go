package handlers

import (
	"glowclinic/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger returns the request-scoped logger from middleware.RequestLogger (or the
// global one) tagged with whoever is calling.
func getLogger(c *gin.Context) *zap.Logger {
	logger := zap.L()
	if l, exists := c.Get("logger"); exists {
		if scoped, ok := l.(*zap.Logger); ok {
			logger = scoped
		}
	}
	if u, ok := middleware.CurrentUser(c); ok {
		return logger.With(zap.String("userId", u.ID))
	}
	if identity, ok := middleware.CurrentIdentity(c); ok {
		return logger.With(zap.String("subject", identity.Subject))
	}
	return logger
}
