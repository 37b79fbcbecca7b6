package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(NewNotFound("x")))
	assert.Equal(t, http.StatusConflict, StatusFor(fmt.Errorf("wrapped: %w", NewConflict("x"))))
	assert.Equal(t, http.StatusBadRequest, StatusFor(NewBadRequest("x")))
	assert.Equal(t, http.StatusForbidden, StatusFor(NewForbidden("x")))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(NewUnauthorized("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))

	assert.True(t, IsKind(fmt.Errorf("ctx: %w", NewNotFound("x")), KindNotFound))
	assert.False(t, IsKind(errors.New("boom"), KindNotFound))
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/known", func(c *gin.Context) { RespondError(c, zap.NewNop(), NewConflict("affiliate code is already in use")) })
	r.GET("/unknown", func(c *gin.Context) { RespondError(c, zap.NewNop(), errors.New("mongo: connection reset")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/known", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"affiliate code is already in use"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "mongo")
}
