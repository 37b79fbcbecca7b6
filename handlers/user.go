package handlers

import (
	"errors"
	"io"
	"net/http"

	"glowclinic/middleware"
	"glowclinic/models"
	"glowclinic/services/user"
	"glowclinic/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves the signed-in user's own data.
type UserHandler struct {
	Service user.UserService
}

func NewUserHandler(s user.UserService) *UserHandler {
	return &UserHandler{Service: s}
}

// currentUser returns the user loaded by middleware.RequireUser, or writes a 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return u, ok
}

// SyncUserHandler creates or refreshes the local user for the verified session.
// The body is optional.
func (h *UserHandler) SyncUserHandler(c *gin.Context) {
	logger := getLogger(c)
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var req models.SyncUserRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}
	u, err := h.Service.SyncUser(c.Request.Context(), *identity, req)
	if err != nil {
		utils.RespondError(c, logger, err)
		return
	}
	logger.Debug("User synced", zap.String("userId", u.ID))
	c.JSON(http.StatusOK, h.Service.Profile(c.Request.Context(), u))
}

func (h *UserHandler) MeHandler(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Service.Profile(c.Request.Context(), u))
}

func (h *UserHandler) TransactionsHandler(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	txs, err := h.Service.ListTransactions(c.Request.Context(), u)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *UserHandler) ReferralsHandler(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	referrals, err := h.Service.ListReferrals(c.Request.Context(), u)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, referrals)
}

func (h *UserHandler) GetAffiliateCodeHandler(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	info, err := h.Service.GetAffiliateCodeInfo(c.Request.Context(), u)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *UserHandler) UpdateAffiliateCodeHandler(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.UpdateAffiliateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "affiliateCode is required"})
		return
	}
	info, err := h.Service.UpdateAffiliateCode(c.Request.Context(), u, req.AffiliateCode)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, info)
}
