package handlers

import (
	"net/http"

	"glowclinic/middleware"
	"glowclinic/models"
	"glowclinic/services/withdrawal"
	"glowclinic/utils"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	Service withdrawal.WithdrawalService
}

func NewWithdrawalHandler(s withdrawal.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{Service: s}
}

func (h *WithdrawalHandler) RequestWithdrawalHandler(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal request"})
		return
	}
	w, err := h.Service.Request(c.Request.Context(), u, req)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *WithdrawalHandler) ListWithdrawalsHandler(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	summary, err := h.Service.ListForUser(c.Request.Context(), u)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *WithdrawalHandler) AdminListHandler(c *gin.Context) {
	items, err := h.Service.AdminList(c.Request.Context(), c.Query("status"))
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *WithdrawalHandler) AdminUpdateStatusHandler(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var req models.WithdrawalStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and status are required"})
		return
	}
	w, err := h.Service.AdminUpdateStatus(c.Request.Context(), req, identity.Subject)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, w)
}
