package handlers

import (
	"net/http"

	"glowclinic/middleware"
	"glowclinic/models"
	"glowclinic/services/affiliate"
	"glowclinic/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AffiliateCodeHandler serves the admin pre-claim code console.
type AffiliateCodeHandler struct {
	Service affiliate.CodeService
}

func NewAffiliateCodeHandler(s affiliate.CodeService) *AffiliateCodeHandler {
	return &AffiliateCodeHandler{Service: s}
}

func (h *AffiliateCodeHandler) ListCodesHandler(c *gin.Context) {
	codes, err := h.Service.ListCodes(c.Request.Context(), c.Query("status"))
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, codes)
}

func (h *AffiliateCodeHandler) GenerateCodesHandler(c *gin.Context) {
	var req models.GenerateCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be between 1 and 100"})
		return
	}
	createdBy := ""
	if identity, ok := middleware.CurrentIdentity(c); ok {
		createdBy = identity.Subject
	}
	codes, err := h.Service.GenerateCodes(c.Request.Context(), req.Count, req.Notes, createdBy)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	getLogger(c).Info("Pre-claim codes generated", zap.Int("count", len(codes)), zap.String("createdBy", createdBy))
	c.JSON(http.StatusCreated, codes)
}

// DeleteCodeHandler expects ?id=<codeId>.
func (h *AffiliateCodeHandler) DeleteCodeHandler(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}
	if err := h.Service.DeleteCode(c.Request.Context(), id); err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Affiliate code deleted"})
}

func (h *AffiliateCodeHandler) AssignCodeHandler(c *gin.Context) {
	var req models.AssignCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "codeId and a valid email are required"})
		return
	}
	code, err := h.Service.AssignCode(c.Request.Context(), req.CodeID, req.Email)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, code)
}

func (h *AffiliateCodeHandler) ClaimCodeHandler(c *gin.Context) {
	var req models.AssignCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "codeId and a valid email are required"})
		return
	}
	result, err := h.Service.ClaimCode(c.Request.Context(), req.CodeID, req.Email)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AffiliateCodeHandler) TransferCodeHandler(c *gin.Context) {
	var req models.TransferCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "codeId and a valid newEmail are required"})
		return
	}
	result, err := h.Service.TransferCode(c.Request.Context(), req.CodeID, req.NewEmail)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, result)
}
