package handlers

import (
	"net/http"

	"glowclinic/services/catalog"
	"glowclinic/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the public treatment catalog.
type CatalogHandler struct {
	Service catalog.CatalogService
}

func NewCatalogHandler(s catalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{Service: s}
}

// ListTreatmentsHandler returns every category with its treatments, or a flat list
// for ?category=<slug>.
func (h *CatalogHandler) ListTreatmentsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	if slug := c.Query("category"); slug != "" {
		treatments, err := h.Service.ListTreatments(ctx, slug)
		if err != nil {
			utils.RespondError(c, getLogger(c), err)
			return
		}
		c.JSON(http.StatusOK, treatments)
		return
	}
	categories, err := h.Service.ListCatalog(ctx)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) ListCategoriesHandler(c *gin.Context) {
	categories, err := h.Service.ListCategories(c.Request.Context())
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetTreatmentHandler(c *gin.Context) {
	treatment, err := h.Service.GetTreatmentBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, treatment)
}
