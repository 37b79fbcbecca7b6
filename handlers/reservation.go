package handlers

import (
	"net/http"
	"strconv"

	"glowclinic/models"
	"glowclinic/services/reservation"
	"glowclinic/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReservationHandler serves customer bookings and the front-office console.
type ReservationHandler struct {
	Service reservation.ReservationService
}

func NewReservationHandler(s reservation.ReservationService) *ReservationHandler {
	return &ReservationHandler{Service: s}
}

func (h *ReservationHandler) CreateReservationHandler(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required reservation fields", "details": err.Error()})
		return
	}
	r, err := h.Service.Create(c.Request.Context(), u, req)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ReservationHandler) ListReservationsHandler(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.Service.ListForUser(c.Request.Context(), u)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// AdminListHandler supports ?status=, ?search=, ?page= and ?pageSize=.
func (h *ReservationHandler) AdminListHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	result, err := h.Service.AdminList(c.Request.Context(), models.ReservationFilter{
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AdminUpdateStatusHandler is PATCH: status and final price.
func (h *ReservationHandler) AdminUpdateStatusHandler(c *gin.Context) {
	var req models.ReservationStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation id is required"})
		return
	}
	r, err := h.Service.AdminUpdateStatus(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	getLogger(c).Info("Reservation updated", zap.String("reservationId", r.ID), zap.String("status", r.Status))
	c.JSON(http.StatusOK, r)
}

// AdminAddReferrerHandler is PUT: attach an affiliate code after booking.
func (h *ReservationHandler) AdminAddReferrerHandler(c *gin.Context) {
	var req models.ReservationReferrerUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation id and affiliateCode are required"})
		return
	}
	r, err := h.Service.AdminAddReferrer(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// AdminEditHandler is POST: patch any subset of fields.
func (h *ReservationHandler) AdminEditHandler(c *gin.Context) {
	var req models.ReservationEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reservation id is required"})
		return
	}
	r, err := h.Service.AdminEdit(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, getLogger(c), err)
		return
	}
	c.JSON(http.StatusOK, r)
}
