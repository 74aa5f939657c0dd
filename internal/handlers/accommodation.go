package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type AccommodationHandler struct {
	DB       *gorm.DB
	Activity *services.ActivityRecorder
}

func NewAccommodationHandler(conn *gorm.DB, activity *services.ActivityRecorder) *AccommodationHandler {
	return &AccommodationHandler{DB: conn, Activity: activity}
}

// List returns registrations that requested accommodation, for the
// hospitality desk.
func (h *AccommodationHandler) List(ctx *gin.Context) {
	query := h.DB.Model(&models.Registration{}).Preload("User").
		Where("needs_accommodation = ?", true)

	if approved := ctx.Query("approved"); approved != "" {
		query = query.Where("accommodation_approved = ?", approved == "true")
	}

	var registrations []models.Registration

	if err := query.Order("created_at ASC").Find(&registrations).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	items := make([]RegistrationResponse, 0, len(registrations))
	for _, reg := range registrations {
		items = append(items, toRegistrationResponse(reg, true))
	}

	utils.OK(ctx, "", gin.H{"registrations": items})
}

type ApproveAccommodationRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

func (h *AccommodationHandler) Approve(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))

	if err != nil {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"id": "must be a number"}))
		return
	}

	var req ApproveAccommodationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	var registration models.Registration

	if err := h.DB.First(&registration, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Registration"))
		return
	}

	if !registration.NeedsAccommodation {
		utils.Fail(ctx, apperrors.Conflict("Registration did not request accommodation"))
		return
	}

	if err := h.DB.Model(&registration).Update("accommodation_approved", *req.Approved).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "accommodation.approve", "Registration", registration.ID, map[string]interface{}{
		"approved": *req.Approved,
	})

	utils.OK(ctx, "Accommodation updated", nil)
}
