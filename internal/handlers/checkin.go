package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/types"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type CheckInHandler struct {
	DB       *gorm.DB
	Feed     *CheckInFeed
	Activity *services.ActivityRecorder
}

func NewCheckInHandler(conn *gorm.DB, feed *CheckInFeed, activity *services.ActivityRecorder) *CheckInHandler {
	return &CheckInHandler{DB: conn, Feed: feed, Activity: activity}
}

type MarkCheckInRequest struct {
	UserID   uint   `json:"userId" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=conference accommodation"`
	Status   string `json:"status" binding:"required,oneof=checked-in checked-out"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// Mark appends a check-in/out record for a delegate and broadcasts it to
// the live front-desk feed.
func (h *CheckInHandler) Mark(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var req MarkCheckInRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	var user models.User

	if err := h.DB.First(&user, req.UserID).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "User"))
		return
	}

	record := models.CheckIn{
		UserID:     req.UserID,
		Type:       req.Type,
		Status:     req.Status,
		MarkedByID: currentUser.ID,
		MarkedAt:   time.Now(),
		Location:   req.Location,
		Notes:      req.Notes,
	}

	if err := h.DB.Create(&record).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "checkin.mark", "CheckIn", record.ID, map[string]interface{}{
		"userId": req.UserID,
		"type":   req.Type,
		"status": req.Status,
	})

	h.Feed.Broadcast(CheckInEvent{
		UserID:   user.ID,
		Name:     user.FullName(),
		Type:     record.Type,
		Status:   record.Status,
		MarkedAt: record.MarkedAt,
	})

	utils.Created(ctx, "Check-in recorded", gin.H{"checkIn": record})
}

// ForUser returns the full check-in log for one delegate.
func (h *CheckInHandler) ForUser(ctx *gin.Context) {
	userID, err := strconv.Atoi(ctx.Param("user_id"))

	if err != nil {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"user_id": "must be a number"}))
		return
	}

	var records []models.CheckIn

	err = h.DB.Preload("MarkedBy").Where("user_id = ?", userID).
		Order("marked_at DESC").Find(&records).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"checkIns": records})
}

// Today summarizes today's activity for the front-desk dashboard.
func (h *CheckInHandler) Today(ctx *gin.Context) {
	start := startOfToday()

	var records []models.CheckIn

	err := h.DB.Preload("User").Preload("MarkedBy").
		Where("marked_at >= ?", start).
		Order("marked_at DESC").Find(&records).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	var conference, accommodation int

	for _, record := range records {
		if record.Status != types.CheckedIn {
			continue
		}
		switch record.Type {
		case types.CheckInConference:
			conference++
		case types.CheckInAccommodation:
			accommodation++
		}
	}

	utils.OK(ctx, "", gin.H{
		"checkIns":           records,
		"conferenceCount":    conference,
		"accommodationCount": accommodation,
	})
}

// startOfToday is midnight in the server's local zone, not UTC.
func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
