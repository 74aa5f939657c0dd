package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type AttendanceHandler struct {
	DB       *gorm.DB
	Activity *services.ActivityRecorder
}

func NewAttendanceHandler(conn *gorm.DB, activity *services.ActivityRecorder) *AttendanceHandler {
	return &AttendanceHandler{DB: conn, Activity: activity}
}

type MarkAttendanceRequest struct {
	UserID      uint `json:"userId" binding:"required"`
	CommitteeID uint `json:"committeeId" binding:"required"`
	Session     int  `json:"session" binding:"required,min=1"`
	Present     bool `json:"present"`
}

// Mark upserts one delegate's attendance for a committee session.
func (h *AttendanceHandler) Mark(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var req MarkAttendanceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	var existing models.Attendance

	err = h.DB.Where("user_id = ? AND committee_id = ? AND session = ?",
		req.UserID, req.CommitteeID, req.Session).First(&existing).Error

	if err == nil {
		if err := h.DB.Model(&existing).Updates(map[string]interface{}{
			"present":      req.Present,
			"marked_by_id": currentUser.ID,
		}).Error; err != nil {
			utils.Fail(ctx, err)
			return
		}

		utils.OK(ctx, "Attendance updated", gin.H{"attendance": existing})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Fail(ctx, err)
		return
	}

	record := models.Attendance{
		UserID:      req.UserID,
		CommitteeID: req.CommitteeID,
		Session:     req.Session,
		Present:     req.Present,
		MarkedByID:  currentUser.ID,
	}

	if err := h.DB.Create(&record).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Attendance"))
		return
	}

	h.Activity.Record(currentUser.ID, "attendance.mark", "Attendance", record.ID, map[string]interface{}{
		"userId":  req.UserID,
		"session": req.Session,
	})

	utils.Created(ctx, "Attendance recorded", gin.H{"attendance": record})
}

// ForCommittee lists attendance for one committee, optionally one session.
func (h *AttendanceHandler) ForCommittee(ctx *gin.Context) {
	committeeID, err := strconv.Atoi(ctx.Param("committee_id"))

	if err != nil {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"committee_id": "must be a number"}))
		return
	}

	query := h.DB.Preload("User").Where("committee_id = ?", committeeID)

	if session := ctx.Query("session"); session != "" {
		query = query.Where("session = ?", session)
	}

	var records []models.Attendance

	if err := query.Order("session ASC, user_id ASC").Find(&records).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"attendance": records})
}
