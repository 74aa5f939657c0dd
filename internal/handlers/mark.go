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

type MarkHandler struct {
	DB       *gorm.DB
	Activity *services.ActivityRecorder
}

func NewMarkHandler(conn *gorm.DB, activity *services.ActivityRecorder) *MarkHandler {
	return &MarkHandler{DB: conn, Activity: activity}
}

type UpsertMarkRequest struct {
	UserID      uint    `json:"userId" binding:"required"`
	CommitteeID uint    `json:"committeeId" binding:"required"`
	Score       float64 `json:"score" binding:"required,min=0,max=100"`
	Note        string  `json:"note"`
}

// Upsert records or revises a delegate's score for a committee.
func (h *MarkHandler) Upsert(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var req UpsertMarkRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	var existing models.Mark

	err = h.DB.Where("user_id = ? AND committee_id = ?", req.UserID, req.CommitteeID).
		First(&existing).Error

	if err == nil {
		if err := h.DB.Model(&existing).Updates(map[string]interface{}{
			"score":        req.Score,
			"note":         req.Note,
			"marked_by_id": currentUser.ID,
		}).Error; err != nil {
			utils.Fail(ctx, err)
			return
		}

		utils.OK(ctx, "Mark updated", gin.H{"mark": existing})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Fail(ctx, err)
		return
	}

	mark := models.Mark{
		UserID:      req.UserID,
		CommitteeID: req.CommitteeID,
		Score:       req.Score,
		Note:        req.Note,
		MarkedByID:  currentUser.ID,
	}

	if err := h.DB.Create(&mark).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Mark"))
		return
	}

	h.Activity.Record(currentUser.ID, "mark.upsert", "Mark", mark.ID, map[string]interface{}{
		"userId":      req.UserID,
		"committeeId": req.CommitteeID,
	})

	utils.Created(ctx, "Mark recorded", gin.H{"mark": mark})
}

func (h *MarkHandler) ForCommittee(ctx *gin.Context) {
	committeeID, err := strconv.Atoi(ctx.Param("committee_id"))

	if err != nil {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"committee_id": "must be a number"}))
		return
	}

	var marks []models.Mark

	err = h.DB.Preload("User").Where("committee_id = ?", committeeID).
		Order("score DESC").Find(&marks).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"marks": marks})
}

// Mine returns the calling delegate's own marks.
func (h *MarkHandler) Mine(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var marks []models.Mark

	err = h.DB.Preload("Committee").Where("user_id = ?", currentUser.ID).
		Find(&marks).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"marks": marks})
}
