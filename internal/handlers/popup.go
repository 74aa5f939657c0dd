package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type PopupHandler struct {
	DB       *gorm.DB
	Activity *services.ActivityRecorder
}

func NewPopupHandler(conn *gorm.DB, activity *services.ActivityRecorder) *PopupHandler {
	return &PopupHandler{DB: conn, Activity: activity}
}

type PopupRequest struct {
	Title    string     `json:"title" binding:"required"`
	Body     string     `json:"body"`
	LinkURL  string     `json:"linkUrl"`
	Active   *bool      `json:"active"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
}

// Active returns the currently visible popup for the public site, if any.
func (h *PopupHandler) Active(ctx *gin.Context) {
	now := time.Now()

	var popup models.Popup

	err := h.DB.Where("active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("created_at DESC").First(&popup).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.OK(ctx, "", gin.H{"popup": nil})
			return
		}
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"popup": popup})
}

func (h *PopupHandler) List(ctx *gin.Context) {
	var popups []models.Popup

	if err := h.DB.Order("created_at DESC").Find(&popups).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"popups": popups})
}

func (h *PopupHandler) Create(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var req PopupRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	popup := models.Popup{
		Title:       req.Title,
		Body:        req.Body,
		LinkURL:     req.LinkURL,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedByID: currentUser.ID,
	}

	if req.Active != nil {
		popup.Active = *req.Active
	}

	if err := h.DB.Create(&popup).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "popup.create", "Popup", popup.ID, nil)

	utils.Created(ctx, "Popup created", gin.H{"popup": popup})
}

func (h *PopupHandler) Update(ctx *gin.Context) {
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

	var popup models.Popup

	if err := h.DB.First(&popup, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Popup"))
		return
	}

	var req PopupRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	updates := map[string]interface{}{
		"title":     req.Title,
		"body":      req.Body,
		"link_url":  req.LinkURL,
		"starts_at": req.StartsAt,
		"ends_at":   req.EndsAt,
	}

	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if err := h.DB.Model(&popup).Updates(updates).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "popup.update", "Popup", popup.ID, nil)

	utils.OK(ctx, "Popup updated", gin.H{"popup": popup})
}

func (h *PopupHandler) Delete(ctx *gin.Context) {
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

	var popup models.Popup

	if err := h.DB.First(&popup, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Popup"))
		return
	}

	if err := h.DB.Delete(&popup).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "popup.delete", "Popup", popup.ID, nil)

	utils.OK(ctx, "Popup deleted", nil)
}
