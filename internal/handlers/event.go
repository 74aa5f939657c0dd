package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type EventHandler struct {
	DB       *gorm.DB
	Activity *services.ActivityRecorder
}

func NewEventHandler(conn *gorm.DB, activity *services.ActivityRecorder) *EventHandler {
	return &EventHandler{DB: conn, Activity: activity}
}

type EventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Day         int       `json:"day" binding:"required,min=1"`
	Venue       string    `json:"venue"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	EndsAt      time.Time `json:"endsAt" binding:"required"`
	Active      *bool     `json:"active"`
}

// ListPublic returns the active schedule, ordered by day then start time.
func (h *EventHandler) ListPublic(ctx *gin.Context) {
	var events []models.Event

	err := h.DB.Where("active = ?", true).
		Order("day ASC, starts_at ASC").Find(&events).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"events": events})
}

func (h *EventHandler) Create(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var req EventRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	if !req.EndsAt.After(req.StartsAt) {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"endsAt": "must be after startsAt"}))
		return
	}

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		Day:         req.Day,
		Venue:       req.Venue,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Active:      true,
		CreatedByID: currentUser.ID,
	}

	if req.Active != nil {
		event.Active = *req.Active
	}

	if err := h.DB.Create(&event).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "event.create", "Event", event.ID, nil)

	utils.Created(ctx, "Event created", gin.H{"event": event})
}

func (h *EventHandler) Update(ctx *gin.Context) {
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

	var event models.Event

	if err := h.DB.First(&event, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Event"))
		return
	}

	var req EventRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	if !req.EndsAt.After(req.StartsAt) {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"endsAt": "must be after startsAt"}))
		return
	}

	updates := map[string]interface{}{
		"title":       req.Title,
		"description": req.Description,
		"day":         req.Day,
		"venue":       req.Venue,
		"starts_at":   req.StartsAt,
		"ends_at":     req.EndsAt,
	}

	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if err := h.DB.Model(&event).Updates(updates).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "event.update", "Event", event.ID, nil)

	utils.OK(ctx, "Event updated", gin.H{"event": event})
}

func (h *EventHandler) Delete(ctx *gin.Context) {
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

	var event models.Event

	if err := h.DB.First(&event, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Event"))
		return
	}

	if err := h.DB.Delete(&event).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "event.delete", "Event", event.ID, nil)

	utils.OK(ctx, "Event deleted", nil)
}
