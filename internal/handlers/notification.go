package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/mailer"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	DB         *gorm.DB
	Dispatcher *mailer.Dispatcher
	Activity   *services.ActivityRecorder
}

func NewNotificationHandler(conn *gorm.DB, dispatcher *mailer.Dispatcher, activity *services.ActivityRecorder) *NotificationHandler {
	return &NotificationHandler{DB: conn, Dispatcher: dispatcher, Activity: activity}
}

type TemplateRequest struct {
	Name      string   `json:"name" binding:"required"`
	Subject   string   `json:"subject" binding:"required"`
	HTMLBody  string   `json:"htmlBody"`
	TextBody  string   `json:"textBody"`
	Variables []string `json:"variables"`
	Active    *bool    `json:"active"`
}

func (h *NotificationHandler) ListTemplates(ctx *gin.Context) {
	var templates []models.EmailTemplate

	if err := h.DB.Order("name ASC").Find(&templates).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"templates": templates})
}

func (h *NotificationHandler) CreateTemplate(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var req TemplateRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	if req.HTMLBody == "" && req.TextBody == "" {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"htmlBody": "at least one of htmlBody or textBody is required"}))
		return
	}

	template := models.EmailTemplate{
		Name:     req.Name,
		Subject:  req.Subject,
		HTMLBody: req.HTMLBody,
		TextBody: req.TextBody,
		Active:   true,
	}

	if req.Active != nil {
		template.Active = *req.Active
	}

	if len(req.Variables) > 0 {
		raw, err := json.Marshal(req.Variables)
		if err == nil {
			template.Variables = datatypes.JSON(raw)
		}
	}

	if err := h.DB.Create(&template).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Template"))
		return
	}

	h.Activity.Record(currentUser.ID, "template.create", "EmailTemplate", template.ID, nil)

	utils.Created(ctx, "Template created", gin.H{"template": template})
}

func (h *NotificationHandler) UpdateTemplate(ctx *gin.Context) {
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

	var template models.EmailTemplate

	if err := h.DB.First(&template, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Template"))
		return
	}

	var req TemplateRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	updates := map[string]interface{}{
		"name":      req.Name,
		"subject":   req.Subject,
		"html_body": req.HTMLBody,
		"text_body": req.TextBody,
	}

	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(req.Variables) > 0 {
		if raw, err := json.Marshal(req.Variables); err == nil {
			updates["variables"] = datatypes.JSON(raw)
		}
	}

	if err := h.DB.Model(&template).Updates(updates).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Template"))
		return
	}

	h.Activity.Record(currentUser.ID, "template.update", "EmailTemplate", template.ID, nil)

	utils.OK(ctx, "Template updated", gin.H{"template": template})
}

type SendRequest struct {
	Template  string            `json:"template" binding:"required"`
	Recipient string            `json:"recipient" binding:"required,email"`
	Variables map[string]string `json:"variables"`
}

func (h *NotificationHandler) Send(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var req SendRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	if err := h.Dispatcher.SendTemplate(req.Template, req.Recipient, req.Variables); err != nil {
		utils.Fail(ctx, dispatchError(err))
		return
	}

	h.Activity.Record(currentUser.ID, "notification.send", "EmailTemplate", 0, map[string]interface{}{
		"template":  req.Template,
		"recipient": req.Recipient,
	})

	utils.OK(ctx, "Notification sent", nil)
}

type BulkSendRequest struct {
	Template   string            `json:"template" binding:"required"`
	Recipients []string          `json:"recipients" binding:"required,min=1,dive,email"`
	Variables  map[string]string `json:"variables"`
}

// SendBulk iterates recipients sequentially, continuing past individual
// failures; the response carries the per-recipient tally.
func (h *NotificationHandler) SendBulk(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var req BulkSendRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	if !h.Dispatcher.Configured() {
		utils.Fail(ctx, apperrors.Gateway("Mail transport is not configured", mailer.ErrNotConfigured))
		return
	}

	result := h.Dispatcher.SendBulk(req.Template, req.Recipients, req.Variables)

	h.Activity.Record(currentUser.ID, "notification.send_bulk", "EmailTemplate", 0, map[string]interface{}{
		"template":   req.Template,
		"recipients": len(req.Recipients),
		"sent":       result.Sent,
		"failed":     result.Failed,
	})

	utils.OK(ctx, "Bulk send finished", result)
}

func dispatchError(err error) error {
	switch {
	case errors.Is(err, mailer.ErrTemplateNotFound):
		return apperrors.NotFound("Template")
	case errors.Is(err, mailer.ErrNotConfigured):
		return apperrors.Gateway("Mail transport is not configured", err)
	default:
		return apperrors.Gateway("Failed to send notification", err)
	}
}
