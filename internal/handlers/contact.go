package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/types"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type ContactHandler struct {
	DB       *gorm.DB
	Activity *services.ActivityRecorder
}

func NewContactHandler(conn *gorm.DB, activity *services.ActivityRecorder) *ContactHandler {
	return &ContactHandler{DB: conn, Activity: activity}
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required,min=10"`
}

// Submit is the public contact form.
func (h *ContactHandler) Submit(ctx *gin.Context) {
	var req ContactRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	message := models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		Status:  types.ContactNew,
	}

	if err := h.DB.Create(&message).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.Created(ctx, "Message received, we will get back to you soon", nil)
}

func (h *ContactHandler) List(ctx *gin.Context) {
	query := h.DB.Model(&models.ContactMessage{})

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var messages []models.ContactMessage

	if err := query.Order("created_at DESC").Find(&messages).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"messages": messages})
}

type ContactStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new seen resolved"`
}

func (h *ContactHandler) UpdateStatus(ctx *gin.Context) {
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

	var req ContactStatusRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	var message models.ContactMessage

	if err := h.DB.First(&message, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Message"))
		return
	}

	if err := h.DB.Model(&message).Update("status", req.Status).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "contact.update_status", "ContactMessage", message.ID, map[string]interface{}{
		"to": req.Status,
	})

	utils.OK(ctx, "Message updated", nil)
}
