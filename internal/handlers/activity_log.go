package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type ActivityLogHandler struct {
	DB *gorm.DB
}

func NewActivityLogHandler(conn *gorm.DB) *ActivityLogHandler {
	return &ActivityLogHandler{DB: conn}
}

func (h *ActivityLogHandler) List(ctx *gin.Context) {
	query := h.DB.Model(&models.ActivityLog{}).Preload("Actor")

	if actorID := ctx.Query("actorId"); actorID != "" {
		query = query.Where("actor_id = ?", actorID)
	}

	if action := ctx.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(ctx.DefaultQuery("perPage", "100"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 500 {
		perPage = 100
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	var logs []models.ActivityLog

	err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&logs).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{
		"logs":    logs,
		"total":   total,
		"page":    page,
		"perPage": perPage,
	})
}
