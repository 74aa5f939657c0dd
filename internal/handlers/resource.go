package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/storage"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type ResourceHandler struct {
	DB       *gorm.DB
	Files    *storage.Store
	Activity *services.ActivityRecorder
}

func NewResourceHandler(conn *gorm.DB, files *storage.Store, activity *services.ActivityRecorder) *ResourceHandler {
	return &ResourceHandler{DB: conn, Files: files, Activity: activity}
}

var resourcePurposes = map[string]storage.Purpose{
	"resource": storage.PurposeResources,
	"guide":    storage.PurposeGuides,
	"logo":     storage.PurposeLogos,
	"image":    storage.PurposeImages,
}

// ListPublic returns visible resources for delegates, optionally filtered
// by committee.
func (h *ResourceHandler) ListPublic(ctx *gin.Context) {
	query := h.DB.Preload("Committee").Where("visible = ?", true)

	if committeeID := ctx.Query("committeeId"); committeeID != "" {
		query = query.Where("committee_id = ?", committeeID)
	}

	var resources []models.Resource

	if err := query.Order("created_at DESC").Find(&resources).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"resources": resources})
}

// Upload accepts a multipart form with a "file" field plus metadata.
func (h *ResourceHandler) Upload(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	fields := make(map[string]string)

	title := strings.TrimSpace(ctx.PostForm("title"))
	kind := strings.TrimSpace(ctx.PostForm("kind"))

	if title == "" {
		fields["title"] = "is required"
	}

	purpose, ok := resourcePurposes[kind]

	if !ok {
		fields["kind"] = "must be one of: resource, guide, logo, image"
	}

	file, err := ctx.FormFile("file")

	if err != nil {
		fields["file"] = "is required"
	} else if ok {
		if violations := storage.Validate(file, purpose); len(violations) > 0 {
			fields["file"] = strings.Join(violations, "; ")
		}
	}

	if len(fields) > 0 {
		utils.Fail(ctx, apperrors.Validation(fields))
		return
	}

	var committeeID *uint

	if raw := ctx.PostForm("committeeId"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.Fail(ctx, apperrors.Validation(map[string]string{"committeeId": "must be a number"}))
			return
		}
		id := uint(parsed)
		committeeID = &id
	}

	path, err := h.Files.Save(file, purpose)

	if err != nil {
		log.Printf("Failed to store resource: %v", err)
		utils.Fail(ctx, err)
		return
	}

	resource := models.Resource{
		Title:        title,
		Description:  ctx.PostForm("description"),
		Purpose:      string(purpose),
		FilePath:     path,
		ContentType:  file.Header.Get("Content-Type"),
		SizeBytes:    file.Size,
		CommitteeID:  committeeID,
		Visible:      true,
		UploadedByID: currentUser.ID,
	}

	if err := h.DB.Create(&resource).Error; err != nil {
		if deleteErr := h.Files.Delete(path); deleteErr != nil && !errors.Is(deleteErr, storage.ErrNotFound) {
			log.Printf("Failed to clean up resource file %s: %v", path, deleteErr)
		}
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "resource.upload", "Resource", resource.ID, map[string]interface{}{
		"kind": kind,
	})

	utils.Created(ctx, "Resource uploaded", gin.H{"resource": resource})
}

type ResourceVisibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

func (h *ResourceHandler) SetVisibility(ctx *gin.Context) {
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

	var req ResourceVisibilityRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	var resource models.Resource

	if err := h.DB.First(&resource, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Resource"))
		return
	}

	if err := h.DB.Model(&resource).Update("visible", *req.Visible).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "resource.set_visibility", "Resource", resource.ID, map[string]interface{}{
		"visible": *req.Visible,
	})

	utils.OK(ctx, "Resource updated", nil)
}

func (h *ResourceHandler) Delete(ctx *gin.Context) {
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

	var resource models.Resource

	if err := h.DB.First(&resource, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Resource"))
		return
	}

	if err := h.DB.Unscoped().Delete(&resource).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	if err := h.Files.Delete(resource.FilePath); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("Failed to delete resource file %s: %v", resource.FilePath, err)
	}

	h.Activity.Record(currentUser.ID, "resource.delete", "Resource", resource.ID, nil)

	utils.OK(ctx, "Resource deleted", nil)
}
