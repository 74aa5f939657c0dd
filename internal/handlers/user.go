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

type UserHandler struct {
	DB       *gorm.DB
	Activity *services.ActivityRecorder
}

func NewUserHandler(conn *gorm.DB, activity *services.ActivityRecorder) *UserHandler {
	return &UserHandler{DB: conn, Activity: activity}
}

func (h *UserHandler) List(ctx *gin.Context) {
	query := h.DB.Model(&models.User{})

	if role := ctx.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	if search := ctx.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}

	var users []models.User

	if err := query.Order("created_at ASC").Find(&users).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	items := make([]UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, toUserResponse(user))
	}

	utils.OK(ctx, "", gin.H{"users": items})
}

func (h *UserHandler) Get(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))

	if err != nil {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"id": "must be a number"}))
		return
	}

	var user models.User

	if err := h.DB.First(&user, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "User"))
		return
	}

	utils.OK(ctx, "", gin.H{"user": toUserResponse(user)})
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *UserHandler) UpdateRole(ctx *gin.Context) {
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

	var req UpdateRoleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	if !types.ValidRole(types.Role(req.Role)) {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"role": "is not a recognized role"}))
		return
	}

	var user models.User

	if err := h.DB.First(&user, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "User"))
		return
	}

	previous := user.Role

	if err := h.DB.Model(&user).Update("role", req.Role).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "user.update_role", "User", user.ID, map[string]interface{}{
		"from": previous,
		"to":   req.Role,
	})

	user.Role = req.Role
	utils.OK(ctx, "Role updated", gin.H{"user": toUserResponse(user)})
}

// Deactivate soft-disables an account. Users are never hard-deleted.
func (h *UserHandler) Deactivate(ctx *gin.Context) {
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

	if uint(id) == currentUser.ID {
		utils.Fail(ctx, apperrors.Conflict("You cannot deactivate your own account"))
		return
	}

	var user models.User

	if err := h.DB.First(&user, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "User"))
		return
	}

	if err := h.DB.Model(&user).Update("active", false).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "user.deactivate", "User", user.ID, nil)

	utils.OK(ctx, "User deactivated", nil)
}

func (h *UserHandler) Reactivate(ctx *gin.Context) {
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

	var user models.User

	if err := h.DB.First(&user, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "User"))
		return
	}

	if err := h.DB.Model(&user).Update("active", true).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "user.reactivate", "User", user.ID, nil)

	utils.OK(ctx, "User reactivated", nil)
}
