package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/auth"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/types"
	"github.com/munhub-dev/munhub/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB     *gorm.DB
	Tokens *auth.TokenManager
}

func NewAuthHandler(conn *gorm.DB, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{DB: conn, Tokens: tokens}
}

type RegisterRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Phone       string `json:"phone"`
	Institution string `json:"institution"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

type UserResponse struct {
	ID          uint   `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	Institution string `json:"institution"`
	Active      bool   `json:"active"`
}

func toUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		Phone:       user.Phone,
		Role:        user.Role,
		Institution: user.Institution,
		Active:      user.Active,
	}
}

// Register creates a delegate account. Admin accounts are never created
// here; they are seeded or promoted by a super admin.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User

	err := h.DB.Where("email = ?", req.Email).First(&existing).Error

	if err == nil {
		utils.Fail(ctx, apperrors.Conflict("Email is already registered"))
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Fail(ctx, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		utils.Fail(ctx, err)
		return
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Phone:        req.Phone,
		Institution:  req.Institution,
		Role:         string(types.RoleDelegate),
		Active:       true,
	}

	if err := h.DB.Create(&user).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "User"))
		return
	}

	token, err := h.Tokens.Issue(user.ID, types.RoleDelegate)

	if err != nil {
		log.Printf("Failed to issue token: %v", err)
		utils.Fail(ctx, err)
		return
	}

	utils.Created(ctx, "Account created", gin.H{
		"token": token,
		"user":  toUserResponse(user),
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User

	err := h.DB.Where("email = ?", req.Email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, apperrors.Unauthorized("Invalid email or password"))
			return
		}
		utils.Fail(ctx, err)
		return
	}

	if !user.Active {
		utils.Fail(ctx, apperrors.Unauthorized("Account is deactivated"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("Invalid email or password"))
		return
	}

	token, err := h.Tokens.Issue(user.ID, types.Role(user.Role))

	if err != nil {
		log.Printf("Failed to issue token: %v", err)
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "Logged in", gin.H{
		"token": token,
		"user":  toUserResponse(user),
	})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var user models.User

	if err := h.DB.First(&user, currentUser.ID).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "User"))
		return
	}

	utils.OK(ctx, "", gin.H{"user": toUserResponse(user)})
}

func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var req ChangePasswordRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	var user models.User

	if err := h.DB.First(&user, currentUser.ID).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "User"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"currentPassword": "is incorrect"}))
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)

	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		utils.Fail(ctx, err)
		return
	}

	if err := h.DB.Model(&user).Update("password_hash", string(passwordHash)).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "Password updated", nil)
}
