package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type CommitteeHandler struct {
	DB       *gorm.DB
	Activity *services.ActivityRecorder
}

func NewCommitteeHandler(conn *gorm.DB, activity *services.ActivityRecorder) *CommitteeHandler {
	return &CommitteeHandler{DB: conn, Activity: activity}
}

type CommitteeRequest struct {
	Name         string `json:"name" binding:"required"`
	Abbreviation string `json:"abbreviation"`
	Agenda       string `json:"agenda"`
	Description  string `json:"description"`
	Capacity     int    `json:"capacity" binding:"required,min=1"`
	Active       *bool  `json:"active"`
}

type PortfolioRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListPublic returns active committees with their portfolios for the
// public site. No authentication required.
func (h *CommitteeHandler) ListPublic(ctx *gin.Context) {
	var committees []models.Committee

	err := h.DB.Preload("Portfolios").Where("active = ?", true).
		Order("name ASC").Find(&committees).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"committees": committees})
}

func (h *CommitteeHandler) Get(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))

	if err != nil {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"id": "must be a number"}))
		return
	}

	var committee models.Committee

	if err := h.DB.Preload("Portfolios").First(&committee, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Committee"))
		return
	}

	utils.OK(ctx, "", gin.H{"committee": committee})
}

func (h *CommitteeHandler) Create(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var req CommitteeRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	committee := models.Committee{
		Name:         req.Name,
		Abbreviation: req.Abbreviation,
		Agenda:       req.Agenda,
		Description:  req.Description,
		Capacity:     req.Capacity,
		Active:       true,
		CreatedByID:  currentUser.ID,
	}

	if req.Active != nil {
		committee.Active = *req.Active
	}

	if err := h.DB.Create(&committee).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Committee"))
		return
	}

	h.Activity.Record(currentUser.ID, "committee.create", "Committee", committee.ID, nil)

	utils.Created(ctx, "Committee created", gin.H{"committee": committee})
}

func (h *CommitteeHandler) Update(ctx *gin.Context) {
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

	var committee models.Committee

	if err := h.DB.First(&committee, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Committee"))
		return
	}

	var req CommitteeRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	updates := map[string]interface{}{
		"name":         req.Name,
		"abbreviation": req.Abbreviation,
		"agenda":       req.Agenda,
		"description":  req.Description,
		"capacity":     req.Capacity,
	}

	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if err := h.DB.Model(&committee).Updates(updates).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Committee"))
		return
	}

	h.Activity.Record(currentUser.ID, "committee.update", "Committee", committee.ID, nil)

	utils.OK(ctx, "Committee updated", gin.H{"committee": committee})
}

func (h *CommitteeHandler) Delete(ctx *gin.Context) {
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

	var committee models.Committee

	if err := h.DB.First(&committee, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Committee"))
		return
	}

	if err := h.DB.Delete(&committee).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "committee.delete", "Committee", committee.ID, nil)

	utils.OK(ctx, "Committee deleted", nil)
}

func (h *CommitteeHandler) AddPortfolio(ctx *gin.Context) {
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

	var committee models.Committee

	if err := h.DB.First(&committee, id).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Committee"))
		return
	}

	var req PortfolioRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	portfolio := models.Portfolio{
		CommitteeID: committee.ID,
		Name:        req.Name,
	}

	if err := h.DB.Create(&portfolio).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Portfolio"))
		return
	}

	h.Activity.Record(currentUser.ID, "portfolio.create", "Portfolio", portfolio.ID, map[string]interface{}{
		"committeeId": committee.ID,
	})

	utils.Created(ctx, "Portfolio added", gin.H{"portfolio": portfolio})
}

func (h *CommitteeHandler) DeletePortfolio(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	portfolioID, err := strconv.Atoi(ctx.Param("portfolio_id"))

	if err != nil {
		utils.Fail(ctx, apperrors.Validation(map[string]string{"portfolio_id": "must be a number"}))
		return
	}

	var portfolio models.Portfolio

	if err := h.DB.First(&portfolio, portfolioID).Error; err != nil {
		utils.Fail(ctx, apperrors.Classify(err, "Portfolio"))
		return
	}

	if portfolio.Allocated {
		utils.Fail(ctx, apperrors.Conflict("Portfolio is allocated and cannot be deleted"))
		return
	}

	if err := h.DB.Delete(&portfolio).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "portfolio.delete", "Portfolio", portfolio.ID, nil)

	utils.OK(ctx, "Portfolio deleted", nil)
}
