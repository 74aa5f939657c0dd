package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type PricingHandler struct {
	DB       *gorm.DB
	Activity *services.ActivityRecorder
}

func NewPricingHandler(conn *gorm.DB, activity *services.ActivityRecorder) *PricingHandler {
	return &PricingHandler{DB: conn, Activity: activity}
}

type PricingRequest struct {
	InternalDelegateFee int64  `json:"internalDelegateFee" binding:"required,min=0"`
	ExternalDelegateFee int64  `json:"externalDelegateFee" binding:"required,min=0"`
	AccommodationCharge int64  `json:"accommodationCharge" binding:"min=0"`
	EarlyBirdDiscount   int64  `json:"earlyBirdDiscount" binding:"min=0"`
	GroupDiscount       int64  `json:"groupDiscount" binding:"min=0"`
	Currency            string `json:"currency"`
}

// Current returns the latest pricing row. Public: the fee schedule is
// shown on the registration page.
func (h *PricingHandler) Current(ctx *gin.Context) {
	var pricing models.Pricing

	err := h.DB.Order("created_at DESC").First(&pricing).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, apperrors.NotFound("Pricing"))
			return
		}
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"pricing": pricing})
}

// History lists all pricing rows newest first. Pricing is append-only, so
// this is the full change history.
func (h *PricingHandler) History(ctx *gin.Context) {
	var rows []models.Pricing

	if err := h.DB.Order("created_at DESC").Find(&rows).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"pricing": rows})
}

// Create appends a new pricing row; existing rows are never modified.
func (h *PricingHandler) Create(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var req PricingRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	pricing := models.Pricing{
		InternalDelegateFee: req.InternalDelegateFee,
		ExternalDelegateFee: req.ExternalDelegateFee,
		AccommodationCharge: req.AccommodationCharge,
		EarlyBirdDiscount:   req.EarlyBirdDiscount,
		GroupDiscount:       req.GroupDiscount,
		Currency:            currency,
		CreatedByID:         currentUser.ID,
	}

	if err := h.DB.Create(&pricing).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "pricing.create", "Pricing", pricing.ID, map[string]interface{}{
		"internalDelegateFee": req.InternalDelegateFee,
		"externalDelegateFee": req.ExternalDelegateFee,
	})

	utils.Created(ctx, "Pricing updated", gin.H{"pricing": pricing})
}
