package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/types"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(conn *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: conn}
}

type RegistrationsSummary struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Shortlisted int64 `json:"shortlisted"`
	Confirmed   int64 `json:"confirmed"`
	Rejected    int64 `json:"rejected"`
}

type PaymentsSummary struct {
	Collected int64 `json:"collected"` // minor units, paid payments only
	Paid      int64 `json:"paid"`
	Pending   int64 `json:"pending"`
	Refunded  int64 `json:"refunded"`
}

type DashboardResponse struct {
	Registrations RegistrationsSummary `json:"registrations"`
	Payments      PaymentsSummary      `json:"payments"`
	CheckInsToday int64                `json:"checkInsToday"`
	OpenMessages  int64                `json:"openMessages"`
	Committees    int64                `json:"committees"`
}

// Summary aggregates the headline counts the admin landing page shows.
func (h *DashboardHandler) Summary(ctx *gin.Context) {
	var resp DashboardResponse

	type statusCount struct {
		Status string
		Count  int64
	}

	var regCounts []statusCount

	err := h.DB.Model(&models.Registration{}).
		Select("status, COUNT(*) as count").Group("status").Scan(&regCounts).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	for _, row := range regCounts {
		resp.Registrations.Total += row.Count
		switch row.Status {
		case types.RegistrationPending:
			resp.Registrations.Pending = row.Count
		case types.RegistrationShortlisted:
			resp.Registrations.Shortlisted = row.Count
		case types.RegistrationConfirmed:
			resp.Registrations.Confirmed = row.Count
		case types.RegistrationRejected:
			resp.Registrations.Rejected = row.Count
		}
	}

	var payCounts []statusCount

	err = h.DB.Model(&models.Payment{}).
		Select("status, COUNT(*) as count").Group("status").Scan(&payCounts).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	for _, row := range payCounts {
		switch row.Status {
		case types.PaymentPaid:
			resp.Payments.Paid = row.Count
		case types.PaymentPending:
			resp.Payments.Pending = row.Count
		case types.PaymentRefunded:
			resp.Payments.Refunded = row.Count
		}
	}

	err = h.DB.Model(&models.Payment{}).
		Where("status = ?", types.PaymentPaid).
		Select("COALESCE(SUM(amount), 0)").Scan(&resp.Payments.Collected).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	start := startOfToday()

	err = h.DB.Model(&models.CheckIn{}).
		Where("marked_at >= ? AND status = ?", start, types.CheckedIn).
		Count(&resp.CheckInsToday).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	err = h.DB.Model(&models.ContactMessage{}).
		Where("status = ?", types.ContactNew).Count(&resp.OpenMessages).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	if err := h.DB.Model(&models.Committee{}).Where("active = ?", true).Count(&resp.Committees).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", resp)
}
