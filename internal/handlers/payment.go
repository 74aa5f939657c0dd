package handlers

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/mailer"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/services"
	"github.com/munhub-dev/munhub/internal/utils"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	DB         *gorm.DB
	Payments   *services.PaymentService
	Dispatcher *mailer.Dispatcher
	Activity   *services.ActivityRecorder
}

func NewPaymentHandler(conn *gorm.DB, payments *services.PaymentService, dispatcher *mailer.Dispatcher, activity *services.ActivityRecorder) *PaymentHandler {
	return &PaymentHandler{DB: conn, Payments: payments, Dispatcher: dispatcher, Activity: activity}
}

// Status tells the client whether online payments are enabled and which
// key to initialize checkout with.
func (h *PaymentHandler) Status(ctx *gin.Context) {
	utils.OK(ctx, "", gin.H{
		"enabled": h.Payments.Gateway().Configured(),
		"keyId":   h.Payments.Gateway().KeyID(),
	})
}

// CreateOrder opens a gateway order for the calling delegate's fee.
func (h *PaymentHandler) CreateOrder(ctx *gin.Context) {
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

	payment, order, err := h.Payments.CreateOrder(user)

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.Created(ctx, "Order created", gin.H{
		"paymentId": payment.ID,
		"orderId":   order.ID,
		"amount":    order.Amount,
		"currency":  order.Currency,
		"keyId":     h.Payments.Gateway().KeyID(),
	})
}

type ConfirmPaymentRequest struct {
	PaymentID        uint   `json:"paymentId" binding:"required"`
	GatewayPaymentID string `json:"gatewayPaymentId" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

// Confirm is the checkout callback: it verifies the gateway signature and
// marks the payment and registration paid on success.
func (h *PaymentHandler) Confirm(ctx *gin.Context) {
	var req ConfirmPaymentRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	payment, err := h.Payments.Confirm(req.PaymentID, req.GatewayPaymentID, req.Signature)

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	if h.Dispatcher.Configured() {
		var user models.User

		if err := h.DB.First(&user, payment.UserID).Error; err == nil {
			vars := map[string]string{
				"firstName": user.FirstName,
				"amount":    formatAmount(payment.Amount, payment.Currency),
			}
			if err := h.Dispatcher.SendTemplate("payment_confirmed", user.Email, vars); err != nil {
				log.Printf("Failed to send payment email to %s: %v", user.Email, err)
			}
		}
	}

	utils.OK(ctx, "Payment confirmed", gin.H{"paymentId": payment.ID})
}

func (h *PaymentHandler) List(ctx *gin.Context) {
	query := h.DB.Model(&models.Payment{}).Preload("User")

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var paymentsList []models.Payment

	if err := query.Order("created_at DESC").Find(&paymentsList).Error; err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"payments": paymentsList})
}

// Mine lists the calling delegate's own payments.
func (h *PaymentHandler) Mine(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.Fail(ctx, apperrors.Unauthorized("User not authenticated"))
		return
	}

	var paymentsList []models.Payment

	err = h.DB.Where("user_id = ?", currentUser.ID).
		Order("created_at DESC").Find(&paymentsList).Error

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.OK(ctx, "", gin.H{"payments": paymentsList})
}

type RefundRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *PaymentHandler) Refund(ctx *gin.Context) {
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

	var req RefundRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, apperrors.FromBinding(err))
		return
	}

	payment, err := h.Payments.Refund(uint(id), req.Reason)

	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	h.Activity.Record(currentUser.ID, "payment.refund", "Payment", payment.ID, map[string]interface{}{
		"reason": req.Reason,
	})

	utils.OK(ctx, "Payment refunded", gin.H{"paymentId": payment.ID})
}

func formatAmount(minor int64, currency string) string {
	whole := minor / 100
	frac := minor % 100
	return currency + " " + strconv.FormatInt(whole, 10) + "." + pad2(frac)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
