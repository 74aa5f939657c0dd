package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/payments"
	"github.com/munhub-dev/munhub/internal/types"
	"gorm.io/gorm"
)

// PaymentService bridges the payment gateway and the Payment/Registration
// records. The signing secret is held here so callback verification never
// depends on gateway connectivity.
type PaymentService struct {
	conn    *gorm.DB
	gateway payments.Gateway
	secret  string
}

func NewPaymentService(conn *gorm.DB, gateway payments.Gateway, secret string) *PaymentService {
	return &PaymentService{conn: conn, gateway: gateway, secret: secret}
}

func (s *PaymentService) Gateway() payments.Gateway {
	return s.gateway
}

// CreateOrder computes the fee owed by the user from the current pricing
// row, creates a gateway order and records a pending Payment.
func (s *PaymentService) CreateOrder(user models.User) (models.Payment, payments.Order, error) {
	if !s.gateway.Configured() {
		return models.Payment{}, payments.Order{}, apperrors.Gateway("Payments are not enabled", payments.ErrNotConfigured)
	}

	var registration models.Registration

	if err := s.conn.Where("user_id = ?", user.ID).First(&registration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Payment{}, payments.Order{}, apperrors.NotFound("Registration")
		}
		return models.Payment{}, payments.Order{}, err
	}

	if registration.PaymentStatus == types.PaymentPaid {
		return models.Payment{}, payments.Order{}, apperrors.Conflict("Registration is already paid")
	}

	var pricing models.Pricing

	if err := s.conn.Order("created_at DESC").First(&pricing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Payment{}, payments.Order{}, apperrors.NotFound("Pricing")
		}
		return models.Payment{}, payments.Order{}, err
	}

	amount := pricing.ExternalDelegateFee
	if registration.IsInternal {
		amount = pricing.InternalDelegateFee
	}
	if registration.NeedsAccommodation {
		amount += pricing.AccommodationCharge
	}

	receipt := "mun_" + uuid.NewString()[:18]

	order, err := s.gateway.CreateOrder(amount, pricing.Currency, receipt, map[string]interface{}{
		"user_id": fmt.Sprintf("%d", user.ID),
		"email":   user.Email,
	})

	if err != nil {
		return models.Payment{}, payments.Order{}, apperrors.Gateway("Failed to create payment order", err)
	}

	payment := models.Payment{
		UserID:         user.ID,
		RegistrationID: &registration.ID,
		Amount:         amount,
		Currency:       pricing.Currency,
		Status:         types.PaymentPending,
		GatewayOrderID: order.ID,
		Receipt:        receipt,
	}

	if err := s.conn.Create(&payment).Error; err != nil {
		return models.Payment{}, payments.Order{}, err
	}

	return payment, order, nil
}

// Confirm verifies the callback signature against the stored order id and,
// only on success, marks the Payment and its Registration paid inside one
// transaction. A failed verification writes nothing.
func (s *PaymentService) Confirm(paymentID uint, gatewayPaymentID, signature string) (models.Payment, error) {
	var payment models.Payment

	if err := s.conn.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Payment{}, apperrors.NotFound("Payment")
		}
		return models.Payment{}, err
	}

	if payment.Status == types.PaymentPaid {
		return models.Payment{}, apperrors.Conflict("Payment is already confirmed")
	}

	if !payments.VerifySignature(s.secret, payment.GatewayOrderID, gatewayPaymentID, signature) {
		return models.Payment{}, apperrors.New(apperrors.KindValidation, "Payment verification failed")
	}

	err := s.conn.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":             types.PaymentPaid,
			"gateway_payment_id": gatewayPaymentID,
			"gateway_signature":  signature,
		}

		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}

		if payment.RegistrationID != nil {
			if err := tx.Model(&models.Registration{}).
				Where("id = ?", *payment.RegistrationID).
				Update("payment_status", types.PaymentPaid).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return models.Payment{}, err
	}

	return payment, nil
}

// Refund is admin-initiated and only legal from the paid state.
func (s *PaymentService) Refund(paymentID uint, reason string) (models.Payment, error) {
	var payment models.Payment

	if err := s.conn.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Payment{}, apperrors.NotFound("Payment")
		}
		return models.Payment{}, err
	}

	if payment.Status != types.PaymentPaid {
		return models.Payment{}, apperrors.Conflict("Only paid payments can be refunded")
	}

	refundID, err := s.gateway.Refund(payment.GatewayPaymentID, payment.Amount, reason)

	if err != nil {
		if errors.Is(err, payments.ErrNotConfigured) {
			return models.Payment{}, apperrors.Gateway("Payments are not enabled", err)
		}
		return models.Payment{}, apperrors.Gateway("Refund failed", err)
	}

	err = s.conn.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":        types.PaymentRefunded,
			"refund_id":     refundID,
			"refund_reason": reason,
		}

		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}

		if payment.RegistrationID != nil {
			if err := tx.Model(&models.Registration{}).
				Where("id = ?", *payment.RegistrationID).
				Update("payment_status", types.PaymentRefunded).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return models.Payment{}, err
	}

	return payment, nil
}
