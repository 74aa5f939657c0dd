package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/munhub-dev/munhub/internal/apperrors"
	"github.com/munhub-dev/munhub/internal/models"
	"github.com/munhub-dev/munhub/internal/payments"
	"github.com/munhub-dev/munhub/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-key-secret"

type fakeGateway struct {
	orders  int
	refunds int
	failing bool
}

func (f *fakeGateway) Configured() bool { return true }
func (f *fakeGateway) KeyID() string    { return "rzp_test_key" }

func (f *fakeGateway) CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (payments.Order, error) {
	if f.failing {
		return payments.Order{}, errors.New("gateway unavailable")
	}
	f.orders++
	return payments.Order{ID: "order_test_1", Amount: amount, Currency: currency, Receipt: receipt}, nil
}

func (f *fakeGateway) Refund(gatewayPaymentID string, amount int64, reason string) (string, error) {
	if f.failing {
		return "", errors.New("gateway unavailable")
	}
	f.refunds++
	return "rfnd_test_1", nil
}

func paymentTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(
		&models.User{}, &models.Committee{}, &models.Portfolio{},
		&models.Registration{}, &models.Payment{}, &models.Pricing{},
	))

	return conn
}

func seedDelegate(t *testing.T, conn *gorm.DB, internal bool) (models.User, models.Registration) {
	t.Helper()

	user := models.User{
		FirstName:    "Jane",
		Email:        "jane@example.com",
		PasswordHash: "x",
		Role:         string(types.RoleDelegate),
		Active:       true,
	}
	require.NoError(t, conn.Create(&user).Error)

	registration := models.Registration{
		UserID:               user.ID,
		Gender:               "female",
		Institution:          "Test University",
		IsInternal:           internal,
		Preference1Committee: "UNSC",
		Preference1Portfolio: "USA",
		Preference2Committee: "UNGA",
		Preference2Portfolio: "UK",
		Preference3Committee: "WHO",
		Preference3Portfolio: "Canada",
		IDDocumentPath:       "documents/test.pdf",
		Status:               types.RegistrationPending,
		PaymentStatus:        types.PaymentPending,
	}
	require.NoError(t, conn.Create(&registration).Error)

	require.NoError(t, conn.Create(&models.Pricing{
		InternalDelegateFee: 150000,
		ExternalDelegateFee: 250000,
		AccommodationCharge: 80000,
		Currency:            "INR",
		CreatedByID:         user.ID,
	}).Error)

	return user, registration
}

func signFor(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrderUsesPricing(t *testing.T) {
	conn := paymentTestDB(t)
	user, _ := seedDelegate(t, conn, true)

	gw := &fakeGateway{}
	svc := NewPaymentService(conn, gw, testSecret)

	payment, order, err := svc.CreateOrder(user)
	require.NoError(t, err)

	assert.Equal(t, int64(150000), payment.Amount)
	assert.Equal(t, "order_test_1", payment.GatewayOrderID)
	assert.Equal(t, types.PaymentPending, payment.Status)
	assert.Equal(t, payment.Amount, order.Amount)
	assert.Equal(t, 1, gw.orders)
}

func TestCreateOrderAddsAccommodation(t *testing.T) {
	conn := paymentTestDB(t)
	user, registration := seedDelegate(t, conn, false)

	require.NoError(t, conn.Model(&registration).Update("needs_accommodation", true).Error)

	svc := NewPaymentService(conn, &fakeGateway{}, testSecret)

	payment, _, err := svc.CreateOrder(user)
	require.NoError(t, err)
	assert.Equal(t, int64(250000+80000), payment.Amount)
}

func TestCreateOrderDisabledGateway(t *testing.T) {
	conn := paymentTestDB(t)
	user, _ := seedDelegate(t, conn, false)

	svc := NewPaymentService(conn, payments.Disabled{}, "")

	_, _, err := svc.CreateOrder(user)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindGateway, appErr.Kind)
}

func TestConfirmPayment(t *testing.T) {
	conn := paymentTestDB(t)
	user, registration := seedDelegate(t, conn, false)

	svc := NewPaymentService(conn, &fakeGateway{}, testSecret)

	payment, _, err := svc.CreateOrder(user)
	require.NoError(t, err)

	t.Run("wrong signature leaves state unchanged", func(t *testing.T) {
		_, err := svc.Confirm(payment.ID, "pay_test_1", "deadbeef")

		var appErr *apperrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.KindValidation, appErr.Kind)

		var got models.Payment
		require.NoError(t, conn.First(&got, payment.ID).Error)
		assert.Equal(t, types.PaymentPending, got.Status)

		var reg models.Registration
		require.NoError(t, conn.First(&reg, registration.ID).Error)
		assert.Equal(t, types.PaymentPending, reg.PaymentStatus)
	})

	t.Run("valid signature marks payment and registration paid", func(t *testing.T) {
		sig := signFor(payment.GatewayOrderID, "pay_test_1")

		_, err := svc.Confirm(payment.ID, "pay_test_1", sig)
		require.NoError(t, err)

		var got models.Payment
		require.NoError(t, conn.First(&got, payment.ID).Error)
		assert.Equal(t, types.PaymentPaid, got.Status)
		assert.Equal(t, "pay_test_1", got.GatewayPaymentID)

		var reg models.Registration
		require.NoError(t, conn.First(&reg, registration.ID).Error)
		assert.Equal(t, types.PaymentPaid, reg.PaymentStatus)
	})

	t.Run("double confirm conflicts", func(t *testing.T) {
		sig := signFor(payment.GatewayOrderID, "pay_test_1")

		_, err := svc.Confirm(payment.ID, "pay_test_1", sig)

		var appErr *apperrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.KindConflict, appErr.Kind)
	})
}

func TestRefund(t *testing.T) {
	conn := paymentTestDB(t)
	user, registration := seedDelegate(t, conn, false)

	gw := &fakeGateway{}
	svc := NewPaymentService(conn, gw, testSecret)

	payment, _, err := svc.CreateOrder(user)
	require.NoError(t, err)

	t.Run("refund of an unpaid payment conflicts", func(t *testing.T) {
		_, err := svc.Refund(payment.ID, "change of plans")

		var appErr *apperrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.KindConflict, appErr.Kind)
		assert.Zero(t, gw.refunds)
	})

	sig := signFor(payment.GatewayOrderID, "pay_test_1")
	_, err = svc.Confirm(payment.ID, "pay_test_1", sig)
	require.NoError(t, err)

	t.Run("refund of a paid payment succeeds", func(t *testing.T) {
		_, err := svc.Refund(payment.ID, "change of plans")
		require.NoError(t, err)
		assert.Equal(t, 1, gw.refunds)

		var got models.Payment
		require.NoError(t, conn.First(&got, payment.ID).Error)
		assert.Equal(t, types.PaymentRefunded, got.Status)
		assert.Equal(t, "rfnd_test_1", got.RefundID)

		var reg models.Registration
		require.NoError(t, conn.First(&reg, registration.ID).Error)
		assert.Equal(t, types.PaymentRefunded, reg.PaymentStatus)
	})
}

func TestConfirmMissingPayment(t *testing.T) {
	conn := paymentTestDB(t)

	svc := NewPaymentService(conn, &fakeGateway{}, testSecret)

	_, err := svc.Confirm(999, "pay_x", "sig")

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindNotFound, appErr.Kind)
}
