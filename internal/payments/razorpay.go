package payments

import (
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Razorpay is the live gateway backed by the provider's SDK.
type Razorpay struct {
	client *razorpay.Client
	keyID  string
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{
		client: razorpay.NewClient(keyID, keySecret),
		keyID:  keyID,
	}
}

func (r *Razorpay) Configured() bool { return true }

func (r *Razorpay) KeyID() string { return r.keyID }

func (r *Razorpay) CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := r.client.Order.Create(data, nil)

	if err != nil {
		return Order{}, fmt.Errorf("razorpay order create: %w", err)
	}

	orderID, ok := body["id"].(string)

	if !ok || orderID == "" {
		return Order{}, fmt.Errorf("razorpay order create: missing order id in response")
	}

	return Order{
		ID:       orderID,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}

func (r *Razorpay) Refund(gatewayPaymentID string, amount int64, reason string) (string, error) {
	data := map[string]interface{}{}

	if reason != "" {
		data["notes"] = map[string]interface{}{"reason": reason}
	}

	body, err := r.client.Payment.Refund(gatewayPaymentID, int(amount), data, nil)

	if err != nil {
		return "", fmt.Errorf("razorpay refund: %w", err)
	}

	refundID, _ := body["id"].(string)
	return refundID, nil
}
