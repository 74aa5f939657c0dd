package payments

import "errors"

var (
	ErrNotConfigured = errors.New("payment gateway is not configured")
)

// Order is the gateway-side order a client completes checkout against.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
}

// Gateway abstracts the payment provider. Callers must branch on
// Configured() instead of probing for nil clients: the disabled variant is
// a real value that refuses every operation.
type Gateway interface {
	Configured() bool
	CreateOrder(amount int64, currency, receipt string, notes map[string]interface{}) (Order, error)
	Refund(gatewayPaymentID string, amount int64, reason string) (string, error)
	KeyID() string
}

// Disabled is the gateway used when credentials are absent from the
// environment. Payments degrade to a configured-off state instead of
// crashing the process.
type Disabled struct{}

func (Disabled) Configured() bool { return false }

func (Disabled) CreateOrder(int64, string, string, map[string]interface{}) (Order, error) {
	return Order{}, ErrNotConfigured
}

func (Disabled) Refund(string, int64, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) KeyID() string { return "" }
