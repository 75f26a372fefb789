package payment

import (
	"context"
	"errors"
	"time"
)

// ErrGatewayPending is returned while no payment gateway is integrated.
var ErrGatewayPending = errors.New("payment gateway integration pending")

type PaymentRequest struct {
	AmountCents int64
	Currency    string
	Description string
	// M-Pesa STK push fields
	OrderID       string // unique order id, echoed back in the provider callback
	CustomerPhone string // e.g. 254712345678
	CustomerEmail string
	CallbackURL   string
}

type PaymentResponse struct {
	Reference         string
	Status            string
	CheckoutRequestID string // M-Pesa STK checkout request ID
	ExpiresAt         time.Time
}

type Provider interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error)
}

// PendingProvider rejects every payment with ErrGatewayPending. It stands in
// for the M-Pesa provider until one is integrated.
type PendingProvider struct{}

func (PendingProvider) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	return nil, ErrGatewayPending
}
