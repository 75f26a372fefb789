package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"educhain/internal/logging"
	"educhain/internal/metrics"
	apperrors "educhain/pkg/errors"
	"educhain/pkg/payment"
)

// DonationPendingMessage is returned while the payment gateway is not integrated.
const DonationPendingMessage = "Donation gateway integration pending. Thank you!"

// DonationService initiates donations through a payment provider
type DonationService struct {
	provider payment.Provider
}

// NewDonationService creates a new donation service
func NewDonationService(provider payment.Provider) *DonationService {
	return &DonationService{provider: provider}
}

// Initiate starts a donation payment. The request body is not inspected.
func (s *DonationService) Initiate(ctx context.Context) (*payment.PaymentResponse, error) {
	metrics.RecordDonationAttempt()
	orderID := fmt.Sprintf("edu-d-%s", uuid.New().String())
	log := logging.For("donation").WithField("order_id", orderID)

	res, err := s.provider.InitiatePayment(ctx, payment.PaymentRequest{
		Currency:    "KES",
		Description: "EDUCHAIN donation",
		OrderID:     orderID,
	})
	if errors.Is(err, payment.ErrGatewayPending) {
		log.Info("Donation requested while gateway integration is pending")
		return nil, apperrors.Wrap(apperrors.ErrCodeGatewayPending, DonationPendingMessage, err)
	}
	if err != nil {
		log.Errorf("Donation initiation failed: %v", err)
		return nil, fmt.Errorf("failed to initiate donation: %w", err)
	}

	log.Infof("Donation initiated: reference=%s status=%s", res.Reference, res.Status)
	return res, nil
}
