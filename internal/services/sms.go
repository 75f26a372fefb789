package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"educhain/internal/config"
	"educhain/internal/domain"
	"educhain/internal/logging"
)

const twilioBaseURL = "https://api.twilio.com"

// SMSService handles sending SMS messages
type SMSService struct {
	cfg     *config.SMSConfig
	baseURL string
	client  *http.Client
}

// NewSMSService creates a new SMS service
func NewSMSService(cfg *config.SMSConfig) *SMSService {
	return &SMSService{
		cfg:     cfg,
		baseURL: twilioBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Send sends message to phoneNumber through the configured provider
func (s *SMSService) Send(ctx context.Context, phoneNumber, message string) error {
	if !s.cfg.Enabled {
		logging.For("sms").Infof("Would send to %s: %s", phoneNumber, message)
		return nil
	}

	switch strings.ToLower(s.cfg.Provider) {
	case "twilio":
		return s.sendViaTwilio(ctx, phoneNumber, message)
	case "console", "dev", "development":
		logging.For("sms").Infof("Would send to %s: %s", phoneNumber, message)
		return nil
	default:
		return fmt.Errorf("unsupported SMS provider: %s", s.cfg.Provider)
	}
}

// sendViaTwilio sends SMS via Twilio API
func (s *SMSService) sendViaTwilio(ctx context.Context, phoneNumber, message string) error {
	if s.cfg.TwilioSID == "" || s.cfg.TwilioAuth == "" || s.cfg.TwilioFrom == "" {
		return fmt.Errorf("Twilio not properly configured")
	}

	normalizedPhone := phoneNumber
	if !strings.HasPrefix(normalizedPhone, "+") {
		normalizedPhone = "+" + normalizedPhone
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.cfg.TwilioSID)

	form := url.Values{}
	form.Set("From", s.cfg.TwilioFrom)
	form.Set("To", normalizedPhone)
	form.Set("Body", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(s.cfg.TwilioSID, s.cfg.TwilioAuth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var errorResp map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errorResp)
		return fmt.Errorf("Twilio API error (status %d): %v", resp.StatusCode, errorResp)
	}

	return nil
}

// IsEnabled returns whether SMS service is enabled
func (s *SMSService) IsEnabled() bool {
	return s.cfg.Enabled
}

// SMSNotifier texts a short summary of each new inquiry.
type SMSNotifier struct {
	sms *SMSService
	to  string
}

func NewSMSNotifier(sms *SMSService, to string) *SMSNotifier {
	return &SMSNotifier{sms: sms, to: to}
}

func (n *SMSNotifier) NotifyInquiry(ctx context.Context, inquiry *domain.Inquiry) error {
	msg := fmt.Sprintf("New %s inquiry from %s <%s> (id %d)", inquiry.Type, inquiry.Name, inquiry.Email, inquiry.ID)
	if err := n.sms.Send(ctx, n.to, msg); err != nil {
		return fmt.Errorf("sms notification: %w", err)
	}
	return nil
}
