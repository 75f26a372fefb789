package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"educhain/internal/domain"
	"educhain/internal/logging"
	"educhain/internal/metrics"
	apperrors "educhain/pkg/errors"
)

// MissingFieldsMessage is the validation message shown by the inquiry form.
const MissingFieldsMessage = "Missing required fields (name, email, type)"

// notifyTimeout bounds all notifications for one inquiry. They run after the
// commit, so a slow channel only delays the response.
const notifyTimeout = 15 * time.Second

// InquiryStore is the persistence dependency of InquiryService.
type InquiryStore interface {
	Insert(ctx context.Context, inquiry *domain.Inquiry) error
}

// SubmitInquiryPayload is the decoded body of a submission. A nil field was
// absent (or null) in the request.
type SubmitInquiryPayload struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Type    *string `json:"type"`
	Message *string `json:"message"`
}

// UnmarshalJSON accepts strings and other JSON scalars for every field;
// numbers and booleans are kept as their JSON text. Objects and arrays are
// rejected.
func (p *SubmitInquiryPayload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name    json.RawMessage `json:"name"`
		Email   json.RawMessage `json:"email"`
		Type    json.RawMessage `json:"type"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := []struct {
		name string
		raw  json.RawMessage
		dst  **string
	}{
		{"name", raw.Name, &p.Name},
		{"email", raw.Email, &p.Email},
		{"type", raw.Type, &p.Type},
		{"message", raw.Message, &p.Message},
	}
	for _, f := range fields {
		v, err := scalarText(f.raw)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return nil
}

// scalarText returns nil for an absent or null value.
func scalarText(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &s, nil
	case '{', '[':
		return nil, errors.New("expected a string, number or boolean")
	default:
		s := string(raw)
		return &s, nil
	}
}

// SubmitInquiryResult is returned for a stored inquiry.
type SubmitInquiryResult struct {
	ID      uint   `json:"-"`
	Message string `json:"message"`
}

// InquiryService implements the inquiry submission flow
type InquiryService struct {
	store         InquiryStore
	notifier      Notifier
	notifyTimeout time.Duration
}

// NewInquiryService creates a new inquiry service. A nil notifier disables
// notifications.
func NewInquiryService(store InquiryStore, notifier Notifier) *InquiryService {
	if notifier == nil {
		notifier = MultiNotifier{}
	}
	return &InquiryService{
		store:         store,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
	}
}

// Submit validates p, stores it as a new Inquiry and notifies listeners.
func (s *InquiryService) Submit(ctx context.Context, p *SubmitInquiryPayload) (*SubmitInquiryResult, error) {
	log := logging.For("inquiry")
	log.Infof("Submit request: name=%s, type=%s", deref(p.Name), deref(p.Type))

	if err := validateInquiry(p); err != nil {
		log.Infof("Submit failed: validation error: %v", err)
		metrics.RecordInquiryFailure("validation")
		return nil, err
	}

	inquiry := &domain.Inquiry{
		Name:    *p.Name,
		Email:   *p.Email,
		Type:    *p.Type,
		Message: deref(p.Message),
	}

	if err := s.store.Insert(ctx, inquiry); err != nil {
		reason := "storage"
		if apperrors.IsConstraint(err) {
			reason = "constraint"
		}
		log.WithField("reason", reason).Errorf("DATABASE ERROR: %v", err)
		metrics.RecordInquiryFailure(reason)
		return nil, err
	}

	log.Infof("NEW INQUIRY SAVED: %s (%s) id=%d", inquiry.Name, inquiry.Type, inquiry.ID)
	metrics.RecordInquirySubmission(inquiry.Type)

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyInquiry(nctx, inquiry); err != nil {
		log.Warnf("failed to send notification for inquiry id=%d: %v", inquiry.ID, err)
	}

	return &SubmitInquiryResult{
		ID:      inquiry.ID,
		Message: "Inquiry submitted successfully",
	}, nil
}

// validateInquiry checks presence of the required fields and the column
// limits. Email shape and type values are not checked.
func validateInquiry(p *SubmitInquiryPayload) error {
	var missing []string
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"name", p.Name},
		{"email", p.Email},
		{"type", p.Type},
	} {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperrors.New(apperrors.ErrCodeValidation,
			fmt.Sprintf("%s; missing: %s", MissingFieldsMessage, strings.Join(missing, ", ")))
	}

	if utf8.RuneCountInString(*p.Name) > domain.MaxNameLength {
		return tooLong("name", domain.MaxNameLength)
	}
	if utf8.RuneCountInString(*p.Email) > domain.MaxEmailLength {
		return tooLong("email", domain.MaxEmailLength)
	}
	if utf8.RuneCountInString(*p.Type) > domain.MaxTypeLength {
		return tooLong("type", domain.MaxTypeLength)
	}
	return nil
}

func tooLong(field string, max int) error {
	return apperrors.New(apperrors.ErrCodeValidation,
		fmt.Sprintf("%s must not exceed %d characters", field, max))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
