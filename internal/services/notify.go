package services

import (
	"context"
	"errors"
	"fmt"

	"educhain/internal/config"
	"educhain/internal/domain"
	"educhain/internal/logging"
)

// Notifier is told about every stored inquiry. Failures are logged by the
// caller and never undo the submission.
type Notifier interface {
	NotifyInquiry(ctx context.Context, inquiry *domain.Inquiry) error
}

// LogNotifier writes new inquiries to the application log.
type LogNotifier struct{}

func (LogNotifier) NotifyInquiry(ctx context.Context, inquiry *domain.Inquiry) error {
	logging.For("notify").Infof("New %s inquiry from %s (id=%d)", inquiry.Type, inquiry.Name, inquiry.ID)
	return nil
}

// MultiNotifier fans out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyInquiry(ctx context.Context, inquiry *domain.Inquiry) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyInquiry(ctx, inquiry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildNotifier assembles the notifiers enabled in cfg. The returned func
// releases their connections.
func BuildNotifier(cfg *config.Config) (Notifier, func(), error) {
	notifiers := MultiNotifier{LogNotifier{}}
	closers := []func(){}

	if cfg.Email.Enabled {
		notifiers = append(notifiers, NewEmailNotifier(NewEmailService(&cfg.Email), cfg.Email.NotifyTo))
	}
	if cfg.SMS.Enabled {
		notifiers = append(notifiers, NewSMSNotifier(NewSMSService(&cfg.SMS), cfg.SMS.NotifyTo))
	}
	if cfg.NATS.URL != "" {
		n, err := DialNATSNotifier(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		notifiers = append(notifiers, n)
		closers = append(closers, n.Close)
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return notifiers, closeAll, nil
}
