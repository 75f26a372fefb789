package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"educhain/internal/domain"
)

// InquiryCreatedEvent is the message published for each stored inquiry.
type InquiryCreatedEvent struct {
	Event   string          `json:"event"`
	Inquiry *domain.Inquiry `json:"inquiry"`
}

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes InquiryCreatedEvent messages on a NATS subject.
type NATSNotifier struct {
	pub     publisher
	subject string
	close   func()
}

// DialNATSNotifier connects to the NATS server at url.
func DialNATSNotifier(url, subject string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url, nats.Name("educhain-api"))
	if err != nil {
		return nil, err
	}
	return &NATSNotifier{
		pub:     nc,
		subject: subject,
		close: func() {
			_ = nc.Drain()
		},
	}, nil
}

func (n *NATSNotifier) NotifyInquiry(ctx context.Context, inquiry *domain.Inquiry) error {
	data, err := json.Marshal(InquiryCreatedEvent{Event: "inquiry.created", Inquiry: inquiry})
	if err != nil {
		return fmt.Errorf("encode inquiry event: %w", err)
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", n.subject, err)
	}
	return nil
}

// Close drains the connection.
func (n *NATSNotifier) Close() {
	if n.close != nil {
		n.close()
	}
}
