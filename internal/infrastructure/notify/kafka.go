// Package notify implements ports.EventPublisher and ports.NotificationSink
// on Kafka via watermill, grounded on
// courier-emulation/internal/infrastructure/kafka/status_publisher.go's
// publisher-wraps-message.Publisher shape.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shortlink-org/go-sdk/logger"

	"github.com/parcelhub/dispatch-engine/internal/domain/journey"
	"github.com/parcelhub/dispatch-engine/internal/domain/ports"
)

const (
	topicDomainEvents = "dispatch.domain_event"
	topicPush         = "dispatch.notification.push"
	topicEmail        = "dispatch.notification.email"
)

// watermillLoggerAdapter bridges logger.Logger to watermill.LoggerAdapter.
type watermillLoggerAdapter struct {
	log logger.Logger
}

func (a watermillLoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, "error", err, "fields", fields)
}
func (a watermillLoggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, "fields", fields)
}
func (a watermillLoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, "fields", fields)
}
func (a watermillLoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, "fields", fields)
}
func (a watermillLoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return a
}

// NewPublisher constructs a watermill-kafka message.Publisher for the
// given brokers.
func NewPublisher(brokers []string, log logger.Logger) (message.Publisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermillLoggerAdapter{log: log},
	)
	if err != nil {
		return nil, fmt.Errorf("notify: new kafka publisher: %w", err)
	}

	return publisher, nil
}

// EventSink publishes domain events to Kafka (spec.md §5 outbox-style
// publish after commit).
type EventSink struct {
	publisher message.Publisher
}

// NewEventSink constructs an EventSink.
func NewEventSink(publisher message.Publisher) *EventSink {
	return &EventSink{publisher: publisher}
}

// Publish implements ports.EventPublisher.
func (s *EventSink) Publish(ctx context.Context, event journey.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", event.EventType())

	if err := s.publisher.Publish(topicDomainEvents, msg); err != nil {
		return fmt.Errorf("notify: publish event: %w", err)
	}

	return nil
}

// pushMessage and emailMessage are the wire shapes for the push/email
// topics; the actual channel fan-out (APNs/FCM/SMTP) lives downstream of
// this service, consistent with spec.md §2's "the core never owns" stance
// on external collaborators.
type pushMessage struct {
	UserID string                  `json:"user_id"`
	Title  string                  `json:"title"`
	Body   string                  `json:"body"`
	Kind   ports.NotificationKind  `json:"kind"`
}

type emailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Sink publishes push/email requests to Kafka for a downstream delivery
// worker to consume (spec.md §5 "fire-and-forget ... failures are logged,
// not retried, by the core").
type Sink struct {
	publisher message.Publisher
	log       logger.Logger
}

// NewSink constructs a Sink.
func NewSink(publisher message.Publisher, log logger.Logger) *Sink {
	return &Sink{publisher: publisher, log: log}
}

func (s *Sink) Push(ctx context.Context, userID, title, body string, kind ports.NotificationKind) error {
	payload, err := json.Marshal(pushMessage{UserID: userID, Title: title, Body: body, Kind: kind})
	if err != nil {
		return fmt.Errorf("notify: marshal push: %w", err)
	}

	if err := s.publisher.Publish(topicPush, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		s.log.Warn("notify: push publish failed", "user_id", userID, "error", err)
		return err
	}

	return nil
}

func (s *Sink) Email(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(emailMessage{To: to, Subject: subject, HTML: html})
	if err != nil {
		return fmt.Errorf("notify: marshal email: %w", err)
	}

	if err := s.publisher.Publish(topicEmail, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		s.log.Warn("notify: email publish failed", "to", to, "error", err)
		return err
	}

	return nil
}
