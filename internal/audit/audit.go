// Package audit delivers session lifecycle events to logs or a message broker.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dtroode/admin-session/internal/logger"
	"github.com/dtroode/admin-session/internal/model"
)

var (
	_ model.AuditSink = (*LogSink)(nil)
	_ model.AuditSink = (*AMQPSink)(nil)
)

// LogSink writes events to the application log.
type LogSink struct {
	logger *logger.Logger
}

func NewLogSink(logger *logger.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(_ context.Context, event model.AuditEvent) error {
	args := []any{
		"event_id", event.ID.String(),
		"type", string(event.Type),
		"subject_id", event.SubjectID,
		"occurred_at", event.OccurredAt.Format(time.RFC3339),
	}
	if event.Reason != "" {
		args = append(args, "reason", event.Reason)
	}
	s.logger.Info("Audit event", args...)
	return nil
}

// Publisher is the part of *amqp.Channel used by AMQPSink.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink publishes events as JSON to a topic exchange. The event type is the routing key.
type AMQPSink struct {
	publisher Publisher
	exchange  string
	timeout   time.Duration
	closer    func() error
}

// NewAMQPSink creates a sink over an already opened channel.
func NewAMQPSink(publisher Publisher, exchange string) (*AMQPSink, error) {
	if publisher == nil {
		return nil, errors.New("audit: publisher cannot be nil")
	}
	if exchange == "" {
		return nil, errors.New("audit: exchange cannot be empty")
	}
	return &AMQPSink{publisher: publisher, exchange: exchange, timeout: 5 * time.Second}, nil
}

// DialAMQP connects to the broker, declares a durable topic exchange and returns a sink owning the connection.
func DialAMQP(url, exchange string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	sink, err := NewAMQPSink(ch, exchange)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	sink.closer = func() error {
		return errors.Join(ch.Close(), conn.Close())
	}

	return sink, nil
}

func (s *AMQPSink) Record(ctx context.Context, event model.AuditEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Timestamp:    event.OccurredAt,
		Type:         string(event.Type),
		Body:         body,
	}

	publishCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.publisher.PublishWithContext(publishCtx, s.exchange, string(event.Type), false, false, msg); err != nil {
		return fmt.Errorf("failed to publish audit event %s: %w", event.Type, err)
	}
	return nil
}

// Close releases the broker connection if the sink owns one.
func (s *AMQPSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
