// internal/infrastructure/events/kafka_publisher.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/damon-houk/donation-ledger/internal/domain/service"
	"github.com/damon-houk/donation-ledger/internal/infrastructure/logger"
	"github.com/segmentio/kafka-go"
)

// DonationAcceptedType is carried in the message header of every donation event
const DonationAcceptedType = "donation.accepted"

const publishTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes donation events to a Kafka topic
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger logger.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on brokers
func NewKafkaPublisher(brokers []string, topic string, log logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		topic:  topic,
		logger: log,
	}
}

// PublishDonationAccepted writes event keyed by its transaction id, or by the
// event id when the delivery carried none
func (k *KafkaPublisher) PublishDonationAccepted(ctx context.Context, event service.DonationAcceptedEvent) error {
	msg, err := donationMessage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish donation event: %w", err)
	}

	k.logger.Debug("Donation event published", map[string]interface{}{
		"topic":    k.topic,
		"event_id": event.EventID,
	})
	return nil
}

// Close flushes pending messages and closes the writer
func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

func donationMessage(event service.DonationAcceptedEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode donation event: %w", err)
	}

	key := event.TransactionID
	if key == "" {
		key = event.EventID
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(DonationAcceptedType)},
		},
	}, nil
}
