package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/agiledatalabs/booking-management-system/internal/core/domain"
)

const (
	TypeOrderConfirmed = "order.confirmed"
	TypeBlockExpired   = "block.expired"
)

type Topics struct {
	OrderConfirmed string
	BlockExpired   string
}

type Event struct {
	Type       string        `json:"type"`
	OccurredAt time.Time     `json:"occurredAt"`
	Order      *domain.Order `json:"order,omitempty"`
	Block      *BlockPayload `json:"block,omitempty"`
}

type BlockPayload struct {
	UserID      string          `json:"userId"`
	ResourceID  string          `json:"resourceId"`
	BookingDate string          `json:"bookingDate"`
	TimeSlot    domain.TimeSlot `json:"timeSlot"`
	ResourceQty int             `json:"resourceQty"`
	StartTime   time.Time       `json:"blockStartTime"`
	EndTime     time.Time       `json:"blockEndTime"`
}

// Producer publishes booking events to Kafka. With a nil sarama producer it
// runs in mock mode and only logs what it would have sent.
type Producer struct {
	producer sarama.SyncProducer
	topics   Topics
	log      *zap.Logger
}

func NewKafkaProducer(brokers []string, topics Topics, log *zap.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	log.Info("connected to kafka", zap.Strings("brokers", brokers))
	return NewProducer(producer, topics, log), nil
}

func NewProducer(producer sarama.SyncProducer, topics Topics, log *zap.Logger) *Producer {
	if log == nil {
		log = zap.NewNop()
	}
	if producer == nil {
		log.Info("kafka producer running in mock mode")
	}
	return &Producer{producer: producer, topics: topics, log: log}
}

func (p *Producer) PublishOrderConfirmed(ctx context.Context, order *domain.Order) error {
	event := Event{
		Type:       TypeOrderConfirmed,
		OccurredAt: order.Timestamp,
		Order:      order,
	}
	return p.publish(ctx, p.topics.OrderConfirmed, order.ID.String(), event)
}

func (p *Producer) PublishBlockExpired(ctx context.Context, hold domain.Hold) error {
	event := Event{
		Type:       TypeBlockExpired,
		OccurredAt: hold.ExpiresAt(),
		Block: &BlockPayload{
			UserID:      hold.UserID,
			ResourceID:  hold.ResourceID,
			BookingDate: hold.BookingDate,
			TimeSlot:    hold.TimeSlot,
			ResourceQty: hold.ResourceQty,
			StartTime:   hold.StartTime,
			EndTime:     hold.ExpiresAt(),
		},
	}
	return p.publish(ctx, p.topics.BlockExpired, hold.Key().String(), event)
}

func (p *Producer) publish(ctx context.Context, topic, key string, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if p.producer == nil {
		p.log.Debug("mock publish", zap.String("topic", topic), zap.String("key", key), zap.ByteString("payload", data))
		return nil
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	// SendMessage does not take a context, so the caller stops waiting on
	// ctx while the send finishes in the background.
	done := make(chan sendResult, 1)
	go func() {
		partition, offset, err := p.producer.SendMessage(msg)
		done <- sendResult{partition: partition, offset: offset, err: err}
	}()

	select {
	case <-ctx.Done():
		p.log.Warn("stopped waiting for event delivery", zap.String("topic", topic), zap.String("key", key))
		return fmt.Errorf("failed to send message to %s: %w", topic, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("failed to send message to %s: %w", topic, res.err)
		}
		p.log.Debug("event published",
			zap.String("topic", topic),
			zap.String("type", event.Type),
			zap.Int32("partition", res.partition),
			zap.Int64("offset", res.offset),
		)
		return nil
	}
}

type sendResult struct {
	partition int32
	offset    int64
	err       error
}

func (p *Producer) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
