package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	HoldCreated            = "hold.created"
	HoldReleased           = "hold.released"
	ReservationCreated     = "reservation.created"
	ReservationCancelled   = "reservation.cancelled"
	ReservationCheckedIn   = "reservation.checked_in"
	ReservationCheckedOut  = "reservation.checked_out"
	ReservationPaid        = "reservation.paid"
	ReservationGroupBooked = "reservation.group_created"
)

// Event is the envelope written to the lifecycle topic. Key is the room id
// so every event for one room lands on the same partition.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"-"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type Producer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{
		writer: writer,
		log:    log.With(zap.String("producer", topic)),
	}
}

func (p *Producer) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", evt.Type, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.Key),
		Value: data,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("write %s event: %w", evt.Type, err)
	}

	p.log.Debug("Event published", zap.String("type", evt.Type), zap.String("key", evt.Key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// Nop discards events; used when KAFKA_BROKERS is empty.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
