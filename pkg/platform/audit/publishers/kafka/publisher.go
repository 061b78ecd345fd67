// Package kafka publishes audit events to a Kafka topic.
//
// Records are keyed by user id so every event for one user lands on the same
// partition and consumers observe them in emission order. Emit blocks until
// the broker acknowledges the record; a failed produce is returned to the
// caller.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "clinic/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client used by Publisher.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Publisher struct {
	producer Producer
	topic    string
}

// New dials the given brokers and returns a publisher writing to topic.
func New(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return NewWithProducer(client, topic), nil
}

func NewWithProducer(producer Producer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// payload is the JSON value written for each event.
type payload struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Timestamp  string `json:"timestamp"`
	UserID     int64  `json:"user_id,omitempty"`
	Action     string `json:"action"`
	EntityKind string `json:"entity_kind,omitempty"`
	EntityID   int64  `json:"entity_id,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Record builds the Kafka record for an event.
func (p *Publisher) Record(event audit.Event) (*kgo.Record, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	value, err := json.Marshal(payload{
		ID:         uuid.NewString(),
		Category:   string(event.Category),
		Timestamp:  event.Timestamp.UTC().Format(time.RFC3339Nano),
		UserID:     int64(event.UserID),
		Action:     event.Action,
		EntityKind: event.EntityKind,
		EntityID:   event.EntityID,
		RequestID:  event.RequestID,
		Reason:     event.Reason,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal audit payload: %w", err)
	}
	return &kgo.Record{
		Topic: p.topic,
		Key:   []byte(strconv.FormatInt(int64(event.UserID), 10)),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Action)},
		},
		Timestamp: event.Timestamp,
	}, nil
}

func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	rec, err := p.Record(event)
	if err != nil {
		return err
	}
	if err := p.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.producer.Close()
}
