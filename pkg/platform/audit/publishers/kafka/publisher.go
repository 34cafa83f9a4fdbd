// Package kafka publishes audit batches to a Kafka topic.
//
// Each record becomes one Kafka message keyed by session id, so all records
// of a session land on the same partition in flush order. A batch is produced
// with a single ProduceSync call; any failed record fails the batch.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "sessiontrail/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Publisher implements audit.Store on Kafka.
type Publisher struct {
	producer Producer
	topic    string
}

// New connects a franz-go client to brokers and returns a publisher for topic.
func New(brokers []string, topic string, opts ...kgo.Opt) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	clientOpts := append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}, opts...)
	client, err := kgo.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return NewWithProducer(client, topic), nil
}

// NewWithProducer wraps an existing producer.
func NewWithProducer(producer Producer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// PersistBatch produces every record and waits for all acknowledgements.
func (p *Publisher) PersistBatch(ctx context.Context, records []audit.Record) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]*kgo.Record, 0, len(records))
	for _, r := range records {
		value, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal audit record %s: %w", r.ID, err)
		}
		msgs = append(msgs, &kgo.Record{
			Topic: p.topic,
			Key:   []byte(r.SessionID),
			Value: value,
			Headers: []kgo.RecordHeader{
				{Key: "category", Value: []byte(r.Category)},
				{Key: "record_id", Value: []byte(r.ID)},
			},
		})
	}
	if err := p.producer.ProduceSync(ctx, msgs...).FirstErr(); err != nil {
		return fmt.Errorf("produce audit batch: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (p *Publisher) Close() error {
	p.producer.Close()
	return nil
}
