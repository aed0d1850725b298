package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/t-fbd/loc-api/internal/models"
)

//go:generate mockgen -destination=../../mocks/mock_producer.go -package=mocks github.com/t-fbd/loc-api/internal/kafka JobProducer

// JobProducer publishes HarvestJob messages.
type JobProducer interface {
	WriteJob(ctx context.Context, job models.HarvestJob) error
}

// Producer wraps a Kafka writer for publishing harvest jobs.
type Producer struct {
	writer MessageWriter
}

// NewWriter returns a writer for one topic. Topics are provisioned out of band.
func NewWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: false,
	}
}

// NewReader returns a consumer-group reader for one topic.
func NewReader(broker, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
	})
}

// NewProducer creates a Kafka producer for the given broker and topic.
func NewProducer(broker, topic string) *Producer {
	return &Producer{writer: NewWriter(broker, topic)}
}

// NewProducerWithWriter builds a producer using a custom writer (tests).
func NewProducerWithWriter(writer MessageWriter) *Producer {
	return &Producer{writer: writer}
}

// Close shuts down the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// WriteJob publishes a HarvestJob keyed by its session id.
func (p *Producer) WriteJob(ctx context.Context, job models.HarvestJob) error {
	return Publish(ctx, p.writer, job.SessionID, job)
}

// Publish JSON-encodes v and writes it as one message. A nil writer is a no-op.
func Publish(ctx context.Context, writer MessageWriter, key string, v any) error {
	if writer == nil {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	}

	return writer.WriteMessages(ctx, msg)
}
