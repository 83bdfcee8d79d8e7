package kafka

import (
	"context"

	"github.com/couchcryptid/storm-surge-prep/internal/config"
	"github.com/couchcryptid/storm-surge-prep/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes preparation requests from a Kafka topic.
// It implements pipeline.Extractor.
type Reader struct {
	reader *kafkago.Reader
}

// NewReader creates a Kafka consumer for the configured request topic.
func NewReader(cfg *config.Config) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaRequestTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{reader: r}
}

// Extract blocks until the next request arrives or ctx is cancelled.
func (r *Reader) Extract(ctx context.Context) (domain.RawRequest, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return domain.RawRequest{}, err
	}
	return r.mapMessage(msg), nil
}

// mapMessage converts a Kafka message into a RawRequest. The commit closure
// is bound to this reader's consumer group; offsets advance only when the
// pipeline calls it.
func (r *Reader) mapMessage(msg kafkago.Message) domain.RawRequest {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawRequest{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit: func(ctx context.Context) error {
			return r.reader.CommitMessages(ctx, msg)
		},
	}
}

func (r *Reader) Close() error {
	return r.reader.Close()
}
