package kafka

import (
	"context"
	"log/slog"
	"sort"

	"github.com/couchcryptid/storm-surge-prep/internal/config"
	"github.com/couchcryptid/storm-surge-prep/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces preparation results to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured result topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaResultTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes one result message to the result topic.
func (w *Writer) Publish(ctx context.Context, msg domain.OutputMessage) error {
	return w.writer.WriteMessages(ctx, mapOutputToMessage(msg))
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// mapOutputToMessage converts an output message, ordering headers by key so
// replays of the same result serialize identically.
func mapOutputToMessage(msg domain.OutputMessage) kafkago.Message {
	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafkago.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(msg.Headers[k])})
	}
	return kafkago.Message{
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
}
