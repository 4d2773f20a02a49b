package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/laudo-service/internal/config"
	"github.com/couchcryptid/laudo-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of kafkago.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher announces completed exports on a Kafka topic.
// It implements export.Publisher.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured export topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes rec and writes it keyed by control number, so every
// record of a report lands on the same partition.
func (p *Publisher) Publish(ctx context.Context, rec domain.ExportRecord) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write export record: %w", err)
	}
	p.logger.Debug("export record published", "control_number", rec.ControlNumber)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an ExportRecord into a Kafka message.
func serializeToMessage(rec domain.ExportRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize export record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ControlNumber),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "classificacao", Value: []byte(rec.Classification)},
			{Key: "municipio", Value: []byte(rec.Municipality)},
			{Key: "exported_at", Value: []byte(rec.ExportedAt.Format(time.RFC3339))},
		},
	}, nil
}
