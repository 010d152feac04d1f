package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/station-wind-etl/internal/analysis"
	"github.com/couchcryptid/station-wind-etl/internal/config"
	"github.com/couchcryptid/station-wind-etl/internal/domain"
	"github.com/couchcryptid/station-wind-etl/internal/frame"
)

// messageWriter is the subset of *kafkago.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Sink publishes each normalized row as one JSON message.
// It implements pipeline.Sink.
type Sink struct {
	writer    messageWriter
	batchSize int
	logger    *slog.Logger
}

// NewSink creates a Kafka producer for the configured topic.
func NewSink(cfg *config.Config, logger *slog.Logger) *Sink {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return &Sink{writer: w, batchSize: cfg.BatchSize, logger: logger}
}

func (s *Sink) Name() string { return "kafka" }

// Write publishes every row of f in batches of the configured size. Rows of
// one station share a key so they land on one partition in order.
func (s *Sink) Write(ctx context.Context, f *frame.Frame) error {
	processedAt := domain.Now()
	observations := analysis.Observations(f)

	batchSize := max(s.batchSize, 1)
	msgs := make([]kafkago.Message, 0, min(batchSize, len(observations)))
	published := 0
	for i := range observations {
		msg, err := serializeToMessage(observations[i], processedAt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		if len(msgs) == batchSize || i == len(observations)-1 {
			if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
				return fmt.Errorf("publish batch at row %d: %w", published, err)
			}
			published += len(msgs)
			msgs = msgs[:0]
		}
	}

	s.logger.Info("observations published", "messages", published)
	return nil
}

func (s *Sink) Close() error {
	return s.writer.Close()
}

// serializeToMessage marshals an Observation into a Kafka message.
func serializeToMessage(obs domain.Observation, processedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(obs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(obs.Station),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(obs.Station)},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
