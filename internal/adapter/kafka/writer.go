package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/storm-bulletin-etl/internal/config"
	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer the loader uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes storm tracks to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured track topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Load serializes every track of the forecast and publishes them in a single
// WriteMessages call.
func (w *Writer) Load(ctx context.Context, f domain.Forecast) error {
	if len(f.Tracks) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(f.Tracks))
	for i := range f.Tracks {
		msg, err := serializeToMessage(f.Tracks[i], f.Bulletin.Checksum)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish tracks: %w", err)
	}
	w.logger.Debug("tracks published", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a StormTrack into a Kafka message keyed by
// track ID.
func serializeToMessage(track domain.StormTrack, checksum string) (kafkago.Message, error) {
	data, err := json.Marshal(track)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize storm track: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(track.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "storm_name", Value: []byte(track.Name)},
			{Key: "bulletin_checksum", Value: []byte(checksum)},
			{Key: "processed_at", Value: []byte(track.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
