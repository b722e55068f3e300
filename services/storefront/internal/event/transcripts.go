package event

import (
	"context"
	"log/slog"
	"time"

	pkgkafka "github.com/peeyushtyagi09/newShopingAI/pkg/kafka"
	"github.com/peeyushtyagi09/newShopingAI/pkg/logger"
)

// ConsumerGroupID is the consumer group of the storefront service.
const ConsumerGroupID = "storefront-service"

// TranscriptData is the payload of a recognized transcript.
type TranscriptData struct {
	Transcript string `json:"transcript"`
}

// TranscriptSink accepts transcripts for a visitor's recognition stream.
type TranscriptSink interface {
	Submit(visitorID, transcript string) bool
}

// TranscriptHandler routes transcripts from the recognition topic to the
// visitor's voice dispatcher.
type TranscriptHandler struct {
	sink   TranscriptSink
	logger *slog.Logger
}

// NewTranscriptHandler creates a transcript handler.
func NewTranscriptHandler(sink TranscriptSink, logger *slog.Logger) *TranscriptHandler {
	return &TranscriptHandler{sink: sink, logger: logger}
}

// Handle delivers one transcript. Malformed events are logged and skipped
// rather than retried; a visitor that is not listening drops the
// transcript.
func (h *TranscriptHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	if event.AggregateID == "" {
		h.logger.WarnContext(ctx, "transcript event without visitor id",
			slog.String("event_id", event.EventID),
		)
		return nil
	}
	ctx = logger.WithVisitorID(ctx, event.AggregateID)

	var data TranscriptData
	if err := event.UnmarshalData(&data); err != nil {
		h.logger.WarnContext(ctx, "malformed transcript payload",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if data.Transcript == "" {
		return nil
	}

	if !h.sink.Submit(event.AggregateID, data.Transcript) {
		h.logger.DebugContext(ctx, "transcript dropped, visitor not listening",
			slog.String("event_id", event.EventID),
		)
	}
	return nil
}

// NewTranscriptConsumer creates the Kafka consumer of the recognition
// topic. Redelivered events are skipped using store.
func NewTranscriptConsumer(brokers []string, handler *TranscriptHandler, store pkgkafka.IdempotencyStore, logger *slog.Logger) *pkgkafka.Consumer {
	cfg := pkgkafka.ConsumerConfig{
		Brokers:      brokers,
		GroupID:      ConsumerGroupID,
		Topic:        TopicVoiceTranscripts,
		MinBytes:     1,
		MaxBytes:     10e6,
		RetryBackoff: 200 * time.Millisecond,
	}
	h := pkgkafka.IdempotentHandler(store, TopicVoiceTranscripts, handler.Handle, logger)
	return pkgkafka.NewConsumer(cfg, h, logger)
}
