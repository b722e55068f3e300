package event

import (
	"context"
	"log/slog"
	"sync"
	"time"

	pkgkafka "github.com/peeyushtyagi09/newShopingAI/pkg/kafka"
	"github.com/peeyushtyagi09/newShopingAI/pkg/logger"
)

// Kafka topics of the voice assistant.
const (
	TopicVoiceUtterances  = pkgkafka.TopicPrefix + ".voice.utterances"
	TopicVoiceTranscripts = pkgkafka.TopicPrefix + ".voice.transcripts"
)

// Event types and aggregate.
const (
	EventUtteranceRequested = "voice.utterance.requested"
	EventTranscriptRecorded = "voice.transcript.recorded"
	AggregateTypeVisitor    = "visitor"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront-service"

// UtteranceData is the payload of an utterance request.
type UtteranceData struct {
	Text string `json:"text"`
}

// Publisher is the part of *pkgkafka.Producer the speaker uses.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

const (
	speakQueueSize = 256
	publishTimeout = 5 * time.Second
)

type utterance struct {
	visitorID     string
	correlationID string
	text          string
}

// Speaker queues spoken acknowledgements on the utterance topic. Speak
// never blocks: a full queue drops the utterance.
type Speaker struct {
	publisher Publisher
	logger    *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan utterance
	done   chan struct{}
}

// NewSpeaker creates a speaker and starts its publishing loop.
func NewSpeaker(publisher Publisher, logger *slog.Logger) *Speaker {
	s := &Speaker{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan utterance, speakQueueSize),
		done:      make(chan struct{}),
	}
	go s.loop()
	return s
}

// Speak enqueues text for visitorID.
func (s *Speaker) Speak(ctx context.Context, visitorID, text string) {
	u := utterance{
		visitorID:     visitorID,
		correlationID: logger.CorrelationIDFromContext(ctx),
		text:          text,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- u:
	default:
		s.logger.WarnContext(ctx, "speech queue full, dropping utterance",
			slog.String("visitor_id", visitorID),
		)
	}
}

func (s *Speaker) loop() {
	defer close(s.done)
	for u := range s.queue {
		s.publish(u)
	}
}

func (s *Speaker) publish(u utterance) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if u.correlationID != "" {
		ctx = logger.WithCorrelationID(ctx, u.correlationID)
	}

	ev, err := pkgkafka.NewEvent(ctx, EventUtteranceRequested, u.visitorID, AggregateTypeVisitor, SourceStorefront, UtteranceData{Text: u.text})
	if err != nil {
		s.logger.Error("create utterance event", slog.String("error", err.Error()))
		return
	}
	if err := s.publisher.Publish(ctx, TopicVoiceUtterances, ev); err != nil {
		s.logger.Warn("publish utterance failed",
			slog.String("visitor_id", u.visitorID),
			slog.String("error", err.Error()),
		)
	}
}

// Close stops accepting utterances and waits for queued ones to be
// published. Later calls to Speak are ignored.
func (s *Speaker) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
}
