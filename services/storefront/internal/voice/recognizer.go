package voice

import (
	"context"
	"errors"
	"sync"
)

// ErrUnsupported is returned by recognizers that cannot listen.
var ErrUnsupported = errors.New("speech recognition is not supported")

// Recognizer is the speech recognition capability of the host. Start
// begins continuous recognition and returns a channel of transcripts that
// is closed by Stop.
type Recognizer interface {
	Supported() bool
	Start(ctx context.Context) (<-chan string, error)
	Stop()
}

// streamBuffer bounds transcripts queued for one visitor.
const streamBuffer = 16

// StreamRecognizer turns pushed transcripts into a recognition stream.
// Transcripts pushed while not listening are dropped.
type StreamRecognizer struct {
	supported bool

	mu sync.Mutex
	ch chan string
}

// NewStreamRecognizer creates a recognizer. A disabled recognizer reports
// itself unsupported.
func NewStreamRecognizer(enabled bool) *StreamRecognizer {
	return &StreamRecognizer{supported: enabled}
}

func (r *StreamRecognizer) Supported() bool { return r.supported }

// Start opens a new stream. Starting an already listening recognizer
// returns the current stream.
func (r *StreamRecognizer) Start(context.Context) (<-chan string, error) {
	if !r.supported {
		return nil, ErrUnsupported
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch == nil {
		r.ch = make(chan string, streamBuffer)
	}
	return r.ch, nil
}

// Stop closes the current stream. Queued transcripts are still delivered.
func (r *StreamRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch != nil {
		close(r.ch)
		r.ch = nil
	}
}

// Push queues a transcript. It reports false when the recognizer is not
// listening or the queue is full.
func (r *StreamRecognizer) Push(transcript string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch == nil {
		return false
	}
	select {
	case r.ch <- transcript:
		return true
	default:
		return false
	}
}

// Listening reports whether a stream is open.
func (r *StreamRecognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ch != nil
}
