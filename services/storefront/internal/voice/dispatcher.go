package voice

import (
	"context"
	"log/slog"
	"sync"

	"github.com/peeyushtyagi09/newShopingAI/pkg/logger"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
)

// Spoken acknowledgements.
const (
	ActivatedText   = "Voice assistant activated. How can I help you?"
	DeactivatedText = "Voice assistant deactivated."
	UnsupportedText = "Browser doesn't support speech recognition."
)

// AddedText is spoken after a voice add.
func AddedText(phrase string) string { return "Added " + phrase + " to your cart" }

// AddingFeedback is shown after a voice add.
func AddingFeedback(phrase string) string { return "Adding " + phrase + " to cart..." }

// Cart is what the dispatcher mutates: the visitor's session.
type Cart interface {
	AddToCart(ctx context.Context, p domain.Product)
	Products() []domain.Product
}

// State is the voice widget's observable state.
type State struct {
	Supported   bool   `json:"supported"`
	IsListening bool   `json:"is_listening"`
	Transcript  string `json:"transcript"`
	Feedback    string `json:"feedback"`
	ShowHelp    bool   `json:"show_help"`
}

// Dispatcher turns one visitor's recognized utterances into cart
// mutations. Without a supported recognizer every operation is inert.
type Dispatcher struct {
	visitorID  string
	cart       Cart
	recognizer Recognizer
	synth      Synthesizer
	logger     *slog.Logger

	mu         sync.Mutex
	listening  bool
	transcript string
	feedback   string
	showHelp   bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewDispatcher creates a dispatcher. recognizer may be nil.
func NewDispatcher(visitorID string, cart Cart, recognizer Recognizer, synth Synthesizer, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		visitorID:  visitorID,
		cart:       cart,
		recognizer: recognizer,
		synth:      synth,
		logger:     log.With(slog.String("visitor_id", visitorID)),
	}
}

func (d *Dispatcher) supported() bool {
	return d.recognizer != nil && d.recognizer.Supported()
}

// State returns a copy of the widget state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return State{
		Supported:   d.supported(),
		IsListening: d.listening,
		Transcript:  d.transcript,
		Feedback:    d.feedback,
		ShowHelp:    d.showHelp,
	}
}

// ToggleListening starts or stops continuous recognition and speaks the
// matching acknowledgement. The transcript is cleared either way.
func (d *Dispatcher) ToggleListening(ctx context.Context) {
	if !d.supported() {
		return
	}

	d.mu.Lock()
	if d.listening {
		d.stopLocked()
		d.mu.Unlock()
		d.speak(ctx, DeactivatedText)
		return
	}

	stream, err := d.recognizer.Start(ctx)
	if err != nil {
		d.mu.Unlock()
		logger.WithContext(ctx, d.logger).Warn("start recognition failed", slog.String("error", err.Error()))
		return
	}
	loopCtx, cancel := context.WithCancel(logger.WithVisitorID(context.Background(), d.visitorID))
	d.listening = true
	d.transcript = ""
	d.cancel = cancel
	d.wg.Add(1)
	go d.consume(loopCtx, stream)
	d.mu.Unlock()

	d.speak(ctx, ActivatedText)
}

// stopLocked ends recognition. Callers hold d.mu.
func (d *Dispatcher) stopLocked() {
	d.recognizer.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.listening = false
	d.transcript = ""
}

func (d *Dispatcher) consume(ctx context.Context, stream <-chan string) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case text, ok := <-stream:
			if !ok {
				return
			}
			d.mu.Lock()
			// A stopped loop may still see what its stream buffered; listening
			// may have resumed since, on a new stream.
			if ctx.Err() != nil {
				d.mu.Unlock()
				return
			}
			d.applyLocked(ctx, text)
		}
	}
}

// HandleUtterance records text as the latest transcript and applies the
// command it contains. Utterances arriving while not listening are
// discarded. A product phrase that matches nothing is silently ignored.
func (d *Dispatcher) HandleUtterance(ctx context.Context, text string) {
	d.mu.Lock()
	d.applyLocked(ctx, text)
}

// applyLocked is HandleUtterance for callers holding d.mu. The lock is
// released before it returns.
func (d *Dispatcher) applyLocked(ctx context.Context, text string) {
	if !d.supported() || !d.listening {
		d.mu.Unlock()
		return
	}
	d.transcript = text

	cmd, ok := Parse(text)
	if !ok {
		d.mu.Unlock()
		commandsTotal.WithLabelValues("none", "ignored").Inc()
		return
	}

	switch cmd.Kind {
	case KindShowHelp:
		d.showHelp = true
	case KindHideHelp:
		d.showHelp = false
	case KindClearFeedback:
		d.feedback = ""
	case KindAdd:
		d.mu.Unlock()
		d.add(ctx, cmd.Phrase)
		return
	}
	d.mu.Unlock()
	commandsTotal.WithLabelValues(string(cmd.Kind), "applied").Inc()
}

func (d *Dispatcher) add(ctx context.Context, phrase string) {
	p, ok := Resolve(d.cart.Products(), phrase)
	if !ok {
		commandsTotal.WithLabelValues(string(KindAdd), "no_match").Inc()
		logger.WithContext(ctx, d.logger).Debug("voice add matched no product", slog.String("phrase", phrase))
		return
	}

	d.mu.Lock()
	d.feedback = AddingFeedback(phrase)
	d.mu.Unlock()

	d.cart.AddToCart(ctx, p)
	d.speak(ctx, AddedText(phrase))
	commandsTotal.WithLabelValues(string(KindAdd), "applied").Inc()
}

// ShowHelp opens the help panel.
func (d *Dispatcher) ShowHelp() { d.setHelp(func(bool) bool { return true }) }

// HideHelp closes the help panel.
func (d *Dispatcher) HideHelp() { d.setHelp(func(bool) bool { return false }) }

// ToggleHelp flips the help panel.
func (d *Dispatcher) ToggleHelp() { d.setHelp(func(v bool) bool { return !v }) }

func (d *Dispatcher) setHelp(f func(bool) bool) {
	if !d.supported() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.showHelp = f(d.showHelp)
}

// ClearFeedback empties the feedback line.
func (d *Dispatcher) ClearFeedback() {
	if !d.supported() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.feedback = ""
}

// Close stops recognition unconditionally, without an acknowledgement, and
// waits for the stream consumer to exit.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.listening {
		d.stopLocked()
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) speak(ctx context.Context, text string) {
	if d.synth != nil {
		d.synth.Speak(ctx, d.visitorID, text)
	}
}

// Pusher is implemented by recognizers fed from outside the process.
type Pusher interface {
	Push(transcript string) bool
}

// Submit feeds a transcript into the recognition stream. It reports false
// when the recognizer is not listening or cannot be fed.
func (d *Dispatcher) Submit(transcript string) bool {
	p, ok := d.recognizer.(Pusher)
	if !ok {
		return false
	}
	return p.Push(transcript)
}
