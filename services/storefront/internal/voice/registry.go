package voice

import "sync"

// Factory builds the dispatcher of a visitor.
type Factory func(visitorID string) *Dispatcher

// Registry holds one dispatcher per visitor.
type Registry struct {
	factory Factory

	mu          sync.Mutex
	dispatchers map[string]*Dispatcher
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory) *Registry {
	return &Registry{factory: factory, dispatchers: make(map[string]*Dispatcher)}
}

// Get returns the dispatcher of visitorID, creating it on first use.
func (r *Registry) Get(visitorID string) *Dispatcher {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dispatchers[visitorID]
	if !ok {
		d = r.factory(visitorID)
		r.dispatchers[visitorID] = d
	}
	return d
}

// Peek returns the dispatcher of visitorID if one exists.
func (r *Registry) Peek(visitorID string) (*Dispatcher, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dispatchers[visitorID]
	return d, ok
}

// Remove tears down and forgets the dispatcher of visitorID.
func (r *Registry) Remove(visitorID string) {
	r.mu.Lock()
	d, ok := r.dispatchers[visitorID]
	delete(r.dispatchers, visitorID)
	r.mu.Unlock()

	if ok {
		d.Close()
	}
}

// Close tears down every dispatcher.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.dispatchers
	r.dispatchers = make(map[string]*Dispatcher)
	r.mu.Unlock()

	for _, d := range all {
		d.Close()
	}
}

// Len returns the number of live dispatchers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dispatchers)
}

// Submit feeds a transcript to an existing dispatcher. Visitors without a
// dispatcher are not listening, so the transcript is dropped.
func (r *Registry) Submit(visitorID, transcript string) bool {
	d, ok := r.Peek(visitorID)
	if !ok {
		return false
	}
	return d.Submit(transcript)
}
