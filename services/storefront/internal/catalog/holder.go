package catalog

import (
	"context"
	"sync"
)

// State is a point-in-time view of the shared catalog.
type State struct {
	Loading bool
	Err     error
	Catalog *Catalog
}

// Holder owns the process-wide catalog outcome. It starts out loading.
type Holder struct {
	loadMu sync.Mutex

	mu      sync.RWMutex
	loading bool
	err     error
	catalog *Catalog
	done    chan struct{}
}

// NewHolder returns a holder in the loading state.
func NewHolder() *Holder {
	return &Holder{loading: true, done: make(chan struct{})}
}

// Load runs f once and records its outcome. Loading is false afterwards
// whatever the outcome.
func (h *Holder) Load(ctx context.Context, f Fetcher) error {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	c, err := f.Load(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.loading = false
	h.err = err
	if err == nil {
		h.catalog = c
	}
	select {
	case <-h.done:
	default:
		close(h.done)
	}
	return err
}

// Reload resets the holder to loading and fetches again. The previous
// catalog stays readable until the new outcome lands.
func (h *Holder) Reload(ctx context.Context, f Fetcher) error {
	h.mu.Lock()
	h.loading = true
	h.err = nil
	select {
	case <-h.done:
		h.done = make(chan struct{})
	default:
	}
	h.mu.Unlock()

	return h.Load(ctx, f)
}

// State returns the current outcome.
func (h *Holder) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return State{Loading: h.loading, Err: h.err, Catalog: h.catalog}
}

// Ready reports whether a catalog is available.
func (h *Holder) Ready() bool {
	s := h.State()
	return !s.Loading && s.Err == nil && s.Catalog != nil
}

// Done is closed when the current load resolves.
func (h *Holder) Done() <-chan struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.done
}
