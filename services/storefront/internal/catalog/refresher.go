package catalog

import (
	"context"
	"log/slog"
	"sync"
)

// Refresher drives background loads of a Holder. At most one load runs at
// a time; requests arriving meanwhile are absorbed by it.
type Refresher struct {
	ctx     context.Context
	holder  *Holder
	fetcher Fetcher
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewRefresher creates a refresher. Loads inherit ctx, so cancelling it
// aborts an in-flight fetch.
func NewRefresher(ctx context.Context, holder *Holder, fetcher Fetcher, logger *slog.Logger) *Refresher {
	return &Refresher{ctx: ctx, holder: holder, fetcher: fetcher, logger: logger}
}

// Start performs the initial load in the background.
func (r *Refresher) Start() { r.spawn(r.holder.Load) }

// Refresh reloads the catalog in the background. It reports false when a
// load is already in flight.
func (r *Refresher) Refresh() bool { return r.spawn(r.holder.Reload) }

func (r *Refresher) spawn(load func(context.Context, Fetcher) error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}
	r.running = true
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
		}()
		if err := load(r.ctx, r.fetcher); err != nil {
			r.logger.Error("catalog load failed", slog.String("error", err.Error()))
			return
		}
		r.logger.Info("catalog loaded")
	}()
	return true
}

// Wait blocks until the in-flight load, if any, has finished.
func (r *Refresher) Wait() { r.wg.Wait() }
