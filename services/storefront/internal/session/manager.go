package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository"
)

// restoreTimeout bounds loading a visitor's collections from storage.
const restoreTimeout = 5 * time.Second

// EvictHook runs after a visitor's engine leaves memory.
type EvictHook func(visitorID string)

type entry struct {
	engine   *Engine
	lastUsed time.Time
}

// Manager maps visitor ids to engines, creating them on first use and
// dropping them after idleTTL without access. At most one engine per
// visitor exists in a process.
type Manager struct {
	backend repository.Backend
	catalog CatalogSource
	idleTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time

	restores singleflight.Group

	mu      sync.Mutex
	entries map[string]*entry
	hooks   []EvictHook
}

// NewManager creates an empty manager.
func NewManager(backend repository.Backend, source CatalogSource, idleTTL time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		backend: backend,
		catalog: source,
		idleTTL: idleTTL,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// OnEvict registers a hook run for every evicted visitor.
func (m *Manager) OnEvict(hook EvictHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// Get returns the engine of visitorID, restoring it from storage when it is
// not in memory. Concurrent first requests of one visitor share a single
// restore, and restores of different visitors do not block each other. A
// failed restore is returned and nothing is cached, so the next request
// retries instead of serving an empty cart over the stored one.
func (m *Manager) Get(ctx context.Context, visitorID string) (*Engine, error) {
	if e, ok := m.touch(visitorID); ok {
		return e, nil
	}

	v, err, _ := m.restores.Do(visitorID, func() (any, error) {
		if e, ok := m.touch(visitorID); ok {
			return e, nil
		}

		// The restore outlives the request that triggered it: the engine is
		// shared by every later request of the visitor.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
		defer cancel()

		engine, err := NewEngine(rctx, visitorID, m.backend.Scope(visitorID), m.catalog, m.logger)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.entries[visitorID] = &entry{engine: engine, lastUsed: m.now()}
		activeSessions.Set(float64(len(m.entries)))
		m.mu.Unlock()

		m.logger.DebugContext(ctx, "session created", slog.String("visitor_id", visitorID))
		return engine, nil
	})
	if err != nil {
		m.logger.WarnContext(ctx, "session restore failed",
			slog.String("visitor_id", visitorID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return v.(*Engine), nil
}

func (m *Manager) touch(visitorID string) (*Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[visitorID]
	if !ok {
		return nil, false
	}
	e.lastUsed = m.now()
	return e.engine, true
}

// Peek returns the in-memory engine of visitorID without creating one.
func (m *Manager) Peek(visitorID string) (*Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[visitorID]
	if !ok {
		return nil, false
	}
	return e.engine, true
}

// Len returns the number of engines in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// EvictIdle drops engines unused for longer than the idle TTL and returns
// how many were dropped.
func (m *Manager) EvictIdle() int {
	now := m.now()

	m.mu.Lock()
	var evicted []string
	for id, e := range m.entries {
		if now.Sub(e.lastUsed) > m.idleTTL {
			delete(m.entries, id)
			evicted = append(evicted, id)
		}
	}
	hooks := append([]EvictHook(nil), m.hooks...)
	activeSessions.Set(float64(len(m.entries)))
	m.mu.Unlock()

	m.runHooks(hooks, evicted)
	if len(evicted) > 0 {
		m.logger.Debug("idle sessions evicted", slog.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run evicts idle engines periodically until ctx is cancelled, then drops
// all remaining engines.
func (m *Manager) Run(ctx context.Context) {
	interval := m.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Close()
			return
		case <-ticker.C:
			m.EvictIdle()
		}
	}
}

// Close drops every engine and runs the evict hooks for each.
func (m *Manager) Close() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	m.entries = make(map[string]*entry)
	hooks := append([]EvictHook(nil), m.hooks...)
	activeSessions.Set(0)
	m.mu.Unlock()

	m.runHooks(hooks, ids)
}

func (m *Manager) runHooks(hooks []EvictHook, ids []string) {
	for _, id := range ids {
		for _, h := range hooks {
			h(id)
		}
	}
}
