package session

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository/memory"
	redisrepo "github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository/redis"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(t *testing.T) (*Manager, *memory.Backend, *clock) {
	t.Helper()
	backend := memory.NewBackend()
	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(backend, loaded(pBag, pRing), 30*time.Minute, newTestLogger())
	m.now = c.Now
	return m, backend, c
}

func mustGet(t *testing.T, m *Manager, visitorID string) *Engine {
	t.Helper()
	e, err := m.Get(context.Background(), visitorID)
	require.NoError(t, err)
	return e
}

func TestManager_GetReturnsSameEngine(t *testing.T) {
	m, _, _ := newTestManager(t)

	a := mustGet(t, m, "alice")
	assert.Same(t, a, mustGet(t, m, "alice"))
	assert.NotSame(t, a, mustGet(t, m, "bob"))
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "alice", a.VisitorID())
}

func TestManager_VisitorsAreIsolated(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	mustGet(t, m, "alice").AddToCart(ctx, pBag)

	assert.Empty(t, mustGet(t, m, "bob").Snapshot().Cart)
}

func TestManager_EvictIdleRunsHooksAndRestores(t *testing.T) {
	m, _, c := newTestManager(t)
	ctx := context.Background()

	var evicted []string
	m.OnEvict(func(id string) { evicted = append(evicted, id) })

	mustGet(t, m, "alice").AddToCart(ctx, pBag)
	c.Advance(20 * time.Minute)
	mustGet(t, m, "bob")
	c.Advance(15 * time.Minute)

	assert.Equal(t, 1, m.EvictIdle())
	assert.Equal(t, []string{"alice"}, evicted)
	_, ok := m.Peek("alice")
	assert.False(t, ok)
	_, ok = m.Peek("bob")
	assert.True(t, ok)

	// The cart comes back from storage.
	restored := mustGet(t, m, "alice").Snapshot()
	require.Len(t, restored.Cart, 1)
	assert.Equal(t, pBag.ID, restored.Cart[0].ID)
}

func TestManager_GetRefreshesIdleClock(t *testing.T) {
	m, _, c := newTestManager(t)

	mustGet(t, m, "alice")
	c.Advance(25 * time.Minute)
	mustGet(t, m, "alice")
	c.Advance(25 * time.Minute)

	assert.Zero(t, m.EvictIdle())
}

func TestManager_CloseEvictsAll(t *testing.T) {
	m, _, _ := newTestManager(t)

	var mu sync.Mutex
	var evicted []string
	m.OnEvict(func(id string) {
		mu.Lock()
		defer mu.Unlock()
		evicted = append(evicted, id)
	})
	mustGet(t, m, "alice")
	mustGet(t, m, "bob")

	m.Close()

	sort.Strings(evicted)
	assert.Equal(t, []string{"alice", "bob"}, evicted)
	assert.Zero(t, m.Len())
}

func TestManager_RunStopsOnCancel(t *testing.T) {
	m, _, _ := newTestManager(t)
	mustGet(t, m, "alice")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Zero(t, m.Len())
}

// ---------------------------------------------------------------------------
// Restore
// ---------------------------------------------------------------------------

func setupRedisManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	m := NewManager(redisrepo.NewBackend(client, 0), loaded(pBag, pRing), 30*time.Minute, newTestLogger())
	return m, mr
}

const storedAliceCart = `[{"id":9,"title":"Kept","price":2.5,"quantity":3}]`

func TestManager_RestoreSurvivesCancelledRequest(t *testing.T) {
	m, mr := setupRedisManager(t)
	require.NoError(t, mr.Set("storefront:alice:cartItems", storedAliceCart))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := m.Get(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, e.Snapshot().Cart, 1)

	e.AddToCart(context.Background(), pBag)

	stored, err := mr.Get("storefront:alice:cartItems")
	require.NoError(t, err)
	var items []domain.CartItem
	require.NoError(t, json.Unmarshal([]byte(stored), &items))
	require.Len(t, items, 2)
	assert.Equal(t, int64(9), items[0].ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, pBag.ID, items[1].ID)
}

func TestManager_FailedRestoreIsNotCached(t *testing.T) {
	m, mr := setupRedisManager(t)
	require.NoError(t, mr.Set("storefront:alice:cartItems", storedAliceCart))

	mr.SetError("ERR storage offline")
	e, err := m.Get(context.Background(), "alice")
	require.Error(t, err)
	assert.Nil(t, e)
	assert.Zero(t, m.Len())

	// The stored cart is untouched and the next request restores it.
	mr.SetError("")
	stored, err := mr.Get("storefront:alice:cartItems")
	require.NoError(t, err)
	assert.Equal(t, storedAliceCart, stored)

	e = mustGet(t, m, "alice")
	require.Len(t, e.Snapshot().Cart, 1)
	assert.Equal(t, int64(9), e.Snapshot().Cart[0].ID)
}

func TestVisitorCart_AddDroppedWhenRestoreFails(t *testing.T) {
	m, mr := setupRedisManager(t)
	require.NoError(t, mr.Set("storefront:alice:cartItems", storedAliceCart))

	mr.SetError("ERR storage offline")
	m.Cart("alice").AddToCart(context.Background(), pBag)
	mr.SetError("")

	assert.Zero(t, m.Len())
	stored, err := mr.Get("storefront:alice:cartItems")
	require.NoError(t, err)
	assert.Equal(t, storedAliceCart, stored)
}

// gatedBackend blocks reads of one visitor until release is closed.
type gatedBackend struct {
	*memory.Backend
	slow    string
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *gatedBackend) Scope(visitorID string) repository.KeyValueStore {
	store := b.Backend.Scope(visitorID)
	if visitorID != b.slow {
		return store
	}
	return &gatedStore{KeyValueStore: store, b: b}
}

type gatedStore struct {
	repository.KeyValueStore
	b *gatedBackend
}

func (s *gatedStore) Get(ctx context.Context, key string) (string, error) {
	s.b.once.Do(func() { close(s.b.entered) })
	<-s.b.release
	return s.KeyValueStore.Get(ctx, key)
}

func TestManager_SlowRestoreDoesNotBlockOtherVisitors(t *testing.T) {
	b := &gatedBackend{
		Backend: memory.NewBackend(),
		slow:    "slow",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	m := NewManager(b, loaded(pBag), 30*time.Minute, newTestLogger())

	slowDone := make(chan *Engine)
	go func() {
		e, _ := m.Get(context.Background(), "slow")
		slowDone <- e
	}()
	<-b.entered

	fastDone := make(chan struct{})
	go func() {
		defer close(fastDone)
		_, err := m.Get(context.Background(), "fast")
		assert.NoError(t, err)
		m.Peek("slow")
		m.Len()
	}()
	select {
	case <-fastDone:
	case <-time.After(2 * time.Second):
		close(b.release)
		t.Fatal("restore of another visitor blocked the manager")
	}

	close(b.release)
	select {
	case e := <-slowDone:
		require.NotNil(t, e)
		assert.Equal(t, "slow", e.VisitorID())
	case <-time.After(2 * time.Second):
		t.Fatal("slow restore did not finish")
	}
	assert.Equal(t, 2, m.Len())
}

func TestManager_ConcurrentFirstRequestsShareOneEngine(t *testing.T) {
	m, _, _ := newTestManager(t)

	const n = 32
	engines := make([]*Engine, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := m.Get(context.Background(), "alice")
			if err == nil {
				engines[i] = e
			}
		}()
	}
	wg.Wait()

	for _, e := range engines {
		assert.Same(t, engines[0], e)
	}
	assert.Equal(t, 1, m.Len())
}
