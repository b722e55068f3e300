package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peeyushtyagi09/newShopingAI/pkg/httpclient"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
)

const productsJSON = `[
	{"id":1,"title":"Fjallraven Backpack","price":109.95,"description":"d","category":"men's clothing","image":"https://img/1.png","rating":{"rate":3.9,"count":120}},
	{"id":2,"title":"Gold Ring","price":168,"description":"d","category":"jewelery","image":"https://img/2.png","rating":{"rate":3.9,"count":70}},
	{"id":3,"title":"Cotton Jacket","price":55.99,"description":"d","category":"men's clothing","image":"https://img/3.png","rating":{"rate":4.7,"count":500}}
]`

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestLoader(t *testing.T, url string) *Loader {
	t.Helper()
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	client := httpclient.NewCircuitBreakerClient(httpclient.New(cfg), httpclient.DefaultCircuitBreakerConfig("catalog-test"), newTestLogger())
	return NewLoader(client, url, newTestLogger())
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

func TestLoader_Success(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productsJSON))
	}))
	defer srv.Close()

	c, err := newTestLoader(t, srv.URL).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, c.Products, 3)
	assert.Equal(t, domain.Rating{Rate: 3.9, Count: 120}, c.Products[0].Rating)
	assert.Equal(t, []string{"all", "men's clothing", "jewelery"}, c.Categories)
	assert.EqualValues(t, 1, hits.Load())
}

func TestLoader_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"not found", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) }},
		{"malformed json", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`[{"id":`)) }},
		{"not an array", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"id":1}`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c, err := newTestLoader(t, srv.URL).Load(context.Background())

			assert.Nil(t, c)
			assert.ErrorIs(t, err, ErrFetchFailed)
		})
	}
}

func TestLoader_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestLoader(t, url).Load(context.Background())

	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestLoader_NoRetryByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestLoader(t, srv.URL).Load(context.Background())

	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestNewLoader_DefaultURL(t *testing.T) {
	assert.Equal(t, DefaultURL, NewLoader(nil, "", newTestLogger()).url)
}

func TestNew_NilProducts(t *testing.T) {
	c := New(nil)
	assert.NotNil(t, c.Products)
	assert.Equal(t, []string{"all"}, c.Categories)
}

// ---------------------------------------------------------------------------
// Holder
// ---------------------------------------------------------------------------

type fetcherFunc func(ctx context.Context) (*Catalog, error)

func (f fetcherFunc) Load(ctx context.Context) (*Catalog, error) { return f(ctx) }

func TestHolder_StartsLoading(t *testing.T) {
	h := NewHolder()

	s := h.State()
	assert.True(t, s.Loading)
	assert.Nil(t, s.Catalog)
	assert.False(t, h.Ready())

	select {
	case <-h.Done():
		t.Fatal("done closed before load")
	default:
	}
}

func TestHolder_LoadSuccess(t *testing.T) {
	h := NewHolder()
	want := New([]domain.Product{{ID: 1, Category: "x"}})

	require.NoError(t, h.Load(context.Background(), fetcherFunc(func(context.Context) (*Catalog, error) { return want, nil })))

	s := h.State()
	assert.False(t, s.Loading)
	assert.NoError(t, s.Err)
	assert.Same(t, want, s.Catalog)
	assert.True(t, h.Ready())

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("done not closed")
	}
}

func TestHolder_LoadFailure(t *testing.T) {
	h := NewHolder()
	boom := errors.New("boom")

	err := h.Load(context.Background(), fetcherFunc(func(context.Context) (*Catalog, error) { return nil, boom }))

	assert.ErrorIs(t, err, boom)
	s := h.State()
	assert.False(t, s.Loading)
	assert.ErrorIs(t, s.Err, boom)
	assert.False(t, h.Ready())
	<-h.Done()
}

func TestHolder_ReloadRecoversFromFailure(t *testing.T) {
	h := NewHolder()
	var calls int
	f := fetcherFunc(func(context.Context) (*Catalog, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("down")
		}
		return New([]domain.Product{{ID: 1, Category: "x"}}), nil
	})

	require.Error(t, h.Load(context.Background(), f))
	firstDone := h.Done()

	require.NoError(t, h.Reload(context.Background(), f))

	assert.True(t, h.Ready())
	assert.Equal(t, 2, calls)
	<-firstDone
	<-h.Done()
}

func TestHolder_DoneWaitsForLoad(t *testing.T) {
	h := NewHolder()
	release := make(chan struct{})
	go func() {
		_ = h.Load(context.Background(), fetcherFunc(func(context.Context) (*Catalog, error) {
			<-release
			return New(nil), nil
		}))
	}()

	done := h.Done()
	assert.True(t, h.State().Loading)
	close(release)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done not closed")
	}
	assert.False(t, h.State().Loading)
}

// ---------------------------------------------------------------------------
// Refresher
// ---------------------------------------------------------------------------

func TestRefresher_StartAndRefresh(t *testing.T) {
	var calls atomic.Int32
	fail := true
	f := fetcherFunc(func(context.Context) (*Catalog, error) {
		calls.Add(1)
		if fail {
			return nil, ErrFetchFailed
		}
		return New([]domain.Product{{ID: 1, Title: "Gold Ring", Category: "jewelery"}}), nil
	})
	h := NewHolder()
	r := NewRefresher(context.Background(), h, f, newTestLogger())

	r.Start()
	r.Wait()
	assert.False(t, h.Ready())
	assert.ErrorIs(t, h.State().Err, ErrFetchFailed)

	fail = false
	require.True(t, r.Refresh())
	r.Wait()
	assert.True(t, h.Ready())
	assert.EqualValues(t, 2, calls.Load())
}

func TestRefresher_CoalescesOverlappingRefreshes(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	f := fetcherFunc(func(context.Context) (*Catalog, error) {
		calls.Add(1)
		<-release
		return New(nil), nil
	})
	r := NewRefresher(context.Background(), NewHolder(), f, newTestLogger())

	require.True(t, r.Refresh())
	assert.False(t, r.Refresh())
	close(release)
	r.Wait()

	assert.EqualValues(t, 1, calls.Load())
	assert.True(t, r.Refresh())
	r.Wait()
}
