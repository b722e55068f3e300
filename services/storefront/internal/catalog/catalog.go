package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/peeyushtyagi09/newShopingAI/pkg/httpclient"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/domain"
)

// DefaultURL is the public fake-store product listing.
const DefaultURL = "https://fakestoreapi.com/products"

// FailureMessage is shown to visitors when the catalog could not be fetched.
const FailureMessage = "Failed to fetch products. Please try again later."

// ErrFetchFailed wraps every catalog fetch failure.
var ErrFetchFailed = errors.New("fetch products failed")

var (
	loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_loads_total",
			Help: "Catalog fetches by outcome",
		},
		[]string{"outcome"},
	)
	loadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_catalog_load_duration_seconds",
			Help:    "Duration of catalog fetches",
			Buckets: prometheus.DefBuckets,
		},
	)
	catalogProducts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_catalog_products",
			Help: "Number of products in the loaded catalog",
		},
	)
)

func init() {
	prometheus.MustRegister(loadsTotal, loadDuration, catalogProducts)
}

// Catalog is an immutable product list with its derived categories.
type Catalog struct {
	Products   []domain.Product
	Categories []string
}

// New derives the category list of products.
func New(products []domain.Product) *Catalog {
	if products == nil {
		products = []domain.Product{}
	}
	return &Catalog{Products: products, Categories: domain.Categories(products)}
}

// JSONGetter fetches and decodes a JSON document. It is satisfied by
// *httpclient.CircuitBreakerClient.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, dst any) error
}

// Fetcher produces a catalog.
type Fetcher interface {
	Load(ctx context.Context) (*Catalog, error)
}

// Loader fetches the product list from a remote endpoint.
type Loader struct {
	client JSONGetter
	url    string
	logger *slog.Logger
}

// NewLoader creates a loader for url.
func NewLoader(client JSONGetter, url string, logger *slog.Logger) *Loader {
	if url == "" {
		url = DefaultURL
	}
	return &Loader{client: client, url: url, logger: logger}
}

// Load issues one GET. Network failures, non-2xx answers, malformed
// bodies and an open breaker all yield an error wrapping ErrFetchFailed.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	start := time.Now()
	var products []domain.Product
	err := l.client.GetJSON(ctx, l.url, &products)
	loadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		loadsTotal.WithLabelValues("failure").Inc()
		l.logger.ErrorContext(ctx, "catalog fetch failed",
			slog.String("url", l.url),
			slog.Bool("circuit_open", httpclient.IsCircuitOpen(err)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	loadsTotal.WithLabelValues("success").Inc()
	catalogProducts.Set(float64(len(products)))
	c := New(products)
	l.logger.InfoContext(ctx, "catalog loaded",
		slog.Int("products", len(c.Products)),
		slog.Int("categories", len(c.Categories)-1),
	)
	return c, nil
}
