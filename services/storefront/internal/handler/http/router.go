package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/peeyushtyagi09/newShopingAI/pkg/health"
	"github.com/peeyushtyagi09/newShopingAI/pkg/middleware"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/view"
)

// ServiceName labels metrics and traces of this service.
const ServiceName = "storefront"

// RouterConfig carries the collaborators of the storefront router.
type RouterConfig struct {
	Sessions Sessions
	Voices   Voices
	Catalog  CatalogRefresher
	Renderer *view.HTMLRenderer
	Health   *health.Handler
	// VoiceLimiter throttles transcript submissions. Nil disables it.
	VoiceLimiter *middleware.RateLimiter
	CORS         middleware.CORSConfig
	PprofCIDRs   []string
	Logger       *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	logger := cfg.Logger

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	api := NewStorefrontHandler(cfg.Sessions, cfg.Voices, cfg.Catalog, logger)
	ui := NewUIHandler(api, cfg.Renderer, logger)

	limit := func(h http.HandlerFunc) http.Handler {
		if cfg.VoiceLimiter == nil {
			return h
		}
		return cfg.VoiceLimiter.Handler(h)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Visitor())
		r.Use(middleware.RequestLogger(logger))
		r.Use(middleware.NoStore)

		// JSON API
		r.Route("/api/v1", func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Get("/storefront", api.GetStorefront)
			r.Get("/products", api.ListProducts)

			r.Post("/cart/items", api.AddCartItem)
			r.Put("/cart/items/{id}", api.UpdateCartItem)
			r.Delete("/cart/items/{id}", api.RemoveCartItem)

			r.Post("/wishlist/toggle", api.ToggleWishlist)
			r.Put("/category", api.SetCategory)
			r.Post("/panels/{panel}/{action}", api.Panel)

			r.Post("/checkout", api.Checkout)
			r.Post("/checkout/auth", api.SubmitAuth)
			r.Post("/checkout/auth/close", api.CloseAuth)
			r.Post("/checkout/payment", api.SubmitPayment)
			r.Post("/checkout/payment/close", api.ClosePayment)
			r.Post("/checkout/notice/dismiss", api.DismissNotice)

			r.Get("/voice", api.GetVoice)
			r.Post("/voice/toggle", api.ToggleVoice)
			r.Method(http.MethodPost, "/voice/utterances", limit(api.SubmitUtterance))
			r.Post("/voice/help/{action}", api.VoiceHelp)
			r.Post("/voice/feedback/clear", api.ClearVoiceFeedback)

			r.Post("/catalog/reload", api.ReloadCatalog)
		})

		// Server-rendered storefront
		r.Get("/", ui.Page)
		r.Get("/category/{name}", ui.SlideCategory)
		r.Route("/ui", func(r chi.Router) {
			r.Post("/cart/add", ui.AddToCart)
			r.Post("/cart/quantity", ui.UpdateQuantity)
			r.Post("/cart/remove", ui.RemoveItem)
			r.Post("/wishlist/toggle", ui.ToggleWishlist)
			r.Post("/category", ui.SelectCategory)
			r.Post("/cart/open", ui.Panel("cart", "open"))
			r.Post("/cart/close", ui.Panel("cart", "close"))
			r.Post("/wishlist/open", ui.Panel("wishlist", "open"))
			r.Post("/wishlist/close", ui.Panel("wishlist", "close"))

			r.Post("/checkout", ui.Checkout)
			r.Post("/checkout/auth", ui.SubmitAuth)
			r.Post("/checkout/auth/close", ui.CloseAuth)
			r.Post("/checkout/payment", ui.SubmitPayment)
			r.Post("/checkout/payment/close", ui.ClosePayment)
			r.Post("/notice/dismiss", ui.DismissNotice)

			r.Post("/voice/toggle", ui.ToggleVoice)
			r.Method(http.MethodPost, "/voice/utterance", limit(ui.SubmitUtterance))
			r.Post("/voice/help/toggle", ui.ToggleVoiceHelp)
			r.Post("/voice/feedback/clear", ui.ClearVoiceFeedback)

			r.Post("/catalog/reload", ui.ReloadCatalog)
		})
	})

	return r
}
