package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/peeyushtyagi09/newShopingAI/pkg/database"
	"github.com/peeyushtyagi09/newShopingAI/pkg/health"
	"github.com/peeyushtyagi09/newShopingAI/pkg/httpclient"
	pkgkafka "github.com/peeyushtyagi09/newShopingAI/pkg/kafka"
	"github.com/peeyushtyagi09/newShopingAI/pkg/middleware"
	"github.com/peeyushtyagi09/newShopingAI/pkg/tracing"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/catalog"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/config"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/event"
	handler "github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/handler/http"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository/memory"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository/postgres"
	redisrepo "github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/repository/redis"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/session"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/view"
	"github.com/peeyushtyagi09/newShopingAI/services/storefront/internal/voice"
)

const (
	serviceVersion = "0.1.0"

	// transcriptDedupTTL bounds how long consumed event ids are remembered.
	transcriptDedupTTL = 24 * time.Hour
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	rdb      *redis.Client
	pool     *pgxpool.Pool
	producer *pkgkafka.Producer
	speaker  *event.Speaker

	consumers []*pkgkafka.Consumer
	refresher *catalog.Refresher
	sessions  *session.Manager
	voices    *voice.Registry
	limiter   *middleware.RateLimiter

	httpServer     *http.Server
	tracerShutdown func(context.Context) error

	// background scopes the catalog loads and the session sweeper.
	background context.Context
	stop       context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	backend, err := a.openBackend(ctx)
	if err != nil {
		a.closeStores()
		return nil, err
	}

	a.background, a.stop = context.WithCancel(context.Background())

	// Catalog: one GET through retries and a circuit breaker.
	baseClient := httpclient.New(httpclient.Config{
		Timeout:         cfg.CatalogTimeout,
		MaxRetries:      cfg.CatalogMaxRetries,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 10,
		UserAgent:       "newShopingAI-storefront",
	})
	cbClient := httpclient.NewCircuitBreakerClient(baseClient, httpclient.DefaultCircuitBreakerConfig("catalog"), logger)
	holder := catalog.NewHolder()
	a.refresher = catalog.NewRefresher(a.background, holder, catalog.NewLoader(cbClient, cfg.CatalogURL, logger), logger)

	a.sessions = session.NewManager(backend, holder, cfg.SessionIdleTTL, logger)

	// Spoken acknowledgements go to Kafka when brokers are configured.
	var synth voice.Synthesizer = voice.NewLogSynthesizer(logger)
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		a.speaker = event.NewSpeaker(a.producer, logger)
		synth = a.speaker
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	a.voices = voice.NewRegistry(func(visitorID string) *voice.Dispatcher {
		recognizer := voice.NewStreamRecognizer(cfg.VoiceRecognitionEnabled)
		return voice.NewDispatcher(visitorID, a.sessions.Cart(visitorID), recognizer, synth, logger)
	})
	a.sessions.OnEvict(a.voices.Remove)

	if cfg.VoiceTranscriptConsumerEnabled {
		var store pkgkafka.IdempotencyStore = pkgkafka.NewMemoryIdempotencyStore(transcriptDedupTTL)
		if a.rdb != nil {
			store = pkgkafka.NewRedisIdempotencyStore(a.rdb, "storefront:transcripts:", transcriptDedupTTL)
		}
		h := event.NewTranscriptHandler(a.voices, logger)
		a.consumers = append(a.consumers, event.NewTranscriptConsumer(cfg.KafkaBrokers, h, store, logger))
		logger.Info("transcript consumer initialized", slog.String("topic", event.TopicVoiceTranscripts))
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("storage", backend.Ping)
	healthHandler.Register("catalog", func(context.Context) error {
		if !holder.Ready() {
			return errors.New("catalog not loaded")
		}
		return nil
	})

	renderer, err := view.NewHTMLRenderer()
	if err != nil {
		a.stop()
		a.closeStores()
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	a.limiter = middleware.NewRateLimiter(cfg.VoiceRateLimitRPS, cfg.VoiceRateLimitBurst, logger)
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		Sessions:     a.sessions,
		Voices:       a.voices,
		Catalog:      a.refresher,
		Renderer:     renderer,
		Health:       healthHandler,
		VoiceLimiter: a.limiter,
		CORS:         cors,
		PprofCIDRs:   cfg.PprofAllowedCIDRs,
		Logger:       logger,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// openBackend connects the configured visitor storage.
func (a *App) openBackend(ctx context.Context) (repository.Backend, error) {
	cfg := a.cfg

	switch cfg.StorageBackend {
	case config.BackendRedis:
		redisCfg := database.DefaultRedisConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPass
		redisCfg.DB = cfg.RedisDB

		rdb, err := database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		a.logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		return redisrepo.NewBackend(rdb, cfg.StorageTTL()), nil

	case config.BackendPostgres:
		pgCfg := database.DefaultPostgresConfig()
		pgCfg.Host = cfg.PostgresHost
		pgCfg.Port = cfg.PostgresPort
		pgCfg.User = cfg.PostgresUser
		pgCfg.Password = cfg.PostgresPassword
		pgCfg.DBName = cfg.PostgresDB
		pgCfg.SSLMode = cfg.PostgresSSLMode

		pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool
		a.logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.Int("port", cfg.PostgresPort),
			slog.String("database", cfg.PostgresDB),
		)
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, handler.ServiceName); err != nil {
			a.logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}

		// Run database migrations.
		if err := database.RunMigrations(ctx, pool, postgres.Migrations(), a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		a.logger.Info("database migrations completed")
		return postgres.NewBackend(pool), nil

	default:
		a.logger.Warn("using in-memory visitor storage, carts will not survive a restart")
		return memory.NewBackend(), nil
	}
}

// Run starts the catalog load, the session sweeper, the Kafka consumers and
// the HTTP server, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	a.refresher.Start()
	go a.sessions.Run(a.background)

	// Start Kafka consumers in background goroutines.
	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Sessions, dispatchers and catalog loads
// 3. Kafka consumers, then the speech queue and producer
// 4. Tracer
// 5. Visitor storage
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests.
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.limiter.Stop()

	// 2. Stop background work. Cancelling aborts an in-flight catalog fetch.
	a.stop()
	a.refresher.Wait()
	a.sessions.Close()
	a.voices.Close()

	// 3. Kafka.
	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.speaker != nil {
		a.speaker.Close()
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 4. Flush pending spans.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 5. Storage.
	a.closeStores()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeStores() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
		a.rdb = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}
