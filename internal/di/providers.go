package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"Astrolabe/internal/domain/models"
	"Astrolabe/internal/domain/repository"
	"Astrolabe/internal/handler/api"
	internalrepo "Astrolabe/internal/repository"
	"Astrolabe/internal/service/cache"
	"Astrolabe/internal/service/ratelimit"
	"Astrolabe/internal/services/chart"
	"Astrolabe/internal/services/ephemeris"
	"Astrolabe/internal/usecase"
	pkgch "Astrolabe/pkg/clickhouse"
	"Astrolabe/pkg/config"
	xhttp "Astrolabe/pkg/http"
	pkgkafka "Astrolabe/pkg/kafka"
	applogger "Astrolabe/pkg/logger"
	"Astrolabe/pkg/metrics"
	"Astrolabe/pkg/postgres"
	"Astrolabe/pkg/server"
)

const initTimeout = 10 * time.Second

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		MaxBackups: cfg.Log.MaxBackups,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry every collector registers on.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideCatalog applies configured orb overrides to the default catalog.
func ProvideCatalog(cfg *config.Config) (*chart.Catalog, error) {
	if len(cfg.Engine.Orbs) == 0 {
		return chart.DefaultCatalog(), nil
	}
	orbs := make(map[models.AspectType]float64, len(cfg.Engine.Orbs))
	for k, v := range cfg.Engine.Orbs {
		orbs[models.AspectType(k)] = v
	}
	cat, err := chart.DefaultCatalog().WithOrbs(orbs)
	if err != nil {
		return nil, fmt.Errorf("engine orbs: %w", err)
	}
	return cat, nil
}

func ProvideAssembler(cfg *config.Config, cat *chart.Catalog) *chart.Assembler {
	return chart.NewAssembler(
		chart.WithCatalog(cat),
		chart.WithStrictHouses(cfg.Engine.StrictHouses),
	)
}

func ProvideScorer(cfg *config.Config, cat *chart.Catalog) *chart.Scorer {
	return chart.NewScorer(
		chart.WithScorerCatalog(cat),
		chart.WithSaturation(cfg.Engine.Saturation),
	)
}

// ProvideEphemerisProvider creates the HTTP client for the ephemeris service.
func ProvideEphemerisProvider(cfg *config.Config, l *applogger.Logger) *ephemeris.HTTPProvider {
	return ephemeris.NewHTTPProvider(
		cfg.Ephemeris.BaseURL,
		cfg.Ephemeris.Timeout,
		l,
		ephemeris.WithRetry(cfg.Ephemeris.RetryMax+1, cfg.Ephemeris.BackoffMin, cfg.Ephemeris.BackoffMax),
	)
}

// ProvideChartStore opens the configured storage backend and creates its tables.
func ProvideChartStore(cfg *config.Config, l *applogger.Logger) (repository.ChartStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	var store repository.ChartStore
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.Postgres.DSN,
			postgres.WithPool(cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns, cfg.Postgres.ConnMaxLifetime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		store = internalrepo.NewPostgresChartStore(db, l)
	case "clickhouse":
		client, err := pkgch.NewClient(ctx,
			pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		store = internalrepo.NewClickHouseChartStore(client, l)
	default:
		store = internalrepo.NewMemoryChartStore()
	}

	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("%s schema: %w", cfg.Storage.Backend, err)
	}
	l.Info("chart store ready", applogger.String("backend", cfg.Storage.Backend))
	cleanup := func() {
		if err := store.Close(); err != nil {
			l.Warn("chart store close error", applogger.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideBytesCache picks Redis when enabled, otherwise an in-process TTL cache.
func ProvideBytesCache(cfg *config.Config, l *applogger.Logger) (cache.BytesCache, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewTTLCache(), func() {}, nil
	}
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	cleanup := func() {
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}
	return rc, cleanup, nil
}

func ProvideChartCache(store cache.BytesCache, cfg *config.Config, l *applogger.Logger) repository.ChartCache {
	return cache.NewChartCache(store, cfg.Cache.TTL, l)
}

// ProvideEventPublisher creates the Kafka publisher, or a no-op one when
// Kafka is disabled.
func ProvideEventPublisher(cfg *config.Config, reg *prometheus.Registry) (repository.EventPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopPublisher{}, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithProducerMetrics(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaPublisher(producer, cfg.Kafka.EventsTopic)
	return pub, func() { _ = pub.Close() }, nil
}

// ProvideKafkaConsumer creates the ephemeris consumer. It returns nil when
// Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerMetrics(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideEphemerisHandler creates the handler for the ephemeris topic.
func ProvideEphemerisHandler(cfg *config.Config, charts *usecase.ChartBuilder, l *applogger.Logger) *usecase.EphemerisHandler {
	return usecase.NewEphemerisHandler(cfg.Kafka.EphemerisTopic, charts, l)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

func ProvideTransitHandler(cfg *config.Config, l *applogger.Logger, tracker *usecase.TransitTracker, charts *usecase.ChartBuilder) *api.TransitHandler {
	return api.NewTransitHandler(l, tracker, charts, cfg.Transit.Interval, cfg.Transit.MaxDuration)
}

// ProvideHTTPServer builds the Echo server with every route registered.
func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	reg *prometheus.Registry,
	limiter *ratelimit.Limiter,
	charts *api.ChartEchoHandler,
	transits *api.TransitHandler,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(true, cfg.Server.CORSOrigins...),
	}
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	opts = append(opts, xhttp.WithMetrics(metricsPath, reg, reg))
	if limiter != nil {
		opts = append(opts, xhttp.WithMiddleware(limiter.Middleware(l)))
	}
	return xhttp.NewServer(l, []xhttp.Handler{charts, transits}, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	handler *usecase.EphemerisHandler,
	limiter *ratelimit.Limiter,
	bytes cache.BytesCache,
) *server.App {
	app := server.New(cfg, l, srv)
	if consumer != nil {
		app.WithConsumer(consumer, handler)
	}
	if limiter != nil {
		app.WithJanitor("rate_limit", limiter.Cleanup)
	}
	if ttl, ok := bytes.(*cache.TTLCache); ok {
		app.WithJanitor("chart_cache", ttl.Sweep)
	}
	return app
}
