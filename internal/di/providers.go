package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"BodyMetrics/internal/domain/models"
	"BodyMetrics/internal/domain/repository"
	"BodyMetrics/internal/handler/api"
	internalrepo "BodyMetrics/internal/repository"
	"BodyMetrics/internal/usecase"
	"BodyMetrics/pkg/cache"
	pkgch "BodyMetrics/pkg/clickhouse"
	"BodyMetrics/pkg/config"
	xhttp "BodyMetrics/pkg/http"
	pkgkafka "BodyMetrics/pkg/kafka"
	applogger "BodyMetrics/pkg/logger"
	"BodyMetrics/pkg/metrics"
	"BodyMetrics/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
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

// ProvideCache creates the result cache selected by cache.type.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	c := cfg.Cache
	switch c.Type {
	case "none":
		return cache.NewNoopCache(), nil
	case "memory":
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(c.MaxEntries),
			cache.WithMemoryDefaultTTL(c.TTL),
		), nil
	case "redis", "layered":
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(c.Redis.Addr),
			cache.WithRedisPassword(c.Redis.Password),
			cache.WithRedisDB(c.Redis.DB),
			cache.WithRedisPool(c.Redis.PoolSize, 0, 0),
			cache.WithRedisPrefix(c.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if c.Type == "redis" {
			return rc, nil
		}
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(c.MaxEntries),
			cache.WithLayeredMemoryTTL(c.TTL),
		), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", c.Type)
	}
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithAuth(cfg.ClickHouse.Database, cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideResultStore returns ClickHouse history when enabled and in-process history otherwise.
func ProvideResultStore(client *pkgch.Client) (repository.ResultStore, error) {
	if client == nil {
		return internalrepo.NewMemoryResultStore(0), nil
	}
	store := internalrepo.NewClickHouseResultStore(client.DB(), client.Database())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerMetrics(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideResultPublisher publishes results to Kafka, or drops them when Kafka is disabled.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ResultPublisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaResultPublisher(producer, cfg.Kafka.ResultsTopic)
}

// ProvideKafkaConsumer creates the measurements consumer, or nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger, reg *prometheus.Registry) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
		pkgkafka.WithConsumerMetrics(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.MaxPayloadHook(cfg.Kafka.Consumer.MaxPayload),
		pkgkafka.LoggingHook(l),
	))
	return consumer, nil
}

// ProvideAssessmentService wires the core assembler with its infrastructure.
func ProvideAssessmentService(
	cfg *config.Config,
	c cache.Service,
	store repository.ResultStore,
	pub repository.ResultPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) (*usecase.AssessmentService, error) {
	asm, err := usecase.NewResultAssembler()
	if err != nil {
		return nil, fmt.Errorf("threshold tables: %w", err)
	}
	return usecase.NewAssessmentService(asm, c, store, pub, m, l, usecase.AssessmentConfig{
		DefaultUnit: models.DisplayUnit(cfg.Calculator.DefaultUnit),
		DefaultMode: models.Mode(cfg.Calculator.DefaultMode),
		CacheTTL:    cfg.Cache.TTL,
	}), nil
}

// ProvideMeasurementsHandler creates the Kafka handler for the measurements topic.
func ProvideMeasurementsHandler(cfg *config.Config, svc *usecase.AssessmentService, m repository.Metrics, l *applogger.Logger) *usecase.KafkaMeasurementsHandler {
	return usecase.NewKafkaMeasurementsHandler(cfg.Kafka.MeasurementsTopic, svc, m, l)
}

// ProvideHTTPHandlers collects the route groups served by the HTTP server.
func ProvideHTTPHandlers(cfg *config.Config, l *applogger.Logger, svc *usecase.AssessmentService) []xhttp.Handler {
	handlers := []xhttp.Handler{api.NewBodyMetricsHandler(l, svc)}
	if cfg.Live.Enabled {
		handlers = append(handlers, api.NewLiveHandler(l, svc, api.LiveConfig{
			Burst:        cfg.Live.Burst,
			MaxRPS:       cfg.Live.MaxRPS,
			ReadLimit:    cfg.Live.ReadLimit,
			PingInterval: cfg.Live.PingInterval,
			WriteTimeout: cfg.Live.WriteTimeout,
			AllowOrigins: cfg.Server.AllowOrigins,
		}))
	}
	return handlers
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, reg *prometheus.Registry, store repository.ResultStore, c cache.Service, handlers []xhttp.Handler) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
		xhttp.WithCORS(cfg.Server.AllowOrigins...),
		xhttp.WithHealthCheck("result_store", store),
	}
	if hc, ok := c.(xhttp.HealthChecker); ok {
		opts = append(opts, xhttp.WithHealthCheck("cache", hc))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, reg, reg))
	} else {
		opts = append(opts, xhttp.WithMetrics("", nil, nil))
	}
	return xhttp.NewServer(handlers, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaMeasurementsHandler,
	producer *pkgkafka.Producer,
	store repository.ResultStore,
	pub repository.ResultPublisher,
	c cache.Service,
) *server.App {
	if cfg.Logging.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval: cfg.Logging.Collector.FlushInterval,
			Topic:        cfg.Logging.Collector.Topic,
			Publisher:    producer,
		})
	}
	var handler pkgkafka.MessageHandler
	if consumer != nil {
		handler = kh
	}
	return server.New(cfg, l, srv, consumer, handler, pub, store, c)
}
