package di

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"BodyMetrics/internal/repository"
	"BodyMetrics/pkg/cache"
	"BodyMetrics/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("logging:\n  level: error\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return cfg
}

func TestInitializeAppWithBackendsDisabled(t *testing.T) {
	cfg := testConfig(t)
	app, err := InitializeApp(cfg)
	if err != nil {
		t.Fatalf("InitializeApp: %v", err)
	}
	if app == nil {
		t.Fatalf("nil app")
	}
}

func TestProvideCache(t *testing.T) {
	cfg := testConfig(t)

	cfg.Cache.Type = "none"
	c, err := ProvideCache(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.NoopCache); !ok {
		t.Fatalf("expected noop cache, got %T", c)
	}

	cfg.Cache.Type = "memory"
	c, err = ProvideCache(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok := c.(*cache.MemoryCache); !ok {
		t.Fatalf("expected memory cache, got %T", c)
	}

	cfg.Cache.Type = "disk"
	if _, err := ProvideCache(cfg); err == nil {
		t.Fatalf("expected error for unknown cache type")
	}
}

func TestDisabledBackendsFallBack(t *testing.T) {
	cfg := testConfig(t)

	client, err := ProvideClickHouseClient(cfg)
	if err != nil || client != nil {
		t.Fatalf("disabled clickhouse should give nil client, got %v %v", client, err)
	}
	store, err := ProvideResultStore(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*repository.MemoryResultStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	reg := ProvideRegistry()
	producer, err := ProvideKafkaProducer(cfg, reg)
	if err != nil || producer != nil {
		t.Fatalf("disabled kafka should give nil producer")
	}
	if _, ok := ProvideResultPublisher(nil, cfg).(repository.NoopPublisher); !ok {
		t.Fatalf("expected noop publisher")
	}
	consumer, err := ProvideKafkaConsumer(cfg, nil, reg)
	if err != nil || consumer != nil {
		t.Fatalf("disabled kafka should give nil consumer")
	}
}

func TestProvideHTTPHandlersLiveToggle(t *testing.T) {
	cfg := testConfig(t)
	l, err := ProvideLogger(cfg)
	if err != nil {
		t.Fatal(err)
	}
	svc, err := ProvideAssessmentService(cfg, cache.NewNoopCache(), repository.NewMemoryResultStore(0),
		repository.NoopPublisher{}, ProvideMetrics(ProvideRegistry()), l)
	if err != nil {
		t.Fatal(err)
	}

	cfg.Live.Enabled = false
	if n := len(ProvideHTTPHandlers(cfg, l, svc)); n != 1 {
		t.Fatalf("expected 1 handler, got %d", n)
	}
	cfg.Live.Enabled = true
	if n := len(ProvideHTTPHandlers(cfg, l, svc)); n != 2 {
		t.Fatalf("expected 2 handlers, got %d", n)
	}
}

func TestProvideMetricsRegisters(t *testing.T) {
	reg := ProvideRegistry()
	m := ProvideMetrics(reg)
	m.RecordError("store")
	if n := testutil.CollectAndCount(reg, "bodymetrics_errors_total"); n != 1 {
		t.Fatalf("expected errors metric registered, got %d", n)
	}
}

func TestProvideHTTPServerHealthzChecksStore(t *testing.T) {
	cfg := testConfig(t)
	l, err := ProvideLogger(cfg)
	if err != nil {
		t.Fatal(err)
	}
	store, err := ProvideResultStore(nil)
	if err != nil {
		t.Fatal(err)
	}
	srv := ProvideHTTPServer(cfg, l, ProvideRegistry(), store, cache.NewNoopCache(), nil)

	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body.String())
	}
}
