package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"BodyMetrics/internal/domain/models"
	"BodyMetrics/internal/repository"
	"BodyMetrics/pkg/cache"
	pkgkafka "BodyMetrics/pkg/kafka"
)

type fakeMetrics struct {
	mu              sync.Mutex
	computations    map[string]int
	classifications map[string]int
	notComputable   map[string]int
	hits, misses    int
	errs            map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		computations:    map[string]int{},
		classifications: map[string]int{},
		notComputable:   map[string]int{},
		errs:            map[string]int{},
	}
}

func (m *fakeMetrics) RecordComputation(mode, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.computations[mode+"/"+outcome]++
}

func (m *fakeMetrics) RecordClassification(metric, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classifications[metric+"/"+label]++
}

func (m *fakeMetrics) RecordNotComputable(metric string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notComputable[metric]++
}

func (m *fakeMetrics) RecordCache(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[kind]++
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

type recordingPublisher struct {
	published []*models.Assessment
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, a *models.Assessment) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, a)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type failingStore struct {
	*repository.MemoryResultStore
	err error
}

func (s failingStore) Store(context.Context, *models.Assessment) error { return s.err }

type serviceFixture struct {
	svc     *AssessmentService
	cache   *cache.MemoryCache
	store   *repository.MemoryResultStore
	pub     *recordingPublisher
	metrics *fakeMetrics
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	f := &serviceFixture{
		cache:   mc,
		store:   repository.NewMemoryResultStore(100),
		pub:     &recordingPublisher{},
		metrics: newFakeMetrics(),
	}
	f.svc = NewAssessmentService(newAssembler(t), mc, f.store, f.pub, f.metrics, nil, AssessmentConfig{
		DefaultUnit: models.UnitMetric,
		DefaultMode: models.ModeDetailed,
		CacheTTL:    time.Minute,
	})
	f.svc.newID = func() string { return "fixed-id" }
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestServiceComputeAppliesDefaultsAndCaches(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	raw := models.RawInput{Height: 180, Mass: 75, Waist: 80, Hip: 95, Age: 30, Gender: models.GenderAverage}

	first, err := f.svc.Compute(ctx, raw)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if first[0].Digits != 1 {
		t.Fatalf("default mode should be detailed, got digits %d", first[0].Digits)
	}
	second, err := f.svc.Compute(ctx, raw)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(second) != len(first) || second[0] != first[0] {
		t.Fatalf("cached result differs: %+v vs %+v", second, first)
	}
	if f.metrics.hits != 1 || f.metrics.misses != 1 {
		t.Fatalf("hits=%d misses=%d", f.metrics.hits, f.metrics.misses)
	}
	if f.metrics.computations["detailed/ok"] != 1 || f.metrics.computations["detailed/cached"] != 1 {
		t.Fatalf("computations %+v", f.metrics.computations)
	}
	if f.metrics.classifications["bmi/Healthy"] != 1 {
		t.Fatalf("classifications %+v", f.metrics.classifications)
	}
}

func TestServiceComputeRecordsNotComputable(t *testing.T) {
	f := newServiceFixture(t)
	raw := models.RawInput{Height: 150, Mass: 50, Waist: 500, Hip: 90, Age: 30, Gender: models.GenderAverage}
	recs, err := f.svc.Compute(context.Background(), raw)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if byMetric(t, recs, models.MetricBRI).Applicable {
		t.Fatalf("expected BRI not applicable")
	}
	if f.metrics.notComputable["bri"] != 1 {
		t.Fatalf("not computable %+v", f.metrics.notComputable)
	}
}

func TestServiceComputeValidationNotCached(t *testing.T) {
	f := newServiceFixture(t)
	raw := models.RawInput{Height: 0, Mass: 75, Waist: 80, Hip: 95, Gender: models.GenderAverage}
	_, err := f.svc.Compute(context.Background(), raw)
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.cache.Len() != 0 {
		t.Fatalf("failed computation must not be cached")
	}
	if f.metrics.computations["detailed/invalid"] != 1 {
		t.Fatalf("computations %+v", f.metrics.computations)
	}
}

func TestServiceAssessStoresAndPublishes(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	raw := models.RawInput{Height: 180, Mass: 75, Waist: 80, Hip: 95, Age: 30, Gender: models.GenderAverage}

	a, err := f.svc.Assess(ctx, "s1", time.Time{}, raw)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if a.ID != "fixed-id" || !a.MeasuredAt.Equal(f.svc.now()) || a.Unit != models.UnitMetric {
		t.Fatalf("unexpected assessment %+v", a)
	}
	if len(f.pub.published) != 1 {
		t.Fatalf("expected publish")
	}
	rows, err := f.svc.History(ctx, "s1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(models.AllMetrics) || rows[0].AssessmentID != "fixed-id" {
		t.Fatalf("unexpected history %+v", rows)
	}
}

func TestServiceAssessAnonymousSkipsPersistence(t *testing.T) {
	f := newServiceFixture(t)
	raw := models.RawInput{Height: 180, Mass: 75, Waist: 80, Hip: 95, Age: 30, Gender: models.GenderAverage}
	if _, err := f.svc.Assess(context.Background(), "", time.Time{}, raw); err != nil {
		t.Fatal(err)
	}
	if len(f.pub.published) != 0 {
		t.Fatalf("anonymous assessment should not be published")
	}
}

func TestServiceAssessStoreFailure(t *testing.T) {
	f := newServiceFixture(t)
	boom := errors.New("clickhouse down")
	f.svc.store = failingStore{MemoryResultStore: f.store, err: boom}
	raw := models.RawInput{Height: 180, Mass: 75, Waist: 80, Hip: 95, Age: 30, Gender: models.GenderAverage}

	if _, err := f.svc.Assess(context.Background(), "s1", time.Time{}, raw); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if f.metrics.errs["store"] != 1 || len(f.pub.published) != 0 {
		t.Fatalf("store failure must stop fan-out")
	}
}

func TestServiceHistoryRequiresSubject(t *testing.T) {
	f := newServiceFixture(t)
	if _, err := f.svc.History(context.Background(), "", 10); !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceConvert(t *testing.T) {
	f := newServiceFixture(t)
	tests := []struct {
		req     models.ConvertRequest
		display float64
		unit    string
	}{
		{models.ConvertRequest{Kind: "length", Value: 70, To: "metric"}, 178, "cm"},
		{models.ConvertRequest{Kind: "length", Value: 180, To: "imperial"}, 71, "in"},
		{models.ConvertRequest{Kind: "mass", Value: 75, To: "imperial"}, 165, "lb"},
		{models.ConvertRequest{Kind: "mass", Value: 165, To: "metric"}, 75, "kg"},
	}
	for _, tt := range tests {
		got, err := f.svc.Convert(tt.req)
		if err != nil {
			t.Fatalf("%+v: %v", tt.req, err)
		}
		if got.Display != tt.display || got.Unit != tt.unit {
			t.Fatalf("%+v: got %+v", tt.req, got)
		}
	}
	if _, err := f.svc.Convert(models.ConvertRequest{Kind: "volume", Value: 1, To: "metric"}); !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestKafkaMeasurementsHandler(t *testing.T) {
	f := newServiceFixture(t)
	h := NewKafkaMeasurementsHandler("measurements", f.svc, f.metrics, nil)
	ctx := context.Background()

	if h.Topic() != "measurements" {
		t.Fatalf("unexpected topic")
	}
	ok := []byte(`{"subject_id":"s1","height":180,"mass":75,"waist":80,"hip":95,"age":30}`)
	if err := h.Handle(ctx, ok); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(f.pub.published) != 1 || f.pub.published[0].Mode != models.ModeDetailed {
		t.Fatalf("expected one detailed assessment, got %+v", f.pub.published)
	}

	tests := []struct {
		name    string
		payload string
	}{
		{"malformed", `{"subject_id":`},
		{"missing subject", `{"height":180,"mass":75,"waist":80,"hip":95}`},
		{"invalid measurement", `{"subject_id":"s1","height":-1,"mass":75,"waist":80,"hip":95}`},
		{"unknown gender", `{"subject_id":"s1","height":180,"mass":75,"waist":80,"hip":95,"gender":"robot"}`},
		{"tiny height", `{"subject_id":"s1","height":1e-200,"mass":75,"waist":80,"hip":95}`},
		{"huge mass", `{"subject_id":"s1","height":180,"mass":1e300,"waist":80,"hip":95}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Handle(ctx, []byte(tt.payload))
			if !pkgkafka.IsPermanent(err) {
				t.Fatalf("expected permanent error, got %v", err)
			}
		})
	}
	if len(f.pub.published) != 1 {
		t.Fatalf("rejected events must not be published, got %d", len(f.pub.published))
	}

	mixed := []byte(`{"subject_id":"s2","height":180,"mass":75,"waist":80,"hip":95,"gender":"Female"}`)
	if err := h.Handle(ctx, mixed); err != nil {
		t.Fatalf("gender should match in any case: %v", err)
	}
}

func TestKafkaMeasurementsHandlerTransientError(t *testing.T) {
	f := newServiceFixture(t)
	f.pub.err = errors.New("broker unavailable")
	h := NewKafkaMeasurementsHandler("measurements", f.svc, f.metrics, nil)

	err := h.Handle(context.Background(), []byte(`{"subject_id":"s1","height":180,"mass":75,"waist":80,"hip":95}`))
	if err == nil || pkgkafka.IsPermanent(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}
