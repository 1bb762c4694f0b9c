package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordComputation("detailed", "ok")
	r.RecordComputation("detailed", "ok")
	r.RecordClassification("bmi", "Healthy")
	r.RecordNotComputable("bri")
	r.RecordCache(true)
	r.RecordCache(false)
	r.RecordError("store")
	r.RecordLatency("compute", 0.001)

	if got := testutil.ToFloat64(r.computations.WithLabelValues("detailed", "ok")); got != 2 {
		t.Fatalf("computations = %v", got)
	}
	if got := testutil.ToFloat64(r.classifications.WithLabelValues("bmi", "Healthy")); got != 1 {
		t.Fatalf("classifications = %v", got)
	}
	if got := testutil.ToFloat64(r.notComputable.WithLabelValues("bri")); got != 1 {
		t.Fatalf("not computable = %v", got)
	}
	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")); got != 1 {
		t.Fatalf("cache hits = %v", got)
	}
	if n := testutil.CollectAndCount(r.latency); n != 1 {
		t.Fatalf("expected one latency series, got %d", n)
	}
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
