package usecase

import (
	"math"
	"reflect"
	"testing"

	"BodyMetrics/internal/domain/models"
	"BodyMetrics/internal/services/classifier"
)

func newAssembler(t *testing.T) *ResultAssembler {
	t.Helper()
	a, err := NewResultAssembler()
	if err != nil {
		t.Fatalf("NewResultAssembler: %v", err)
	}
	return a
}

func metricRaw(height, mass, waist, hip float64, mode models.Mode) models.RawInput {
	return models.RawInput{
		Height: height, Mass: mass, Waist: waist, Hip: hip,
		Age: 30, Gender: models.GenderAverage,
		Unit: models.UnitMetric, Mode: mode,
	}
}

func byMetric(t *testing.T, recs []models.ResultRecord, m models.MetricName) models.ResultRecord {
	t.Helper()
	for _, r := range recs {
		if r.Metric == m {
			return r
		}
	}
	t.Fatalf("no record for %s", m)
	return models.ResultRecord{}
}

func TestComputeScenarios(t *testing.T) {
	a := newAssembler(t)
	tests := []struct {
		name   string
		raw    models.RawInput
		metric models.MetricName
		value  float64
		label  string
	}{
		{"healthy bmi", metricRaw(180, 75, 80, 95, models.ModeDetailed), models.MetricBMI, 23.1, "Healthy"},
		{"mild underweight detailed", metricRaw(160, 45, 70, 90, models.ModeDetailed), models.MetricBMI, 17.6, "Underweight [Mild]"},
		{"underweight basic", metricRaw(160, 45, 70, 90, models.ModeBasic), models.MetricBMI, 18, "Underweight"},
		{"obese whr male", models.RawInput{
			Height: 180, Mass: 90, Waist: 120, Hip: 100, Age: 35,
			Gender: models.GenderMale, Unit: models.UnitMetric, Mode: models.ModeDetailed,
		}, models.MetricWHR, 1.2, "Obese"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := a.Compute(tt.raw)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if len(recs) != len(models.AllMetrics) {
				t.Fatalf("expected %d records, got %d", len(models.AllMetrics), len(recs))
			}
			rec := byMetric(t, recs, tt.metric)
			if rec.Value != tt.value || rec.Label != tt.label || !rec.Applicable {
				t.Fatalf("got %+v want value %v label %q", rec, tt.value, tt.label)
			}
		})
	}
}

func TestComputeOrderAndDigits(t *testing.T) {
	a := newAssembler(t)
	recs, err := a.Compute(metricRaw(180, 75, 80, 95, models.ModeBasic))
	if err != nil {
		t.Fatal(err)
	}
	wantDigits := []int{0, 2, 2, 2}
	for i, m := range models.AllMetrics {
		if recs[i].Metric != m {
			t.Fatalf("record %d is %s, want %s", i, recs[i].Metric, m)
		}
		if recs[i].Digits != wantDigits[i] {
			t.Fatalf("%s digits %d want %d", m, recs[i].Digits, wantDigits[i])
		}
	}
	if recs[0].Value != 23 {
		t.Fatalf("basic bmi should be a whole number, got %v", recs[0].Value)
	}
}

func TestComputeBRINotComputable(t *testing.T) {
	a := newAssembler(t)
	recs, err := a.Compute(metricRaw(100, 70, 400, 100, models.ModeDetailed))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	bri := byMetric(t, recs, models.MetricBRI)
	if bri.Applicable || bri.Value != 0 || bri.Label != "" || bri.Severity != models.SeverityNone {
		t.Fatalf("unexpected bri record %+v", bri)
	}
	for _, m := range []models.MetricName{models.MetricBMI, models.MetricWHtR, models.MetricWHR} {
		if !byMetric(t, recs, m).Applicable {
			t.Fatalf("%s should still be computed", m)
		}
	}
}

func TestComputeImperialMatchesMetric(t *testing.T) {
	a := newAssembler(t)
	metric, err := a.Compute(metricRaw(180, 75, 80, 95, models.ModeDetailed))
	if err != nil {
		t.Fatal(err)
	}
	imperial := models.RawInput{
		Height: 180 / 2.54, Mass: 75 * 2.2046226218, Waist: 80 / 2.54, Hip: 95 / 2.54,
		Age: 30, Gender: models.GenderAverage, Unit: models.UnitImperial, Mode: models.ModeDetailed,
	}
	got, err := a.Compute(imperial)
	if err != nil {
		t.Fatal(err)
	}
	for i := range metric {
		if math.Abs(metric[i].Raw-got[i].Raw) > 1e-9 || metric[i].Label != got[i].Label {
			t.Fatalf("%s differs: %+v vs %+v", metric[i].Metric, metric[i], got[i])
		}
	}
}

func TestComputeValidation(t *testing.T) {
	a := newAssembler(t)
	tests := []struct {
		name string
		raw  models.RawInput
	}{
		{"zero height", metricRaw(0, 75, 80, 95, models.ModeDetailed)},
		{"negative mass", metricRaw(180, -1, 80, 95, models.ModeDetailed)},
		{"unknown unit", func() models.RawInput { r := metricRaw(180, 75, 80, 95, models.ModeDetailed); r.Unit = "stone"; return r }()},
		{"unknown mode", metricRaw(180, 75, 80, 95, "expert")},
		{"unknown gender", func() models.RawInput { r := metricRaw(180, 75, 80, 95, models.ModeDetailed); r.Gender = ""; return r }()},
		{"negative age", func() models.RawInput { r := metricRaw(180, 75, 80, 95, models.ModeDetailed); r.Age = -1; return r }()},
		{"nan waist", metricRaw(180, 75, math.NaN(), 95, models.ModeDetailed)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := a.Compute(tt.raw)
			if !models.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if recs != nil {
				t.Fatalf("expected no partial results")
			}
		})
	}
}

func TestComputeIdempotent(t *testing.T) {
	a := newAssembler(t)
	raw := metricRaw(172, 81, 91, 102, models.ModeDetailed)
	first, err := a.Compute(raw)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := a.Compute(raw)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ between calls")
	}
}

func TestDescribeThresholds(t *testing.T) {
	a := newAssembler(t)
	raw := metricRaw(180, 75, 80, 95, models.ModeDetailed)
	raw.Age = 45
	rows, err := a.DescribeThresholds(models.MetricWHtR, raw)
	if err != nil {
		t.Fatal(err)
	}
	want := []models.IntervalRow{
		{Interval: "Under 0.55", Label: "Healthy", Severity: models.SeverityHealthy},
		{Interval: "Over 0.55", Label: "Unhealthy", Severity: models.SeverityCaution},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("got %+v", rows)
	}

	rows, err = a.DescribeThresholds(models.MetricBMI, metricRaw(180, 75, 80, 95, models.ModeBasic))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 || rows[4].Interval != "Over 40" || rows[4].Label != "Extremely obese" {
		t.Fatalf("unexpected basic rows %+v", rows)
	}

	if _, err := a.DescribeThresholds("bsa", raw); !models.IsValidation(err) {
		t.Fatalf("expected validation error for unknown metric, got %v", err)
	}
}

func TestWeightTargets(t *testing.T) {
	a := newAssembler(t)
	rows, err := a.WeightTargets(metricRaw(180, 75, 80, 95, models.ModeBasic))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"Under 59.94 kg",
		"From 59.94 kg to 81 kg",
		"From 81 kg to 97.2 kg",
		"From 97.2 kg to 129.6 kg",
		"Over 129.6 kg",
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows", len(rows))
	}
	for i := range want {
		if rows[i].Interval != want[i] {
			t.Errorf("row %d = %q want %q", i, rows[i].Interval, want[i])
		}
	}

	imperial := models.RawInput{
		Height: 180 / 2.54, Mass: 165, Waist: 31, Hip: 37, Age: 30,
		Gender: models.GenderAverage, Unit: models.UnitImperial, Mode: models.ModeBasic,
	}
	rows, err = a.WeightTargets(imperial)
	if err != nil {
		t.Fatal(err)
	}
	if rows[1].Interval != "From 132.145 lb to 178.574 lb" {
		t.Fatalf("unexpected imperial row %q", rows[1].Interval)
	}
}

func TestValidateTablesRejectsBrokenTable(t *testing.T) {
	broken := classifier.Table{Name: "broken", Thresholds: []classifier.Threshold{
		{Value: classifier.Constant(0), Text: "a"},
		{Value: classifier.Constant(-1), Text: "b"},
	}}
	err := validateTables(append(allTables(), broken))
	if !models.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestComputeRejectsNonFiniteResults(t *testing.T) {
	a := newAssembler(t)
	_, err := a.Compute(metricRaw(1e-200, 70, 80, 95, models.ModeDetailed))
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error for a tiny height, got %v", err)
	}
}
