package classifier

import (
	"errors"
	"reflect"
	"testing"

	"BodyMetrics/internal/domain/models"
)

func abcBands() []models.Band {
	return []models.Band{
		{Value: 0, Text: "A", Severity: 0},
		{Value: 18.5, Text: "B", Severity: 1},
		{Value: 25, Text: "C", Severity: 2},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{-3, "A"},
		{0, "A"},
		{18.49, "A"},
		{18.5, "B"},
		{24.99, "B"},
		{25, "C"},
		{99, "C"},
	}
	for _, tt := range tests {
		got, err := Classify(tt.value, abcBands())
		if err != nil {
			t.Fatalf("Classify(%v): %v", tt.value, err)
		}
		if got.Text != tt.want {
			t.Errorf("Classify(%v) = %q want %q", tt.value, got.Text, tt.want)
		}
	}
}

func TestClassifyMonotonic(t *testing.T) {
	bands := abcBands()
	prev := -1
	for v := 0.0; v < 40; v += 0.1 {
		b, err := Classify(v, bands)
		if err != nil {
			t.Fatal(err)
		}
		idx := -1
		for i := range bands {
			if bands[i].Text == b.Text {
				idx = i
			}
		}
		if idx < prev {
			t.Fatalf("band index decreased at %v", v)
		}
		prev = idx
	}
}

func TestClassifyEmpty(t *testing.T) {
	if _, err := Classify(1, nil); !models.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(abcBands(), "")
	want := []models.IntervalRow{
		{Interval: "Under 18.5", Label: "A", Severity: 0},
		{Interval: "From 18.5 to 25", Label: "B", Severity: 1},
		{Interval: "Over 25", Label: "C", Severity: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestDescribeSuffixAndPrecision(t *testing.T) {
	bands := []models.Band{
		{Value: 0, Text: "low"},
		{Value: 59.94, Text: "mid", Severity: 1},
		{Value: 81.000049, Text: "high", Severity: 2},
	}
	got := Describe(bands, "kg")
	if got[0].Interval != "Under 59.94 kg" {
		t.Fatalf("unexpected first row %q", got[0].Interval)
	}
	if got[1].Interval != "From 59.94 kg to 81 kg" {
		t.Fatalf("unexpected interior row %q", got[1].Interval)
	}
	if got[2].Interval != "Over 81 kg" {
		t.Fatalf("unexpected last row %q", got[2].Interval)
	}
}

func TestResolveDerived(t *testing.T) {
	calls := 0
	table := Table{Name: "t", Thresholds: []Threshold{
		{Value: Constant(0), Text: "low", Severity: 0},
		{Value: Derived(func(in models.MetricInput) (float64, error) {
			calls++
			return in.AgeYears / 10, nil
		}), Text: "high", Severity: 2},
	}}
	bands, err := table.Resolve(models.MetricInput{AgeYears: 45})
	if err != nil {
		t.Fatal(err)
	}
	if bands[1].Value != 4.5 || calls != 1 {
		t.Fatalf("unexpected resolution %+v after %d calls", bands, calls)
	}
}

func TestResolvePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	table := Table{Name: "t", Thresholds: []Threshold{
		{Value: Constant(0), Text: "low"},
		{Value: Derived(func(models.MetricInput) (float64, error) { return 0, boom }), Text: "high"},
	}}
	if _, err := table.Resolve(models.MetricInput{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	ok := []Threshold{
		{Value: Constant(0), Text: "low", Severity: 0},
		{Value: Constant(1), Text: "high", Severity: 3},
	}
	tests := []struct {
		name   string
		table  []Threshold
		wantOK bool
	}{
		{"valid", ok, true},
		{"single", ok[:1], false},
		{"non-zero floor", []Threshold{{Value: Constant(1), Text: "a"}, {Value: Constant(2), Text: "b"}}, false},
		{"derived floor", []Threshold{
			{Value: Derived(func(models.MetricInput) (float64, error) { return 0, nil }), Text: "a"},
			{Value: Constant(2), Text: "b"},
		}, false},
		{"empty text", []Threshold{{Value: Constant(0), Text: "a"}, {Value: Constant(2)}}, false},
		{"bad severity", []Threshold{{Value: Constant(0), Text: "a"}, {Value: Constant(2), Text: "b", Severity: 4}}, false},
		{"not ascending", []Threshold{{Value: Constant(0), Text: "a"}, {Value: Constant(2), Text: "b"}, {Value: Constant(2), Text: "c"}}, false},
		{"derived crosses for some ages", []Threshold{
			{Value: Constant(0), Text: "a"},
			{Value: Constant(0.55), Text: "b"},
			{Value: Derived(func(in models.MetricInput) (float64, error) { return 0.5 + in.AgeYears/1000, nil }), Text: "c"},
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Table{Name: tt.name, Thresholds: tt.table}.Validate()
			if tt.wantOK && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.wantOK && !models.IsConfiguration(err) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}
