package classifier

import (
	"fmt"
	"math"
	"strconv"

	"BodyMetrics/internal/domain/models"
	"BodyMetrics/internal/services/units"
)

// describeDigits bounds the precision of interval text.
const describeDigits = 3

// Value is a threshold boundary: either a constant or derived from the input.
type Value struct {
	constant float64
	derive   func(models.MetricInput) (float64, error)
}

// Constant returns a fixed boundary.
func Constant(v float64) Value { return Value{constant: v} }

// Derived returns a boundary computed from the input on every resolution.
func Derived(fn func(models.MetricInput) (float64, error)) Value { return Value{derive: fn} }

func (v Value) IsConstant() bool { return v.derive == nil }

// Resolve evaluates the boundary for in.
func (v Value) Resolve(in models.MetricInput) (float64, error) {
	if v.derive == nil {
		return v.constant, nil
	}
	return v.derive(in)
}

// Threshold is one unresolved band.
type Threshold struct {
	Value    Value
	Text     string
	Severity models.Severity
}

// Table is a named, ordered list of thresholds. The first threshold is the floor.
type Table struct {
	Name       string
	Thresholds []Threshold
}

// Resolve evaluates every threshold value once and returns the bands.
func (t Table) Resolve(in models.MetricInput) ([]models.Band, error) {
	bands := make([]models.Band, 0, len(t.Thresholds))
	for i, th := range t.Thresholds {
		v, err := th.Value.Resolve(in)
		if err != nil {
			return nil, fmt.Errorf("resolve %s threshold %d: %w", t.Name, i, err)
		}
		bands = append(bands, models.Band{Value: v, Text: th.Text, Severity: th.Severity})
	}
	return bands, nil
}

// Classify returns the last band whose value is at most value. A value on a boundary
// belongs to the band that starts there; values below the floor fall into the floor.
func Classify(value float64, bands []models.Band) (models.Band, error) {
	if len(bands) == 0 {
		return models.Band{}, &models.ConfigurationError{Reason: "no bands to classify against"}
	}
	if math.IsNaN(value) {
		return models.Band{}, &models.ValidationError{Field: "value", Reason: "is not a number"}
	}
	selected := bands[0]
	for _, b := range bands[1:] {
		if b.Value > value {
			break
		}
		selected = b
	}
	return selected, nil
}

// Describe renders one interval row per band. An optional suffix such as "kg" is
// appended to every number.
func Describe(bands []models.Band, suffix string) []models.IntervalRow {
	rows := make([]models.IntervalRow, 0, len(bands))
	for i, b := range bands {
		var interval string
		switch {
		case i == len(bands)-1:
			interval = "Over " + formatBound(b.Value, suffix)
		case i == 0:
			interval = "Under " + formatBound(bands[i+1].Value, suffix)
		default:
			interval = "From " + formatBound(b.Value, suffix) + " to " + formatBound(bands[i+1].Value, suffix)
		}
		rows = append(rows, models.IntervalRow{Interval: interval, Label: b.Text, Severity: b.Severity})
	}
	return rows
}

func formatBound(v float64, suffix string) string {
	s := strconv.FormatFloat(units.Round(v, describeDigits), 'f', -1, 64)
	if suffix != "" {
		s += " " + suffix
	}
	return s
}

var sampleAges = []float64{0, 40, 41, 45, 50, 51, 120}

var sampleGenders = []models.Gender{models.GenderAverage, models.GenderFemale, models.GenderMale}

// Validate checks the table shape: at least two thresholds, a constant zero floor,
// known severities, non-empty text and strictly ascending values for every sample input.
func (t Table) Validate() error {
	fail := func(format string, a ...any) error {
		return &models.ConfigurationError{Table: t.Name, Reason: fmt.Sprintf(format, a...)}
	}
	if len(t.Thresholds) < 2 {
		return fail("needs at least two thresholds, has %d", len(t.Thresholds))
	}
	floor := t.Thresholds[0].Value
	if !floor.IsConstant() || floor.constant != 0 {
		return fail("first threshold must be the constant 0")
	}
	for i, th := range t.Thresholds {
		if th.Text == "" {
			return fail("threshold %d has no text", i)
		}
		if !th.Severity.Valid() {
			return fail("threshold %d has severity %d outside 0..3", i, th.Severity)
		}
	}
	for _, g := range sampleGenders {
		for _, age := range sampleAges {
			in := models.MetricInput{HeightCm: 170, MassKg: 70, WaistCm: 80, HipCm: 95, AgeYears: age, Gender: g}
			bands, err := t.Resolve(in)
			if err != nil {
				return fail("resolve for %s aged %v: %v", g, age, err)
			}
			for i := 1; i < len(bands); i++ {
				if !(bands[i].Value > bands[i-1].Value) {
					return fail("values not strictly ascending at %d for %s aged %v", i, g, age)
				}
			}
		}
	}
	return nil
}
