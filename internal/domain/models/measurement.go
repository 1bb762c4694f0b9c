package models

import (
	"math"
	"strings"
)

// Gender selects the gender-dependent thresholds. The zero value is invalid.
type Gender string

const (
	GenderAverage Gender = "average"
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderAverage, GenderFemale, GenderMale:
		return true
	default:
		return false
	}
}

// ParseGender accepts the canonical names case-insensitively.
func ParseGender(s string) (Gender, error) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", &ValidationError{Field: "gender", Reason: "must be one of average, female, male"}
	}
	return g, nil
}

// DisplayUnit is the unit system raw inputs are expressed in.
type DisplayUnit string

const (
	UnitMetric   DisplayUnit = "metric"   // centimetres, kilograms
	UnitImperial DisplayUnit = "imperial" // inches, pounds
)

func (u DisplayUnit) Valid() bool {
	return u == UnitMetric || u == UnitImperial
}

// Mode mirrors the basic/advanced switch of the calculator UI.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeDetailed Mode = "detailed"
)

func (m Mode) Valid() bool {
	return m == ModeBasic || m == ModeDetailed
}

// MetricName identifies one of the computed indices.
type MetricName string

const (
	MetricBMI  MetricName = "bmi"
	MetricWHtR MetricName = "whtr"
	MetricWHR  MetricName = "whr"
	MetricBRI  MetricName = "bri"
)

// AllMetrics lists the metrics in the order results are reported.
var AllMetrics = []MetricName{MetricBMI, MetricWHtR, MetricWHR, MetricBRI}

// ParseMetricName resolves a metric name from user input.
func ParseMetricName(s string) (MetricName, error) {
	name := MetricName(strings.ToLower(strings.TrimSpace(s)))
	for _, m := range AllMetrics {
		if m == name {
			return m, nil
		}
	}
	return "", &ValidationError{Field: "metric", Reason: "must be one of bmi, whtr, whr, bri"}
}

// RawInput is what a caller collects: numbers in display units plus the flags that
// say how to read them.
type RawInput struct {
	Height float64
	Mass   float64
	Waist  float64
	Hip    float64
	Age    float64
	Gender Gender
	Unit   DisplayUnit
	Mode   Mode
}

// MetricInput is the validated, metric-unit snapshot every calculation runs on.
// Build it with NewMetricInput; the zero value is rejected by the calculators.
type MetricInput struct {
	HeightCm float64 `json:"height_cm"`
	MassKg   float64 `json:"mass_kg"`
	WaistCm  float64 `json:"waist_cm"`
	HipCm    float64 `json:"hip_cm"`
	AgeYears float64 `json:"age_years"`
	Gender   Gender  `json:"gender"`
}

// NewMetricInput validates the values and returns the snapshot.
// Non-positive lengths or mass, a negative age and unknown genders are rejected.
func NewMetricInput(heightCm, massKg, waistCm, hipCm, ageYears float64, gender Gender) (MetricInput, error) {
	in := MetricInput{
		HeightCm: heightCm,
		MassKg:   massKg,
		WaistCm:  waistCm,
		HipCm:    hipCm,
		AgeYears: ageYears,
		Gender:   gender,
	}
	if err := in.Validate(); err != nil {
		return MetricInput{}, err
	}
	return in, nil
}

// Validate checks every field of the snapshot.
func (in MetricInput) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"height", in.HeightCm},
		{"mass", in.MassKg},
		{"waist", in.WaistCm},
		{"hip", in.HipCm},
	}
	for _, c := range checks {
		if err := RequirePositive(c.field, c.value); err != nil {
			return err
		}
	}
	if math.IsNaN(in.AgeYears) || math.IsInf(in.AgeYears, 0) || in.AgeYears < 0 {
		return &ValidationError{Field: "age", Reason: "must be zero or greater"}
	}
	if !in.Gender.Valid() {
		return &ValidationError{Field: "gender", Reason: "must be one of average, female, male"}
	}
	return nil
}

// RequirePositive returns a ValidationError unless v is a finite number above zero.
func RequirePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return &ValidationError{Field: field, Reason: "must be greater than zero"}
	}
	return nil
}
