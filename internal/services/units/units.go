package units

import (
	"fmt"
	"math"

	"BodyMetrics/internal/domain/models"
)

const (
	CmPerInch = 2.54
	LbPerKg   = 2.2046226218

	inchPerCm = 1 / CmPerInch
	kgPerLb   = 1 / LbPerKg
)

// DisplayDigits is the precision raw inputs are shown with after a unit switch.
const DisplayDigits = 0

func InToCm(in float64) float64 { return in * CmPerInch }
func CmToIn(cm float64) float64 { return cm * inchPerCm }
func KgToLb(kg float64) float64 { return kg * LbPerKg }
func LbToKg(lb float64) float64 { return lb * kgPerLb }

// ConvertLength converts a length expressed in the other unit system into to.
// Converting a value that is already in to cannot be detected and is the caller's mistake.
func ConvertLength(value float64, to models.DisplayUnit) (float64, error) {
	switch to {
	case models.UnitMetric:
		return InToCm(value), nil
	case models.UnitImperial:
		return CmToIn(value), nil
	default:
		return 0, unknownUnit(to)
	}
}

// ConvertMass converts a mass expressed in the other unit system into to.
func ConvertMass(value float64, to models.DisplayUnit) (float64, error) {
	switch to {
	case models.UnitMetric:
		return LbToKg(value), nil
	case models.UnitImperial:
		return KgToLb(value), nil
	default:
		return 0, unknownUnit(to)
	}
}

// LengthToMetric reads a display length as centimetres.
func LengthToMetric(value float64, from models.DisplayUnit) (float64, error) {
	switch from {
	case models.UnitMetric:
		return value, nil
	case models.UnitImperial:
		return InToCm(value), nil
	default:
		return 0, unknownUnit(from)
	}
}

// MassToMetric reads a display mass as kilograms.
func MassToMetric(value float64, from models.DisplayUnit) (float64, error) {
	switch from {
	case models.UnitMetric:
		return value, nil
	case models.UnitImperial:
		return LbToKg(value), nil
	default:
		return 0, unknownUnit(from)
	}
}

// DisplayLength renders a canonical centimetre value in unit, rounded for display.
func DisplayLength(cm float64, unit models.DisplayUnit) (float64, error) {
	if unit == models.UnitMetric {
		return Round(cm, DisplayDigits), nil
	}
	v, err := ConvertLength(cm, unit)
	if err != nil {
		return 0, err
	}
	return Round(v, DisplayDigits), nil
}

// DisplayMass renders a canonical kilogram value in unit, rounded for display.
func DisplayMass(kg float64, unit models.DisplayUnit) (float64, error) {
	if unit == models.UnitMetric {
		return Round(kg, DisplayDigits), nil
	}
	v, err := ConvertMass(kg, unit)
	if err != nil {
		return 0, err
	}
	return Round(v, DisplayDigits), nil
}

// MassSuffix is the unit label used when describing masses.
func MassSuffix(unit models.DisplayUnit) string {
	if unit == models.UnitImperial {
		return "lb"
	}
	return "kg"
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, digits int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

func unknownUnit(u models.DisplayUnit) error {
	return &models.ValidationError{Field: "unit", Reason: fmt.Sprintf("unknown unit %q", string(u))}
}
