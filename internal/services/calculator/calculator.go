package calculator

import (
	"math"

	"BodyMetrics/internal/domain/models"
)

// BRI formula constants.
const (
	briOffset = 364.2
	briScale  = 365.5
)

// BMI returns mass_kg / height_m^2.
func BMI(in models.MetricInput) (float64, error) {
	if err := positive(in.MassKg, "mass", in.HeightCm, "height"); err != nil {
		return 0, err
	}
	m := in.HeightCm / 100
	return finite(string(models.MetricBMI), in.MassKg/(m*m))
}

// WHtR returns waist / height.
func WHtR(in models.MetricInput) (float64, error) {
	if err := positive(in.WaistCm, "waist", in.HeightCm, "height"); err != nil {
		return 0, err
	}
	return finite(string(models.MetricWHtR), in.WaistCm/in.HeightCm)
}

// WHR returns waist / hip.
func WHR(in models.MetricInput) (float64, error) {
	if err := positive(in.WaistCm, "waist", in.HipCm, "hip"); err != nil {
		return 0, err
	}
	return finite(string(models.MetricWHR), in.WaistCm/in.HipCm)
}

// BRI returns the Body Roundness Index. A waist wider than pi times the height leaves
// the square root without a real value and yields models.ErrNotComputable.
func BRI(in models.MetricInput) (float64, error) {
	if err := positive(in.WaistCm, "waist", in.HeightCm, "height"); err != nil {
		return 0, err
	}
	r := in.WaistCm / (math.Pi * in.HeightCm)
	t := 1 - r*r
	if t < 0 || math.IsNaN(t) {
		return 0, models.ErrNotComputable
	}
	return briOffset - briScale*math.Sqrt(t), nil
}

// WeightForBMI returns the mass in kilograms that gives bmi at the given height.
func WeightForBMI(bmi, heightCm float64) (float64, error) {
	if err := models.RequirePositive("height", heightCm); err != nil {
		return 0, err
	}
	if math.IsNaN(bmi) || math.IsInf(bmi, 0) || bmi < 0 {
		return 0, &models.ValidationError{Field: "bmi", Reason: "must be zero or greater"}
	}
	m := heightCm / 100
	return finite("weight", bmi*m*m)
}

// Func is the common signature of the metric calculations.
type Func func(models.MetricInput) (float64, error)

// finite rejects results that overflowed or underflowed out of the float range.
func finite(name string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &models.ValidationError{Field: name, Reason: "inputs give no finite result"}
	}
	return v, nil
}

func positive(a float64, aName string, b float64, bName string) error {
	if err := models.RequirePositive(aName, a); err != nil {
		return err
	}
	return models.RequirePositive(bName, b)
}
