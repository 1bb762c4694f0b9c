package thresholds

import (
	"fmt"

	"BodyMetrics/internal/domain/models"
)

// WHtR boundaries. Between whtrRampStart and whtrRampEnd the limit rises by one
// hundredth per year.
const (
	whtrBase      = 0.5
	whtrSenior    = 0.6
	whtrRampStart = 40.0
	whtrRampEnd   = 50.0
)

// WHtRUnhealthy returns the waist-to-height ratio above which a person of the given
// age is classified as unhealthy.
func WHtRUnhealthy(age float64) float64 {
	switch {
	case age > whtrRampEnd:
		return whtrSenior
	case age > whtrRampStart:
		return (age-whtrRampStart)/100 + whtrBase
	default:
		return whtrBase
	}
}

// WHRPair holds the gender-specific waist-to-hip limits.
type WHRPair struct {
	Overweight float64
	Obese      float64
}

var whrByGender = map[models.Gender]WHRPair{
	models.GenderAverage: {Overweight: 0.85, Obese: 0.925},
	models.GenderFemale:  {Overweight: 0.80, Obese: 0.85},
	models.GenderMale:    {Overweight: 0.90, Obese: 1.00},
}

// WHR returns the waist-to-hip limits for gender.
func WHR(gender models.Gender) (WHRPair, error) {
	pair, ok := whrByGender[gender]
	if !ok {
		return WHRPair{}, &models.ValidationError{Field: "gender", Reason: fmt.Sprintf("unknown gender %q", string(gender))}
	}
	return pair, nil
}
