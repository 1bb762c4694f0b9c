package usecase

import (
	"BodyMetrics/internal/domain/models"
	"BodyMetrics/internal/services/calculator"
	"BodyMetrics/internal/services/classifier"
	"BodyMetrics/internal/services/thresholds"
)

type metricDef struct {
	name   models.MetricName
	calc   calculator.Func
	digits int
	table  classifier.Table
}

const (
	bmiDetailedDigits = 1
	bmiBasicDigits    = 0
	ratioDigits       = 2
)

func c(v float64) classifier.Value { return classifier.Constant(v) }

var bmiDetailedTable = classifier.Table{Name: "bmi_detailed", Thresholds: []classifier.Threshold{
	{Value: c(0), Text: "Underweight [Severe]", Severity: models.SeverityLow},
	{Value: c(16), Text: "Underweight [Moderate]", Severity: models.SeverityLow},
	{Value: c(17), Text: "Underweight [Mild]", Severity: models.SeverityLow},
	{Value: c(18.5), Text: "Healthy", Severity: models.SeverityHealthy},
	{Value: c(25), Text: "Overweight", Severity: models.SeverityCaution},
	{Value: c(30), Text: "Obese [Class 1]", Severity: models.SeverityCritical},
	{Value: c(35), Text: "Obese [Class 2]", Severity: models.SeverityCritical},
	{Value: c(40), Text: "Obese [Class 3]", Severity: models.SeverityCritical},
}}

var bmiBasicTable = classifier.Table{Name: "bmi_basic", Thresholds: []classifier.Threshold{
	{Value: c(0), Text: "Underweight", Severity: models.SeverityLow},
	{Value: c(18.5), Text: "Healthy", Severity: models.SeverityHealthy},
	{Value: c(25), Text: "Overweight", Severity: models.SeverityCaution},
	{Value: c(30), Text: "Obese", Severity: models.SeverityCritical},
	{Value: c(40), Text: "Extremely obese", Severity: models.SeverityCritical},
}}

var whtrTable = classifier.Table{Name: "whtr", Thresholds: []classifier.Threshold{
	{Value: c(0), Text: "Healthy", Severity: models.SeverityHealthy},
	{Value: classifier.Derived(func(in models.MetricInput) (float64, error) {
		return thresholds.WHtRUnhealthy(in.AgeYears), nil
	}), Text: "Unhealthy", Severity: models.SeverityCaution},
}}

var whrTable = classifier.Table{Name: "whr", Thresholds: []classifier.Threshold{
	{Value: c(0), Text: "Healthy", Severity: models.SeverityHealthy},
	{Value: classifier.Derived(func(in models.MetricInput) (float64, error) {
		p, err := thresholds.WHR(in.Gender)
		return p.Overweight, err
	}), Text: "Overweight", Severity: models.SeverityCaution},
	{Value: classifier.Derived(func(in models.MetricInput) (float64, error) {
		p, err := thresholds.WHR(in.Gender)
		return p.Obese, err
	}), Text: "Obese", Severity: models.SeverityCritical},
}}

var briTable = classifier.Table{Name: "bri", Thresholds: []classifier.Threshold{
	{Value: c(0), Text: "Very lean", Severity: models.SeverityLow},
	{Value: c(3.41), Text: "Lean", Severity: models.SeverityHealthy},
	{Value: c(4.45), Text: "Average", Severity: models.SeverityHealthy},
	{Value: c(5.46), Text: "Above average", Severity: models.SeverityCaution},
	{Value: c(6.91), Text: "High", Severity: models.SeverityCritical},
}}

// metricDefs returns the per-metric configuration for a mode, in reporting order.
func metricDefs(mode models.Mode) []metricDef {
	bmi := metricDef{name: models.MetricBMI, calc: calculator.BMI, digits: bmiDetailedDigits, table: bmiDetailedTable}
	if mode == models.ModeBasic {
		bmi.digits = bmiBasicDigits
		bmi.table = bmiBasicTable
	}
	return []metricDef{
		bmi,
		{name: models.MetricWHtR, calc: calculator.WHtR, digits: ratioDigits, table: whtrTable},
		{name: models.MetricWHR, calc: calculator.WHR, digits: ratioDigits, table: whrTable},
		{name: models.MetricBRI, calc: calculator.BRI, digits: ratioDigits, table: briTable},
	}
}

func allTables() []classifier.Table {
	return []classifier.Table{bmiDetailedTable, bmiBasicTable, whtrTable, whrTable, briTable}
}
