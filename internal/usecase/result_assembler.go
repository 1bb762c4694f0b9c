package usecase

import (
	"errors"
	"fmt"

	"BodyMetrics/internal/domain/models"
	"BodyMetrics/internal/services/calculator"
	"BodyMetrics/internal/services/classifier"
	"BodyMetrics/internal/services/units"
)

// WeightTargetsDescription explains the rows returned by WeightTargets.
const WeightTargetsDescription = "With the same height, this is what weight you need to get different BMI thresholds"

// ResultAssembler turns raw inputs into classified results. It holds only immutable
// tables and is safe for concurrent use.
type ResultAssembler struct {
	defs map[models.Mode][]metricDef
}

// NewResultAssembler validates every threshold table and returns the assembler.
func NewResultAssembler() (*ResultAssembler, error) {
	if err := validateTables(allTables()); err != nil {
		return nil, err
	}
	return &ResultAssembler{defs: map[models.Mode][]metricDef{
		models.ModeBasic:    metricDefs(models.ModeBasic),
		models.ModeDetailed: metricDefs(models.ModeDetailed),
	}}, nil
}

func validateTables(tables []classifier.Table) error {
	for _, t := range tables {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Compute returns one record per metric in the order BMI, WHtR, WHR, BRI.
// Invalid inputs abort the call; a metric without a real result is reported as not
// applicable while the others are still computed.
func (a *ResultAssembler) Compute(raw models.RawInput) ([]models.ResultRecord, error) {
	in, err := ToMetricInput(raw)
	if err != nil {
		return nil, err
	}
	defs := a.defs[raw.Mode]
	out := make([]models.ResultRecord, 0, len(defs))
	for _, def := range defs {
		rec, err := computeOne(def, in)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func computeOne(def metricDef, in models.MetricInput) (models.ResultRecord, error) {
	value, err := def.calc(in)
	if errors.Is(err, models.ErrNotComputable) {
		return models.NotApplicable(def.name, def.digits), nil
	}
	if err != nil {
		return models.ResultRecord{}, fmt.Errorf("compute %s: %w", def.name, err)
	}
	bands, err := def.table.Resolve(in)
	if err != nil {
		return models.ResultRecord{}, err
	}
	band, err := classifier.Classify(value, bands)
	if err != nil {
		return models.ResultRecord{}, fmt.Errorf("classify %s: %w", def.name, err)
	}
	return models.ResultRecord{
		Metric:     def.name,
		Value:      units.Round(value, def.digits),
		Raw:        value,
		Digits:     def.digits,
		Label:      band.Text,
		Severity:   band.Severity,
		Applicable: true,
	}, nil
}

// DescribeThresholds returns the interval rows of a metric's table resolved for raw.
func (a *ResultAssembler) DescribeThresholds(metric models.MetricName, raw models.RawInput) ([]models.IntervalRow, error) {
	in, err := ToMetricInput(raw)
	if err != nil {
		return nil, err
	}
	def, ok := a.lookup(raw.Mode, metric)
	if !ok {
		return nil, &models.ValidationError{Field: "metric", Reason: fmt.Sprintf("unknown metric %q", string(metric))}
	}
	bands, err := def.table.Resolve(in)
	if err != nil {
		return nil, err
	}
	return classifier.Describe(bands, ""), nil
}

// WeightTargets returns, for the current height, the weight at each BMI threshold of
// the active BMI table, in the caller's display unit.
func (a *ResultAssembler) WeightTargets(raw models.RawInput) ([]models.IntervalRow, error) {
	in, err := ToMetricInput(raw)
	if err != nil {
		return nil, err
	}
	def, _ := a.lookup(raw.Mode, models.MetricBMI)
	bands, err := def.table.Resolve(in)
	if err != nil {
		return nil, err
	}
	for i := range bands {
		kg, err := calculator.WeightForBMI(bands[i].Value, in.HeightCm)
		if err != nil {
			return nil, err
		}
		if raw.Unit == models.UnitImperial {
			kg = units.KgToLb(kg)
		}
		bands[i].Value = kg
	}
	return classifier.Describe(bands, units.MassSuffix(raw.Unit)), nil
}

func (a *ResultAssembler) lookup(mode models.Mode, metric models.MetricName) (metricDef, bool) {
	for _, s := range a.defs[mode] {
		if s.name == metric {
			return s, true
		}
	}
	return metricDef{}, false
}

// ToMetricInput validates unit and mode, converts display values to metric and builds
// the validated snapshot.
func ToMetricInput(raw models.RawInput) (models.MetricInput, error) {
	if !raw.Unit.Valid() {
		return models.MetricInput{}, &models.ValidationError{Field: "unit", Reason: fmt.Sprintf("unknown unit %q", string(raw.Unit))}
	}
	if !raw.Mode.Valid() {
		return models.MetricInput{}, &models.ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", string(raw.Mode))}
	}
	height, err := units.LengthToMetric(raw.Height, raw.Unit)
	if err != nil {
		return models.MetricInput{}, err
	}
	mass, err := units.MassToMetric(raw.Mass, raw.Unit)
	if err != nil {
		return models.MetricInput{}, err
	}
	waist, err := units.LengthToMetric(raw.Waist, raw.Unit)
	if err != nil {
		return models.MetricInput{}, err
	}
	hip, err := units.LengthToMetric(raw.Hip, raw.Unit)
	if err != nil {
		return models.MetricInput{}, err
	}
	return models.NewMetricInput(height, mass, waist, hip, raw.Age, raw.Gender)
}
