package models

// Requests for body-metrics HTTP and websocket endpoints. Defined in domain for reuse.

// MeasurementRequest carries one set of measurements in display units.
// The bounds hold in both unit systems and reject values no human body produces.
type MeasurementRequest struct {
	Height float64 `query:"height" json:"height" validate:"gte=30,lte=1000"`
	Mass   float64 `query:"mass" json:"mass" validate:"gte=1,lte=1500"`
	Waist  float64 `query:"waist" json:"waist" validate:"gte=10,lte=1000"`
	Hip    float64 `query:"hip" json:"hip" validate:"gte=10,lte=1000"`
	Age    float64 `query:"age" json:"age" validate:"gte=0,lte=150"`
	Gender string  `query:"gender" json:"gender" default:"average" validate:"max=16"`
	Unit   string  `query:"unit" json:"unit" validate:"omitempty,oneof=metric imperial"`
	Mode   string  `query:"mode" json:"mode" validate:"omitempty,oneof=basic detailed"`
}

// ToRaw converts the request into core input, filling unit and mode from the defaults
// when the caller left them out. Gender is matched case-insensitively.
func (r MeasurementRequest) ToRaw(defUnit DisplayUnit, defMode Mode) (RawInput, error) {
	gender, err := ParseGender(r.Gender)
	if err != nil {
		return RawInput{}, err
	}
	unit := DisplayUnit(r.Unit)
	if unit == "" {
		unit = defUnit
	}
	mode := Mode(r.Mode)
	if mode == "" {
		mode = defMode
	}
	return RawInput{
		Height: r.Height,
		Mass:   r.Mass,
		Waist:  r.Waist,
		Hip:    r.Hip,
		Age:    r.Age,
		Gender: gender,
		Unit:   unit,
		Mode:   mode,
	}, nil
}

type ComputeRequest struct {
	MeasurementRequest
	SubjectID string `json:"subject_id" validate:"omitempty,max=128"`
}

type ThresholdsRequest struct {
	Metric string `param:"metric" validate:"required"`
	MeasurementRequest
}

// MetricName resolves the path parameter.
func (r ThresholdsRequest) MetricName() (MetricName, error) {
	return ParseMetricName(r.Metric)
}

type ConvertRequest struct {
	Kind  string  `query:"kind" json:"kind" validate:"required,oneof=length mass"`
	Value float64 `query:"value" json:"value" validate:"gte=0"`
	To    string  `query:"to" json:"to" validate:"required,oneof=metric imperial"`
}

type ConvertResponse struct {
	Value   float64 `json:"value"`
	Display float64 `json:"display"`
	Unit    string  `json:"unit"`
}

type HistoryRequest struct {
	SubjectID string `query:"subject_id" json:"subject_id" validate:"required,max=128"`
	Limit     int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
}
