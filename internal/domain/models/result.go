package models

import (
	"time"
)

// Severity is the presentation tag attached to a band.
type Severity int

const (
	SeverityNone     Severity = -1 // not applicable
	SeverityLow      Severity = 0
	SeverityHealthy  Severity = 1
	SeverityCaution  Severity = 2
	SeverityCritical Severity = 3
)

func (s Severity) Valid() bool {
	return s >= SeverityLow && s <= SeverityCritical
}

// Band is a threshold after its value has been resolved for one input.
type Band struct {
	Value    float64  `json:"value"`
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// ResultRecord is the outcome for one metric of one computation.
type ResultRecord struct {
	Metric     MetricName `json:"metric"`
	Value      float64    `json:"value"` // rounded to Digits
	Raw        float64    `json:"raw"`
	Digits     int        `json:"digits"`
	Label      string     `json:"label,omitempty"`
	Severity   Severity   `json:"severity"`
	Applicable bool       `json:"applicable"`
}

// NotApplicable builds the record emitted when a metric has no result.
func NotApplicable(metric MetricName, digits int) ResultRecord {
	return ResultRecord{
		Metric:   metric,
		Digits:   digits,
		Severity: SeverityNone,
	}
}

// IntervalRow describes one band of a threshold table in words.
type IntervalRow struct {
	Interval string   `json:"interval"`
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
}

// Assessment is a computation bound to a subject and a point in time.
type Assessment struct {
	ID         string         `json:"id"`
	SubjectID  string         `json:"subject_id"`
	MeasuredAt time.Time      `json:"measured_at"`
	Mode       Mode           `json:"mode"`
	Unit       DisplayUnit    `json:"unit"`
	Results    []ResultRecord `json:"results"`
}

// StoredResult is one row of result history.
type StoredResult struct {
	AssessmentID string    `json:"assessment_id"`
	SubjectID    string    `json:"subject_id"`
	MeasuredAt   time.Time `json:"measured_at"`
	Mode         Mode      `json:"mode"`
	ResultRecord
}
