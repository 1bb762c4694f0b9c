package models

import "time"

// MeasurementEvent is the payload consumed from the measurements topic. The
// measurements are inlined and carry the same bounds as the HTTP requests.
type MeasurementEvent struct {
	SubjectID  string    `json:"subject_id" validate:"required,max=128"`
	MeasuredAt time.Time `json:"measured_at"`
	MeasurementRequest
}

// ResultEvent is published to the results topic once an assessment is computed.
type ResultEvent struct {
	AssessmentID string         `json:"assessment_id"`
	SubjectID    string         `json:"subject_id"`
	MeasuredAt   time.Time      `json:"measured_at"`
	ComputedAt   time.Time      `json:"computed_at"`
	Mode         Mode           `json:"mode"`
	Results      []ResultRecord `json:"results"`
}

// NewResultEvent wraps an assessment for publishing.
func NewResultEvent(a *Assessment, computedAt time.Time) ResultEvent {
	return ResultEvent{
		AssessmentID: a.ID,
		SubjectID:    a.SubjectID,
		MeasuredAt:   a.MeasuredAt,
		ComputedAt:   computedAt,
		Mode:         a.Mode,
		Results:      a.Results,
	}
}
