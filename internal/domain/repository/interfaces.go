package repository

import (
	"context"

	"BodyMetrics/internal/domain/models"
)

// ResultStore persists computed assessments and serves per-subject history.
type ResultStore interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, a *models.Assessment) error
	History(ctx context.Context, subjectID string, limit int) ([]models.StoredResult, error)
	Health(ctx context.Context) error
	Close() error
}

// ResultPublisher fans computed assessments out to downstream consumers.
type ResultPublisher interface {
	Publish(ctx context.Context, a *models.Assessment) error
	Close() error
}

// Metrics records calculator outcomes.
type Metrics interface {
	RecordComputation(mode, outcome string)
	RecordClassification(metric, label string)
	RecordNotComputable(metric string)
	RecordCache(hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
