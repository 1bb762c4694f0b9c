package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"BodyMetrics/internal/domain/models"
	"BodyMetrics/internal/domain/repository"
	pkgkafka "BodyMetrics/pkg/kafka"
)

// ResultsTable is the history table name inside the configured database.
const ResultsTable = "results"

type sqlDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PingContext(ctx context.Context) error
	Close() error
}

// ClickHouseResultStore implements ResultStore for ClickHouse.
type ClickHouseResultStore struct {
	db       sqlDB
	database string
	table    string
}

// NewClickHouseResultStore creates ClickHouse storage for computed results.
func NewClickHouseResultStore(db *sql.DB, database string) *ClickHouseResultStore {
	return newClickHouseResultStore(db, database)
}

func newClickHouseResultStore(db sqlDB, database string) *ClickHouseResultStore {
	if database == "" {
		database = "default"
	}
	return &ClickHouseResultStore{db: db, database: database, table: database + "." + ResultsTable}
}

// SchemaStatements returns the idempotent DDL for the results table.
func (s *ClickHouseResultStore) SchemaStatements() []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	assessment_id String,
	subject_id String,
	measured_at DateTime64(3, 'UTC'),
	mode LowCardinality(String),
	position UInt8,
	metric LowCardinality(String),
	value Float64,
	raw Float64,
	digits UInt8,
	label LowCardinality(String),
	severity Int8,
	applicable Bool,
	inserted_at DateTime DEFAULT now()
) ENGINE = MergeTree
ORDER BY (subject_id, measured_at, assessment_id, position)`, s.table),
	}
}

func (s *ClickHouseResultStore) Init(ctx context.Context) error {
	for _, stmt := range s.SchemaStatements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Store writes one row per result record in a single multi-row insert.
func (s *ClickHouseResultStore) Store(ctx context.Context, a *models.Assessment) error {
	if a == nil || len(a.Results) == 0 {
		return nil
	}
	values := make([]string, 0, len(a.Results))
	args := make([]any, 0, len(a.Results)*12)
	for i, r := range a.Results {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			a.ID,
			a.SubjectID,
			a.MeasuredAt.UTC(),
			string(a.Mode),
			uint8(i),
			string(r.Metric),
			r.Value,
			r.Raw,
			uint8(r.Digits),
			r.Label,
			int8(r.Severity),
			r.Applicable,
		)
	}
	q := fmt.Sprintf("INSERT INTO %s (assessment_id, subject_id, measured_at, mode, position, metric, value, raw, digits, label, severity, applicable) VALUES %s",
		s.table, strings.Join(values, ","))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

// History returns the latest result rows for a subject, newest assessment first.
func (s *ClickHouseResultStore) History(ctx context.Context, subjectID string, limit int) ([]models.StoredResult, error) {
	q := fmt.Sprintf("SELECT assessment_id, subject_id, measured_at, mode, metric, value, raw, digits, label, severity, applicable FROM %s WHERE subject_id = ? ORDER BY measured_at DESC, assessment_id, position LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, subjectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StoredResult
	for rows.Next() {
		var (
			r        models.StoredResult
			mode     string
			metric   string
			digits   uint8
			severity int8
		)
		if err := rows.Scan(&r.AssessmentID, &r.SubjectID, &r.MeasuredAt, &mode, &metric,
			&r.Value, &r.Raw, &digits, &r.Label, &severity, &r.Applicable); err != nil {
			return nil, err
		}
		r.Mode = models.Mode(mode)
		r.Metric = models.MetricName(metric)
		r.Digits = int(digits)
		r.Severity = models.Severity(severity)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ClickHouseResultStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *ClickHouseResultStore) Close() error {
	return s.db.Close()
}

// KafkaResultPublisher implements ResultPublisher for Kafka.
type KafkaResultPublisher struct {
	producer resultProducer
	topic    string
	now      func() time.Time
}

type resultProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// NewKafkaResultPublisher creates a publisher keyed by subject id.
func NewKafkaResultPublisher(producer *pkgkafka.Producer, topic string) repository.ResultPublisher {
	return &KafkaResultPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *KafkaResultPublisher) Publish(ctx context.Context, a *models.Assessment) error {
	key := a.SubjectID
	if key == "" {
		key = a.ID
	}
	return p.producer.Publish(ctx, p.topic, []byte(key), models.NewResultEvent(a, p.now().UTC()))
}

// Close flushes and closes the underlying producer.
func (p *KafkaResultPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher discards assessments when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.Assessment) error { return nil }
func (NoopPublisher) Close() error                                    { return nil }
