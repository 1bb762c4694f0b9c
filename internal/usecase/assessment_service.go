package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"BodyMetrics/internal/domain/models"
	drepo "BodyMetrics/internal/domain/repository"
	"BodyMetrics/internal/services/units"
	"BodyMetrics/pkg/cache"
	applogger "BodyMetrics/pkg/logger"
)

const computeCachePrefix = "bodymetrics:compute"

// AssessmentConfig carries the service defaults.
type AssessmentConfig struct {
	DefaultUnit models.DisplayUnit
	DefaultMode models.Mode
	CacheTTL    time.Duration
}

// AssessmentService is the application entry point shared by HTTP, WebSocket and
// Kafka front ends.
type AssessmentService struct {
	assembler *ResultAssembler
	cache     cache.Service
	store     drepo.ResultStore
	pub       drepo.ResultPublisher
	metrics   drepo.Metrics
	log       *applogger.Logger
	cfg       AssessmentConfig

	now   func() time.Time
	newID func() string
}

// NewAssessmentService wires the assembler with its cache, history and fan-out.
func NewAssessmentService(
	assembler *ResultAssembler,
	c cache.Service,
	store drepo.ResultStore,
	pub drepo.ResultPublisher,
	metrics drepo.Metrics,
	log *applogger.Logger,
	cfg AssessmentConfig,
) *AssessmentService {
	if c == nil {
		c = cache.NewNoopCache()
	}
	if log == nil {
		log = applogger.Nop()
	}
	if !cfg.DefaultUnit.Valid() {
		cfg.DefaultUnit = models.UnitMetric
	}
	if !cfg.DefaultMode.Valid() {
		cfg.DefaultMode = models.ModeDetailed
	}
	return &AssessmentService{
		assembler: assembler,
		cache:     c,
		store:     store,
		pub:       pub,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Defaults returns the unit and mode applied to inputs that omit them.
func (s *AssessmentService) Defaults() (models.DisplayUnit, models.Mode) {
	return s.cfg.DefaultUnit, s.cfg.DefaultMode
}

func (s *AssessmentService) normalize(raw models.RawInput) models.RawInput {
	if raw.Unit == "" {
		raw.Unit = s.cfg.DefaultUnit
	}
	if raw.Mode == "" {
		raw.Mode = s.cfg.DefaultMode
	}
	return raw
}

// Compute returns the classified results for raw, served from cache when possible.
func (s *AssessmentService) Compute(ctx context.Context, raw models.RawInput) ([]models.ResultRecord, error) {
	raw = s.normalize(raw)
	start := s.now()
	defer func() { s.metrics.RecordLatency("compute", s.now().Sub(start).Seconds()) }()

	hash, err := cache.HashValue(raw)
	if err != nil {
		return nil, fmt.Errorf("cache key: %w", err)
	}
	key := cache.GenerateKey(computeCachePrefix, hash)

	if cached, err := cache.GetTyped[[]models.ResultRecord](ctx, s.cache, key); err == nil {
		s.metrics.RecordCache(true)
		s.metrics.RecordComputation(string(raw.Mode), "cached")
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("cache get failed", applogger.String("key", key), applogger.Error(err))
	}
	s.metrics.RecordCache(false)

	results, err := s.assembler.Compute(raw)
	if err != nil {
		s.metrics.RecordComputation(string(raw.Mode), outcome(err))
		return nil, err
	}
	s.metrics.RecordComputation(string(raw.Mode), "ok")
	for _, r := range results {
		if !r.Applicable {
			s.metrics.RecordNotComputable(string(r.Metric))
			continue
		}
		s.metrics.RecordClassification(string(r.Metric), r.Label)
	}

	if err := s.cache.Set(ctx, key, results, s.cfg.CacheTTL); err != nil {
		s.log.Warn("cache set failed", applogger.String("key", key), applogger.Error(err))
	}
	return results, nil
}

// Assess computes raw for a subject, persists the results and publishes them.
func (s *AssessmentService) Assess(ctx context.Context, subjectID string, measuredAt time.Time, raw models.RawInput) (*models.Assessment, error) {
	raw = s.normalize(raw)
	results, err := s.Compute(ctx, raw)
	if err != nil {
		return nil, err
	}
	if measuredAt.IsZero() {
		measuredAt = s.now()
	}
	a := &models.Assessment{
		ID:         s.newID(),
		SubjectID:  subjectID,
		MeasuredAt: measuredAt.UTC(),
		Mode:       raw.Mode,
		Unit:       raw.Unit,
		Results:    results,
	}
	if subjectID == "" {
		return a, nil
	}

	start := s.now()
	if err := s.store.Store(ctx, a); err != nil {
		s.metrics.RecordError("store")
		return nil, fmt.Errorf("store assessment: %w", err)
	}
	s.metrics.RecordLatency("store", s.now().Sub(start).Seconds())

	if err := s.pub.Publish(ctx, a); err != nil {
		s.metrics.RecordError("publish")
		return nil, fmt.Errorf("publish assessment: %w", err)
	}
	fields := []applogger.Field{
		applogger.String("assessment_id", a.ID),
		applogger.String("subject_id", subjectID),
		applogger.String("mode", string(a.Mode)),
	}
	if len(results) > 0 && results[0].Applicable {
		fields = append(fields, applogger.Float64(string(results[0].Metric), results[0].Value))
	}
	s.log.Debug("assessment recorded", fields...)
	return a, nil
}

// Describe returns the interval rows of one metric's table for raw.
func (s *AssessmentService) Describe(_ context.Context, metric models.MetricName, raw models.RawInput) ([]models.IntervalRow, error) {
	rows, err := s.assembler.DescribeThresholds(metric, s.normalize(raw))
	if err != nil {
		s.metrics.RecordError(outcome(err))
	}
	return rows, err
}

// WeightTargets returns the weights matching each BMI threshold at the current height.
func (s *AssessmentService) WeightTargets(_ context.Context, raw models.RawInput) ([]models.IntervalRow, error) {
	rows, err := s.assembler.WeightTargets(s.normalize(raw))
	if err != nil {
		s.metrics.RecordError(outcome(err))
	}
	return rows, err
}

// History returns stored result rows for subjectID, newest first.
func (s *AssessmentService) History(ctx context.Context, subjectID string, limit int) ([]models.StoredResult, error) {
	if subjectID == "" {
		return nil, &models.ValidationError{Field: "subject_id", Reason: "is required"}
	}
	rows, err := s.store.History(ctx, subjectID, limit)
	if err != nil {
		s.metrics.RecordError("history")
		return nil, fmt.Errorf("history: %w", err)
	}
	return rows, nil
}

// Convert translates a value expressed in the opposite unit system into req.To.
func (s *AssessmentService) Convert(req models.ConvertRequest) (models.ConvertResponse, error) {
	to := models.DisplayUnit(req.To)
	var (
		v, display float64
		err        error
	)
	// the metric side of the pair is the canonical value display rounds from
	canonical := func(converted float64) float64 {
		if to == models.UnitMetric {
			return converted
		}
		return req.Value
	}
	switch req.Kind {
	case "length":
		if v, err = units.ConvertLength(req.Value, to); err == nil {
			display, err = units.DisplayLength(canonical(v), to)
		}
	case "mass":
		if v, err = units.ConvertMass(req.Value, to); err == nil {
			display, err = units.DisplayMass(canonical(v), to)
		}
	default:
		err = &models.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", req.Kind)}
	}
	if err != nil {
		return models.ConvertResponse{}, err
	}
	unit := units.MassSuffix(to)
	if req.Kind == "length" {
		unit = "cm"
		if to == models.UnitImperial {
			unit = "in"
		}
	}
	return models.ConvertResponse{Value: v, Display: display, Unit: unit}, nil
}

func outcome(err error) string {
	switch {
	case models.IsValidation(err):
		return "invalid"
	case models.IsConfiguration(err):
		return "config_error"
	default:
		return "error"
	}
}
