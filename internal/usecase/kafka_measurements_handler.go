package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"BodyMetrics/internal/domain/models"
	drepo "BodyMetrics/internal/domain/repository"
	xhttp "BodyMetrics/pkg/http"
	pkgkafka "BodyMetrics/pkg/kafka"
	applogger "BodyMetrics/pkg/logger"
)

// KafkaMeasurementsHandler consumes measurement events and records assessments.
type KafkaMeasurementsHandler struct {
	topic   string
	svc     *AssessmentService
	metrics drepo.Metrics
	log     *applogger.Logger
}

func NewKafkaMeasurementsHandler(topic string, svc *AssessmentService, metrics drepo.Metrics, log *applogger.Logger) *KafkaMeasurementsHandler {
	if log == nil {
		log = applogger.Nop()
	}
	return &KafkaMeasurementsHandler{topic: topic, svc: svc, metrics: metrics, log: log}
}

func (h *KafkaMeasurementsHandler) Topic() string { return h.topic }

// Handle decodes and validates one MeasurementEvent. Payloads that can never succeed
// are marked permanent so the consumer sends them straight to the DLQ.
func (h *KafkaMeasurementsHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.MeasurementEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(fmt.Errorf("decode measurement: %w", err))
	}
	if verr := xhttp.ValidateRequest(ctx, &ev); verr != nil {
		h.metrics.RecordError("consumer_invalid")
		return pkgkafka.Permanent(eventValidationError(verr))
	}
	raw, err := ev.ToRaw(h.svc.Defaults())
	if err != nil {
		h.metrics.RecordError("consumer_invalid")
		return pkgkafka.Permanent(err)
	}

	a, err := h.svc.Assess(ctx, ev.SubjectID, ev.MeasuredAt, raw)
	if err != nil {
		if models.IsValidation(err) || models.IsConfiguration(err) {
			h.metrics.RecordError("consumer_invalid")
			return pkgkafka.Permanent(err)
		}
		return err
	}
	h.metrics.RecordLatency("ingest_e2e_seconds", h.svc.now().Sub(a.MeasuredAt).Seconds())
	return nil
}

// eventValidationError reports the first rejected field of an event.
func eventValidationError(verr interface{}) error {
	if errs, ok := verr.([]xhttp.ValidationError); ok && len(errs) > 0 {
		return &models.ValidationError{Field: errs[0].Field, Reason: errs[0].Message}
	}
	return &models.ValidationError{Reason: fmt.Sprint(verr)}
}

var _ pkgkafka.MessageHandler = (*KafkaMeasurementsHandler)(nil)
