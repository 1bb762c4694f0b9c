package api

import (
	"errors"

	models "BodyMetrics/internal/domain/models"
	xhttp "BodyMetrics/pkg/http"
	xlogger "BodyMetrics/pkg/logger"
)

// toAppError maps core errors onto HTTP errors. Unknown errors are logged and hidden.
func toAppError(l *xlogger.Logger, op string, err error) *xhttp.AppError {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return xhttp.ValidationFailed(verr.Field, verr.Error())
	}
	var cerr *models.ConfigurationError
	if errors.As(err, &cerr) {
		l.Error(op+" threshold table misconfigured", xlogger.Error(err))
		return xhttp.ConfigurationFailed(cerr.Error()).WithError(err)
	}
	l.Error(op+" failed", xlogger.Error(err))
	return xhttp.InternalError("Something went wrong").WithError(err)
}
