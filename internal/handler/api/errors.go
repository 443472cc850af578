package api

import (
	"errors"

	domrepo "Astrolabe/internal/domain/repository"
	"Astrolabe/internal/services/chart"
	"Astrolabe/internal/services/ephemeris"
	"Astrolabe/internal/usecase"
	xhttp "Astrolabe/pkg/http"
)

// toAppError maps usecase errors onto API errors.
func toAppError(err error) *xhttp.AppError {
	switch {
	case chart.IsInputError(err):
		return xhttp.InvalidChartError(err.Error()).WithError(err)
	case errors.Is(err, domrepo.ErrChartNotFound):
		return xhttp.NotFoundError("chart not found").WithError(err)
	case errors.Is(err, usecase.ErrMissingChartRef):
		return xhttp.BadRequestError(usecase.ErrMissingChartRef.Error()).WithError(err)
	case errors.Is(err, ephemeris.ErrUnavailable):
		return xhttp.BadGatewayError("ephemeris service unavailable").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
