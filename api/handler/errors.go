package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/spamsum/models"
)

// asAPIError returns err as an *models.APIError, wrapping unknown errors as
// INTERNAL_ERROR.
func asAPIError(err error) *models.APIError {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return models.NewAPIError(models.ErrCodeInternal, err.Error(), err)
}

// respondError maps an error to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	apiErr := asAPIError(err)
	c.JSON(mapErrorToStatus(apiErr), models.ErrorResponse{
		Error: apiErr.ToDetail(),
	})
}

// respondBindError reports a request body that failed to bind or validate.
// A body cut off by http.MaxBytesReader is reported as too large.
func respondBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, models.NewAPIError(models.ErrCodeInputTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err))
		return
	}
	respondError(c, models.NewAPIError(models.ErrCodeInvalidInput, err.Error(), err))
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.APIError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput, models.ErrCodeInvalidSignature:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeNotFound:
		return http.StatusNotFound // 404
	case models.ErrCodeInputTooLarge:
		return http.StatusRequestEntityTooLarge // 413
	case models.ErrCodeNormalize:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}
