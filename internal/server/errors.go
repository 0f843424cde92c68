// Package server provides the HTTP API over the surge pipeline.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/pts-radar/internal/pipeline"
)

// ErrRunInProgress indicates a streaming run was requested while another run holds the lock
var ErrRunInProgress = errors.New("a run is already in progress")

// ErrValidation indicates a malformed query parameter
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var inputErr *pipeline.InputError
	var validationErr *ErrValidation
	var stepErr *pipeline.StepError
	switch {
	case errors.As(err, &inputErr), errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrRunInProgress):
		return http.StatusConflict
	case errors.As(err, &stepErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorCode returns the machine-readable code paired with HTTPStatus.
func errorCode(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return "INVALID_INPUT"
	case http.StatusConflict:
		return "RUN_IN_PROGRESS"
	case http.StatusBadGateway:
		return "UPSTREAM_FAILURE"
	default:
		return "INTERNAL_ERROR"
	}
}
