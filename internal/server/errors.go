package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hanapwede/job-recommender/internal/ranking"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a path resource does not exist.
type ErrNotFound struct {
	Resource string
	ID       int64
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Resource, e.ID)
}

// message is the client-facing form, e.g. "Job fair not found".
func (e *ErrNotFound) message() string {
	if e.Resource == "" {
		return "Not found"
	}
	return strings.ToUpper(e.Resource[:1]) + e.Resource[1:] + " not found"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		notFoundErr   *ErrNotFound
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr), errors.Is(err, ranking.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr),
		errors.Is(err, ranking.ErrCandidateNotFound),
		errors.Is(err, ranking.ErrEmptyCorpus):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing message for err. Internal errors are
// not echoed back.
func errorMessage(err error) string {
	var notFoundErr *ErrNotFound
	switch {
	case errors.As(err, &notFoundErr):
		return notFoundErr.message()
	case errors.Is(err, ranking.ErrEmptyCorpus):
		return "No jobs found"
	case errors.Is(err, ranking.ErrCandidateNotFound):
		return "Candidate not found"
	case HTTPStatus(err) == http.StatusInternalServerError:
		return "Internal server error"
	default:
		return err.Error()
	}
}
