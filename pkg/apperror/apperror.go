package apperror

import (
	"errors"
	"net/http"
)

// Stable error kinds surfaced by the workflow engine. Services return these
// (usually wrapped with fmt.Errorf and %w for context); handlers translate
// them to HTTP codes via HTTPStatus. Anything else is treated as an internal
// persistence failure.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrNotVerified     = errors.New("actor is not verified")
	ErrInvalidState    = errors.New("operation not permitted in current state")
	ErrRequestNotOpen  = errors.New("request is not available for fulfillment")
	ErrOverCommit      = errors.New("fulfillment exceeds remaining quantity")
	ErrAlreadyAssigned = errors.New("delivery already assigned")
	ErrNotAssigned     = errors.New("volunteer does not hold this delivery")
	ErrSameAdmin       = errors.New("same admin cannot provide both approvals")
	ErrValidation      = errors.New("invalid input")
)

// HTTPStatus maps an error to the HTTP status code the API reports for it.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrNotVerified):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrRequestNotOpen),
		errors.Is(err, ErrOverCommit),
		errors.Is(err, ErrAlreadyAssigned),
		errors.Is(err, ErrNotAssigned),
		errors.Is(err, ErrSameAdmin):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsDomain reports whether err is one of the stable kinds above, as opposed
// to an unexpected persistence failure.
func IsDomain(err error) bool {
	return HTTPStatus(err) != http.StatusInternalServerError
}
