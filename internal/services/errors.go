package services

import (
	"errors"
	"net/http"

	goa "goa.design/goa/v3/pkg"

	apperrors "educhain/pkg/errors"
)

// Goa error names used by the HTTP transport.
const (
	ErrNameBadRequest       = "bad_request"
	ErrNameConflict         = "conflict"
	ErrNameStorage          = "storage_error"
	ErrNameMethodNotAllowed = "method_not_allowed"
	ErrNameUnavailable      = "service_unavailable"
	ErrNameInternal         = "internal"
)

// ErrMethodNotAllowed is returned by routes called with the wrong verb.
var ErrMethodNotAllowed = apperrors.New(apperrors.ErrCodeMethodNotAllowed, "Method not allowed")

// StatusCode maps an error to its HTTP status code.
//
// Duplicate emails stay on 500 like any other storage failure; the error
// name still tells them apart.
func StatusCode(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case apperrors.ErrCodeGatewayPending:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ToServiceError converts err into a goa service error carrying the name
// the transport reports in the goa-error header.
func ToServiceError(err error) *goa.ServiceError {
	var svcErr *goa.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeValidation:
		return goa.NewServiceError(err, ErrNameBadRequest, false, false, false)
	case apperrors.ErrCodeConstraint:
		return goa.NewServiceError(err, ErrNameConflict, false, false, false)
	case apperrors.ErrCodeStorage:
		return goa.NewServiceError(err, ErrNameStorage, false, true, true)
	case apperrors.ErrCodeMethodNotAllowed:
		return goa.NewServiceError(err, ErrNameMethodNotAllowed, false, false, false)
	case apperrors.ErrCodeGatewayPending:
		return goa.NewServiceError(err, ErrNameUnavailable, false, true, false)
	default:
		return goa.NewServiceError(err, ErrNameInternal, false, false, true)
	}
}
