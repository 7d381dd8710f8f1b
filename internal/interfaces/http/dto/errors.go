package dto

import (
	"errors"
	"net/http"

	"github.com/bizgrid/backend/internal/domain/shared"
)

// Transport error codes. Domain failures use the shared.Code* values unchanged.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound   = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeUnauthenticated: http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRouteNotFound:   http.StatusNotFound,

	// Authorization. A hidden row is reported as NOT_FOUND by the services.
	shared.CodeAuthorizationDenied: http.StatusForbidden,
	shared.CodeNoTenant:            http.StatusForbidden,

	// Input
	shared.CodeInvalidInput:       http.StatusBadRequest,
	shared.CodeIdentifierRequired: http.StatusBadRequest,

	// Resources and concurrency
	shared.CodeNotFound:          http.StatusNotFound,
	shared.CodeAlreadyExists:     http.StatusConflict,
	shared.CodeStaleState:        http.StatusConflict,
	shared.CodeDuplicateRace:     http.StatusConflict,
	shared.CodeInvalidTransition: http.StatusConflict,

	// Business rules
	shared.CodeInvalidState:             http.StatusUnprocessableEntity,
	shared.CodeHierarchyCycle:           http.StatusUnprocessableEntity,
	shared.CodeMissingTaxCode:           http.StatusUnprocessableEntity,
	shared.CodeMasterProductNotApproved: http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock:        http.StatusUnprocessableEntity,
	shared.CodeInvalidSerial:            http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorInfoFor converts err into the code, message and status sent to clients.
// Errors that are not domain errors never leak their text.
func ErrorInfoFor(err error) (status int, code, message string) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message
	}
	return http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred"
}
