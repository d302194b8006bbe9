package dto

import "net/http"

// Error codes used by the HTTP layer itself
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeUnauthorized is used when authentication is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks a role or permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeConflict is used when an Idempotency-Key is still in flight
	ErrCodeConflict = "CONFLICT"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
)

// ErrorCodeHTTPStatus maps domain and HTTP-layer error codes to HTTP status
// codes. Business rule violations map to 422 so clients can tell a bad
// request apart from a well-formed one the domain rejected.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeConflict:     http.StatusConflict,

	"NOT_FOUND":            http.StatusNotFound,
	"DUPLICATE_KEY":        http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	"INSUFFICIENT_STOCK":           http.StatusUnprocessableEntity,
	"INSUFFICIENT_AVAILABLE_STOCK": http.StatusUnprocessableEntity,
	"INSUFFICIENT_RESERVED_STOCK":  http.StatusUnprocessableEntity,

	"INVALID_TRANSITION":          http.StatusUnprocessableEntity,
	"MANUAL_RECEIVED_NOT_ALLOWED": http.StatusUnprocessableEntity,
	"RECEIPT_BEFORE_SEND":         http.StatusUnprocessableEntity,
	"OVER_RECEIPT":                http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
