package dto

import "net/http"

// Error kind constants
// Format: ERR_<CATEGORY>

const (
	// ErrKindUnknown is used when the error type is unknown
	ErrKindUnknown = "ERR_UNKNOWN"
	// ErrKindInternal is used for internal server errors
	ErrKindInternal = "ERR_INTERNAL"
	// ErrKindValidation is used when request input fails validation
	ErrKindValidation = "ERR_VALIDATION"
	// ErrKindBadRequest is used for malformed requests
	ErrKindBadRequest = "ERR_BAD_REQUEST"
	// ErrKindUnauthorized is used when authentication is required but missing/invalid
	ErrKindUnauthorized = "ERR_UNAUTHORIZED"
	// ErrKindForbidden is used when the caller lacks access to the mobile API
	ErrKindForbidden = "ERR_FORBIDDEN"
	// ErrKindNotFound is used when a document is not found
	ErrKindNotFound = "ERR_NOT_FOUND"
	// ErrKindAlreadyExists is used when creating a duplicate document
	ErrKindAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrKindConflict is used for document-state and idempotency conflicts
	ErrKindConflict = "ERR_CONFLICT"
	// ErrKindPrecondition is used when a required precondition (an open
	// shift, typically) is not satisfied
	ErrKindPrecondition = "ERR_PRECONDITION_FAILED"
	// ErrKindDependency is used when the record store or another required
	// dependency is unreachable; clients should retry with backoff
	ErrKindDependency = "ERR_DEPENDENCY_UNAVAILABLE"
)

// ErrorKindHTTPStatus maps error kinds to HTTP status codes
var ErrorKindHTTPStatus = map[string]int{
	ErrKindUnknown:       http.StatusInternalServerError,
	ErrKindInternal:      http.StatusInternalServerError,
	ErrKindValidation:    http.StatusBadRequest,
	ErrKindBadRequest:    http.StatusBadRequest,
	ErrKindUnauthorized:  http.StatusUnauthorized,
	ErrKindForbidden:     http.StatusForbidden,
	ErrKindNotFound:      http.StatusNotFound,
	ErrKindAlreadyExists: http.StatusConflict,
	ErrKindConflict:      http.StatusConflict,
	ErrKindPrecondition:  http.StatusPreconditionFailed,
	ErrKindDependency:    http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error kind.
// Returns 500 Internal Server Error if the kind is not found.
func GetHTTPStatus(kind string) int {
	if status, ok := ErrorKindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorKindMapping maps domain error codes to wire error kinds.
var DomainErrorKindMapping = map[string]string{
	"NOT_FOUND":              ErrKindNotFound,
	"ALREADY_EXISTS":         ErrKindAlreadyExists,
	"INVALID_INPUT":          ErrKindValidation,
	"VALIDATION_ERROR":       ErrKindValidation,
	"ACCESS_DENIED":          ErrKindForbidden,
	"UNAUTHORIZED":           ErrKindUnauthorized,
	"PRECONDITION_FAILED":    ErrKindPrecondition,
	"CONFLICT":               ErrKindConflict,
	"DEPENDENCY_UNAVAILABLE": ErrKindDependency,
	"INTERNAL_ERROR":         ErrKindInternal,
}

// NormalizeErrorKind converts a domain error code to its wire kind.
// Codes already in the wire format or unknown are returned as-is.
func NormalizeErrorKind(code string) string {
	if kind, ok := DomainErrorKindMapping[code]; ok {
		return kind
	}
	return code
}
