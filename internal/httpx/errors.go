package httpx

import (
	"net/http"

	"github.com/askinbilir/bookmarker-api/internal/errx"
)

// ErrorKindToStatus maps errx.Kind to HTTP status codes.
func ErrorKindToStatus(kind errx.Kind) int {
	switch kind {
	case errx.NotFound:
		return http.StatusNotFound
	case errx.Conflict:
		return http.StatusConflict
	case errx.Invalid:
		return http.StatusBadRequest
	case errx.Unauthorized:
		return http.StatusUnauthorized
	case errx.RateLimited:
		return http.StatusTooManyRequests
	case errx.Exhausted, errx.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorKindToCode maps errx.Kind to error codes for JSON responses.
func ErrorKindToCode(kind errx.Kind) string {
	switch kind {
	case errx.NotFound:
		return "not_found"
	case errx.Conflict:
		return "conflict"
	case errx.Invalid:
		return "invalid_input"
	case errx.Unauthorized:
		return "unauthorized"
	case errx.RateLimited:
		return "rate_limited"
	case errx.Exhausted:
		return "exhausted"
	case errx.Unavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}

// WriteKindError writes the error envelope for kind using the kind's status and code.
func WriteKindError(w http.ResponseWriter, kind errx.Kind, message string, details any) {
	WriteError(w, ErrorKindToStatus(kind), ErrorKindToCode(kind), message, details)
}
