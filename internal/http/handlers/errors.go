// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them instead of
// on the localized `error` message.

package handlers

import "net/http"

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeConfiguration       = "configuration_error"
	ErrCodeUpstream            = "upstream_error"
	ErrCodeUpstreamUnavailable = "upstream_unavailable"
	ErrCodeInvalidPayload      = "invalid_upstream_payload"
	ErrCodeMethodNotAllowed    = "method_not_allowed"
)

// codeForStatus picks the code relayed alongside an upstream status.
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrCodeBadRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	}
	return ErrCodeUpstream
}
