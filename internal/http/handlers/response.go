// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints:
// the error envelope, JSON success writers and the raw relay used when an
// upstream body is passed through untouched.
//
// Conventions:
//   - All error responses carry an `error` message (localized) and a stable
//     `code`; `details` holds the upstream response body when there is one.
//   - `fail()` centralizes error logging and formatting, ensuring 5xx responses
//     are logged with request context for observability.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "error": "Conversación con ID c1 no encontrada."
//	}
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-talkjs-bff/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Error string `json:"error" example:"Conversación con ID c1 no encontrada."`
	// Upstream response body, when the failure came from TalkJS
	Details json.RawMessage `json:"details,omitempty" swaggertype:"object"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string, details json.RawMessage) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Error:     msg,
		Details:   details,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for callers outside this package
// (router fallbacks). It never carries details.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg, nil) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// relay writes an upstream JSON body as-is with 200.
func relay(c *gin.Context, raw json.RawMessage) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
