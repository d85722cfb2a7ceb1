package talkjs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tbourn/go-talkjs-bff/internal/domain"
)

// ErrMissingCursor stops a user walk when a full page ends with a record
// that carries no id to continue from.
var ErrMissingCursor = errors.New("talkjs: page ended without a cursor id")

// ConfigurationError reports that the credential pair for an environment is
// incomplete. It is never retried.
type ConfigurationError struct {
	Environment domain.Environment
	Missing     []string // e.g. "app_id", "secret"
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("talkjs: %s credentials incomplete (missing %s)",
		e.Environment, strings.Join(e.Missing, ", "))
}

// UpstreamError is a non-2xx response or a transport failure from TalkJS.
//
// Status is 0 when no response was received. Body holds the upstream
// response as JSON (raw text is wrapped as a JSON string) and may be nil.
type UpstreamError struct {
	Status  int
	Body    json.RawMessage
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("talkjs: upstream responded %d: %s", e.Status, e.Message)
	}
	return "talkjs: " + e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// HasStatus reports whether an HTTP response was received.
func (e *UpstreamError) HasStatus() bool { return e.Status > 0 }

// IsNotFound reports whether TalkJS answered 404.
func (e *UpstreamError) IsNotFound() bool { return e.Status == http.StatusNotFound }

// AsUpstream unwraps err into an *UpstreamError.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	ue, ok := AsUpstream(err)
	return ok && ue.IsNotFound()
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
