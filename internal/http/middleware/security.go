// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, which attaches a conservative set of
// HTTP security headers for a JSON API sitting in front of TalkJS, plus
// LimitBody, which caps inbound request bodies.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the headers emitted by SecurityHeaders.
//
// HSTS is only sent for HTTPS requests; HSTSMaxAge defaults to 180 days.
// ExposeHeaders are added to Access-Control-Expose-Headers so browser clients
// can read them; X-Request-ID is exposed whenever the response carries it.
type SecurityOptions struct {
	EnableHSTS    bool
	HSTSMaxAge    time.Duration
	NoStore       bool // Cache-Control: no-store (+ legacy Pragma/Expires)
	EnablePolicy  bool // Permissions-Policy and X-Permitted-Cross-Domain-Policies
	ExposeHeaders []string
}

const exposeHeader = "Access-Control-Expose-Headers"

// SecurityHeaders returns a Gin middleware adding security headers to every
// response:
//
//   - always: X-Content-Type-Options, X-Frame-Options, Referrer-Policy
//   - EnablePolicy: Permissions-Policy, X-Permitted-Cross-Domain-Policies
//   - NoStore: Cache-Control, Pragma, Expires
//   - EnableHSTS on HTTPS: Strict-Transport-Security
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}
		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		if h.Get(requestIDHeader) != "" {
			appendExpose(h, requestIDHeader)
		}
		for _, name := range opt.ExposeHeaders {
			appendExpose(h, name)
		}

		c.Next()
	}
}

// appendExpose adds name to Access-Control-Expose-Headers without duplicates.
func appendExpose(h http.Header, name string) {
	cur := h.Get(exposeHeader)
	if cur == "" {
		h.Set(exposeHeader, name)
		return
	}
	for _, p := range strings.Split(cur, ",") {
		if strings.EqualFold(strings.TrimSpace(p), name) {
			return
		}
	}
	h.Set(exposeHeader, cur+", "+name)
}

// isHTTPS reports whether the request used HTTPS directly or behind a proxy
// that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// LimitBody caps the request body at n bytes. Reads past the cap fail, which
// surfaces as a bind error (400) in handlers.
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
