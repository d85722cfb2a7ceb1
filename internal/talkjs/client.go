// Package talkjs is the outbound side of the proxy: it mints short-lived
// application tokens and calls the TalkJS REST API with them.
//
// Every call mints its own token; nothing is cached between calls. Errors
// come back as *ConfigurationError (no request was sent) or *UpstreamError
// (non-2xx status or transport failure) and are never retried here.
package talkjs

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-talkjs-bff/internal/domain"
)

// DefaultBaseURL is the public TalkJS REST API host.
const DefaultBaseURL = "https://api.talkjs.com"

// TokenMinter signs a fresh token for an environment.
type TokenMinter interface {
	Mint(env domain.Environment) (Token, error)
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client issues authenticated requests against the TalkJS REST API.
// It is safe for concurrent use.
type Client struct {
	http    *resty.Client
	baseURL string
	minter  TokenMinter
	log     zerolog.Logger
	tracer  trace.Tracer
}

// NewClient returns a Client that authenticates with tokens from minter.
func NewClient(minter TokenMinter, opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "go-talkjs-bff/1.0")

	lg := log.Logger
	if opts.Logger != nil {
		lg = *opts.Logger
	}

	return &Client{
		http:    rc,
		baseURL: base,
		minter:  minter,
		log:     lg.With().Str("component", "talkjs-client").Logger(),
		tracer:  otel.Tracer("github.com/tbourn/go-talkjs-bff/internal/talkjs"),
	}
}

// Call sends method to <base>/v1/<appId><endpoint> for env and returns the
// raw JSON body of a 2xx response. body is sent only for methods that carry
// one (POST, PUT, PATCH).
func (c *Client) Call(ctx context.Context, endpoint, method string, env domain.Environment, body any) (json.RawMessage, error) {
	method = strings.ToUpper(method)
	tok, err := c.minter.Mint(env)
	if err != nil {
		c.log.Error().Err(err).Str("environment", env.String()).Msg("token mint failed")
		return nil, err
	}

	label := endpointLabel(endpoint)
	ctx, span := c.tracer.Start(ctx, "talkjs "+method+" "+label,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("talkjs.endpoint", label),
			attribute.String("talkjs.environment", env.String()),
		),
	)
	defer span.End()

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(tok.Value).
		SetHeader("Content-Type", "application/json")
	if body != nil && carriesBody(method) {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, c.baseURL+"/v1/"+tok.AppID+endpoint)
	if err != nil {
		observe(method, label, "error", start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.log.Warn().Err(err).Str("method", method).Str("endpoint", label).Msg("talkjs request failed")
		return nil, &UpstreamError{Message: err.Error(), Err: err}
	}

	status := resp.StatusCode()
	observe(method, label, strconv.Itoa(status), start)
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if status < 200 || status > 299 {
		span.SetStatus(codes.Error, http.StatusText(status))
		c.log.Warn().
			Str("method", method).
			Str("endpoint", label).
			Int("status", status).
			Dur("latency", resp.Time()).
			Msg("talkjs responded with error")
		return nil, &UpstreamError{
			Status:  status,
			Body:    errorBody(resp.Body()),
			Message: http.StatusText(status),
		}
	}

	c.log.Debug().
		Str("method", method).
		Str("endpoint", label).
		Int("status", status).
		Dur("latency", resp.Time()).
		Msg("talkjs request")
	return successBody(resp.Body()), nil
}

func carriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// successBody returns b as JSON: empty becomes {} and non-JSON text becomes
// a JSON string.
func successBody(b []byte) json.RawMessage {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return json.RawMessage("{}")
	}
	return asJSON(b)
}

// errorBody is successBody without the {} default; an empty error body is nil.
func errorBody(b []byte) json.RawMessage {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	return asJSON(b)
}

func asJSON(b []byte) json.RawMessage {
	if json.Valid(b) {
		out := make([]byte, len(b))
		copy(out, b)
		return out
	}
	s, _ := json.Marshal(string(b))
	return s
}
