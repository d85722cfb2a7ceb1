// TalkJS façade handlers.
//
// This file wires the upstream service contract into the HTTP layer and holds
// the helpers shared by the conversation, participant and user endpoints.
//
// Handlers are transport-thin: they select the TalkJS environment, call the
// upstream service, and translate results into HTTP responses.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-talkjs-bff/internal/domain"
	"github.com/tbourn/go-talkjs-bff/internal/i18n"
	"github.com/tbourn/go-talkjs-bff/internal/talkjs"
)

//
// Service contract (context-aware)
//

// TalkJSService is the upstream surface consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type TalkJSService interface {
	// Call performs one authenticated request against the selected app.
	Call(ctx context.Context, endpoint, method string, env domain.Environment, body any) (json.RawMessage, error)
	// ListAllUsers walks every user page; failures yield a partial listing.
	ListAllUsers(ctx context.Context, env domain.Environment) *talkjs.UserListing
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for conversations, participants and users.
type Handlers struct {
	svc     TalkJSService
	appEnvs map[string]domain.Environment
}

// New constructs Handlers bound to svc. The configured app IDs let the
// /v1/:appId routes map an application identifier back to its environment.
func New(svc TalkJSService, creds talkjs.Credentials) *Handlers {
	appEnvs := make(map[string]domain.Environment, 2)
	if creds.Dev.AppID != "" {
		appEnvs[creds.Dev.AppID] = domain.EnvDev
	}
	if creds.Prod.AppID != "" {
		appEnvs[creds.Prod.AppID] = domain.EnvProd
	}
	return &Handlers{svc: svc, appEnvs: appEnvs}
}

// environment reads the keyType query selector; absent or unknown is dev.
func environment(c *gin.Context) domain.Environment {
	return domain.ParseEnvironment(c.Query("keyType"))
}

// appEnvironment resolves the :appId path segment. A configured app ID wins
// over the literal "dev"/"prod" names; anything else falls back to dev.
func (h *Handlers) appEnvironment(appID string) domain.Environment {
	if env, ok := h.appEnvs[appID]; ok {
		return env
	}
	return domain.ParseEnvironment(appID)
}

// msg localizes key for the client's Accept-Language.
func msg(c *gin.Context, key string, args ...any) string {
	return i18n.Sprintf(c.GetHeader("Accept-Language"), key, args...)
}

// upstreamFail maps an upstream failure to the HTTP response. Statused
// upstream errors are relayed with their body as details; configuration and
// transport failures become 500.
func upstreamFail(c *gin.Context, err error, key string, args ...any) {
	if ue, ok := talkjs.AsUpstream(err); ok && ue.HasStatus() {
		fail(c, ue.Status, codeForStatus(ue.Status), msg(c, key, args...), ue.Body)
		return
	}

	var cfgErr *talkjs.ConfigurationError
	if errors.As(err, &cfgErr) {
		fail(c, http.StatusInternalServerError, ErrCodeConfiguration, msg(c, i18n.ConfigIncomplete, cfgErr.Environment), nil)
		return
	}

	code := ErrCodeInternal
	if _, ok := talkjs.AsUpstream(err); ok {
		code = ErrCodeUpstreamUnavailable
	}
	fail(c, http.StatusInternalServerError, code, msg(c, key, args...), nil)
}

// escape makes a path identifier safe to append to an upstream endpoint.
func escape(id string) string { return url.PathEscape(id) }
