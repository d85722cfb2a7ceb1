// User HTTP handlers.
//
//   - GET /users                      (every page, aggregated)
//   - GET /v1/{appId}/users/{userId}  (single, raw relay)
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-talkjs-bff/internal/http/middleware"
	"github.com/tbourn/go-talkjs-bff/internal/i18n"
)

// PartialResultHeader marks a /users response that stopped before the last page.
const PartialResultHeader = "X-Partial-Result"

// UsersResponse carries the aggregated user records.
type UsersResponse struct {
	Users []json.RawMessage `json:"users" swaggertype:"array,object"`
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List every user
// @Description Walks all TalkJS user pages (100 per page). Upstream failures never fail the request; the records gathered so far are returned with X-Partial-Result: true.
// @Tags        Users
// @Produce     json
//
// @Param       keyType  query  string  false  "TalkJS environment"  Enums(dev, prod)  default(dev)
//
// @Success     200  {object}  handlers.UsersResponse
// @Header      200  {string}  X-Partial-Result  "true when the listing is incomplete"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	listing := h.svc.ListAllUsers(c.Request.Context(), environment(c))

	users := listing.Users
	if users == nil {
		users = []json.RawMessage{}
	}
	if !listing.Complete {
		c.Header(PartialResultHeader, "true")
		lg := middleware.LoggerFrom(c)
		ev := lg.Warn().Int("users", len(users)).Int("pages", listing.Pages)
		if listing.Cause != nil {
			ev = ev.Err(listing.Cause)
		}
		ev.Msg("partial user listing")
	}
	ok(c, http.StatusOK, UsersResponse{Users: users})
}

// GetUser godoc
// @ID          getUser
// @Summary     Get a user
// @Description Relays the TalkJS user record. The appId segment selects the environment: a configured app ID, or the literal dev/prod; anything else is dev.
// @Tags        Users
// @Produce     json
//
// @Param       appId            path    string  true   "TalkJS app ID or environment name"
// @Param       userId           path    string  true   "User ID"
// @Param       Accept-Language  header  string  false  "Message language"  example(es)
//
// @Success     200  {object}  object
// @Failure     404  {object}  handlers.ErrorResponse  "Relayed upstream status"
// @Failure     500  {object}  handlers.ErrorResponse  "Upstream or configuration error"
// @Router      /v1/{appId}/users/{userId} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	env := h.appEnvironment(c.Param("appId"))

	raw, err := h.svc.Call(c.Request.Context(), "/users/"+escape(c.Param("userId")), http.MethodGet, env, nil)
	if err != nil {
		upstreamFail(c, err, i18n.UserFailed)
		return
	}
	relay(c, raw)
}
