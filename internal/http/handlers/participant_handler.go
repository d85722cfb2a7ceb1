// Participant HTTP handlers.
//
//   - PUT    /conversations/{conversationId}/participants/{userId}
//   - DELETE /conversations/{conversationId}/participants/{userId}
//
// Both relay the upstream body with 200 on success.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/tbourn/go-talkjs-bff/internal/i18n"
)

// NotifyMentionsOnly is the only non-boolean notify value TalkJS accepts.
const NotifyMentionsOnly = "MentionsOnly"

// ParticipantRequest is the JSON payload for joining or updating a participant.
// An empty body is forwarded as {}.
type ParticipantRequest struct {
	// Access level; omitted keeps the TalkJS default.
	Access string `json:"access,omitempty" binding:"omitempty,oneof=ReadWrite Read" example:"ReadWrite"`
	// Notify is a boolean or "MentionsOnly".
	Notify any `json:"notify,omitempty" swaggertype:"primitive,boolean" example:"true"`
}

func validNotify(v any) bool {
	switch n := v.(type) {
	case nil, bool:
		return true
	case string:
		return n == NotifyMentionsOnly
	}
	return false
}

func participantEndpoint(c *gin.Context) string {
	return "/conversations/" + escape(c.Param("conversationId")) + "/participants/" + escape(c.Param("userId"))
}

// PutParticipant godoc
// @ID          putParticipant
// @Summary     Add or update a participant
// @Description Adds the user to the conversation or updates access/notify settings, relaying the TalkJS response.
// @Tags        Participants
// @Accept      json
// @Produce     json
//
// @Param       conversationId   path    string                        true   "Conversation ID"
// @Param       userId           path    string                        true   "User ID"
// @Param       keyType          query   string                        false  "TalkJS environment"  Enums(dev, prod)  default(dev)
// @Param       body             body    handlers.ParticipantRequest  false  "Participant settings"
//
// @Success     200  {object}  object
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid body"
// @Failure     500  {object}  handlers.ErrorResponse  "Upstream or configuration error"
// @Router      /conversations/{conversationId}/participants/{userId} [put]
func (h *Handlers) PutParticipant(c *gin.Context) {
	var req ParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg(c, i18n.InvalidAccess), nil)
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg(c, i18n.InvalidBody), nil)
		return
	}
	if !validNotify(req.Notify) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg(c, i18n.InvalidBody), nil)
		return
	}

	raw, err := h.svc.Call(c.Request.Context(), participantEndpoint(c), http.MethodPut, environment(c), req)
	if err != nil {
		upstreamFail(c, err, i18n.ParticipantUpdateFailed)
		return
	}
	relay(c, raw)
}

// DeleteParticipant godoc
// @ID          deleteParticipant
// @Summary     Remove a participant
// @Description Removes the user from the conversation, relaying the TalkJS response.
// @Tags        Participants
// @Produce     json
//
// @Param       conversationId   path    string  true   "Conversation ID"
// @Param       userId           path    string  true   "User ID"
// @Param       keyType          query   string  false  "TalkJS environment"  Enums(dev, prod)  default(dev)
//
// @Success     200  {object}  object
// @Failure     500  {object}  handlers.ErrorResponse  "Upstream or configuration error"
// @Router      /conversations/{conversationId}/participants/{userId} [delete]
func (h *Handlers) DeleteParticipant(c *gin.Context) {
	raw, err := h.svc.Call(c.Request.Context(), participantEndpoint(c), http.MethodDelete, environment(c), nil)
	if err != nil {
		upstreamFail(c, err, i18n.ParticipantRemoveFailed)
		return
	}
	relay(c, raw)
}
