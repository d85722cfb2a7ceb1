// Conversation HTTP handlers.
//
// This file exposes read endpoints for TalkJS conversations:
//   - GET /conversations                     (list)
//   - GET /conversations/{conversationId}    (single)
//   - GET /users/{userId}/conversations      (per user)
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-talkjs-bff/internal/domain"
	"github.com/tbourn/go-talkjs-bff/internal/i18n"
	"github.com/tbourn/go-talkjs-bff/internal/talkjs"
)

//
// DTOs
//

// ConversationListResponse wraps the normalized conversations.
type ConversationListResponse struct {
	Data []*domain.Conversation `json:"data" swaggertype:"array,object"`
}

// ConversationResponse wraps a single normalized conversation.
type ConversationResponse struct {
	Data *domain.Conversation `json:"data" swaggertype:"object"`
}

// UserConversationsResponse carries the upstream data array untouched.
type UserConversationsResponse struct {
	Conversations json.RawMessage `json:"conversations" swaggertype:"array,object"`
}

// dataEnvelope is the list shape TalkJS returns.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

//
// Handlers
//

// ListConversations godoc
// @ID          listConversations
// @Summary     List conversations
// @Description Fetches every conversation of the selected TalkJS app and normalizes each item (lastMessage included).
// @Tags        Conversations
// @Produce     json
//
// @Param       keyType          query   string  false  "TalkJS environment"  Enums(dev, prod)  default(dev)
// @Param       Accept-Language  header  string  false  "Message language"   example(es)
//
// @Success     200  {object}  handlers.ConversationListResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Upstream or configuration error"
// @Router      /conversations [get]
func (h *Handlers) ListConversations(c *gin.Context) {
	raw, err := h.svc.Call(c.Request.Context(), "/conversations", http.MethodGet, environment(c), nil)
	if err != nil {
		upstreamFail(c, err, i18n.ConversationsFailed)
		return
	}

	var env struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInvalidPayload, msg(c, i18n.ConversationsFailed), nil)
		return
	}
	convs, err := domain.NewConversations(env.Data)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInvalidPayload, msg(c, i18n.ConversationsFailed), nil)
		return
	}
	ok(c, http.StatusOK, ConversationListResponse{Data: convs})
}

// GetConversation godoc
// @ID          getConversation
// @Summary     Get a conversation
// @Description Fetches one conversation by ID. Upstream 404 or a non-object payload yields 404.
// @Tags        Conversations
// @Produce     json
//
// @Param       conversationId   path    string  true   "Conversation ID"
// @Param       keyType          query   string  false  "TalkJS environment"  Enums(dev, prod)  default(dev)
// @Param       Accept-Language  header  string  false  "Message language"   example(es)
//
// @Success     200  {object}  handlers.ConversationResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Upstream or configuration error"
// @Router      /conversations/{conversationId} [get]
func (h *Handlers) GetConversation(c *gin.Context) {
	id := c.Param("conversationId")

	raw, err := h.svc.Call(c.Request.Context(), "/conversations/"+escape(id), http.MethodGet, environment(c), nil)
	if err != nil {
		if talkjs.IsNotFound(err) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, msg(c, i18n.ConversationNotFound, id), nil)
			return
		}
		upstreamFail(c, err, i18n.ConversationFailed)
		return
	}

	// TalkJS answers unknown IDs with 200 and null on some endpoints.
	if !domain.IsObject(raw) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, msg(c, i18n.ConversationNotFound, id), nil)
		return
	}
	conv, err := domain.NewConversation(raw)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInvalidPayload, msg(c, i18n.ConversationFailed), nil)
		return
	}
	ok(c, http.StatusOK, ConversationResponse{Data: conv})
}

// ListUserConversations godoc
// @ID          listUserConversations
// @Summary     List a user's conversations
// @Description Returns the upstream data array of the user's conversations under `conversations`.
// @Tags        Users
// @Produce     json
//
// @Param       userId           path    string  true   "User ID"
// @Param       keyType          query   string  false  "TalkJS environment"  Enums(dev, prod)  default(dev)
// @Param       Accept-Language  header  string  false  "Message language"   example(es)
//
// @Success     200  {object}  handlers.UserConversationsResponse
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Upstream or configuration error"
// @Router      /users/{userId}/conversations [get]
func (h *Handlers) ListUserConversations(c *gin.Context) {
	userID := c.Param("userId")

	raw, err := h.svc.Call(c.Request.Context(), "/users/"+escape(userID)+"/conversations", http.MethodGet, environment(c), nil)
	if err != nil {
		if talkjs.IsNotFound(err) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, msg(c, i18n.UserNotFound, userID), nil)
			return
		}
		upstreamFail(c, err, i18n.UserConversationsFailed)
		return
	}

	var env dataEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInvalidPayload, msg(c, i18n.UserConversationsFailed), nil)
		return
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		env.Data = json.RawMessage("[]")
	}
	ok(c, http.StatusOK, UserConversationsResponse{Conversations: env.Data})
}
