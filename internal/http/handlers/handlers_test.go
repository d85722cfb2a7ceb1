package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-talkjs-bff/internal/domain"
	"github.com/tbourn/go-talkjs-bff/internal/http/middleware"
	"github.com/tbourn/go-talkjs-bff/internal/talkjs"
)

//
// Stub upstream
//

type stubCall struct {
	Endpoint string
	Method   string
	Env      domain.Environment
	Body     any
}

type stubTalkJS struct {
	mu      sync.Mutex
	calls   []stubCall
	resp    json.RawMessage
	err     error
	listing *talkjs.UserListing
}

func (s *stubTalkJS) Call(_ context.Context, endpoint, method string, env domain.Environment, body any) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, stubCall{Endpoint: endpoint, Method: method, Env: env, Body: body})
	return s.resp, s.err
}

func (s *stubTalkJS) ListAllUsers(_ context.Context, env domain.Environment) *talkjs.UserListing {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, stubCall{Endpoint: "/users", Method: http.MethodGet, Env: env})
	return s.listing
}

func (s *stubTalkJS) only(t *testing.T) stubCall {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) != 1 {
		t.Fatalf("expected exactly one upstream call, got %d: %+v", len(s.calls), s.calls)
	}
	return s.calls[0]
}

func (s *stubTalkJS) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

var testCreds = talkjs.Credentials{
	Dev:  talkjs.Credential{AppID: "tDev", Secret: "s1"},
	Prod: talkjs.Credential{AppID: "tProd", Secret: "s2"},
}

func newRouter(svc TalkJSService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	h := New(svc, testCreds)
	r.GET("/conversations", h.ListConversations)
	r.GET("/conversations/:conversationId", h.GetConversation)
	r.PUT("/conversations/:conversationId/participants/:userId", h.PutParticipant)
	r.DELETE("/conversations/:conversationId/participants/:userId", h.DeleteParticipant)
	r.GET("/users", h.ListUsers)
	r.GET("/users/:userId/conversations", h.ListUserConversations)
	r.GET("/v1/:appId/users/:userId", h.GetUser)
	return r
}

func serve(r http.Handler, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("invalid error body %q: %v", w.Body.String(), err)
	}
	return e
}

func sameJSON(t *testing.T, want, got string) {
	t.Helper()
	var a, b any
	if err := json.Unmarshal([]byte(want), &a); err != nil {
		t.Fatalf("bad want json: %v", err)
	}
	if err := json.Unmarshal([]byte(got), &b); err != nil {
		t.Fatalf("bad got json %q: %v", got, err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("json mismatch\nwant: %s\n got: %s", want, got)
	}
}

//
// Conversations
//

func TestListConversations_NormalizesItems(t *testing.T) {
	svc := &stubTalkJS{resp: json.RawMessage(`{"data":[
		{"id":"c1","subject":"Pedido","custom":{"k":"v"},"lastMessage":{"id":"m1","conversationId":"c1","senderId":"u1","text":"hola","type":"UserMessage","createdAt":1700000000000}},
		{"id":"c2","lastMessage":null},
		{"id":"c3"}
	]}`)}
	r := newRouter(svc)

	w := serve(r, http.MethodGet, "/conversations?keyType=prod", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	sameJSON(t, `{"data":[
		{"id":"c1","subject":"Pedido","custom":{"k":"v"},"lastMessage":{"id":"m1","conversationId":"c1","senderId":"u1","text":"hola","type":"UserMessage","createdAt":1700000000000}},
		{"id":"c2","lastMessage":null},
		{"id":"c3","lastMessage":null}
	]}`, w.Body.String())

	call := svc.only(t)
	if call.Endpoint != "/conversations" || call.Method != http.MethodGet || call.Env != domain.EnvProd || call.Body != nil {
		t.Fatalf("unexpected upstream call: %+v", call)
	}
}

func TestListConversations_EmptyAndInvalidPayload(t *testing.T) {
	r := newRouter(&stubTalkJS{resp: json.RawMessage(`{}`)})
	w := serve(r, http.MethodGet, "/conversations", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	sameJSON(t, `{"data":[]}`, w.Body.String())

	r = newRouter(&stubTalkJS{resp: json.RawMessage(`{"data":[1,2]}`)})
	w = serve(r, http.MethodGet, "/conversations", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("non-object items: status = %d", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodeInvalidPayload || e.Error != "Error al obtener las conversaciones." {
		t.Fatalf("unexpected error: %+v", e)
	}
}

func TestListConversations_RelaysUpstreamStatusWithDetails(t *testing.T) {
	svc := &stubTalkJS{err: &talkjs.UpstreamError{
		Status:  http.StatusBadGateway,
		Body:    json.RawMessage(`{"reason":"maintenance"}`),
		Message: "Bad Gateway",
	}}
	w := serve(newRouter(svc), http.MethodGet, "/conversations", "", nil)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
	e := decodeError(t, w)
	if e.Code != ErrCodeUpstream || e.Error != "Error al obtener las conversaciones." {
		t.Fatalf("unexpected error: %+v", e)
	}
	sameJSON(t, `{"reason":"maintenance"}`, string(e.Details))
	if e.RequestID == "" || e.RequestID != w.Header().Get("X-Request-ID") {
		t.Fatalf("request id not echoed: %+v", e)
	}
}

func TestGetConversation_Found(t *testing.T) {
	svc := &stubTalkJS{resp: json.RawMessage(`{"id":"c1","subject":"s","lastMessage":{"id":"m1","text":"t"}}`)}
	w := serve(newRouter(svc), http.MethodGet, "/conversations/c1", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	sameJSON(t, `{"data":{"id":"c1","subject":"s","lastMessage":{"id":"m1","text":"t"}}}`, w.Body.String())
	if call := svc.only(t); call.Endpoint != "/conversations/c1" || call.Env != domain.EnvDev {
		t.Fatalf("unexpected upstream call: %+v", call)
	}
}

func TestGetConversation_UpstreamNotFound(t *testing.T) {
	svc := &stubTalkJS{err: &talkjs.UpstreamError{Status: http.StatusNotFound, Body: json.RawMessage(`{"errorCode":"NOT_FOUND"}`)}}
	r := newRouter(svc)

	w := serve(r, http.MethodGet, "/conversations/c1", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	e := decodeError(t, w)
	if e.Error != "Conversación con ID c1 no encontrada." || e.Code != ErrCodeNotFound || e.Details != nil {
		t.Fatalf("unexpected error: %+v", e)
	}

	w = serve(r, http.MethodGet, "/conversations/c1", "", map[string]string{"Accept-Language": "en-US,en;q=0.8"})
	if e := decodeError(t, w); e.Error != "Conversation with ID c1 not found." {
		t.Fatalf("unexpected english message: %+v", e)
	}
}

func TestGetConversation_NonObjectPayloadIsNotFound(t *testing.T) {
	for _, payload := range []string{`null`, `[]`, `"x"`} {
		svc := &stubTalkJS{resp: json.RawMessage(payload)}
		w := serve(newRouter(svc), http.MethodGet, "/conversations/c9", "", nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("payload %s: status = %d", payload, w.Code)
		}
		if e := decodeError(t, w); e.Error != "Conversación con ID c9 no encontrada." {
			t.Fatalf("payload %s: unexpected error %+v", payload, e)
		}
	}
}

func TestGetConversation_EscapesPathIdentifiers(t *testing.T) {
	svc := &stubTalkJS{resp: json.RawMessage(`{"id":"a b"}`)}
	w := serve(newRouter(svc), http.MethodGet, "/conversations/a%20b", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if call := svc.only(t); call.Endpoint != "/conversations/a%20b" {
		t.Fatalf("endpoint not escaped: %q", call.Endpoint)
	}
}

func TestUpstreamFail_ConfigurationAndTransport(t *testing.T) {
	cfgErr := &talkjs.ConfigurationError{Environment: domain.EnvProd, Missing: []string{"secret"}}
	w := serve(newRouter(&stubTalkJS{err: cfgErr}), http.MethodGet, "/conversations/c1?keyType=prod", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodeConfiguration || e.Error != "Configuración de TalkJS incompleta para el entorno prod." {
		t.Fatalf("unexpected error: %+v", e)
	}

	transport := &talkjs.UpstreamError{Message: "dial tcp: refused", Err: errors.New("refused")}
	w = serve(newRouter(&stubTalkJS{err: transport}), http.MethodGet, "/conversations", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodeUpstreamUnavailable || e.Error != "Error al obtener las conversaciones." || e.Details != nil {
		t.Fatalf("unexpected error: %+v", e)
	}

	w = serve(newRouter(&stubTalkJS{err: errors.New("boom")}), http.MethodGet, "/conversations", "", nil)
	if e := decodeError(t, w); w.Code != http.StatusInternalServerError || e.Code != ErrCodeInternal {
		t.Fatalf("unexpected generic failure: %d %+v", w.Code, e)
	}
}

//
// Participants
//

func TestPutParticipant_ForwardsBodyAndRelays(t *testing.T) {
	svc := &stubTalkJS{resp: json.RawMessage(`{"ok":true}`)}
	w := serve(newRouter(svc), http.MethodPut, "/conversations/c1/participants/u1", `{"access":"ReadWrite","notify":true}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	sameJSON(t, `{"ok":true}`, w.Body.String())

	call := svc.only(t)
	if call.Endpoint != "/conversations/c1/participants/u1" || call.Method != http.MethodPut {
		t.Fatalf("unexpected upstream call: %+v", call)
	}
	sent, err := json.Marshal(call.Body)
	if err != nil {
		t.Fatalf("marshal forwarded body: %v", err)
	}
	sameJSON(t, `{"access":"ReadWrite","notify":true}`, string(sent))
}

func TestPutParticipant_EmptyBodyForwardsEmptyObject(t *testing.T) {
	svc := &stubTalkJS{resp: json.RawMessage(`{}`)}
	w := serve(newRouter(svc), http.MethodPut, "/conversations/c1/participants/u1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	sent, _ := json.Marshal(svc.only(t).Body)
	if string(sent) != `{}` {
		t.Fatalf("forwarded %s; want {}", sent)
	}
}

func TestPutParticipant_NotifyVariants(t *testing.T) {
	cases := []struct {
		body string
		want int
	}{
		{`{"notify":false}`, http.StatusOK},
		{`{"notify":"MentionsOnly"}`, http.StatusOK},
		{`{"access":"Read"}`, http.StatusOK},
		{`{"notify":"Sometimes"}`, http.StatusBadRequest},
		{`{"notify":3}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		svc := &stubTalkJS{resp: json.RawMessage(`{}`)}
		w := serve(newRouter(svc), http.MethodPut, "/conversations/c1/participants/u1", tc.body, nil)
		if w.Code != tc.want {
			t.Fatalf("body %s: status = %d; want %d", tc.body, w.Code, tc.want)
		}
		if tc.want != http.StatusOK && svc.count() != 0 {
			t.Fatalf("body %s: rejected request must not reach upstream", tc.body)
		}
	}
}

func TestPutParticipant_RejectsInvalidInput(t *testing.T) {
	svc := &stubTalkJS{}
	r := newRouter(svc)

	w := serve(r, http.MethodPut, "/conversations/c1/participants/u1", `{"access":"Admin"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid access: status = %d", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodeBadRequest || e.Error != "El campo access debe ser ReadWrite o Read." {
		t.Fatalf("unexpected error: %+v", e)
	}

	w = serve(r, http.MethodPut, "/conversations/c1/participants/u1", `{"access":`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed: status = %d", w.Code)
	}
	if e := decodeError(t, w); e.Error != "Cuerpo de la solicitud inválido." {
		t.Fatalf("unexpected error: %+v", e)
	}

	if svc.count() != 0 {
		t.Fatalf("invalid input must not reach upstream")
	}
}

func TestPutParticipant_UpstreamErrorRelayed(t *testing.T) {
	svc := &stubTalkJS{err: &talkjs.UpstreamError{Status: http.StatusBadRequest, Body: json.RawMessage(`{"error":"bad user"}`)}}
	w := serve(newRouter(svc), http.MethodPut, "/conversations/c1/participants/u1", `{"access":"Read"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	e := decodeError(t, w)
	if e.Error != "Error al actualizar el participante." {
		t.Fatalf("unexpected error: %+v", e)
	}
	sameJSON(t, `{"error":"bad user"}`, string(e.Details))
}

func TestDeleteParticipant(t *testing.T) {
	svc := &stubTalkJS{resp: json.RawMessage(`{}`)}
	w := serve(newRouter(svc), http.MethodDelete, "/conversations/c1/participants/u1?keyType=prod", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	sameJSON(t, `{}`, w.Body.String())
	call := svc.only(t)
	if call.Method != http.MethodDelete || call.Env != domain.EnvProd || call.Body != nil {
		t.Fatalf("unexpected upstream call: %+v", call)
	}

	svc = &stubTalkJS{err: &talkjs.UpstreamError{Status: http.StatusForbidden}}
	w = serve(newRouter(svc), http.MethodDelete, "/conversations/c1/participants/u1", "", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodeForbidden || e.Error != "Error al eliminar el participante." {
		t.Fatalf("unexpected error: %+v", e)
	}
}

//
// Users
//

func TestListUserConversations(t *testing.T) {
	svc := &stubTalkJS{resp: json.RawMessage(`{"data":[{"id":"c1"},{"id":"c2"}]}`)}
	w := serve(newRouter(svc), http.MethodGet, "/users/u1/conversations", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	sameJSON(t, `{"conversations":[{"id":"c1"},{"id":"c2"}]}`, w.Body.String())
	if call := svc.only(t); call.Endpoint != "/users/u1/conversations" {
		t.Fatalf("unexpected endpoint %q", call.Endpoint)
	}

	svc = &stubTalkJS{resp: json.RawMessage(`{}`)}
	w = serve(newRouter(svc), http.MethodGet, "/users/u1/conversations", "", nil)
	sameJSON(t, `{"conversations":[]}`, w.Body.String())
}

func TestListUserConversations_NotFound(t *testing.T) {
	svc := &stubTalkJS{err: &talkjs.UpstreamError{Status: http.StatusNotFound}}
	w := serve(newRouter(svc), http.MethodGet, "/users/u404/conversations", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if e := decodeError(t, w); e.Error != "Usuario con ID u404 no encontrado." {
		t.Fatalf("unexpected error: %+v", e)
	}
}

func TestGetUser_ResolvesEnvironmentFromAppID(t *testing.T) {
	cases := map[string]domain.Environment{
		"tDev":    domain.EnvDev,
		"tProd":   domain.EnvProd,
		"prod":    domain.EnvProd,
		"dev":     domain.EnvDev,
		"unknown": domain.EnvDev,
	}
	for appID, want := range cases {
		svc := &stubTalkJS{resp: json.RawMessage(`{"id":"u1","name":"Ana"}`)}
		w := serve(newRouter(svc), http.MethodGet, "/v1/"+appID+"/users/u1", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", appID, w.Code)
		}
		sameJSON(t, `{"id":"u1","name":"Ana"}`, w.Body.String())
		if call := svc.only(t); call.Env != want || call.Endpoint != "/users/u1" {
			t.Fatalf("%s: unexpected upstream call %+v", appID, call)
		}
	}
}

func TestGetUser_RelaysUpstreamStatus(t *testing.T) {
	svc := &stubTalkJS{err: &talkjs.UpstreamError{Status: http.StatusNotFound, Body: json.RawMessage(`{"errorCode":"NOT_FOUND"}`)}}
	w := serve(newRouter(svc), http.MethodGet, "/v1/tDev/users/ghost", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	e := decodeError(t, w)
	if e.Error != "Error al obtener el usuario." {
		t.Fatalf("unexpected error: %+v", e)
	}
	sameJSON(t, `{"errorCode":"NOT_FOUND"}`, string(e.Details))
}

func TestListUsers_CompleteAndPartial(t *testing.T) {
	svc := &stubTalkJS{listing: &talkjs.UserListing{
		Users:    []json.RawMessage{json.RawMessage(`{"id":"u1"}`), json.RawMessage(`{"id":"u2"}`)},
		Pages:    1,
		Complete: true,
	}}
	w := serve(newRouter(svc), http.MethodGet, "/users?keyType=prod", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	sameJSON(t, `{"users":[{"id":"u1"},{"id":"u2"}]}`, w.Body.String())
	if w.Header().Get(PartialResultHeader) != "" {
		t.Fatalf("complete listing must not be flagged")
	}
	if call := svc.only(t); call.Env != domain.EnvProd {
		t.Fatalf("unexpected env %q", call.Env)
	}

	svc = &stubTalkJS{listing: &talkjs.UserListing{
		Users: []json.RawMessage{json.RawMessage(`{"id":"u1"}`)},
		Pages: 1,
		Cause: &talkjs.UpstreamError{Status: http.StatusBadGateway},
	}}
	w = serve(newRouter(svc), http.MethodGet, "/users", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("partial listing must still be 200, got %d", w.Code)
	}
	if w.Header().Get(PartialResultHeader) != "true" {
		t.Fatalf("expected %s: true", PartialResultHeader)
	}
	sameJSON(t, `{"users":[{"id":"u1"}]}`, w.Body.String())

	// Failure before the first page still yields an empty array.
	svc = &stubTalkJS{listing: &talkjs.UserListing{Cause: errors.New("down")}}
	w = serve(newRouter(svc), http.MethodGet, "/users", "", nil)
	sameJSON(t, `{"users":[]}`, w.Body.String())
}

//
// Through the real upstream client
//

func TestPutParticipant_EndToEndThroughClient(t *testing.T) {
	var (
		mu    sync.Mutex
		hits  int
		path  string
		body  string
		authz string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		hits++
		path, body, authz = r.Method+" "+r.URL.Path, string(b), r.Header.Get("Authorization")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client := talkjs.NewClient(talkjs.NewMinter(testCreds), talkjs.Options{BaseURL: srv.URL})
	w := serve(newRouter(client), http.MethodPut, "/conversations/c1/participants/u1", `{"access":"ReadWrite","notify":true}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	sameJSON(t, `{"status":"ok"}`, w.Body.String())

	mu.Lock()
	defer mu.Unlock()
	if hits != 1 {
		t.Fatalf("expected one upstream request, got %d", hits)
	}
	if path != "PUT /v1/tDev/conversations/c1/participants/u1" {
		t.Fatalf("unexpected upstream request %q", path)
	}
	sameJSON(t, `{"access":"ReadWrite","notify":true}`, body)
	if !strings.HasPrefix(authz, "Bearer ") {
		t.Fatalf("missing bearer token: %q", authz)
	}
}

func TestGetConversation_EndToEndNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorCode":"NOT_FOUND"}`))
	}))
	defer srv.Close()

	client := talkjs.NewClient(talkjs.NewMinter(testCreds), talkjs.Options{BaseURL: srv.URL})
	w := serve(newRouter(client), http.MethodGet, "/conversations/c1", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	sameJSON(t, `{"request_id":"`+w.Header().Get("X-Request-ID")+`","code":"not_found","error":"Conversación con ID c1 no encontrada."}`, w.Body.String())
}
