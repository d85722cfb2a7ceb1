// Package domain defines the value objects this service re-exports to its
// clients: the environment selector and normalized views of TalkJS
// conversations and messages.
//
// The models never rename or drop upstream fields. They keep the raw JSON
// of every attribute so a round trip through the model is lossless, and
// expose typed accessors for the handful of fields the server itself reads.
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrNotObject is returned when a payload expected to be a JSON object is
// something else (array, scalar or null).
var ErrNotObject = errors.New("payload is not a JSON object")

// Message is a normalized view of a TalkJS message record.
//
// Known fields are decoded for server-side use; Raw keeps every upstream
// attribute and is what gets serialized back to clients.
type Message struct {
	ID             string `json:"-"`
	ConversationID string `json:"-"`
	SenderID       string `json:"-"`
	Text           string `json:"-"`
	Type           string `json:"-"`
	CreatedAt      int64  `json:"-"` // epoch millis

	raw map[string]json.RawMessage
}

// NewMessage builds a Message from an upstream message object.
func NewMessage(data json.RawMessage) (*Message, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	m := &Message{raw: raw}
	m.ID = stringField(raw, "id")
	m.ConversationID = stringField(raw, "conversationId")
	m.SenderID = stringField(raw, "senderId")
	m.Text = stringField(raw, "text")
	m.Type = stringField(raw, "type")
	m.CreatedAt = int64Field(raw, "createdAt")
	return m, nil
}

// MarshalJSON re-emits the upstream attributes unchanged.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.raw == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.raw)
}

// Conversation is a normalized view of a TalkJS conversation record.
// All upstream attributes pass through; lastMessage is rebuilt as a Message
// and serialized as null when the source had none.
type Conversation struct {
	ID          string   `json:"-"`
	Subject     string   `json:"-"`
	LastMessage *Message `json:"-"`

	raw map[string]json.RawMessage
}

// NewConversation builds a Conversation (and its embedded last Message, if
// present) from an upstream conversation object.
func NewConversation(data json.RawMessage) (*Conversation, error) {
	raw, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	c := &Conversation{raw: raw}
	c.ID = stringField(raw, "id")
	c.Subject = stringField(raw, "subject")

	if lm, ok := raw["lastMessage"]; ok && !isNull(lm) {
		msg, err := NewMessage(lm)
		if err != nil {
			return nil, err
		}
		c.LastMessage = msg
	}
	delete(c.raw, "lastMessage")
	return c, nil
}

// MarshalJSON merges the upstream attributes with the constructed
// lastMessage.
func (c Conversation) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.raw)+1)
	for k, v := range c.raw {
		out[k] = v
	}
	if c.LastMessage != nil {
		out["lastMessage"] = c.LastMessage
	} else {
		out["lastMessage"] = nil
	}
	return json.Marshal(out)
}

// NewConversations maps a list of upstream conversation objects, preserving
// order.
func NewConversations(items []json.RawMessage) ([]*Conversation, error) {
	out := make([]*Conversation, 0, len(items))
	for _, it := range items {
		c, err := NewConversation(it)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// IsObject reports whether data is a non-null JSON object.
func IsObject(data json.RawMessage) bool {
	d := bytes.TrimSpace(data)
	return len(d) > 0 && d[0] == '{'
}

func decodeObject(data json.RawMessage) (map[string]json.RawMessage, error) {
	if !IsObject(data) {
		return nil, ErrNotObject
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// stringField decodes raw[key] as a string; non-string values yield "".
func stringField(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

func int64Field(raw map[string]json.RawMessage, key string) int64 {
	v, ok := raw[key]
	if !ok {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return 0
	}
	i, err := n.Int64()
	if err != nil {
		return 0
	}
	return i
}
