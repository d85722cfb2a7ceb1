package talkjs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tbourn/go-talkjs-bff/internal/domain"
)

// UsersPageSize is the largest page TalkJS serves for /users.
const UsersPageSize = 100

// UserListing is the result of walking /users to the end.
//
// Users holds every record fetched, in upstream order. When a page fails
// the walk stops early: Complete is false and Cause holds the error.
type UserListing struct {
	Users    []json.RawMessage
	Pages    int
	Complete bool
	Cause    error
}

type userPage struct {
	Data []json.RawMessage `json:"data"`
}

// ListAllUsers pages through /users with a startingAfter cursor until a
// page comes back shorter than UsersPageSize. A failing page ends the walk
// and the records gathered so far are returned; the error is reported on
// the listing, never as a return value.
func (c *Client) ListAllUsers(ctx context.Context, env domain.Environment) *UserListing {
	out := &UserListing{Users: []json.RawMessage{}}
	cursor := ""

	for {
		endpoint := fmt.Sprintf("/users?limit=%d", UsersPageSize)
		if cursor != "" {
			endpoint += "&startingAfter=" + url.QueryEscape(cursor)
		}

		raw, err := c.Call(ctx, endpoint, http.MethodGet, env, nil)
		if err != nil {
			return c.stopEarly(out, err)
		}
		var page userPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return c.stopEarly(out, fmt.Errorf("decode users page: %w", err))
		}
		out.Pages++
		userPages.Inc()

		if len(page.Data) == 0 {
			break
		}
		out.Users = append(out.Users, page.Data...)
		if len(page.Data) < UsersPageSize {
			break
		}

		cursor = recordID(page.Data[len(page.Data)-1])
		if cursor == "" {
			return c.stopEarly(out, ErrMissingCursor)
		}
	}

	out.Complete = true
	return out
}

func (c *Client) stopEarly(out *UserListing, err error) *UserListing {
	out.Cause = err
	c.log.Warn().
		Err(err).
		Int("pages", out.Pages).
		Int("users", len(out.Users)).
		Msg("user listing stopped early; returning partial result")
	return out
}

func recordID(rec json.RawMessage) string {
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec, &v); err != nil {
		return ""
	}
	return v.ID
}
