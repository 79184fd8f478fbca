package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/varix-web/sessions"
)

const adminPageSize = 1000

// ListUsers returns every user of the project. The client must have been
// created with the service role key.
func (c *Client) ListUsers(ctx context.Context) ([]sessions.User, error) {
	var all []sessions.User
	for page := 1; ; page++ {
		var resp struct {
			Users []sessions.User `json:"users"`
		}
		err := c.do(ctx, request{
			method: http.MethodGet,
			path:   authPath + "/admin/users",
			query: url.Values{
				"page":     {strconv.Itoa(page)},
				"per_page": {strconv.Itoa(adminPageSize)},
			},
		}, &resp)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Users...)
		if len(resp.Users) < adminPageSize {
			return all, nil
		}
	}
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   authPath + "/admin/users/" + url.PathEscape(id),
	}, nil)
}
