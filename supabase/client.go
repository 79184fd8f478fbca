// Package supabase talks to the hosted auth, storage and database APIs of a
// Supabase project over HTTP.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/varix-web/internal/errors"
)

const defaultTimeout = 15 * time.Second

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithVerifier sets how access tokens handed to SetSession are checked.
func WithVerifier(v TokenVerifier) Option {
	return func(c *Client) {
		c.verifier = v
	}
}

// WithDetectSessionInURL lets Browser.DetectSessionInURL act on redirect
// fragments. It is off unless set.
func WithDetectSessionInURL(enabled bool) Option {
	return func(c *Client) {
		c.detectSessionInURL = enabled
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// Client is a stateless API client for one project. Per-browser state lives
// in Browser.
type Client struct {
	baseURL            *url.URL
	apiKey             string
	httpClient         *http.Client
	verifier           TokenVerifier
	detectSessionInURL bool
	now                func() time.Time
}

func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, apperrors.Wrapf(err, "invalid Supabase URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid Supabase URL %q", baseURL)
	}

	c := &Client{
		baseURL:    u,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		verifier:   UnverifiedVerifier{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type accessTokenKey struct{}

// ContextWithAccessToken makes storage and database calls made with ctx act
// as the signed-in user, so that row-level security applies.
func ContextWithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

func accessTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}

type request struct {
	method string
	path   string
	query  url.Values
	header http.Header
	// bearer overrides the token taken from the context.
	bearer string
	json   any
	body   io.Reader
	size   int64
}

func (c *Client) url(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends req and decodes a JSON response into out when out is non-nil.
// Responses outside 2xx become *APIError.
func (c *Client) do(ctx context.Context, req request, out any) error {
	body := req.body
	if req.json != nil {
		b, err := json.Marshal(req.json)
		if err != nil {
			return apperrors.Wrapf(err, "encode %s %s", req.method, req.path)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.url(req.path, req.query), body)
	if err != nil {
		return err
	}
	for k, v := range req.header {
		httpReq.Header[k] = v
	}
	if req.json != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.size > 0 {
		httpReq.ContentLength = req.size
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("apikey", c.apiKey)

	bearer := req.bearer
	if bearer == "" {
		bearer = accessTokenFrom(ctx)
	}
	if bearer == "" {
		bearer = c.apiKey
	}
	httpReq.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}
