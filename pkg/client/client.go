// Package client is a Go client for the POS API. Requests carry the current
// access token; when the server answers 401 the client refreshes the token once
// for all concurrent callers and replays each failed request a single time.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

const (
	loginPath   = "/login"
	refreshPath = "/refresh"
)

// ErrRefreshFailed is returned to every request that was waiting on a failed refresh.
var ErrRefreshFailed = errors.New("client: token refresh failed")

// Client talks to the POS API rooted at baseURL (for example http://host/api/v1).
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string

	refreshes singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. A cookie jar is added when it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Token returns the access token currently in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(t string) {
	c.mu.Lock()
	c.token = t
	c.mu.Unlock()
}

// Login authenticates and stores the returned access token. The refresh token
// arrives as a cookie and is kept in the jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := c.Do(ctx, http.MethodPost, loginPath, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Message: gjson.GetBytes(data, "message").String()}
	}
	token := gjson.GetBytes(data, "data.token").String()
	if token == "" {
		return errors.New("client: login response carried no token")
	}
	c.setToken(token)
	return nil
}

// Do sends a request with body (may be nil) and returns the raw response.
// The caller closes the body.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	used := c.Token()
	resp, err := c.send(ctx, method, path, body, used)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isAuthPath(path) {
		return resp, nil
	}
	drain(resp)

	token, err := c.refresh(ctx, used)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, method, path, body, token)
}

// JSON sends in as a JSON body and decodes the envelope's data into out.
func (c *Client) JSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return err
		}
	}
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: gjson.GetBytes(data, "message").String()}
	}
	if out == nil {
		return nil
	}
	raw := gjson.GetBytes(data, "data").Raw
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

// refresh obtains a new access token. Callers that failed with the same stale
// token share one /refresh call; a caller whose token was already replaced
// just picks up the new one.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	if current := c.Token(); current != stale && current != "" {
		return current, nil
	}

	v, err, _ := c.refreshes.Do(refreshPath, func() (interface{}, error) {
		if current := c.Token(); current != stale && current != "" {
			return current, nil
		}
		resp, err := c.send(ctx, http.MethodGet, refreshPath, nil, "")
		if err != nil {
			return "", errors.Wrap(ErrRefreshFailed, err.Error())
		}
		defer resp.Body.Close()

		data, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			return "", errors.Wrapf(ErrRefreshFailed, "status %d", resp.StatusCode)
		}
		token := gjson.GetBytes(data, "data.token").String()
		if token == "" {
			return "", errors.Wrap(ErrRefreshFailed, "no token in response")
		}
		c.setToken(token)
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte, token string) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.http.Do(req)
}

func isAuthPath(path string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path == loginPath || path == refreshPath
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}
