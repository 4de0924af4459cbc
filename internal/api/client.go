// Package api is the typed client for the campus tutor backend. All
// requests go through one resty client that attaches the stored bearer
// token and enforces the global session-invalidation policy: any 401
// tears down the persisted session and notifies the owner exactly once.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arnavkapoor/campuschat/internal/cache"
	"github.com/arnavkapoor/campuschat/internal/session"
)

// ErrSessionExpired is returned from any call whose response came back
// 401. By the time a caller sees it the session store has already been
// cleared and the OnSessionExpired hook has fired.
var ErrSessionExpired = errors.New("session expired")

// APIError is any non-2xx, non-401 backend response. It propagates to the
// caller unchanged for local handling; the client never retries.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Detail)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// Sessions supplies the bearer token and absorbs the teardown on 401.
	Sessions *session.Store

	// OnSessionExpired is invoked once when a 401 invalidates the
	// session, after the store has been cleared. The presentation layer
	// decides what the login boundary looks like.
	OnSessionExpired func()

	// Catalog, when set, caches course catalog listings on disk. Chat
	// and profile data always hit the backend.
	Catalog *cache.Catalog

	Logger *zap.Logger
}

// Client is the session-aware HTTP client. Each call is fire-once: no
// retry, no backoff, no queuing.
type Client struct {
	http      *resty.Client
	sessions  *session.Store
	onExpired func()
	catalog   *cache.Catalog
	logger    *zap.Logger
	expired   atomic.Bool
}

func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	c := &Client{
		sessions:  opts.Sessions,
		onExpired: opts.OnSessionExpired,
		catalog:   opts.Catalog,
		logger:    opts.Logger,
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("Accept", "application/json")
	httpClient.OnBeforeRequest(c.attachAuth)
	httpClient.OnAfterResponse(c.checkResponse)
	c.http = httpClient

	return c
}

func (c *Client) attachAuth(_ *resty.Client, req *resty.Request) error {
	if token := c.sessions.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	req.SetHeader("X-Request-ID", uuid.NewString())
	return nil
}

func (c *Client) checkResponse(_ *resty.Client, resp *resty.Response) error {
	if resp.StatusCode() == http.StatusUnauthorized {
		c.invalidateSession()
		return ErrSessionExpired
	}
	if resp.IsSuccess() {
		return nil
	}
	return &APIError{Status: resp.StatusCode(), Detail: errorDetail(resp.Body(), resp.Status())}
}

// invalidateSession clears the token and user together and fires the
// expiry hook. Concurrent 401s from in-flight requests collapse to a
// single teardown.
func (c *Client) invalidateSession() {
	if !c.expired.CompareAndSwap(false, true) {
		return
	}
	if err := c.sessions.Clear(); err != nil {
		c.logger.Warn("clearing expired session", zap.Error(err))
	}
	c.logger.Info("session invalidated by backend")
	if c.onExpired != nil {
		c.onExpired()
	}
}

// resetExpiry re-arms the teardown after a fresh login.
func (c *Client) resetExpiry() {
	c.expired.Store(false)
}

// Reconfigure points the client at a new backend address and timeout.
// Long-lived commands call this when the configuration file changes
// under them; in-flight requests finish against the old settings.
func (c *Client) Reconfigure(baseURL string, timeout time.Duration) {
	c.http.SetBaseURL(strings.TrimRight(baseURL, "/"))
	if timeout > 0 {
		c.http.SetTimeout(timeout)
	}
}

// errorDetail pulls the human-readable message out of a backend error
// body, which is normally {"detail": "..."}.
func errorDetail(body []byte, fallback string) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return text
	}
	return fallback
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if out != nil {
		req.SetResult(out)
	}
	_, err := req.Get(path)
	return err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	_, err := req.Post(path)
	return err
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	req := c.http.R().SetContext(ctx).SetBody(body)
	if out != nil {
		req.SetResult(out)
	}
	_, err := req.Put(path)
	return err
}

func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.http.R().SetContext(ctx).Delete(path)
	return err
}
