package api

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

	"github.com/hashicorp/go-retryablehttp"
	"github.com/worksdev/portal/internal/devicestore"
	perrors "github.com/worksdev/portal/internal/errors"
	logger "github.com/worksdev/portal/internal/logging"
)

const (
	cookieAccess  = "access"
	cookieRefresh = "refresh"

	userAgent = "portal-cli"
)

var sessionCookies = map[string]string{
	cookieAccess:  devicestore.KeyAccessToken,
	cookieRefresh: devicestore.KeyRefreshToken,
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Device     devicestore.Store
	Logger     *logger.Logger

	// RetryWaitMin and RetryWaitMax bound the backoff between GET retries.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Client talks to the portal API.
type Client struct {
	baseURL *url.URL
	http    *retryablehttp.Client
	device  devicestore.Store
	log     *logger.Logger
}

type idempotentKey struct{}

// New returns a Client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("%w: invalid API URL %q", perrors.ErrInvalidConfig, opts.BaseURL)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.MaxRetries
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	rc.CheckRetry = checkRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = nil
	if opts.Logger != nil {
		rc.Logger = leveledLogger{log: opts.Logger}
	}

	device := opts.Device
	if device == nil {
		device = devicestore.NewMemoryStore()
	}

	return &Client{
		baseURL: base,
		http:    rc,
		device:  device,
		log:     opts.Logger,
	}, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// AccessToken returns the stored session token.
func (c *Client) AccessToken() (string, error) {
	token, ok, err := c.device.Get(devicestore.KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to read access token: %w", err)
	}
	if !ok || token == "" {
		return "", perrors.ErrNotLoggedIn
	}
	return token, nil
}

// checkRetry retries only requests marked idempotent.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if idempotent, _ := ctx.Value(idempotentKey{}).(bool); !idempotent {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, err
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends a request and returns the response for a 2xx answer. The caller
// closes the body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	idempotent := method == http.MethodGet || method == http.MethodHead
	ctx = context.WithValue(ctx, idempotentKey{}, idempotent)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.attachCookies(req.Request); err != nil {
		return nil, err
	}

	if c.log != nil {
		c.log.Debugf("%s %s", method, req.URL.String())
	}

	// With exhausted retries the last answer comes back alongside the error.
	resp, err := c.http.Do(req)
	if resp == nil {
		if err == nil {
			err = perrors.ErrUnexpectedResponse
		}
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	if err != nil && c.log != nil {
		c.log.Debugf("%s %s: %v", method, path, err)
	}

	if err := c.storeCookies(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, newBadResponseError(resp)
	}
	return resp, nil
}

// doJSON sends a request and decodes a JSON answer into out, if non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", perrors.ErrUnexpectedResponse, method, path, err)
	}
	return nil
}

// doText sends a request and returns the answer body as trimmed text.
func (c *Client) doText(ctx context.Context, method, path string, body any) (string, error) {
	resp, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s %s: %v", perrors.ErrUnexpectedResponse, method, path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *Client) attachCookies(req *http.Request) error {
	for name, key := range sessionCookies {
		value, ok, err := c.device.Get(key)
		if err != nil {
			return fmt.Errorf("failed to read session cookie %s: %w", name, err)
		}
		if ok && value != "" {
			req.AddCookie(&http.Cookie{Name: name, Value: value})
		}
	}
	return nil
}

// storeCookies persists rotated session cookies. An expired cookie
// removes the stored value.
func (c *Client) storeCookies(resp *http.Response) error {
	for _, cookie := range resp.Cookies() {
		key, ok := sessionCookies[cookie.Name]
		if !ok {
			continue
		}
		var err error
		if cookie.MaxAge < 0 || cookie.Value == "" {
			err = c.device.Remove(key)
		} else {
			err = c.device.Set(key, cookie.Value)
		}
		if err != nil {
			return fmt.Errorf("failed to store session cookie %s: %w", cookie.Name, err)
		}
	}
	return nil
}

// leveledLogger routes retryablehttp logs to the portal logger.
type leveledLogger struct {
	log *logger.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...any) {
	l.log.Debugf("http: %s%s", msg, formatKeyValues(keysAndValues))
}

func (l leveledLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugf("http: %s%s", msg, formatKeyValues(keysAndValues))
}

func (l leveledLogger) Debug(msg string, keysAndValues ...any) {
	l.log.Debugf("http: %s%s", msg, formatKeyValues(keysAndValues))
}

func (l leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.log.Warnf("http: %s%s", msg, formatKeyValues(keysAndValues))
}

func formatKeyValues(kv []any) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
