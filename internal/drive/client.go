// Package drive is an HTTP client for gemdrive-style remote file storage:
// directory listings, recursive directory creation, and file reads/writes.
package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// AuthMode selects how the access token is attached to requests.
type AuthMode string

const (
	AuthBearer AuthMode = "bearer"
	AuthQuery  AuthMode = "query"
)

// Valid reports whether m is a known auth mode.
func (m AuthMode) Valid() bool {
	return m == AuthBearer || m == AuthQuery
}

const (
	tokenParam   = "access_token"
	maxErrorBody = 512
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	Auth       AuthMode
	Format     Format
	HTTPClient *http.Client
	// RateLimit is the sustained request rate per second. Zero disables limiting.
	RateLimit float64
	Burst     int
	Logger    *slog.Logger
}

// Client talks to one drive. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	token   string
	auth    AuthMode
	format  Format
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a drive client. BaseURL must be absolute.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("%w: base url %q", ErrInvalidURL, opts.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	auth := opts.Auth
	if auth == "" {
		auth = AuthBearer
	}
	if !auth.Valid() {
		return nil, fmt.Errorf("unknown auth mode %q", auth)
	}
	format := opts.Format
	if format == "" {
		format = FormatTSV
	}
	if !format.Valid() {
		return nil, fmt.Errorf("unknown listing format %q", format)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		base:    base,
		token:   opts.Token,
		auth:    auth,
		format:  format,
		http:    httpClient,
		limiter: limiter,
		logger:  opts.Logger,
	}, nil
}

// Resolve returns the absolute URL of a path relative to the base URL.
func (c *Client) Resolve(path string) string {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	return c.base.ResolveReference(ref).String()
}

// List fetches the listing of the directory at dirURL.
func (c *Client) List(ctx context.Context, dirURL string) (Listing, error) {
	if !strings.HasSuffix(dirURL, "/") {
		return Listing{}, fmt.Errorf("%w: directory url must end in /: %s", ErrInvalidURL, dirURL)
	}
	listURL := dirURL + c.format.ListingSuffix()
	body, err := c.read(ctx, listURL)
	if err != nil {
		return Listing{}, err
	}
	listing, err := c.format.Parse(body)
	if err != nil {
		return Listing{}, fmt.Errorf("listing %s: %w", redact(dirURL), err)
	}
	return listing, nil
}

// Get reads the file at fileURL.
func (c *Client) Get(ctx context.Context, fileURL string) ([]byte, error) {
	return c.read(ctx, fileURL)
}

// Put writes data to fileURL. Without overwrite an existing file yields ErrExists.
func (c *Client) Put(ctx context.Context, fileURL string, data []byte, overwrite bool) error {
	if strings.HasSuffix(fileURL, "/") {
		return fmt.Errorf("%w: file url must not end in /: %s", ErrInvalidURL, fileURL)
	}
	var query url.Values
	if overwrite {
		query = url.Values{"overwrite": {"true"}}
	}
	resp, err := c.do(ctx, http.MethodPut, fileURL, query, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.check(resp, http.MethodPut, fileURL, !overwrite)
}

// MakeDir creates the directory at dirURL and any missing ancestors. The
// create fails with ErrExists if the directory is already there, which makes
// it usable as a claim on a path.
func (c *Client) MakeDir(ctx context.Context, dirURL string) error {
	if !strings.HasSuffix(dirURL, "/") {
		return fmt.Errorf("%w: directory url must end in /: %s", ErrInvalidURL, dirURL)
	}
	resp, err := c.do(ctx, http.MethodPut, dirURL, url.Values{"recursive": {"true"}}, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.check(resp, http.MethodPut, dirURL, true)
}

// Delete removes the file or directory at target.
func (c *Client) Delete(ctx context.Context, target string) error {
	resp, err := c.do(ctx, http.MethodDelete, target, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.check(resp, http.MethodDelete, target, false)
}

func (c *Client) read(ctx context.Context, target string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, target, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := c.check(resp, http.MethodGet, target, false); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", redact(target), err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, target string, query url.Values, body []byte) (*http.Response, error) {
	u, err := url.Parse(target)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, redact(target))
	}

	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	token := c.tokenFor(ctx)
	if token != "" && c.auth == AuthQuery {
		q.Set(tokenParam, token)
	}
	u.RawQuery = q.Encode()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if token != "" && c.auth == AuthBearer {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, redact(target), err)
	}
	if c.logger != nil {
		c.logger.Debug("drive request", "method", method, "url", redact(u.String()), "status", resp.StatusCode, "elapsed", time.Since(start))
	}
	return resp, nil
}

// check maps a response status to the package's error taxonomy. For
// non-overwriting creates a 400 means the target already exists.
func (c *Client) check(resp *http.Response, method, target string, create bool) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, redact(target))
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s %s", ErrForbidden, method, redact(target))
	case resp.StatusCode == http.StatusBadRequest && create:
		return fmt.Errorf("%w: %s", ErrExists, redact(target))
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Method:     method,
		URL:        redact(target),
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

type tokenKey struct{}

// WithToken returns a context whose requests authenticate with token instead
// of the client's configured token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns a token stored with WithToken.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token, ok := TokenFromContext(ctx); ok && token != "" {
		return token
	}
	return c.token
}
