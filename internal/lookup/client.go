// Package lookup queries the remote CNPJ registry service.
package lookup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/cnpjlookup/internal/registryid"
)

const (
	// DefaultPath is the route template of the public registry mirror.
	DefaultPath = "/cnpj/{id}"

	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "cnpjlookup/1"

	// maxErrorBodySize bounds how much of a failed response is logged.
	maxErrorBodySize = 4096
)

// Recorder receives one observation per lookup.
type Recorder interface {
	ObserveLookup(outcome string, elapsed time.Duration)
}

// Client issues registry lookups. Every call is a fresh request: nothing is
// cached and nothing is retried.
type Client struct {
	baseURL    string
	path       string
	timeout    time.Duration
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
	recorder   Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithPath sets the route template; it must contain "{id}".
func WithPath(path string) Option {
	return func(c *Client) { c.path = path }
}

// WithTimeout bounds each lookup, on top of the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// NewClient builds a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("lookup: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("lookup: base url %q must be http or https", baseURL)
	}
	c := &Client{
		baseURL:   strings.TrimRight(u.String(), "/"),
		path:      DefaultPath,
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if !strings.Contains(c.path, "{id}") {
		return nil, fmt.Errorf("lookup: path %q has no {id} placeholder", c.path)
	}
	if c.timeout <= 0 {
		return nil, fmt.Errorf("lookup: timeout must be positive, got %s", c.timeout)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}

// URL returns the request URL for id.
func (c *Client) URL(id registryid.ID) string {
	p := c.path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return c.baseURL + strings.Replace(p, "{id}", url.PathEscape(string(id)), 1)
}

// Lookup fetches the record for id. Callers validate id first. The returned
// error wraps ErrNotFound for a 404 and ErrTransient for everything else.
func (c *Client) Lookup(ctx context.Context, id registryid.ID) (Record, error) {
	start := time.Now()
	requestID := uuid.NewString()

	rec, status, err := c.fetch(ctx, requestID, id)
	elapsed := time.Since(start)
	kind := KindOf(err)

	if c.recorder != nil {
		outcome := "success"
		if err != nil {
			outcome = kind.String()
		}
		c.recorder.ObserveLookup(outcome, elapsed)
	}

	attrs := []any{
		slog.String("request_id", requestID),
		slog.String("cnpj", string(id)),
		slog.Int("status", status),
		slog.Duration("elapsed", elapsed),
	}
	switch kind {
	case KindNone:
		c.logger.Info("lookup succeeded", attrs...)
	case KindNotFound:
		c.logger.Info("lookup not found", attrs...)
	default:
		c.logger.Warn("lookup failed", append(attrs, slog.Any("error", err))...)
	}
	return rec, err
}

func (c *Client) fetch(ctx context.Context, requestID string, id registryid.ID) (Record, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(id), nil)
	if err != nil {
		return Record{}, 0, fmt.Errorf("%w: create request: %v", ErrTransient, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, 0, fmt.Errorf("%w: execute request: %w", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		return Record{}, resp.StatusCode, fmt.Errorf("%w: %s", ErrNotFound, id)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return Record{}, resp.StatusCode, fmt.Errorf("%w: service returned %d: %s", ErrTransient, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	rec, err := Decode(resp.Body)
	if err != nil {
		return Record{}, resp.StatusCode, fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return rec, resp.StatusCode, nil
}
