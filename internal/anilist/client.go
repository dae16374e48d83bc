// Package anilist wraps the AniList GraphQL endpoint behind a self-throttling
// client. Calls are spaced a configurable minimum apart and HTTP 429
// responses are absorbed by honoring the server's Retry-After hint.
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

const DefaultEndpoint = "https://graphql.anilist.co"

const DefaultSpacing = 700 * time.Millisecond

type Options struct {
	Endpoint string
	Spacing  time.Duration
	// MaxAttempts caps the 429 retry loop; 0 means retry forever.
	MaxAttempts int
	// DiagPath is where the raw error detail is written when a request
	// fails below the HTTP layer.
	DiagPath    string
	DebugLogger interface {
		Debugf(string, ...any)
	}
}

// Client owns the rate state. It is not safe for concurrent use; the run
// is single-threaded and every call goes through the one instance built in
// cmd, which preserves the minimum-spacing invariant.
type Client struct {
	http        *http.Client
	endpoint    string
	spacing     time.Duration
	maxAttempts int
	diagPath    string
	log         interface{ Debugf(string, ...any) }

	lastCall time.Time

	// stubbed out in tests so they never really sleep
	now   func() time.Time
	sleep func(time.Duration)
}

func New(httpClient *http.Client, opts Options) *Client {
	c := &Client{
		http:        httpClient,
		endpoint:    opts.Endpoint,
		spacing:     opts.Spacing,
		maxAttempts: opts.MaxAttempts,
		diagPath:    opts.DiagPath,
		log:         opts.DebugLogger,
		now:         time.Now,
		sleep:       time.Sleep,
	}

	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.spacing == 0 {
		c.spacing = DefaultSpacing
	}
	if c.diagPath == "" {
		c.diagPath = "anilist_error.json"
	}

	return c
}

// Send posts one GraphQL request and returns the raw response body. On 429
// it waits out the server's Retry-After hint and retransmits the identical
// request until it goes through or the attempt cap is hit.
func (c *Client) Send(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	for attempt := 1; ; attempt++ {
		c.throttle()

		body, status, err := c.post(ctx, payload)
		if err != nil {
			c.writeDiag(query, variables, err)
			return nil, ErrRemoteTransport{Err: err}
		}

		if status == http.StatusTooManyRequests {
			if c.maxAttempts > 0 && attempt >= c.maxAttempts {
				return nil, ErrRemoteStatus{Status: status}
			}

			wait := retryAfter(body.header)
			if c.log != nil {
				c.log.Debugf("anilist rate limited, retrying in %s (attempt %d)\n", wait, attempt)
			}
			c.sleep(wait)
			continue
		}

		if status < 200 || status >= 300 {
			return nil, ErrRemoteStatus{Status: status}
		}

		return body.raw, nil
	}
}

type response struct {
	raw    json.RawMessage
	header http.Header
}

func (c *Client) post(ctx context.Context, payload []byte) (response, int, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return response{}, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, 0, err
	}

	return response{raw: raw, header: resp.Header}, resp.StatusCode, nil
}

// throttle suspends until the configured spacing since the previous call
// has elapsed, then records the call timestamp.
func (c *Client) throttle() {
	if !c.lastCall.IsZero() {
		if elapsed := c.now().Sub(c.lastCall); elapsed < c.spacing {
			c.sleep(c.spacing - elapsed)
		}
	}

	c.lastCall = c.now()
}

// retryAfter reads the server wait hint in whole seconds. A missing or
// non-numeric header means retransmit immediately.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}

	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}

	return time.Duration(secs) * time.Second
}

// writeDiag persists the failed request and its raw error for offline
// inspection. Failures here are swallowed: the diagnostic is best effort
// and the run is already aborting.
func (c *Client) writeDiag(query string, variables map[string]any, cause error) {
	payload := map[string]any{
		"time":      c.now().Format(time.RFC3339),
		"query":     query,
		"variables": variables,
		"error":     cause.Error(),
	}

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return
	}

	if err := os.WriteFile(c.diagPath, b, 0644); err != nil && c.log != nil {
		c.log.Debugf("could not write %s: %v\n", c.diagPath, err)
	}
}
