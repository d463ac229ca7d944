// Package ynab is the resilient client for the budgeting REST API. One
// Client is constructed at startup and threaded through everything that
// issues requests; its pooled transport is the only stateful field.
package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/apierr"
)

// maxResponseBody bounds how much of a response is read into memory.
const maxResponseBody = 4 << 20

// RetryPolicy tunes the executor's backoff schedule. MaxRetries counts
// additional attempts after the first; the wait before retry k is
// BaseDelay * 2^(k-1) capped at MaxDelay, plus non-negative jitter.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy returns the stock schedule: 3 retries, 500ms base,
// 30s cap.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   30 * time.Second,
	}
}

// Reserver gates each attempt against the remote call quota.
type Reserver interface {
	Reserve(ctx context.Context, method, path string) error
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	Timeout    time.Duration // per attempt, not cumulative across retries
	Retry      RetryPolicy
	Scheduler  Reserver
	PageSize   int
	HTTPClient *http.Client // overrides the pooled default, used in tests
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	timeout    time.Duration
	retry      RetryPolicy
	sched      Reserver
	pageSize   int

	// injectable for tests
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(d time.Duration) time.Duration
}

// New creates a client for the API at baseURL authenticated by the
// bearer token.
func New(baseURL, token string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retry := opts.Retry
	if retry.BaseDelay <= 0 {
		retry = DefaultRetryPolicy()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 200
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: newPooledTransport()}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		timeout:    timeout,
		retry:      retry,
		sched:      opts.Scheduler,
		pageSize:   pageSize,
		sleep:      sleepCtx,
		jitter: func(d time.Duration) time.Duration {
			return time.Duration(rand.Int63n(int64(d)/2 + 1))
		},
	}
}

// newPooledTransport builds the shared connection pool. Connections are
// reused across calls to the API host and recycled on idle timeout.
func newPooledTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		MaxConnsPerHost:     8,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retryState tracks one logical call across its attempts. It is created
// per call and discarded on success or final failure.
type retryState struct {
	attempts         int
	transientRetries int
	rateLimitRetries int
	totalWait        time.Duration
	lastHint         time.Duration
}

// do executes one logical API call: it reserves quota, issues the
// request with a per-attempt timeout, and resolves transient and
// rate-limit failures locally by retrying. All other failures surface
// immediately. On success the response body is decoded into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	urlStr := c.baseURL + path
	if len(query) > 0 {
		urlStr += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	rs := &retryState{}
	for {
		rs.attempts++

		if c.sched != nil {
			if err := c.sched.Reserve(ctx, method, path); err != nil {
				return err
			}
		}

		err := c.attempt(ctx, method, urlStr, payload, out)
		if err == nil {
			return nil
		}

		wait, retry := c.nextWait(rs, err)
		if !retry {
			return err
		}

		slog.WarnContext(ctx, "Retrying API call",
			"component", "client",
			"method", method,
			"path", path,
			"attempt", rs.attempts,
			"wait_ms", wait.Milliseconds(),
			"error", err)

		rs.totalWait += wait
		if serr := c.sleep(ctx, wait); serr != nil {
			// Cancellation abandons the retry state; the caller must
			// restart the whole logical operation.
			return serr
		}
	}
}

// nextWait decides whether the failure is retried and how long to wait
// first. Rate limits follow the server's hint and spend a separate
// budget from transient failures, but share the same ceiling.
func (c *Client) nextWait(rs *retryState, err error) (time.Duration, bool) {
	kind := apierr.KindOf(err)
	if !kind.Retryable() {
		return 0, false
	}

	if kind == apierr.RateLimit {
		if hint := retryAfterHint(err); hint > 0 {
			rs.lastHint = hint
		}
		if rs.rateLimitRetries >= c.retry.MaxRetries {
			c.stampHint(err, rs.lastHint)
			return 0, false
		}
		rs.rateLimitRetries++
		if rs.lastHint > 0 {
			return rs.lastHint, true
		}
		return c.backoff(rs.rateLimitRetries), true
	}

	if rs.transientRetries >= c.retry.MaxRetries {
		return 0, false
	}
	rs.transientRetries++
	return c.backoff(rs.transientRetries), true
}

// backoff computes the wait before retry k (1-based): doubling from the
// base, capped, with jitter added on top so the monotonic growth of the
// lower bound is preserved.
func (c *Client) backoff(k int) time.Duration {
	d := c.retry.BaseDelay
	for i := 1; i < k; i++ {
		d *= 2
		if d >= c.retry.MaxDelay {
			d = c.retry.MaxDelay
			break
		}
	}
	if d > c.retry.MaxDelay {
		d = c.retry.MaxDelay
	}
	if c.jitter != nil {
		d += c.jitter(d)
	}
	return d
}

// stampHint attaches the last observed wait hint to a rate-limit error
// surfacing after the attempt ceiling.
func (c *Client) stampHint(err error, hint time.Duration) {
	var e *apierr.Error
	if hint > 0 && errors.As(err, &e) && e.RetryAfter == 0 {
		e.RetryAfter = hint
	}
}

func retryAfterHint(err error) time.Duration {
	var e *apierr.Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}

// attempt issues a single HTTP request under the per-attempt timeout.
func (c *Client) attempt(ctx context.Context, method, urlStr string, payload []byte, out any) error {
	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(actx, method, urlStr, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apierr.FromTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return apierr.FromTransport(err)
	}

	if resp.StatusCode >= 400 {
		e := apierr.Classify(resp.StatusCode, respBody)
		if e.Kind == apierr.RateLimit {
			e.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return e
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &apierr.Error{
				Kind:   apierr.Server,
				Status: resp.StatusCode,
				Detail: fmt.Sprintf("undecodable response body: %v", err),
			}
		}
	}

	return nil
}

// parseRetryAfter reads a seconds-valued Retry-After header. Zero means
// no usable hint.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
