// Package httpx provides the shared HTTP client used by every source fetcher:
// a fixed total-timeout guard, context propagation into in-flight requests,
// an optional upstream rate limiter, and a distinguished timeout error so
// callers can tell an aborted request from any other transport failure.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrTimeout is returned when a request exceeds the client's total timeout.
var ErrTimeout = errors.New("Request timed out")

// StatusError carries a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Code)
}

const maxErrBody = 2 << 10

type Client struct {
	hc      *http.Client
	limiter *rate.Limiter
}

// New creates a client with the given total timeout. rps <= 0 disables rate
// limiting.
func New(timeout time.Duration, rps float64, burst int) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}

	return &Client{
		hc:      &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// Do executes the request under the caller's context, waiting on the rate
// limiter first. Timeouts, whether from the client deadline or the context,
// surface as ErrTimeout.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := c.hc.Do(req.Clone(ctx))
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, err
	}
	return resp, nil
}

// GetJSON issues a GET with the given headers and decodes a 2xx response body
// into out. Non-2xx responses become a *StatusError carrying a bounded copy
// of the body.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	return c.doJSON(ctx, req, out)
}

// PostFormJSON issues a form-encoded POST and decodes the JSON response the
// same way GetJSON does.
func (c *Client) PostFormJSON(ctx context.Context, rawURL string, header http.Header, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	return c.doJSON(ctx, req, out)
}

func (c *Client) doJSON(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
