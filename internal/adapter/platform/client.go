// Package platform holds the HTTP clients for the backend services the
// operator console drives: tenants, subscriptions, modules, billing and
// auth. Each client shares the request plumbing in Client and maps the
// backend's error envelope onto domain errors.
package platform

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

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

const defaultTimeout = 10 * time.Second

// Client is the shared HTTP core for the platform service adapters. One
// circuit breaker guards each named collaborator; only transport failures
// and 5xx responses count as breaker failures, a 4xx is a valid answer.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*response]
}

type response struct {
	status int
	body   []byte
}

// NewClient creates a client for one collaborator service. The name shows
// up in breaker state change logs.
func NewClient(name, baseURL string) *Client {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("service", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		breaker: gobreaker.NewCircuitBreaker[*response](settings),
	}
}

// do sends one request through the breaker and returns the raw response.
// The token, when non-empty, rides along as a bearer credential.
func (c *Client) do(ctx context.Context, method, path, token string, body any) (*response, error) {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.breaker.Execute(func() (*response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		buf, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			// A 5xx trips the breaker; the envelope still carries the
			// message for the operator.
			return nil, &upstreamError{status: resp.StatusCode, body: buf}
		}
		return &response{status: resp.StatusCode, body: buf}, nil
	})
}

// upstreamError carries a 5xx response through the breaker's error path
// without losing the body.
type upstreamError struct {
	status int
	body   []byte
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.status)
}

func query(params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
