package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// Client talks to the booking API. List fetches are retried with
// exponential backoff; all calls pass through one circuit breaker.
type Client struct {
	httpClient *http.Client
	config     Config
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a booking API client.
func NewClient(config Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "bookingapi")

	trip := config.BreakerTrip
	if trip == 0 {
		trip = DefaultBreakerTrip
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bookingapi",
		MaxRequests: 1,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		breaker:    breaker,
		logger:     logger,
	}
}

// response is a raw HTTP result. Non-2xx statuses below 500 are carried
// here rather than as errors so they do not trip the breaker.
type response struct {
	status int
	body   []byte
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + path
}

// send performs one HTTP round trip through the breaker.
func (c *Client) send(ctx context.Context, op, method, path string, payload []byte) (*response, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.config.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.Token)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		c.logger.Debug("booking api",
			"op", op,
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if resp.StatusCode >= 500 {
			return nil, &RemoteError{Op: op, StatusCode: resp.StatusCode, Message: remoteMessage(data)}
		}
		return &response{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*response), nil
}

// get fetches path and decodes a 2xx body into dst, retrying transient
// failures.
func (c *Client) get(ctx context.Context, op, path string, dst any) error {
	var b backoff.BackOff
	eb := backoff.NewExponentialBackOff()
	if c.config.RetryDelay > 0 {
		eb.InitialInterval = c.config.RetryDelay
	}
	b = backoff.WithContext(backoff.WithMaxRetries(eb, uint64(max(0, c.config.MaxRetries))), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		resp, err := c.send(ctx, op, http.MethodGet, path, nil)
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, context.Canceled) {
				return backoff.Permanent(err)
			}
			c.logger.Debug("list fetch failed, will retry", "op", op, "attempt", attempt, "error", err)
			return err
		}
		if resp.status < 200 || resp.status > 299 {
			re := &RemoteError{Op: op, StatusCode: resp.status, Message: remoteMessage(resp.body)}
			if re.IsRetryable() {
				return re
			}
			return backoff.Permanent(re)
		}
		if err := json.Unmarshal(resp.body, dst); err != nil {
			return backoff.Permanent(fmt.Errorf("%s: decoding response: %w", op, err))
		}
		return nil
	}, b)
}

// MutationResult is the API's answer to a create, update, or delete.
type MutationResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// mutate sends a single non-idempotent request. It is never retried.
// A 4xx answer carrying a message is a business rejection and is returned
// as an unsuccessful result rather than an error.
func (c *Client) mutate(ctx context.Context, op, method, path string, body any) (MutationResult, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return MutationResult{}, fmt.Errorf("%s: marshaling request: %w", op, err)
		}
		payload = data
	}

	resp, err := c.send(ctx, op, method, path, payload)
	if err != nil {
		return MutationResult{}, err
	}

	var res MutationResult
	decodeErr := json.Unmarshal(resp.body, &res)
	if resp.status < 200 || resp.status > 299 {
		if decodeErr == nil && res.Message != "" {
			res.Success = false
			return res, nil
		}
		return MutationResult{}, &RemoteError{Op: op, StatusCode: resp.status, Message: remoteMessage(resp.body)}
	}
	if decodeErr != nil {
		return MutationResult{}, fmt.Errorf("%s: decoding response: %w", op, decodeErr)
	}
	return res, nil
}

// remoteMessage extracts a human message from an error body.
func remoteMessage(body []byte) string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &m) == nil {
		if m.Message != "" {
			return m.Message
		}
		if m.Error != "" {
			return m.Error
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
