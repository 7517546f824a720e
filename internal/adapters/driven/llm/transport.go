package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/logger"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4096

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Is matches domain.ErrRateLimited for 429 and domain.ErrLLMUnavailable
// for 5xx responses.
func (e *StatusError) Is(target error) bool {
	switch target {
	case domain.ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case domain.ErrLLMUnavailable:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// Request is one JSON POST to a provider.
type Request struct {
	// Provider prefixes errors and log lines.
	Provider string
	URL      string
	Headers  map[string]string
	Body     any
}

// Transport sends JSON requests through a shared client and rate limiter.
// It is safe for concurrent use.
type Transport struct {
	client  *http.Client
	limiter *RateLimiter
}

// NewTransport creates a transport. A nil limiter disables throttling.
func NewTransport(client *http.Client, limiter *RateLimiter) *Transport {
	if client == nil {
		client = &http.Client{}
	}
	return &Transport{client: client, limiter: limiter}
}

// PostJSON sends req and decodes the response body into out.
func (t *Transport) PostJSON(ctx context.Context, req Request, out any) error {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: wait for rate limiter: %w", req.Provider, err)
		}
	}

	body, err := json.Marshal(req.Body)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", req.Provider, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", req.Provider, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: send request: %w", req.Provider, err)
	}
	defer resp.Body.Close()
	logger.Debug("llm.%s.http: request=%s status=%d in %s",
		req.Provider, requestID, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusTooManyRequests && t.limiter != nil {
			t.limiter.RecordRateLimitError(retryAfter(resp.Header.Get("Retry-After")))
		}
		return &StatusError{Provider: req.Provider, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", req.Provider, err)
	}
	return nil
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return time.Until(at)
	}
	return 0
}

// Float returns a pointer to v, for request fields where zero is meaningful.
func Float(v float64) *float64 {
	return &v
}
