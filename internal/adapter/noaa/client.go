// Package noaa retrieves the UKMET guidance bulletin from the NWS text relay.
package noaa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/storm-bulletin-etl/internal/domain"
	"github.com/couchcryptid/storm-bulletin-etl/internal/observability"
)

const (
	maxBodyBytes = 1 << 20
	userAgent    = "storm-bulletin-etl/1.0"
)

// ErrBreakerOpen is returned while the circuit breaker rejects requests.
var ErrBreakerOpen = errors.New("bulletin source unavailable: circuit open")

// Client fetches the raw bulletin text.
type Client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[string]
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a bulletin client for url.
func NewClient(url string, timeout time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    newBreaker(),
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

func newBreaker() *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "noaa-bulletin",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// Fetch downloads the bulletin once. There are no retries here; the
// pipeline backs off between polls.
func (c *Client) Fetch(ctx context.Context) (domain.RawBulletin, error) {
	start := time.Now()
	text, err := c.breaker.Execute(func() (string, error) {
		return c.get(ctx)
	})
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.metrics.FetchRequests.WithLabelValues("rejected").Inc()
			return domain.RawBulletin{}, ErrBreakerOpen
		}
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return domain.RawBulletin{}, err
	}
	c.metrics.FetchRequests.WithLabelValues("success").Inc()

	raw := domain.NewRawBulletin(c.url, text, c.clock.Now())
	c.logger.Debug("bulletin fetched", "bytes", len(text), "checksum", raw.Checksum)
	return raw, nil
}

func (c *Client) get(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("bulletin request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bulletin source error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("read bulletin: %w", err)
	}
	if len(body) > maxBodyBytes {
		return "", fmt.Errorf("bulletin exceeds %d bytes", maxBodyBytes)
	}
	if !utf8.Valid(body) {
		return "", errors.New("bulletin is not valid UTF-8")
	}
	return string(body), nil
}
